package utils

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sashabaranov/go-openai/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCleanJSONResponse(t *testing.T) {
	cases := map[string]string{
		"```json\n{\"a\":1}\n```":                `{"a":1}`,
		"Here is the JSON: {\"a\":\"}\"} trailing": `{"a":"}"}`,
		"noise [1,[2,3]] more":                     `[1,[2,3]]`,
		`{"a":"escaped \" quote"}`:                 `{"a":"escaped \" quote"}`,
		"plain text":                               "plain text",
	}
	for in, want := range cases {
		assert.Equal(t, want, CleanJSONResponse(in), in)
	}
}

func TestFindMatchingClose_Unbalanced(t *testing.T) {
	assert.Equal(t, -1, findMatchingClose(`{"a":1`, 0, '{', '}'))
	assert.Equal(t, -1, findMatchingClose(`x`, 0, '{', '}'))
}

func TestToGenaiSchema(t *testing.T) {
	def := jsonschema.Definition{
		Type:     jsonschema.Object,
		Required: []string{"tips"},
		Properties: map[string]jsonschema.Definition{
			"tips": {Type: jsonschema.Array, Items: &jsonschema.Definition{Type: jsonschema.String}},
		},
	}
	s := toGenaiSchema(def)
	require.Contains(t, s.Properties, "tips")
	assert.Equal(t, []string{"tips"}, s.Required)
	require.NotNil(t, s.Properties["tips"].Items)
}

func TestNewLLMJSONClient_RejectsMissingKeyAndProvider(t *testing.T) {
	_, err := NewLLMJSONClient(context.Background(), "openai", "", "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewLLMJSONClient(context.Background(), "telegraph", "k", "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	c, err := NewLLMJSONClient(context.Background(), "OpenAI", "k", "")
	require.NoError(t, err)
	assert.Equal(t, "openai", c.Provider())
}

func TestHandleServiceError_StatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("%w: pace", ErrInvalidInput), http.StatusBadRequest},
		{ErrPropertyNotFound, http.StatusNotFound},
		{ErrBlockNotFound, http.StatusNotFound},
		{ErrGeocodeNotFound, http.StatusNotFound},
		{ErrEmptyItinerary, http.StatusUnprocessableEntity},
		{ErrUnexpectedBehaviorOfAI, http.StatusBadGateway},
		{ErrProviderUnavailable, http.StatusBadGateway},
		{ErrDatabaseError, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Set("trace_id", "t-1")
		HandleServiceError(c, zap.NewNop(), tc.err)
		assert.Equal(t, tc.code, w.Code, tc.err.Error())
		assert.Contains(t, w.Body.String(), `"trace_id":"t-1"`)
		assert.Contains(t, w.Body.String(), `"status":"error"`)
	}
}

func TestHandleServiceError_UnknownErrorIsRouteNeutral(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	HandleServiceError(c, zap.NewNop(), errors.New("swap exploded"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"message":"Something went wrong. Please try again."`)
	assert.NotContains(t, w.Body.String(), "itinerary")
}

func TestTimeLabels(t *testing.T) {
	loc := DefaultLocation()
	at := time.Date(2026, 3, 9, 14, 30, 0, 0, loc)
	assert.Equal(t, "2:30 PM", FormatTimeLabel(at, loc))
	assert.Equal(t, "Mon", FormatDayLabel(at, loc))
	assert.Equal(t, "2026-03-09T19", HourKeyUTC(at))

	_, err := LoadCivilLocation("Mars/Olympus")
	assert.ErrorIs(t, err, ErrInvalidInput)
	l, err := LoadCivilLocation("")
	require.NoError(t, err)
	assert.Equal(t, DefaultTimezone, l.String())
}

func TestValidHHMM(t *testing.T) {
	v := validator.New()
	require.NoError(t, v.RegisterValidation("hhmm", ValidHHMM))

	type req struct {
		Start string `validate:"omitempty,hhmm"`
	}
	for _, ok := range []string{"", "9:30", "09:30", "23:59", "0:00"} {
		assert.NoError(t, v.Struct(req{Start: ok}), ok)
	}
	for _, bad := range []string{"24:00", "9:5", "930", "12:60", "noon"} {
		assert.Error(t, v.Struct(req{Start: bad}), bad)
	}
}
