package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stayflo/internal/api/controllers"
	"stayflo/internal/config"
	"stayflo/internal/models/response_models"
	"stayflo/internal/planner"
	"stayflo/internal/repositories"
	"stayflo/internal/services"
	"stayflo/pkg/metrics"
	"stayflo/pkg/utils"
)

type mockItineraryService struct {
	mock.Mock
}

func (m *mockItineraryService) Generate(ctx context.Context, in services.GenerateInput) (*planner.GeneratedItinerary, error) {
	args := m.Called(ctx, in)
	it, _ := args.Get(0).(*planner.GeneratedItinerary)
	return it, args.Error(1)
}

func (m *mockItineraryService) Swap(it planner.GeneratedItinerary, blockID string) (*planner.GeneratedItinerary, error) {
	args := m.Called(it, blockID)
	out, _ := args.Get(0).(*planner.GeneratedItinerary)
	return out, args.Error(1)
}

func (m *mockItineraryService) NarrateBlock(ctx context.Context, in services.BlockNarrativeInput) (services.BlockNarrative, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(services.BlockNarrative), args.Error(1)
}

type stubPlaces struct{}

func (stubPlaces) SearchText(context.Context, planner.SearchRequest) ([]planner.PlaceCandidate, error) {
	return nil, nil
}

func (stubPlaces) Geocode(_ context.Context, q string) (services.GeocodeResult, error) {
	if q == "78205" {
		return services.GeocodeResult{Lat: 29.42, Lng: -98.49, Formatted: "San Antonio, TX 78205"}, nil
	}
	return services.GeocodeResult{}, utils.ErrGeocodeNotFound
}

func newTestRouter(t *testing.T, itin services.ItineraryServiceInterface) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, utils.RegisterValidators())

	log := zap.NewNop()
	m := metrics.New()
	props := services.NewPropertyService(repositories.NewMemoryPropertyRepository(repositories.DefaultProperties()...), m, log)
	return NewRouter(RouterParams{
		Config:  &config.Config{CORSOrigins: []string{"*"}},
		Log:     log,
		Metrics: m,
		Controllers: Controllers{
			Health:    controllers.NewHealthController(),
			Property:  controllers.NewPropertyController(props, log),
			Geocode:   controllers.NewGeocodeController(stubPlaces{}, log),
			Itinerary: controllers.NewItineraryController(itin, log),
		},
	})
}

func do(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data any) utils.APIResponse {
	t.Helper()
	var env struct {
		utils.APIResponse
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env.APIResponse
}

func validGenerateBody() map[string]any {
	return map[string]any{
		"property":  "lamar",
		"duration":  "half_day",
		"pace":      "balanced",
		"transport": "drive",
		"budget":    "$$",
		"vibes":     []string{"foodie"},
		"notes":     "no coffee",
		"planDay":   "tomorrow",
		"startTime": "10:30",
	}
}

func TestHealthAndMetrics(t *testing.T) {
	r := newTestRouter(t, new(mockItineraryService))

	w := do(r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var h response_models.HealthResponse
	decode(t, w, &h)
	assert.Equal(t, "ok", h.Status)
	assert.NotEmpty(t, w.Header().Get("X-Trace-ID"))

	w = do(r, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestGetProperty(t *testing.T) {
	r := newTestRouter(t, new(mockItineraryService))

	w := do(r, http.MethodGet, "/properties/gabriel", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var p response_models.PropertyResponse
	decode(t, w, &p)
	assert.Equal(t, "Fields of Comfort Stays • Gabriel", p.DisplayName)

	w = do(r, http.MethodGet, "/properties/elsewhere", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Unknown property", decode(t, w, nil).Message)
}

func TestGeocode(t *testing.T) {
	r := newTestRouter(t, new(mockItineraryService))

	w := do(r, http.MethodGet, "/public/geocode?q=78205", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var g response_models.GeocodeResponse
	decode(t, w, &g)
	assert.Equal(t, "San Antonio, TX 78205", g.Formatted)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/public/geocode?q=", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/public/geocode?q=atlantis", nil).Code)
}

func TestGenerate_BindsAndMapsErrors(t *testing.T) {
	itin := new(mockItineraryService)
	itin.On("Generate", mock.Anything, mock.MatchedBy(func(in services.GenerateInput) bool {
		return in.PropertySlug == "lamar" &&
			in.Prefs.Budget == planner.Budget2 &&
			in.Prefs.PlanDay == planner.PlanTomorrow &&
			in.Prefs.StartClock == "10:30"
	})).Return(&planner.GeneratedItinerary{Version: 1, ID: "it-1"}, nil).Once()
	r := newTestRouter(t, itin)

	w := do(r, http.MethodPost, "/public/itinerary/generate", validGenerateBody())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var it planner.GeneratedItinerary
	decode(t, w, &it)
	assert.Equal(t, "it-1", it.ID)
	itin.AssertExpectations(t)

	itin.On("Generate", mock.Anything, mock.Anything).Return(nil, utils.ErrEmptyItinerary).Once()
	w = do(r, http.MethodPost, "/public/itinerary/generate", validGenerateBody())
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.True(t, strings.HasPrefix(decode(t, w, nil).Message, "No strong matches"))
}

func TestGenerate_RejectsInvalidRequests(t *testing.T) {
	r := newTestRouter(t, new(mockItineraryService))

	mutate := func(k string, v any) map[string]any {
		b := validGenerateBody()
		if v == nil {
			delete(b, k)
		} else {
			b[k] = v
		}
		return b
	}
	cases := map[string]any{
		"bad json":         "{",
		"bad budget":       mutate("budget", "$$$$$"),
		"bad pace":         mutate("pace", "frantic"),
		"missing vibes":    mutate("vibes", []string{}),
		"bad plan day":     mutate("planDay", "yesterday"),
		"bad start time":   mutate("startTime", "25:00"),
		"no property":      mutate("property", nil),
		"missing duration": mutate("duration", nil),
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w := do(r, http.MethodPost, "/public/itinerary/generate", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "error", decode(t, w, nil).Status)
		})
	}
}

func TestSwap(t *testing.T) {
	it := planner.GeneratedItinerary{Version: 1, Blocks: []planner.ItineraryBlock{{ID: "lunch"}}}
	itin := new(mockItineraryService)
	itin.On("Swap", mock.Anything, "lunch").Return(&it, nil).Once()
	itin.On("Swap", mock.Anything, "nope").Return(nil, utils.ErrBlockNotFound).Once()
	r := newTestRouter(t, itin)

	w := do(r, http.MethodPost, "/public/itinerary/swap", map[string]any{"itinerary": it, "blockId": "lunch"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodPost, "/public/itinerary/swap", map[string]any{"itinerary": it, "blockId": "nope"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodPost, "/public/itinerary/swap", map[string]any{"blockId": "lunch"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	itin.AssertExpectations(t)
}

func TestNarrate(t *testing.T) {
	itin := new(mockItineraryService)
	itin.On("NarrateBlock", mock.Anything, mock.MatchedBy(func(in services.BlockNarrativeInput) bool {
		return in.Place.Name == "Smoke Shack" && in.Block.Category == planner.CategoryLunch
	})).Return(services.BlockNarrative{WhyThis: "Great brisket.", Tips: []string{"Go early"}}, nil).Once()
	itin.On("NarrateBlock", mock.Anything, mock.Anything).Return(services.BlockNarrative{}, utils.ErrUnexpectedBehaviorOfAI).Once()
	r := newTestRouter(t, itin)

	body := map[string]any{
		"city":  "San Antonio, TX",
		"prefs": map[string]any{"duration": "half_day", "pace": "chill", "transport": "walk", "budget": "$", "vibes": []string{"bbq"}},
		"block": map[string]any{"id": "lunch", "title": "Lunch", "category": "lunch", "timeLabel": "1:00 PM"},
		"place": map[string]any{"placeId": "p1", "name": "Smoke Shack", "rating": 4.7},
	}
	w := do(r, http.MethodPost, "/public/itinerary/narrate", body)
	require.Equal(t, http.StatusOK, w.Code)
	var out response_models.BlockNarrativeResponse
	decode(t, w, &out)
	assert.Equal(t, "Great brisket.", out.WhyThis)

	w = do(r, http.MethodPost, "/public/itinerary/narrate", body)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	body["block"] = map[string]any{"id": "lunch", "title": "Lunch", "category": "brunch"}
	w = do(r, http.MethodPost, "/public/itinerary/narrate", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	itin.AssertExpectations(t)
}
