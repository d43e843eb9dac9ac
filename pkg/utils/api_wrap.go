package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type APIResponse struct {
	Status  string      `json:"status"`
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func traceID(c *gin.Context) string {
	return c.GetString("trace_id")
}

func RespondSuccess(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, APIResponse{
		Status:  "success",
		Code:    http.StatusOK,
		Message: message,
		TraceID: traceID(c),
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, message string) {
	c.JSON(code, APIResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		TraceID: traceID(c),
	})
}

// HandleServiceError maps service sentinels to a status code and a short
// human message. Unknown errors are logged and reported as 500.
func HandleServiceError(c *gin.Context, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		RespondError(c, http.StatusBadRequest, "Missing or invalid inputs")
	case errors.Is(err, ErrPropertyNotFound):
		RespondError(c, http.StatusNotFound, "Unknown property")
	case errors.Is(err, ErrBlockNotFound):
		RespondError(c, http.StatusNotFound, "Block not found")
	case errors.Is(err, ErrGeocodeNotFound):
		RespondError(c, http.StatusNotFound, "No results found. Try a ZIP or City, State.")
	case errors.Is(err, ErrEmptyItinerary):
		RespondError(c, http.StatusUnprocessableEntity, "No strong matches right now. Try changing your preferences.")
	case errors.Is(err, ErrUnexpectedBehaviorOfAI):
		log.Warn("Language model error", zap.Error(err), zap.String("trace_id", traceID(c)))
		RespondError(c, http.StatusBadGateway, "Could not write a description right now")
	case errors.Is(err, ErrProviderUnavailable):
		log.Warn("Provider error", zap.Error(err), zap.String("trace_id", traceID(c)))
		RespondError(c, http.StatusBadGateway, "Place search is unavailable right now")
	case errors.Is(err, ErrDatabaseError):
		log.Error("Database error", zap.Error(err), zap.String("trace_id", traceID(c)))
		RespondError(c, http.StatusInternalServerError, "Internal server error")
	default:
		log.Error("Unknown error", zap.Error(err), zap.String("trace_id", traceID(c)))
		RespondError(c, http.StatusInternalServerError, "Something went wrong. Please try again.")
	}
}
