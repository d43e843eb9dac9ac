package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stayflo/internal/models/response_models"
	"stayflo/internal/services"
	"stayflo/pkg/utils"
)

type GeocodeController struct {
	placesService services.PlacesServiceInterface
	log           *zap.Logger
}

func NewGeocodeController(placesService services.PlacesServiceInterface, log *zap.Logger) *GeocodeController {
	return &GeocodeController{placesService: placesService, log: log.Named("GeocodeController")}
}

// Geocode godoc
// @Summary Geocode a city, ZIP or address
// @Tags Public
// @Produce json
// @Param q query string true "City, State or ZIP"
// @Success 200 {object} response_models.GeocodeResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /public/geocode [get]
func (g *GeocodeController) Geocode(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		utils.RespondError(c, http.StatusBadRequest, "Missing query")
		return
	}

	res, err := g.placesService.Geocode(c.Request.Context(), q)
	if err != nil {
		utils.HandleServiceError(c, g.log, err)
		return
	}

	utils.RespondSuccess(c, response_models.GeocodeResponse{Lat: res.Lat, Lng: res.Lng, Formatted: res.Formatted}, "Location found")
}
