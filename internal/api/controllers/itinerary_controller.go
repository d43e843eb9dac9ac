package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stayflo/internal/models/request_models"
	"stayflo/internal/models/response_models"
	"stayflo/internal/planner"
	"stayflo/internal/services"
	"stayflo/pkg/utils"
)

type ItineraryController struct {
	itineraryService services.ItineraryServiceInterface
	log              *zap.Logger
}

func NewItineraryController(itineraryService services.ItineraryServiceInterface, log *zap.Logger) *ItineraryController {
	return &ItineraryController{
		itineraryService: itineraryService,
		log:              log.Named("ItineraryController"),
	}
}

// Generate godoc
// @Summary Generate an itinerary
// @Description Build a time-blocked plan for a property, or around an origin when no property is given
// @Tags Itinerary
// @Accept json
// @Produce json
// @Param request body request_models.GenerateItineraryRequest true "Preferences"
// @Success 200 {object} planner.GeneratedItinerary
// @Failure 400 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Failure 422 {object} utils.APIResponse
// @Router /public/itinerary/generate [post]
func (ic *ItineraryController) Generate(c *gin.Context) {
	var req request_models.GenerateItineraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ic.log.Debug("Invalid generate request", zap.Error(err))
		utils.RespondError(c, http.StatusBadRequest, "Missing or invalid inputs")
		return
	}
	if req.Property == "" && req.Origin == nil {
		utils.RespondError(c, http.StatusBadRequest, "Unknown property")
		return
	}

	it, err := ic.itineraryService.Generate(c.Request.Context(), services.GenerateInput{
		PropertySlug: req.Property,
		Prefs:        req.ToPreferences(),
	})
	if err != nil {
		utils.HandleServiceError(c, ic.log, err)
		return
	}

	utils.RespondSuccess(c, it, "Itinerary generated successfully")
}

// Swap godoc
// @Summary Swap a block's primary stop
// @Description Replace the primary of one block with its next unused alternate. Stateless, the client sends the itinerary back.
// @Tags Itinerary
// @Accept json
// @Produce json
// @Param request body request_models.SwapBlockRequest true "Itinerary and block id"
// @Success 200 {object} planner.GeneratedItinerary
// @Failure 400 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /public/itinerary/swap [post]
func (ic *ItineraryController) Swap(c *gin.Context) {
	var req request_models.SwapBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Itinerary.Blocks) == 0 {
		utils.RespondError(c, http.StatusBadRequest, "Itinerary and blockId are required")
		return
	}

	it, err := ic.itineraryService.Swap(req.Itinerary, req.BlockID)
	if err != nil {
		utils.HandleServiceError(c, ic.log, err)
		return
	}

	utils.RespondSuccess(c, it, "Block swapped successfully")
}

// Narrate godoc
// @Summary Narrate a single block
// @Description Write whyThis and tips for one place, usually right after a swap
// @Tags Itinerary
// @Accept json
// @Produce json
// @Param request body request_models.NarrateBlockRequest true "City, preferences, block and place"
// @Success 200 {object} response_models.BlockNarrativeResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 502 {object} utils.APIResponse
// @Router /public/itinerary/narrate [post]
func (ic *ItineraryController) Narrate(c *gin.Context) {
	var req request_models.NarrateBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid JSON")
		return
	}

	out, err := ic.itineraryService.NarrateBlock(c.Request.Context(), services.BlockNarrativeInput{
		City:  req.City,
		Prefs: req.Prefs,
		Block: planner.ItineraryBlock{
			ID:        req.Block.ID,
			Title:     req.Block.Title,
			Category:  req.Block.Category,
			TimeLabel: req.Block.TimeLabel,
		},
		Place: req.Place,
	})
	if err != nil {
		if errors.Is(err, utils.ErrInvalidInput) {
			utils.RespondError(c, http.StatusBadRequest, "Place name is required")
			return
		}
		utils.HandleServiceError(c, ic.log, err)
		return
	}

	utils.RespondSuccess(c, response_models.BlockNarrativeResponse{WhyThis: out.WhyThis, Tips: out.Tips}, "Block narrated successfully")
}
