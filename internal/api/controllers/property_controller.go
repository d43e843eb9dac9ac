package controllers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stayflo/internal/services"
	"stayflo/pkg/utils"
)

type PropertyController struct {
	propertyService services.PropertyServiceInterface
	log             *zap.Logger
}

func NewPropertyController(propertyService services.PropertyServiceInterface, log *zap.Logger) *PropertyController {
	return &PropertyController{propertyService: propertyService, log: log.Named("PropertyController")}
}

// GetProperty godoc
// @Summary Get a property by slug
// @Tags Property
// @Produce json
// @Param slug path string true "Property slug"
// @Success 200 {object} response_models.PropertyResponse
// @Failure 404 {object} utils.APIResponse
// @Router /properties/{slug} [get]
func (p *PropertyController) GetProperty(c *gin.Context) {
	property, err := p.propertyService.GetProperty(c.Request.Context(), c.Param("slug"))
	if err != nil {
		utils.HandleServiceError(c, p.log, err)
		return
	}
	utils.RespondSuccess(c, property, "Property fetched successfully")
}
