package controllers

import (
	"github.com/gin-gonic/gin"

	"stayflo/internal/models/response_models"
	"stayflo/pkg/utils"
)

type HealthController struct{}

func NewHealthController() *HealthController {
	return &HealthController{}
}

// Health godoc
// @Summary Liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} response_models.HealthResponse
// @Router /health [get]
func (h *HealthController) Health(c *gin.Context) {
	utils.RespondSuccess(c, response_models.HealthResponse{Status: "ok"}, "")
}
