package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/nutrition-engine/backend/internal/middleware"
	"github.com/pageza/nutrition-engine/backend/internal/service"
	"github.com/pageza/nutrition-engine/backend/internal/types"
)

type IntakeHandler struct {
	svc  service.INutritionService
	auth middleware.TokenValidator
}

func NewIntakeHandler(svc service.INutritionService, auth middleware.TokenValidator) *IntakeHandler {
	return &IntakeHandler{svc: svc, auth: auth}
}

func (h *IntakeHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/intake/recommend", middleware.AuthMiddleware(h.auth), h.RecommendIntake)
	router.POST("/adherence/score", middleware.AuthMiddleware(h.auth), h.ScoreAdherence)
}

func (h *IntakeHandler) RecommendIntake(c *gin.Context) {
	var req types.IntakeRequest
	if !bindJSON(c, &req) {
		return
	}
	intake, err := h.svc.RecommendIntake(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, intake)
}

func (h *IntakeHandler) ScoreAdherence(c *gin.Context) {
	var req types.AdherenceRequest
	if !bindJSON(c, &req) {
		return
	}
	report, err := h.svc.ScoreAdherence(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, report)
}
