package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/nutrition-engine/backend/internal/middleware"
	"github.com/pageza/nutrition-engine/backend/internal/service"
	"github.com/pageza/nutrition-engine/backend/internal/types"
)

type PlanHandler struct {
	svc     service.INutritionService
	auth    middleware.TokenValidator
	limiter *middleware.RateLimiter
}

// NewPlanHandler creates the plan handler. A nil limiter leaves generation unlimited.
func NewPlanHandler(svc service.INutritionService, auth middleware.TokenValidator, limiter *middleware.RateLimiter) *PlanHandler {
	return &PlanHandler{svc: svc, auth: auth, limiter: limiter}
}

func (h *PlanHandler) RegisterRoutes(router *gin.RouterGroup) {
	chain := []gin.HandlerFunc{middleware.AuthMiddleware(h.auth)}
	if h.limiter != nil {
		chain = append(chain, h.limiter.RateLimitMiddleware())
	}
	router.POST("/plans/weekly", append(chain, h.GenerateWeeklyPlan)...)
}

func (h *PlanHandler) GenerateWeeklyPlan(c *gin.Context) {
	var req types.PlanRequest
	if !bindJSON(c, &req) {
		return
	}
	if !authorizeSchool(c, req.SchoolID) {
		return
	}
	resp, err := h.svc.GenerateWeeklyPlan(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
