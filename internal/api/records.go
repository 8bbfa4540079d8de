package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/nutrition-engine/backend/internal/middleware"
	"github.com/pageza/nutrition-engine/backend/internal/service"
	"github.com/pageza/nutrition-engine/backend/internal/types"
)

type RecordHandler struct {
	records service.IRecordService
	auth    middleware.TokenValidator
}

func NewRecordHandler(records service.IRecordService, auth middleware.TokenValidator) *RecordHandler {
	return &RecordHandler{records: records, auth: auth}
}

func (h *RecordHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/meal-records", middleware.AuthMiddleware(h.auth), h.RecordMeals)
}

func (h *RecordHandler) RecordMeals(c *gin.Context) {
	var req types.RecordMealsRequest
	if !bindJSON(c, &req) {
		return
	}
	if !authorizeSchool(c, req.SchoolID) {
		return
	}
	n, err := h.records.RecordMeals(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"recorded": n})
}
