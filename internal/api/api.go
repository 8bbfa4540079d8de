package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/nutrition-engine/backend/internal/middleware"
	"github.com/pageza/nutrition-engine/backend/internal/service"
)

// Deps carries the services the HTTP handlers call.
type Deps struct {
	Nutrition   service.INutritionService
	Catalog     service.ICatalogService
	Records     service.IRecordService
	Tokens      middleware.TokenValidator
	PlanLimiter *middleware.RateLimiter
}

// SetupAPI registers every engine route on the versioned group.
func SetupAPI(v1 *gin.RouterGroup, deps Deps) {
	NewIntakeHandler(deps.Nutrition, deps.Tokens).RegisterRoutes(v1)
	NewTrendHandler(deps.Nutrition, deps.Tokens).RegisterRoutes(v1)
	NewPlanHandler(deps.Nutrition, deps.Tokens, deps.PlanLimiter).RegisterRoutes(v1)
	NewCatalogHandler(deps.Catalog, deps.Tokens).RegisterRoutes(v1)
	NewRecordHandler(deps.Records, deps.Tokens).RegisterRoutes(v1)
}

// bindJSON decodes the body and attaches a 400 on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		_ = c.Error(middleware.NewHTTPError(http.StatusBadRequest, "invalid_request", err))
		return false
	}
	return true
}

// authorizeSchool rejects callers whose token is scoped to another school.
func authorizeSchool(c *gin.Context, schoolID string) bool {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok || !claims.CanAccessSchool(schoolID) {
		_ = c.Error(service.ErrForbidden)
		return false
	}
	return true
}

func errMissing(field string) error {
	return fmt.Errorf("%s is required", field)
}

func errInvalid(field string) error {
	return errors.New(field + " is invalid")
}
