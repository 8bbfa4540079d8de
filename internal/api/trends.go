package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pageza/nutrition-engine/backend/internal/middleware"
	"github.com/pageza/nutrition-engine/backend/internal/service"
	"github.com/pageza/nutrition-engine/backend/internal/types"
)

// defaultTrendWindow is used when the query omits from.
const defaultTrendWindow = 30

type TrendHandler struct {
	svc  service.INutritionService
	auth middleware.TokenValidator
	now  func() time.Time
}

func NewTrendHandler(svc service.INutritionService, auth middleware.TokenValidator) *TrendHandler {
	return &TrendHandler{svc: svc, auth: auth, now: time.Now}
}

func (h *TrendHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/analytics/trends", middleware.AuthMiddleware(h.auth), h.GetTrends)
}

// GetTrends reports on school_id between the from and to dates, both inclusive.
func (h *TrendHandler) GetTrends(c *gin.Context) {
	q, err := h.parseQuery(c)
	if err != nil {
		_ = c.Error(middleware.NewHTTPError(http.StatusBadRequest, "invalid_request", err))
		return
	}
	if !authorizeSchool(c, q.SchoolID) {
		return
	}
	report, err := h.svc.AnalyzeTrends(c.Request.Context(), q)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *TrendHandler) parseQuery(c *gin.Context) (types.TrendQuery, error) {
	q := types.TrendQuery{SchoolID: strings.TrimSpace(c.Query("school_id"))}
	if q.SchoolID == "" {
		return q, errors.New("school_id is required")
	}

	to := h.now().UTC().Truncate(24 * time.Hour)
	if s := c.Query("to"); s != "" {
		t, err := time.Parse(types.DateLayout, s)
		if err != nil {
			return q, errors.New("to must be YYYY-MM-DD")
		}
		to = t
	}
	from := to.AddDate(0, 0, -(defaultTrendWindow - 1))
	if s := c.Query("from"); s != "" {
		t, err := time.Parse(types.DateLayout, s)
		if err != nil {
			return q, errors.New("from must be YYYY-MM-DD")
		}
		from = t
	}
	if from.After(to) {
		return q, errors.New("from must not be after to")
	}
	q.From, q.To = from, to.AddDate(0, 0, 1)

	for _, id := range strings.Split(c.Query("student_ids"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			q.StudentIDs = append(q.StudentIDs, id)
		}
	}
	return q, nil
}
