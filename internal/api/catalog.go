package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/nutrition-engine/backend/internal/middleware"
	"github.com/pageza/nutrition-engine/backend/internal/service"
	"github.com/pageza/nutrition-engine/backend/internal/types"
)

type CatalogHandler struct {
	catalog service.ICatalogService
	auth    middleware.TokenValidator
}

func NewCatalogHandler(catalog service.ICatalogService, auth middleware.TokenValidator) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, auth: auth}
}

func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	catalog := router.Group("/catalog", middleware.AuthMiddleware(h.auth))
	{
		catalog.GET("/search", h.SearchItems)
		catalog.POST("/items", h.CreateItem)
		catalog.GET("/items/:id", h.GetItem)
	}
}

func (h *CatalogHandler) SearchItems(c *gin.Context) {
	schoolID := strings.TrimSpace(c.Query("school_id"))
	if schoolID == "" {
		_ = c.Error(middleware.NewHTTPError(http.StatusBadRequest, "invalid_request", errMissing("school_id")))
		return
	}
	if !authorizeSchool(c, schoolID) {
		return
	}
	limit := 0
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			_ = c.Error(middleware.NewHTTPError(http.StatusBadRequest, "invalid_request", errInvalid("limit")))
			return
		}
		limit = n
	}

	items, err := h.catalog.SearchItems(c.Request.Context(), schoolID, c.Query("q"), limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *CatalogHandler) CreateItem(c *gin.Context) {
	var req types.CatalogItemRequest
	if !bindJSON(c, &req) {
		return
	}
	if !authorizeSchool(c, req.SchoolID) {
		return
	}
	item, err := h.catalog.CreateItem(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"item": item})
}

func (h *CatalogHandler) GetItem(c *gin.Context) {
	item, err := h.catalog.GetItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	if !authorizeSchool(c, item.SchoolID) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item})
}
