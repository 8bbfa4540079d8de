package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/nutrition-engine/backend/internal/model"
	"github.com/pageza/nutrition-engine/backend/internal/nutrition"
	"github.com/pageza/nutrition-engine/backend/internal/types"
)

const defaultSearchLimit = 20

// CatalogService stores school food catalogs.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// CreateItem validates and stores a catalog item.
func (s *CatalogService) CreateItem(ctx context.Context, req *types.CatalogItemRequest) (*model.FoodItem, error) {
	if strings.TrimSpace(req.SchoolID) == "" || strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: school_id and name are required", nutrition.ErrInvalidInput)
	}
	if err := req.Nutrients.Validate(); err != nil {
		return nil, err
	}
	if req.Cost < 0 {
		return nil, fmt.Errorf("%w: cost must not be negative", nutrition.ErrInvalidInput)
	}
	if req.AvailableFrom != nil && req.AvailableUntil != nil && req.AvailableUntil.Before(*req.AvailableFrom) {
		return nil, fmt.Errorf("%w: available_until precedes available_from", nutrition.ErrInvalidInput)
	}

	item := model.FoodItemFromDomain(req.SchoolID, nutrition.FoodItem{
		Name:      strings.TrimSpace(req.Name),
		Category:  strings.ToLower(strings.TrimSpace(req.Category)),
		Nutrients: req.Nutrients,
		Cost:           req.Cost,
		Allergens:      req.Allergens,
		Tags:           req.Tags,
		AvailableFrom:  req.AvailableFrom,
		AvailableUntil: req.AvailableUntil,
	})

	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, fmt.Errorf("failed to create food item: %w", err)
	}
	return &item, nil
}

// GetItem loads one catalog item by ID.
func (s *CatalogService) GetItem(ctx context.Context, id string) (*model.FoodItem, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: item id %q", ErrNotFound, id)
	}
	var item model.FoodItem
	if err := s.db.WithContext(ctx).Omit("embedding").First(&item, "id = ?", uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: item %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get food item: %w", err)
	}
	return &item, nil
}

// ListAvailableItems returns the school's items whose availability window
// overlaps [from, to), in catalog (insertion) order. Items keep their window
// so callers can check individual days.
func (s *CatalogService) ListAvailableItems(ctx context.Context, schoolID string, from, to time.Time) ([]nutrition.FoodItem, error) {
	var rows []model.FoodItem
	err := s.db.WithContext(ctx).
		Omit("embedding").
		Where("school_id = ?", schoolID).
		Where("available_from IS NULL OR available_from < ?", to).
		Where("available_until IS NULL OR available_until >= ?", from).
		Order("created_at ASC").Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list food items: %w", err)
	}

	items := make([]nutrition.FoodItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, r.ToDomain())
	}
	return items, nil
}

// SearchItems ranks the school's items by embedding distance to query on
// postgres and falls back to keyword matching elsewhere.
func (s *CatalogService) SearchItems(ctx context.Context, schoolID, query string, limit int) ([]model.FoodItem, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	query = strings.TrimSpace(query)

	q := s.db.WithContext(ctx).Omit("embedding").Where("school_id = ?", schoolID).Limit(limit)
	switch {
	case query == "":
		q = q.Order("name ASC")
	case s.db.Dialector.Name() == "postgres":
		q = q.Clauses(clause.OrderBy{
			Expression: clause.Expr{SQL: "embedding <-> ?", Vars: []interface{}{model.EmbedText(query)}},
		})
	default:
		like := "%" + strings.ToLower(query) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(category) LIKE ? OR LOWER(tags) LIKE ?", like, like, like).
			Order("name ASC")
	}

	var items []model.FoodItem
	if err := q.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to search food items: %w", err)
	}
	return items, nil
}
