package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pageza/nutrition-engine/backend/internal/planner"
)

const planExportExpiry = 24 * time.Hour

// ObjectStore is the slice of config.S3Config the exporter needs.
type ObjectStore interface {
	PutObject(ctx context.Context, objectKey, contentType string, body []byte) error
	GeneratePresignedURL(ctx context.Context, objectKey string, expiration time.Duration) (string, error)
}

// S3PlanExporter writes plans as JSON objects and hands out presigned links.
type S3PlanExporter struct {
	store  ObjectStore
	expiry time.Duration
}

func NewS3PlanExporter(store ObjectStore) *S3PlanExporter {
	return &S3PlanExporter{store: store, expiry: planExportExpiry}
}

// PlanObjectKey is where a plan is stored in the bucket.
func PlanObjectKey(plan *planner.WeeklyPlan) string {
	return fmt.Sprintf("plans/%s/%s.json", plan.StartDate.Format("2006-01-02"), plan.ID)
}

func (e *S3PlanExporter) Export(ctx context.Context, plan *planner.WeeklyPlan) (string, error) {
	body, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal plan: %w", err)
	}
	key := PlanObjectKey(plan)
	if err := e.store.PutObject(ctx, key, "application/json", body); err != nil {
		return "", err
	}
	url, err := e.store.GeneratePresignedURL(ctx, key, e.expiry)
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", key, err)
	}
	return url, nil
}
