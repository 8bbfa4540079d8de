package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/nutrition-engine/backend/internal/planner"
)

type fakeObjectStore struct {
	objects map[string][]byte
	putErr  error
	expiry  time.Duration
}

func (f *fakeObjectStore) PutObject(_ context.Context, key, contentType string, body []byte) error {
	if f.putErr != nil {
		return f.putErr
	}
	if f.objects == nil {
		f.objects = map[string][]byte{}
	}
	f.objects[key] = body
	return nil
}

func (f *fakeObjectStore) GeneratePresignedURL(_ context.Context, key string, exp time.Duration) (string, error) {
	f.expiry = exp
	return "https://bucket.example/" + key + "?sig=1", nil
}

func TestS3PlanExporter_Export(t *testing.T) {
	store := &fakeObjectStore{}
	plan := &planner.WeeklyPlan{ID: "plan-1", StartDate: monday, Insights: []string{"ok"}}

	url, err := NewS3PlanExporter(store).Export(context.Background(), plan)
	require.NoError(t, err)
	assert.Equal(t, "https://bucket.example/plans/2024-03-04/plan-1.json?sig=1", url)
	assert.Equal(t, 24*time.Hour, store.expiry)

	var stored planner.WeeklyPlan
	require.NoError(t, json.Unmarshal(store.objects["plans/2024-03-04/plan-1.json"], &stored))
	assert.Equal(t, "plan-1", stored.ID)
}

func TestS3PlanExporter_UploadFailure(t *testing.T) {
	store := &fakeObjectStore{putErr: errors.New("denied")}
	_, err := NewS3PlanExporter(store).Export(context.Background(), &planner.WeeklyPlan{ID: "p", StartDate: monday})
	assert.ErrorContains(t, err, "denied")
}
