package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func observed(redact bool) (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return &Logger{SugaredLogger: zap.New(core).Sugar(), redact: redact, salt: "s"}, logs
}

func TestLogger_RedactsSecrets(t *testing.T) {
	log, logs := observed(true)
	log.Info("calling recommender", "api_key", "sk-123", "meal_type", "lunch")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "[REDACTED]", fields["api_key"])
	assert.Equal(t, "lunch", fields["meal_type"])
}

func TestLogger_HashesIdentifiers(t *testing.T) {
	log, logs := observed(true)
	log.With("student_id", "stu-42").Warn("missing bmi")

	fields := logs.All()[0].ContextMap()
	v, ok := fields["student_id"].(string)
	require.True(t, ok)
	assert.NotEqual(t, "stu-42", v)
	assert.Contains(t, v, "hash:")
}

func TestLogger_RedactionDisabled(t *testing.T) {
	log, logs := observed(false)
	log.Error("failed", "password", "hunter2")
	assert.Equal(t, "hunter2", logs.All()[0].ContextMap()["password"])
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() { Nop().Info("discarded", "k", "v") })
}
