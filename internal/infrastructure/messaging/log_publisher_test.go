package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/mrops-br/marketplace-ops-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogPublisher_Publish(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	err := NewLogPublisher(logger).Publish(context.Background(),
		domain.NewEvent(domain.EventWarrantyRegistered, "warranty", "w-1", nil))
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Domain event", entry["msg"])
	assert.Equal(t, domain.EventWarrantyRegistered, entry["event_type"])
	assert.Equal(t, "w-1", entry["entity_id"])
}
