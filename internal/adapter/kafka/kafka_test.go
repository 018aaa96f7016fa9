package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/worksite-map/internal/domain"
	"github.com/couchcryptid/worksite-map/internal/geo"
)

func TestSerializeToMessage_MarkerSelected(t *testing.T) {
	now := time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC)
	site := domain.Worksite{
		ID:       42,
		Location: domain.Location{Lat: 29.7604, Lon: -95.3698},
		City:     "Houston",
		WorkTypes: []domain.WorkType{
			{WorkType: "muck_out", Status: domain.StatusOpenUnassigned},
		},
	}
	event := domain.MapEvent{Type: domain.EventMarkerSelected, Worksite: &site, OccurredAt: now}

	msg, err := serializeToMessage(event)
	require.NoError(t, err)

	assert.Equal(t, []byte("42"), msg.Key)
	assert.Contains(t, string(msg.Value), `"type":"marker_selected"`)
	assert.Len(t, msg.Headers, 2)
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, []byte("marker_selected"), msg.Headers[0].Value)
	assert.Equal(t, "occurred_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)

	var decoded domain.MapEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	if diff := cmp.Diff(event, decoded); diff != "" {
		t.Errorf("event mismatch (-want +got):\n%s", diff)
	}
}

func TestSerializeToMessage_MapMoved(t *testing.T) {
	vp := geo.ViewPort{LatMin: 29.7, LonMin: -95.4, LatMax: 29.8, LonMax: -95.3}
	event := domain.MapEvent{Type: domain.EventMapMoved, ViewPort: &vp, OccurredAt: time.Unix(0, 0).UTC()}

	msg, err := serializeToMessage(event)
	require.NoError(t, err)

	assert.Equal(t, []byte("viewport"), msg.Key)
	assert.JSONEq(t,
		`{"type":"map_moved","viewport":{"latmin":29.7,"lonmin":-95.4,"latmax":29.8,"lonmax":-95.3},"occurred_at":"1970-01-01T00:00:00Z"}`,
		string(msg.Value))
}
