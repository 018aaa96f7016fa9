package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"

	"github.com/couchcryptid/worksite-map/internal/geo"
)

func orgID(id int64) *int64 { return &id }

func TestActiveWorkType(t *testing.T) {
	muck := WorkType{WorkType: "muck_out", Status: StatusOpenUnassigned}
	trees := WorkType{WorkType: "trees", Status: StatusOpenAssigned, ClaimedBy: orgID(7)}
	tarp := WorkType{WorkType: "tarp", Status: StatusClosedCompleted, ClaimedBy: orgID(9)}
	types := []WorkType{muck, trees, tarp}
	viewer := &Organization{ID: 9, Name: "Helping Hands"}

	tests := []struct {
		name    string
		types   []WorkType
		filters Filters
		org     *Organization
		want    WorkType
	}{
		{"no work types", nil, Filters{}, nil, WorkType{}},
		{"first when nothing else applies", types, Filters{}, nil, muck},
		{"claimed by viewer wins", types, Filters{}, viewer, tarp},
		{"filter narrows candidates", types, Filters{WorkTypes: map[string]bool{"trees": true}}, viewer, trees},
		{"status filter", types, Filters{Statuses: map[Status]bool{StatusOpenAssigned: true}}, nil, trees},
		{"claimed only", types, Filters{ClaimedOnly: true}, nil, trees},
		{"filter with no match falls back to all", types, Filters{WorkTypes: map[string]bool{"ash": true}}, viewer, tarp},
		{"viewer claim outside filter ignored", types, Filters{WorkTypes: map[string]bool{"muck_out": true, "trees": true}}, viewer, muck},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ActiveWorkType(tt.types, tt.filters, tt.org))
		})
	}
}

func TestDefaultResolver(t *testing.T) {
	wt := WorkType{WorkType: "debris", Status: StatusOpenUnassigned}
	assert.Equal(t, wt, DefaultResolver.ActiveWorkType([]WorkType{wt}, Filters{}, nil))
}

func TestWorksiteLegend(t *testing.T) {
	assert.Equal(t, "Katy", Worksite{City: "Katy", Label: "x"}.Legend())
	assert.Equal(t, "x", Worksite{Label: "x"}.Legend())
	assert.Empty(t, Worksite{}.Legend())
}

func TestWorksiteMultiType(t *testing.T) {
	assert.False(t, Worksite{WorkTypes: []WorkType{{}}}.MultiType())
	assert.True(t, Worksite{WorkTypes: []WorkType{{}, {}}}.MultiType())
}

func TestMapEvents(t *testing.T) {
	now := time.Date(2024, time.April, 26, 15, 10, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(now))
	t.Cleanup(func() { SetClock(nil) })

	sel := NewMarkerSelected(Worksite{ID: 42})
	assert.Equal(t, EventMarkerSelected, sel.Type)
	assert.Equal(t, now, sel.OccurredAt)
	assert.Equal(t, "42", sel.Key())

	moved := NewMapMoved(geo.ViewPort{LatMin: 1, LonMin: 2, LatMax: 3, LonMax: 4})
	assert.Equal(t, EventMapMoved, moved.Type)
	assert.Equal(t, "viewport", moved.Key())
	assert.Equal(t, 3.0, moved.ViewPort.LatMax)
}
