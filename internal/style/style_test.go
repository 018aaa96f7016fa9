package style

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/worksite-map/internal/domain"
)

func claimedBy(id int64) *int64 { return &id }

func TestKey(t *testing.T) {
	assert.Equal(t, "open_unassigned_unclaimed", Key(domain.WorkType{WorkType: "debris", Status: domain.StatusOpenUnassigned}))
	assert.Equal(t, "closed_completed_claimed", Key(domain.WorkType{Status: domain.StatusClosedCompleted, ClaimedBy: claimedBy(3)}))
}

func TestEveryStatusHasColors(t *testing.T) {
	for _, s := range domain.Statuses {
		for _, claimed := range []*int64{nil, claimedBy(1)} {
			key := Key(domain.WorkType{Status: s, ClaimedBy: claimed})
			_, ok := DefaultColors[key]
			assert.True(t, ok, "missing colours for %s", key)
		}
	}
}

func TestResolver_ForWorkType(t *testing.T) {
	r := NewResolver()

	tmpl, ok := r.ForWorkType(domain.WorkType{WorkType: "trees", Status: domain.StatusClosedCompleted, ClaimedBy: claimedBy(1)}, true)
	require.True(t, ok)
	assert.Equal(t, Template{Shape: ShapeDiamond, FillColor: "#0fa355", StrokeColor: "#0b8948", MultiTypeBadge: true}, tmpl)
}

func TestResolver_UnknownWorkTypeShape(t *testing.T) {
	r := NewResolver()

	tmpl, ok := r.ForWorkType(domain.WorkType{WorkType: "goat_rescue", Status: domain.StatusOpenUnassigned}, false)
	require.True(t, ok)
	assert.Equal(t, ShapeUnknown, tmpl.Shape)
}

func TestResolver_MissingColors(t *testing.T) {
	r := NewResolver()

	_, ok := r.ForWorkType(domain.WorkType{WorkType: "debris", Status: "bogus"}, false)
	assert.False(t, ok)

	_, ok = r.Default("bogus_unclaimed", false)
	assert.False(t, ok)

	markup, ok := r.TemplateFor(domain.WorkType{WorkType: "debris"}, true)
	assert.False(t, ok)
	assert.Empty(t, markup)
}

func TestResolver_Default(t *testing.T) {
	r := NewResolver()

	tmpl, ok := r.Default("open_unassigned_unclaimed", false)
	require.True(t, ok)
	assert.Equal(t, ShapeCircle, tmpl.Shape)
	assert.Equal(t, "#d0021b", tmpl.FillColor)
}

func TestResolver_TemplateForIdempotent(t *testing.T) {
	r := NewResolver()
	wt := domain.WorkType{WorkType: "muck_out", Status: domain.StatusOpenAssigned, ClaimedBy: claimedBy(2)}

	first, ok := r.TemplateFor(wt, true)
	require.True(t, ok)
	second, _ := r.TemplateFor(wt, true)

	assert.Equal(t, first, second)
	assert.Equal(t, Key(wt), Key(wt))
}

func TestTemplate_SVG(t *testing.T) {
	plain := Template{Shape: ShapeSquare, FillColor: "#d0021b", StrokeColor: "#e30001"}.SVG()
	assert.Contains(t, plain, "<svg")
	assert.Contains(t, plain, `viewBox="-16 -16 32 32"`)
	assert.Contains(t, plain, "<rect")
	assert.Contains(t, plain, `fill="#d0021b"`)
	assert.Contains(t, plain, `stroke="#e30001"`)
	assert.NotContains(t, plain, "<line")

	badged := Template{Shape: ShapeSquare, FillColor: "#d0021b", StrokeColor: "#e30001", MultiTypeBadge: true}.SVG()
	assert.Equal(t, 2, strings.Count(badged, "<line"))
}

func TestTemplate_KeyDistinguishesBadge(t *testing.T) {
	a := Template{Shape: ShapeCircle, FillColor: "#000000", StrokeColor: "#111111"}
	b := a
	b.MultiTypeBadge = true

	assert.Equal(t, "circle-000000-111111", a.Key())
	assert.NotEqual(t, a.Key(), b.Key())
}

func TestTextureCache_Symbol(t *testing.T) {
	c := NewTextureCache(8)
	tmpl := Template{Shape: ShapeHexagon, FillColor: "#fab92e", StrokeColor: "#f79820"}

	s := c.Symbol(tmpl)
	assert.True(t, strings.HasPrefix(s, `<g id="hexagon-fab92e-f79820"`))
	assert.Contains(t, s, "<polygon")
	assert.Equal(t, s, c.Symbol(tmpl))
	assert.Equal(t, 1, c.Len())
}
