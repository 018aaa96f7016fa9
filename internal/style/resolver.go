package style

import "github.com/couchcryptid/worksite-map/internal/domain"

// Key composes the colour lookup key for a work type: "{status}_{claimed|unclaimed}".
func Key(wt domain.WorkType) string {
	claim := "unclaimed"
	if wt.Claimed() {
		claim = "claimed"
	}
	return string(wt.Status) + "_" + claim
}

// Resolver looks up shapes by work type name and colours by style key.
type Resolver struct {
	Colors map[string]Colors
	Shapes map[string]Shape
}

// NewResolver returns a resolver over the built-in tables.
func NewResolver() *Resolver {
	return &Resolver{Colors: DefaultColors, Shapes: DefaultShapes}
}

// ForWorkType builds the type-specific template. Work types without a shape
// use ShapeUnknown. It reports false when the style key has no colours, in
// which case the caller keeps whatever texture it already has.
func (r *Resolver) ForWorkType(wt domain.WorkType, multi bool) (Template, bool) {
	c, ok := r.Colors[Key(wt)]
	if !ok {
		return Template{}, false
	}
	shape, ok := r.Shapes[wt.WorkType]
	if !ok {
		shape = ShapeUnknown
	}
	return Template{
		Shape:          shape,
		FillColor:      c.Fill,
		StrokeColor:    c.Stroke,
		MultiTypeBadge: multi,
	}, true
}

// Default builds the plain circle template for a style key.
func (r *Resolver) Default(key string, multi bool) (Template, bool) {
	c, ok := r.Colors[key]
	if !ok {
		return Template{}, false
	}
	return Template{
		Shape:          ShapeCircle,
		FillColor:      c.Fill,
		StrokeColor:    c.Stroke,
		MultiTypeBadge: multi,
	}, true
}

// TemplateFor is ForWorkType serialized to SVG markup.
func (r *Resolver) TemplateFor(wt domain.WorkType, multi bool) (string, bool) {
	t, ok := r.ForWorkType(wt, multi)
	if !ok {
		return "", false
	}
	return t.SVG(), true
}
