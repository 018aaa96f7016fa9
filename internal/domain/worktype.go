package domain

// Filters narrow which work types the viewer cares about. Empty sets match everything.
type Filters struct {
	WorkTypes   map[string]bool `json:"work_types,omitempty"`
	Statuses    map[Status]bool `json:"statuses,omitempty"`
	ClaimedOnly bool            `json:"claimed_only,omitempty"`
}

// Match reports whether a work type passes the filters.
func (f Filters) Match(wt WorkType) bool {
	if len(f.WorkTypes) > 0 && !f.WorkTypes[wt.WorkType] {
		return false
	}
	if len(f.Statuses) > 0 && !f.Statuses[wt.Status] {
		return false
	}
	if f.ClaimedOnly && !wt.Claimed() {
		return false
	}
	return true
}

// RenderContext is the immutable viewer state handed to every draw.
type RenderContext struct {
	Filters      Filters       `json:"filters"`
	Organization *Organization `json:"organization,omitempty"`
}

// WorkTypeResolver picks the single work type a worksite is drawn with.
type WorkTypeResolver interface {
	ActiveWorkType(types []WorkType, filters Filters, org *Organization) WorkType
}

// ResolverFunc adapts a function to WorkTypeResolver.
type ResolverFunc func(types []WorkType, filters Filters, org *Organization) WorkType

func (f ResolverFunc) ActiveWorkType(types []WorkType, filters Filters, org *Organization) WorkType {
	return f(types, filters, org)
}

// DefaultResolver applies ActiveWorkType.
var DefaultResolver WorkTypeResolver = ResolverFunc(ActiveWorkType)

// ActiveWorkType chooses the work type to draw for a site.
//
// Candidates are the types passing the filters, or all types when none pass.
// Among the candidates the first one claimed by the viewing organization wins;
// otherwise the first candidate. A site without work types yields the zero value.
func ActiveWorkType(types []WorkType, filters Filters, org *Organization) WorkType {
	if len(types) == 0 {
		return WorkType{}
	}

	candidates := make([]WorkType, 0, len(types))
	for _, wt := range types {
		if filters.Match(wt) {
			candidates = append(candidates, wt)
		}
	}
	if len(candidates) == 0 {
		candidates = types
	}

	if org != nil {
		for _, wt := range candidates {
			if wt.ClaimedByOrg(org.ID) {
				return wt
			}
		}
	}
	return candidates[0]
}
