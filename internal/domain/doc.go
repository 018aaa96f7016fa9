// Package domain models disaster-response worksites as they are shown on the
// incident map.
//
// # Worksites
//
// A worksite is one property that asked for help. It is supplied by the data
// source as an immutable snapshot: identifier, location, city or free-form
// label, the ordered list of work types requested at the site and the time the
// record was last updated. The map never mutates a worksite; it derives a
// sprite from it.
//
// # Work types
//
// Each work type names a category of remediation work ("muck_out", "trees",
// "tarp", ...) and carries a status and an optional claiming organization.
//
// Status values follow the "<phase>_<detail>" convention:
//
//	open_unassigned          nobody has picked the work up
//	open_assigned            claimed and scheduled
//	open_partially-completed work has started
//	open_needs-follow-up     a volunteer has to go back
//	open_unresponsive        the survivor cannot be reached
//	closed_completed         finished
//	closed_incomplete        closed without finishing
//	closed_out-of-scope      not something volunteers can do
//	closed_done-by-others    finished by someone else
//	closed_no-help-wanted    the survivor declined
//	closed_rejected          rejected by the claiming organization
//	closed_duplicate         merged into another worksite
//
// # Active work type
//
// A site with several work types is drawn with exactly one of them. The choice
// depends on the filters the viewer has applied and on which organization is
// looking at the map; see [ActiveWorkType].
//
// # Render context
//
// Filters and the viewing organization travel together as an immutable
// [RenderContext] value handed to every draw. Callers replace the value rather
// than mutating it.
package domain
