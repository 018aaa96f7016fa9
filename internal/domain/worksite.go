package domain

import "time"

// Location is a WGS-84 coordinate pair.
type Location struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// Status is a work type's lifecycle state, e.g. "open_unassigned".
type Status string

const (
	StatusOpenUnassigned         Status = "open_unassigned"
	StatusOpenAssigned           Status = "open_assigned"
	StatusOpenPartiallyCompleted Status = "open_partially-completed"
	StatusOpenNeedsFollowUp      Status = "open_needs-follow-up"
	StatusOpenUnresponsive       Status = "open_unresponsive"
	StatusClosedCompleted        Status = "closed_completed"
	StatusClosedIncomplete       Status = "closed_incomplete"
	StatusClosedOutOfScope       Status = "closed_out-of-scope"
	StatusClosedDoneByOthers     Status = "closed_done-by-others"
	StatusClosedNoHelpWanted     Status = "closed_no-help-wanted"
	StatusClosedRejected         Status = "closed_rejected"
	StatusClosedDuplicate        Status = "closed_duplicate"
)

// Statuses lists every known status in display order.
var Statuses = []Status{
	StatusOpenUnassigned,
	StatusOpenAssigned,
	StatusOpenPartiallyCompleted,
	StatusOpenNeedsFollowUp,
	StatusOpenUnresponsive,
	StatusClosedCompleted,
	StatusClosedIncomplete,
	StatusClosedOutOfScope,
	StatusClosedDoneByOthers,
	StatusClosedNoHelpWanted,
	StatusClosedRejected,
	StatusClosedDuplicate,
}

// WorkType is one category of work requested at a worksite.
type WorkType struct {
	WorkType  string `json:"work_type"`
	Status    Status `json:"status"`
	ClaimedBy *int64 `json:"claimed_by,omitempty"` // claiming organization ID
}

// Claimed reports whether any organization has claimed the work.
func (w WorkType) Claimed() bool {
	return w.ClaimedBy != nil
}

// ClaimedByOrg reports whether the given organization holds the claim.
func (w WorkType) ClaimedByOrg(orgID int64) bool {
	return w.ClaimedBy != nil && *w.ClaimedBy == orgID
}

// Worksite is an immutable marker snapshot supplied by the data source.
type Worksite struct {
	ID        int64      `json:"id"`
	Location  Location   `json:"location"`
	City      string     `json:"city,omitempty"`
	Label     string     `json:"label,omitempty"`
	WorkTypes []WorkType `json:"work_types"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Legend is the text shown next to the marker: the city, falling back to the label.
func (w Worksite) Legend() string {
	if w.City != "" {
		return w.City
	}
	return w.Label
}

// MultiType reports whether the site carries more than one work type.
func (w Worksite) MultiType() bool {
	return len(w.WorkTypes) > 1
}

// Organization is the viewer's organization.
type Organization struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
