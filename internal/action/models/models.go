package models

import (
	"strings"
	"time"

	"govdash/internal/region"
	"govdash/pkg/domain"
	dErrors "govdash/pkg/domain-errors"
)

// Status tracks a governance action through review.
type Status string

const (
	StatusInitiated   Status = "Initiated"
	StatusUnderReview Status = "Under Review"
	StatusPlanned     Status = "Planned"
)

// ManualTrigger is the trigger reason recorded when a region has no alerts.
const ManualTrigger = "Manual Intervention"

var statusOrder = map[Status]int{
	StatusInitiated:   0,
	StatusUnderReview: 1,
	StatusPlanned:     2,
}

// ParseStatus validates a status from external input.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.TrimSpace(s))
	if _, ok := statusOrder[st]; !ok {
		return "", dErrors.New(dErrors.CodeValidation, "unknown action status: "+s)
	}
	return st, nil
}

// CanAdvanceTo reports whether moving from s to next is a forward step.
func (s Status) CanAdvanceTo(next Status) bool {
	from, ok1 := statusOrder[s]
	to, ok2 := statusOrder[next]
	return ok1 && ok2 && to > from
}

// GovernanceAction is a policymaker's recorded response to a region's
// recommendation. At most one is kept per region id.
type GovernanceAction struct {
	ID                  string      `json:"id"`
	RegionID            string      `json:"regionId"`
	RegionName          string      `json:"regionName"`
	RecommendationKey   string      `json:"recommendationKey"`
	TriggerReason       string      `json:"triggerReason"`
	Timestamp           time.Time   `json:"timestamp"`
	Status              Status      `json:"status"`
	InitiatedByUserID   string      `json:"initiatedByUserId"`
	InitiatedByUserRole domain.Role `json:"initiatedByUserRole"`
}

// InitiateRequest asks for an action on a resolved region.
type InitiateRequest struct {
	Region    region.Data
	Initiator domain.Principal
}

// TriggerReason joins the region's alert keys, or reports a manual trigger.
func TriggerReason(alerts []string) string {
	if len(alerts) == 0 {
		return ManualTrigger
	}
	return strings.Join(alerts, ", ")
}

// UpdateStatusRequest is the body of a status change.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// Validate implements httputil.Validatable.
func (r *UpdateStatusRequest) Validate() error {
	_, err := ParseStatus(r.Status)
	return err
}
