package workflow

import (
	"fmt"
	"slices"
	"strings"

	"farmlyf_back_end/internal/models"
)

var refundSteps = []models.ReturnStatus{
	models.ReturnPending,
	models.ReturnApproved,
	models.ReturnPickedUp,
	models.ReturnQualityCheck,
	models.ReturnRefunded,
}

var replaceSteps = []models.ReturnStatus{
	models.ReturnPending,
	models.ReturnApproved,
	models.ReturnPickedUp,
	models.ReturnQualityCheck,
	models.ReturnDispatched,
	models.ReturnDelivered,
}

var refundTransitions = map[models.ReturnStatus][]models.ReturnStatus{
	models.ReturnPending:      {models.ReturnApproved, models.ReturnRejected},
	models.ReturnApproved:     {models.ReturnPickedUp, models.ReturnRejected},
	models.ReturnPickedUp:     {models.ReturnQualityCheck, models.ReturnRefunded, models.ReturnRejected},
	models.ReturnQualityCheck: {models.ReturnRefunded, models.ReturnRejected},
}

var replaceTransitions = map[models.ReturnStatus][]models.ReturnStatus{
	models.ReturnPending:      {models.ReturnApproved, models.ReturnRejected},
	models.ReturnApproved:     {models.ReturnPickedUp, models.ReturnRejected},
	models.ReturnPickedUp:     {models.ReturnQualityCheck, models.ReturnDispatched, models.ReturnRejected},
	models.ReturnQualityCheck: {models.ReturnDispatched, models.ReturnRejected},
	models.ReturnDispatched:   {models.ReturnDelivered},
}

var returnStatusByKey = map[string]models.ReturnStatus{
	"pending":       models.ReturnPending,
	"approved":      models.ReturnApproved,
	"picked up":     models.ReturnPickedUp,
	"picked_up":     models.ReturnPickedUp,
	"pickedup":      models.ReturnPickedUp,
	"quality check": models.ReturnQualityCheck,
	"quality_check": models.ReturnQualityCheck,
	"qualitycheck":  models.ReturnQualityCheck,
	"dispatched":    models.ReturnDispatched,
	"refunded":      models.ReturnRefunded,
	"delivered":     models.ReturnDelivered,
	"rejected":      models.ReturnRejected,
}

// ParseReturnType accepts "refund" and "replace" in any case.
func ParseReturnType(s string) (models.ReturnType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(models.ReturnRefund):
		return models.ReturnRefund, nil
	case string(models.ReturnReplace), "replacement", "exchange":
		return models.ReturnReplace, nil
	}
	return "", fmt.Errorf("%w: type %q", ErrUnknownStatus, s)
}

// ParseReturnStatus normalizes a status coming from a client. "Completed"
// resolves to the final step of the given request type.
func ParseReturnStatus(t models.ReturnType, s string) (models.ReturnStatus, error) {
	key := strings.ToLower(strings.Join(strings.Fields(s), " "))
	if key == "completed" {
		steps := Steps(t)
		if len(steps) == 0 {
			return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
		}
		return steps[len(steps)-1], nil
	}
	st, ok := returnStatusByKey[key]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
	return st, nil
}

// Steps returns the ordered happy path shown to customers for a request type.
func Steps(t models.ReturnType) []models.ReturnStatus {
	switch t {
	case models.ReturnRefund:
		return slices.Clone(refundSteps)
	case models.ReturnReplace:
		return slices.Clone(replaceSteps)
	}
	return nil
}

// StepIndex is the position of status in Steps(t), or -1.
func StepIndex(t models.ReturnType, status models.ReturnStatus) int {
	return slices.Index(Steps(t), status)
}

func transitionsFor(t models.ReturnType) map[models.ReturnStatus][]models.ReturnStatus {
	switch t {
	case models.ReturnRefund:
		return refundTransitions
	case models.ReturnReplace:
		return replaceTransitions
	}
	return nil
}

// IsTerminal reports whether no further transition is possible.
func IsTerminal(status models.ReturnStatus) bool {
	switch status {
	case models.ReturnRejected, models.ReturnRefunded, models.ReturnDelivered:
		return true
	}
	return false
}

// NextStatuses lists the statuses an admin may move the request to.
func NextStatuses(t models.ReturnType, from models.ReturnStatus) []models.ReturnStatus {
	return slices.Clone(transitionsFor(t)[from])
}

// CanTransition reports whether from → to is a legal edge for the type.
// Re-applying the current status is allowed and treated as a no-op.
func CanTransition(t models.ReturnType, from, to models.ReturnStatus) bool {
	if from == to {
		return StepIndex(t, from) >= 0 || from == models.ReturnRejected
	}
	return slices.Contains(transitionsFor(t)[from], to)
}

// ApplyTransition validates the move and returns whether anything changed.
func ApplyTransition(t models.ReturnType, from, to models.ReturnStatus) (bool, error) {
	if StepIndex(t, to) < 0 && to != models.ReturnRejected {
		return false, fmt.Errorf("%w: %s is not a %s status", ErrInvalidTransition, to, t)
	}
	if !CanTransition(t, from, to) {
		return false, fmt.Errorf("%w: %s → %s", ErrInvalidTransition, from, to)
	}
	return from != to, nil
}

// TimelineStep is one row of the customer-facing progress tracker.
type TimelineStep struct {
	Status  models.ReturnStatus `json:"status"`
	Done    bool                `json:"done"`
	Current bool                `json:"current"`
}

// Timeline renders the progress of a request against its fixed step list.
// A rejected request keeps the steps it reached and ends with Rejected.
func Timeline(t models.ReturnType, status models.ReturnStatus, history []models.StatusChange) []TimelineStep {
	steps := Steps(t)
	if status != models.ReturnRejected {
		idx := slices.Index(steps, status)
		out := make([]TimelineStep, 0, len(steps))
		for i, s := range steps {
			out = append(out, TimelineStep{Status: s, Done: idx >= 0 && i <= idx, Current: i == idx})
		}
		return out
	}

	reached := 0
	for _, h := range history {
		if i := slices.Index(steps, h.Status); i > reached {
			reached = i
		}
	}
	out := make([]TimelineStep, 0, reached+2)
	for i := 0; i <= reached && i < len(steps); i++ {
		out = append(out, TimelineStep{Status: steps[i], Done: true})
	}
	return append(out, TimelineStep{Status: models.ReturnRejected, Done: true, Current: true})
}
