package lifecycle

import "github.com/dalemusser/campusvoice/internal/domain/models"

// transitions lists, for each status, the statuses a complaint may move to.
// All twelve edges between the four statuses are open today; closing one
// (say resolved -> pending) is a one-line change here.
var transitions = map[string][]string{
	models.StatusPending:    {models.StatusInProgress, models.StatusResolved, models.StatusRejected},
	models.StatusInProgress: {models.StatusPending, models.StatusResolved, models.StatusRejected},
	models.StatusResolved:   {models.StatusPending, models.StatusInProgress, models.StatusRejected},
	models.StatusRejected:   {models.StatusPending, models.StatusInProgress, models.StatusResolved},
}

// CanTransition reports whether a complaint in status from may be set to to.
// Writing the current status again is always allowed and is a no-op for
// notifications.
func CanTransition(from, to string) bool {
	if !models.IsValidStatus(from) || !models.IsValidStatus(to) {
		return false
	}
	if from == to {
		return true
	}
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// sourcesOf returns every status from which to is reachable, including to
// itself. The store uses it as the condition on the status write.
func sourcesOf(to string) []string {
	var out []string
	for _, from := range models.Statuses {
		if CanTransition(from, to) {
			out = append(out, from)
		}
	}
	return out
}
