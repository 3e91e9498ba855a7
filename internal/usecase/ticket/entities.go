package ticket

import "time"

// SubmitInput has no status field: a new request is always pending.
type SubmitInput struct {
	Device   string
	Quantity int
	Purpose  *string
	Duration *string
	NeededBy *time.Time
}

// Observer is told about ledger activity, e.g. for metrics.
type Observer interface {
	RequestSubmitted()
	RequestTransitioned(status string)
}

type nopObserver struct{}

func (nopObserver) RequestSubmitted()          {}
func (nopObserver) RequestTransitioned(string) {}
