package feed

import "time"

// ExitReason records why a load session stopped drawing.
type ExitReason string

const (
	ExitTarget    ExitReason = "target"
	ExitPoolEmpty ExitReason = "pool_empty"
	ExitBudget    ExitReason = "budget"
	ExitDeadline  ExitReason = "deadline"
	ExitCanceled  ExitReason = "canceled"
)

// Session is the bookkeeping for one LoadMore call.
type Session struct {
	ID       string
	Target   int
	Accepted int
	Attempts int
	Budget   int
	Start    time.Time
	Deadline time.Time
}

// Result summarizes a finished session.
type Result struct {
	Session
	Exit            ExitReason
	Elapsed         time.Duration
	RefillScheduled bool
}
