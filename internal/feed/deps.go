package feed

import (
	"context"
	"time"

	"github.com/abelbrown/artscroll/internal/catalog"
)

// Catalog is the subset of catalog.Client the loader needs.
type Catalog interface {
	FetchIDPool(ctx context.Context) ([]catalog.ItemID, error)
	FetchItem(ctx context.Context, id catalog.ItemID) *catalog.Item
}

// Severity classifies a user-facing notice.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "info"
}

// User-facing notices.
const (
	MsgNoArtworks      = "No artworks available. Please try again later."
	MsgPoolUnavailable = "Could not load artworks. Please try again later."
)

// Sink receives accepted items and loading state. Calls come from the
// goroutine running LoadMore (or the background refill, for Notify).
type Sink interface {
	Append(item catalog.Item)
	SetLoadingIndicator(on bool)
	Notify(msg string, sev Severity)
}

// Recorder persists accepted items. Optional.
type Recorder interface {
	MarkShown(ctx context.Context, item catalog.Item) error
}

// Pauser yields between attempts.
type Pauser interface {
	Pause(ctx context.Context)
}

// SleepPauser sleeps for D or until ctx is done.
type SleepPauser struct {
	D time.Duration
}

func (p SleepPauser) Pause(ctx context.Context) {
	if p.D <= 0 {
		return
	}
	t := time.NewTimer(p.D)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// NoPause never waits.
type NoPause struct{}

func (NoPause) Pause(context.Context) {}
