// Package ui provides the Bubble Tea TUI for artscroll.
package ui

import (
	"github.com/abelbrown/artscroll/internal/catalog"
	"github.com/abelbrown/artscroll/internal/feed"
)

// PoolReady is sent when the identifier pool has been loaded (or failed to).
type PoolReady struct {
	Err error
}

// ItemAppended is sent for each artwork accepted by the loader.
type ItemAppended struct {
	Item catalog.Item
}

// LoadingChanged is sent when a load session starts or ends.
type LoadingChanged struct {
	On bool
}

// Notice is a user-facing message from the loader.
type Notice struct {
	Text     string
	Severity feed.Severity
}

// LoadFinished is sent when a LoadMore call returns. OK is false for no-ops.
type LoadFinished struct {
	Result feed.Result
	OK     bool
}

// noticeExpired clears the notice with the matching sequence number.
type noticeExpired struct {
	seq int
}
