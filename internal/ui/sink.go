package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/artscroll/internal/catalog"
	"github.com/abelbrown/artscroll/internal/feed"
)

// sender is satisfied by *tea.Program.
type sender interface {
	Send(msg tea.Msg)
}

// ProgramSink forwards loader callbacks into the Bubble Tea event loop, so
// App state is only mutated in Update.
type ProgramSink struct {
	p sender
}

// NewProgramSink wraps a program (or any sender).
func NewProgramSink(p sender) *ProgramSink {
	return &ProgramSink{p: p}
}

func (s *ProgramSink) Append(item catalog.Item) {
	s.p.Send(ItemAppended{Item: item})
}

func (s *ProgramSink) SetLoadingIndicator(on bool) {
	s.p.Send(LoadingChanged{On: on})
}

func (s *ProgramSink) Notify(msg string, sev feed.Severity) {
	s.p.Send(Notice{Text: msg, Severity: sev})
}

var _ feed.Sink = (*ProgramSink)(nil)
