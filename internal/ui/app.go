package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/artscroll/internal/catalog"
	"github.com/abelbrown/artscroll/internal/feed"
	"github.com/abelbrown/artscroll/internal/otel"
)

// noticeTTL is how long a notice stays in the notice bar.
const noticeTTL = 5 * time.Second

// ObsConfig wires observability into the App. Both fields are optional.
type ObsConfig struct {
	Logger *otel.Logger
	Ring   *otel.RingBuffer
}

// AppConfig holds the commands and collaborators the App is built from.
// IMPORTANT: App does NOT hold the loader. It talks to it through commands
// and receives items via messages.
type AppConfig struct {
	// InitFeed loads the identifier pool; its command returns PoolReady.
	InitFeed func() tea.Cmd
	// LoadMore runs one load session; its command returns LoadFinished.
	LoadMore func() tea.Cmd
	// PoolSize reports undrawn candidates for the status bar.
	PoolSize func() int

	ScrollThreshold int
	Obs             ObsConfig
}

type notice struct {
	text string
	sev  feed.Severity
	seq  int
}

// App is the root Bubble Tea model.
type App struct {
	initFeed func() tea.Cmd
	loadMore func() tea.Cmd
	poolSize func() int
	logger   *otel.Logger
	ring     *otel.RingBuffer

	keys    keyMap
	trigger ScrollTrigger
	spinner spinner.Model

	items     []catalog.Item
	cursor    int
	width     int
	height    int
	ready     bool
	poolReady bool
	loading   bool

	notice    *notice
	noticeSeq int

	detailVisible bool
	detail        viewport.Model

	debugVisible bool
}

// NewAppWithConfig creates an App from cfg.
func NewAppWithConfig(cfg AppConfig) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = SpinnerStyle

	return App{
		initFeed: cfg.InitFeed,
		loadMore: cfg.LoadMore,
		poolSize: cfg.PoolSize,
		logger:   cfg.Obs.Logger,
		ring:     cfg.Obs.Ring,
		keys:     defaultKeys(),
		trigger:  ScrollTrigger{Threshold: cfg.ScrollThreshold},
		spinner:  sp,
	}
}

// Init starts the spinner and the startup sequence: pool first, then the
// first batch once PoolReady arrives.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.spinner.Tick}
	if a.initFeed != nil {
		cmds = append(cmds, a.initFeed())
	}
	return tea.Batch(cmds...)
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if otel.TraceEnabled() {
		if _, isTick := msg.(spinner.TickMsg); !isTick {
			a.logger.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindMsgReceived, Comp: "ui", Msg: fmt.Sprintf("%T", msg)})
		}
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.resizeDetail()
		return a, a.maybeLoadMore()

	case PoolReady:
		// On error the loader has already notified and the pool is empty,
		// so the load below is a no-op.
		a.poolReady = true
		return a, a.requestLoad()

	case ItemAppended:
		a.items = append(a.items, msg.Item)
		return a, nil

	case LoadingChanged:
		a.loading = msg.On
		if a.loading {
			return a, a.spinner.Tick
		}
		return a, nil

	case Notice:
		a.noticeSeq++
		a.notice = &notice{text: msg.Text, sev: msg.Severity, seq: a.noticeSeq}
		seq := a.noticeSeq
		return a, tea.Tick(noticeTTL, func(time.Time) tea.Msg { return noticeExpired{seq: seq} })

	case noticeExpired:
		if a.notice != nil && a.notice.seq == msg.seq {
			a.notice = nil
		}
		return a, nil

	case LoadFinished:
		if msg.OK && msg.Result.Accepted > 0 {
			return a, a.maybeLoadMore()
		}
		return a, nil

	case spinner.TickMsg:
		if !a.loading {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	return a, nil
}

// handleKeyMsg processes keyboard input.
func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, a.keys.Quit) && msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	if a.debugVisible {
		if key.Matches(msg, a.keys.Debug) || key.Matches(msg, a.keys.Back) {
			a.debugVisible = false
		}
		return a, nil
	}

	if a.detailVisible {
		switch {
		case key.Matches(msg, a.keys.Back), key.Matches(msg, a.keys.Open):
			a.detailVisible = false
			return a, nil
		case key.Matches(msg, a.keys.Quit):
			return a, tea.Quit
		}
		var cmd tea.Cmd
		a.detail, cmd = a.detail.Update(msg)
		return a, cmd
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Down):
		if a.cursor < len(a.items)-1 {
			a.cursor++
		}
		return a, a.maybeLoadMore()

	case key.Matches(msg, a.keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}
		return a, nil

	case key.Matches(msg, a.keys.PageDown):
		a.cursor = min(a.cursor+a.visibleItems(), max(len(a.items)-1, 0))
		return a, a.maybeLoadMore()

	case key.Matches(msg, a.keys.PageUp):
		a.cursor = max(a.cursor-a.visibleItems(), 0)
		return a, nil

	case key.Matches(msg, a.keys.Top):
		a.cursor = 0
		return a, nil

	case key.Matches(msg, a.keys.Bottom):
		if len(a.items) > 0 {
			a.cursor = len(a.items) - 1
		}
		return a, a.maybeLoadMore()

	case key.Matches(msg, a.keys.Open):
		if a.cursor < len(a.items) {
			a.openDetail(a.items[a.cursor])
		}
		return a, nil

	case key.Matches(msg, a.keys.Debug):
		if a.ring != nil {
			a.debugVisible = true
		}
		return a, nil
	}

	return a, nil
}

// maybeLoadMore asks for more items when the cursor nears the end of the feed.
// No debounce: the loader drops requests while a session is active.
func (a App) maybeLoadMore() tea.Cmd {
	if !a.poolReady || !a.ready {
		return nil
	}
	if !a.trigger.Near(a.cursor, len(a.items), a.visibleItems()) {
		return nil
	}
	a.logger.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindNearEnd, Comp: "ui", Count: len(a.items)})
	return a.requestLoad()
}

func (a App) requestLoad() tea.Cmd {
	if a.loadMore == nil {
		return nil
	}
	return a.loadMore()
}

// visibleItems is how many feed entries fit above the status and notice bars.
func (a App) visibleItems() int {
	rows := a.height - 2
	if rows < linesPerItem {
		return 1
	}
	return rows / linesPerItem
}

func (a *App) openDetail(item catalog.Item) {
	a.detailVisible = true
	a.detail = viewport.New(a.detailWidth(), a.detailHeight())
	a.detail.SetContent(detailContent(item, a.detailWidth()))
}

func (a *App) resizeDetail() {
	if !a.detailVisible {
		return
	}
	a.detail.Width = a.detailWidth()
	a.detail.Height = a.detailHeight()
}

func (a App) detailWidth() int {
	return max(a.width-4, 20)
}

func (a App) detailHeight() int {
	return max(a.height-detailChrome, 3)
}

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	if a.debugVisible {
		return lipgloss.JoinVertical(lipgloss.Left,
			debugOverlay(a.ring, a.width, a.height-1),
			debugStatusBar(a.width))
	}

	if a.detailVisible {
		return DetailPanel.Width(a.width-2).Render(a.detail.View()) + "\n" + detailFooter(a.width)
	}

	body := RenderFeed(a.items, a.cursor, a.width, a.visibleItems())

	noticeBar := ""
	if a.notice != nil {
		style := InfoStyle
		if a.notice.sev == feed.SeverityError {
			style = ErrorStyle
		}
		noticeBar = style.Width(a.width).Render(a.notice.text) + "\n"
	}

	pool := 0
	if a.poolSize != nil {
		pool = a.poolSize()
	}
	status := renderStatusBar(a.cursor, len(a.items), pool, a.width, a.loading, a.spinner.View())

	return body + noticeBar + status
}

// Cursor returns the current cursor position (for testing).
func (a App) Cursor() int {
	return a.cursor
}

// Items returns the current items (for testing).
func (a App) Items() []catalog.Item {
	return a.items
}
