package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gofrs/flock"

	"github.com/abelbrown/artscroll/internal/catalog"
	"github.com/abelbrown/artscroll/internal/config"
	"github.com/abelbrown/artscroll/internal/feed"
	"github.com/abelbrown/artscroll/internal/otel"
	"github.com/abelbrown/artscroll/internal/pool"
	"github.com/abelbrown/artscroll/internal/store"
	"github.com/abelbrown/artscroll/internal/ui"
)

func main() {
	configPath := flag.String("config", config.Path(), "config file")
	fresh := flag.Bool("fresh", false, "ignore previously shown artworks for this run")
	flag.Parse()

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadFrom(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	dataDir, err := cfg.ResolvedDataDir()
	if err != nil {
		log.Fatalf("Failed to resolve data directory: %v", err)
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	// One feed per history database
	lockPath, _ := cfg.LockPath()
	lock := flock.New(lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		log.Fatalf("Failed to acquire lock: %v", err)
	}
	if !locked {
		log.Fatalf("artscroll is already running (lock %s)", lockPath)
	}
	defer lock.Unlock()

	// Observability: JSONL events + ring buffer for the debug overlay
	eventsPath, _ := cfg.EventsPath()
	eventsFile, err := os.OpenFile(eventsPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.Fatalf("Failed to open events log: %v", err)
	}
	defer eventsFile.Close()

	logger := otel.NewLogger(eventsFile)
	defer logger.Close()
	ring := otel.NewRingBuffer(otel.DefaultRingSize)
	logger.SetRingBuffer(ring)

	// Open store
	dbPath, _ := cfg.DBPath()
	st, err := store.Open(dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer st.Close()

	var history []catalog.ItemID
	if !*fresh {
		history, err = st.SeenIDs()
		if err != nil {
			logger.Error(otel.KindStoreError, "main", fmt.Errorf("load history: %w", err))
		}
	}

	logger.Emit(otel.Event{
		Level: otel.LevelInfo,
		Kind:  otel.KindStartup,
		Comp:  "main",
		Count: len(history),
		Extra: map[string]any{"base_url": cfg.Catalog.BaseURL, "data_dir": dataDir},
	})

	client := catalog.NewClient(cfg.ClientOptions())

	// The loader's sink needs the program and the program's model needs the
	// loader, so the commands close over loader, assigned before Run.
	var loader *feed.Loader
	app := ui.NewAppWithConfig(ui.AppConfig{
		InitFeed: func() tea.Cmd {
			return func() tea.Msg {
				return ui.PoolReady{Err: loader.Init(ctx)}
			}
		},
		LoadMore: func() tea.Cmd {
			return func() tea.Msg {
				res, ok := loader.LoadMore(ctx)
				return ui.LoadFinished{Result: res, OK: ok}
			}
		},
		PoolSize:        func() int { return loader.PoolSize() },
		ScrollThreshold: cfg.UI.ScrollThreshold,
		Obs:             ui.ObsConfig{Logger: logger, Ring: ring},
	})

	// Create program
	program := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

	loader = feed.NewLoader(cfg.LoaderConfig(), client, ui.NewProgramSink(program),
		feed.WithSeen(pool.NewSeenSet(history...)),
		feed.WithRecorder(st),
		feed.WithLogger(logger),
	)

	// Run UI (blocks until quit)
	if _, err := program.Run(); err != nil {
		logger.Error(otel.KindError, "main", err)
		log.Printf("Error running program: %v", err)
	}

	// Graceful shutdown
	cancel()
	loader.Wait()
	logger.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindShutdown, Comp: "main", Count: loader.SeenCount()})
}
