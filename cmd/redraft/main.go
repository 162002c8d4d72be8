// cmd/redraft/main.go
//
// The redraft console. Run it from a project directory and it bootstraps
// .redraft/, loads the configured task packs, and opens the review console
// over a document of your choosing (or a demo document when no file is
// given). The bundled transformer is the deterministic scripted backend;
// provider adapters plug in behind the same interface.

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/redraft/internal/config"
	"github.com/kingrea/redraft/internal/coordinator"
	"github.com/kingrea/redraft/internal/document"
	"github.com/kingrea/redraft/internal/journal"
	"github.com/kingrea/redraft/internal/logbook"
	"github.com/kingrea/redraft/internal/logging"
	"github.com/kingrea/redraft/internal/review"
	"github.com/kingrea/redraft/internal/task"
	"github.com/kingrea/redraft/internal/transform"
	"github.com/kingrea/redraft/internal/tui"
	"github.com/kingrea/redraft/internal/usage"
)

const demoDocument = `The quick brown fox jumps over the lazy dog.
It was the best of times, it was the worst of times.
Call me Ishmael. Some years ago - never mind how long precisely.
`

func main() {
	projectDir := flag.String("project", "", "project directory (defaults to cwd)")
	filePath := flag.String("file", "", "document file to edit (defaults to an in-memory demo document)")
	latency := flag.Duration("latency", 400*time.Millisecond, "simulated backend latency")
	flag.Parse()

	project := *projectDir
	if project == "" {
		cwd, err := os.Getwd()
		if err != nil {
			die("determine working directory: %v", err)
		}
		project = cwd
	}
	absoluteProject, err := filepath.Abs(project)
	if err != nil {
		die("resolve project dir: %v", err)
	}
	if err := config.InitRedraftDir(absoluteProject); err != nil {
		die("init .redraft: %v", err)
	}
	cfg, err := config.NewConfig(absoluteProject)
	if err != nil {
		die("load config: %v", err)
	}

	book, err := logbook.New(cfg.LogPath())
	if err != nil {
		die("open logbook: %v", err)
	}
	book.Info("session starting in %s", absoluteProject)
	logger := logging.NewBridge(book, logbook.LevelDebug)

	resolver := task.NewResolver()
	if err := loadPacks(resolver, cfg); err != nil {
		die("load task packs: %v", err)
	}

	var doc document.Provider
	if *filePath != "" {
		doc = document.NewFile(*filePath)
		if _, err := doc.Text(); err != nil {
			die("open document: %v", err)
		}
	} else {
		doc = document.NewMemory(demoDocument)
	}

	feed := review.NewFeed(
		review.FeedWithCapacity(cfg.FeedCapacity()),
		review.FeedWithLogger(logger),
	)
	publishers := []review.Publisher{feed}
	if cfg.JournalEnabled() {
		publishers = append(publishers, journal.New(cfg.JournalDir(), journal.WithLogger(logger)))
	}
	meter := usage.NewMeter()

	coord, err := coordinator.New(doc,
		transform.NewScripted(transform.WithLatency(*latency)),
		resolver,
		coordinator.WithPublisher(review.Fanout(publishers...)),
		coordinator.WithUsageRecorder(usage.Multi(meter, usage.NewLogRecorder(book))),
		coordinator.WithLogger(logger),
		coordinator.WithGrace(cfg.CleanupGrace()),
		coordinator.WithMaxParallel(cfg.MaxParallel()),
	)
	if err != nil {
		die("build coordinator: %v", err)
	}
	defer coord.Close()
	defer feed.Close()

	app, err := tui.NewApp(tui.Session{
		Coordinator: coord,
		Document:    doc,
		Feed:        feed,
		Logbook:     book,
		Meter:       meter,
		Tasks:       resolver.Names(),
	})
	if err != nil {
		die("build console: %v", err)
	}

	program := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		die("run console: %v", err)
	}
	book.Info("session closed")
}

func loadPacks(resolver *task.Resolver, cfg *config.Config) error {
	for _, ref := range cfg.Packs() {
		var (
			files []task.DefinitionFile
			err   error
		)
		switch ref.Source {
		case "go":
			files, err = task.LoadGoDefinitionDir(ref.Path)
		default:
			files, err = task.LoadDefinitionDir(ref.Path)
		}
		if err != nil {
			return err
		}
		if err := resolver.RegisterFiles(files); err != nil {
			return err
		}
	}
	return nil
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
