// cmd/task-runner/main.go
//
// One-shot runner: apply a single task to a span of a file and print the
// result (or write it back with --write). Also lints the configured task
// packs with --lint-packs. Useful for scripting and for checking packs
// without opening the console.

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kingrea/redraft/internal/config"
	"github.com/kingrea/redraft/internal/coordinator"
	"github.com/kingrea/redraft/internal/document"
	"github.com/kingrea/redraft/internal/logbook"
	"github.com/kingrea/redraft/internal/logging"
	"github.com/kingrea/redraft/internal/review"
	"github.com/kingrea/redraft/internal/task"
	"github.com/kingrea/redraft/internal/text"
	"github.com/kingrea/redraft/internal/transform"
)

func main() {
	taskKind := flag.String("task", "", "task to run (built-in kind or pack id)")
	instruction := flag.String("instruction", "", "extra instruction, required for -task custom")
	filePath := flag.String("file", "", "document file to transform")
	spanArg := flag.String("span", "", "byte span start:end (defaults to the whole file)")
	projectDir := flag.String("project", "", "project directory for .redraft state (defaults to cwd)")
	writeBack := flag.Bool("write", false, "write the result back to the file instead of printing")
	lintPacks := flag.Bool("lint-packs", false, "lint the configured task packs and exit")
	timeout := flag.Duration("timeout", 30*time.Second, "how long to wait for the transformation")
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

	files, err := loadPackFiles(cfg)
	if err != nil {
		die("load task packs: %v", err)
	}

	if *lintPacks {
		runLint(files)
		return
	}

	if strings.TrimSpace(*taskKind) == "" {
		die("--task is required")
	}
	if strings.TrimSpace(*filePath) == "" {
		die("--file is required")
	}

	resolver := task.NewResolver()
	if err := resolver.RegisterFiles(files); err != nil {
		die("register task packs: %v", err)
	}

	book, err := logbook.New(cfg.LogPath())
	if err != nil {
		die("open logbook: %v", err)
	}

	doc := document.NewFile(*filePath)
	content, err := doc.Text()
	if err != nil {
		die("read document: %v", err)
	}
	span := text.NewSpan(0, len(content))
	if strings.TrimSpace(*spanArg) != "" {
		span, err = parseSpan(*spanArg)
		if err != nil {
			die("parse span: %v", err)
		}
	}

	candidates := make(chan review.Candidate, 1)
	coord, err := coordinator.New(doc, transform.NewScripted(), resolver,
		coordinator.WithPublisher(review.PublisherFunc(func(c review.Candidate) { candidates <- c })),
		coordinator.WithLogger(logging.NewBridge(book, logbook.LevelDebug)),
		coordinator.WithGrace(0),
	)
	if err != nil {
		die("build coordinator: %v", err)
	}
	defer coord.Close()

	id, err := coord.Submit(coordinator.TaskRequest{
		Span:        span,
		Kind:        *taskKind,
		Instruction: *instruction,
	})
	if err != nil {
		die("submit: %v", err)
	}

	select {
	case candidate := <-candidates:
		if *writeBack {
			if err := doc.SetText(candidate.Text); err != nil {
				die("write result: %v", err)
			}
			fmt.Printf("Wrote %s (%s over %s)\n", *filePath, candidate.Op.Task, candidate.Op.Span)
			return
		}
		fmt.Print(candidate.Text)
	case <-coord.Mailbox().Changes():
		notice, _ := coord.Mailbox().Take()
		die("operation %s failed: %s", id, notice.Message)
	case <-time.After(*timeout):
		die("operation %s timed out after %s", id, *timeout)
	}
}

func loadPackFiles(cfg *config.Config) ([]task.DefinitionFile, error) {
	var files []task.DefinitionFile
	for _, ref := range cfg.Packs() {
		var (
			loaded []task.DefinitionFile
			err    error
		)
		switch ref.Source {
		case "go":
			loaded, err = task.LoadGoDefinitionDir(ref.Path)
		default:
			loaded, err = task.LoadDefinitionDir(ref.Path)
		}
		if err != nil {
			return nil, err
		}
		files = append(files, loaded...)
	}
	return files, nil
}

func runLint(files []task.DefinitionFile) {
	findings := task.Lint(files)
	if len(findings) == 0 {
		fmt.Printf("Checked %d definition(s): no problems found.\n", len(files))
		return
	}
	for _, finding := range findings {
		fmt.Fprintln(os.Stderr, finding)
	}
	os.Exit(1)
}

func parseSpan(raw string) (text.Span, error) {
	parts := strings.SplitN(strings.TrimSpace(raw), ":", 2)
	if len(parts) != 2 {
		return text.Span{}, fmt.Errorf("expected start:end, got %q", raw)
	}
	start, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return text.Span{}, fmt.Errorf("start %q is not a number", parts[0])
	}
	end, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return text.Span{}, fmt.Errorf("end %q is not a number", parts[1])
	}
	return text.NewSpan(start, end), nil
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
