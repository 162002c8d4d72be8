// internal/config/config.go
//
// This package handles configuration and the .redraft directory structure.
// Every project that uses redraft gets a .redraft/ folder created in its root.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// RedraftDir is the name of the directory we create in each project.
	RedraftDir = ".redraft"

	// DefaultCleanupGrace is how long settled operations stay visible before
	// the registry purges them.
	DefaultCleanupGrace = 2000 * time.Millisecond

	// DefaultMaxParallel caps concurrent transformer calls.
	DefaultMaxParallel = 4

	// DefaultFeedCapacity is the review feed's channel buffer.
	DefaultFeedCapacity = 16

	logFileName = "redraft.log"
)

const defaultProjectConfigYAML = `# redraft project configuration
version: 1

session:
  # How long settled operations stay visible to the review console, in
  # milliseconds. After the grace period they are removed unconditionally.
  cleanup_grace_ms: 2000
  # Concurrent transformer calls. 0 removes the cap.
  max_parallel: 4

tasks:
  packs:
    - source: yaml
      path: tasks
    # Go packs are interpreted at load time, no compilation step:
    # - source: go
    #   path: tasks-go

journal:
  enabled: true

review:
  feed_capacity: 16
`

// PackRef declares one task pack entry inside .redraft/config.yaml.
type PackRef struct {
	Source string `yaml:"source"`
	Path   string `yaml:"path"`
}

// SessionConfig captures coordinator tuning.
type SessionConfig struct {
	CleanupGraceMS int `yaml:"cleanup_grace_ms"`
	MaxParallel    int `yaml:"max_parallel"`
}

// TasksConfig lists the task packs to load.
type TasksConfig struct {
	Packs []PackRef `yaml:"packs"`
}

// JournalConfig controls the session journal.
type JournalConfig struct {
	Enabled *bool `yaml:"enabled"`
}

// ReviewConfig tunes the candidate feed.
type ReviewConfig struct {
	FeedCapacity int `yaml:"feed_capacity"`
}

// ProjectConfig models .redraft/config.yaml.
type ProjectConfig struct {
	Version int           `yaml:"version"`
	Session SessionConfig `yaml:"session"`
	Tasks   TasksConfig   `yaml:"tasks"`
	Journal JournalConfig `yaml:"journal"`
	Review  ReviewConfig  `yaml:"review"`
}

// Config holds the runtime configuration for redraft.
type Config struct {
	// ProjectDir is the directory where the user ran redraft from.
	ProjectDir string

	// RedraftProjectDir is ProjectDir/.redraft.
	RedraftProjectDir string

	Project ProjectConfig
}

// InitRedraftDir creates the .redraft directory structure in the given
// project directory and seeds config.yaml on first run.
//
// Structure created:
// .redraft/
// ├── logs/      <- session logbook
// ├── journal/   <- transformation notes
// └── tasks/     <- user task packs (YAML)
func InitRedraftDir(projectDir string) error {
	redraftDir := filepath.Join(projectDir, RedraftDir)
	dirs := []string{
		filepath.Join(redraftDir, "logs"),
		filepath.Join(redraftDir, "journal"),
		filepath.Join(redraftDir, "tasks"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return ensureProjectConfig(filepath.Join(redraftDir, "config.yaml"))
}

// NewConfig creates a Config populated from .redraft/config.yaml plus
// REDRAFT_* environment overrides.
func NewConfig(projectDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir:        projectDir,
		RedraftProjectDir: filepath.Join(projectDir, RedraftDir),
		Project:           defaultProjectConfig(),
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	cfg.Project.applyEnvOverrides()
	cfg.Project.normalize(cfg.RedraftProjectDir)
	if err := cfg.Project.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// LogsDir returns the path to the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.RedraftProjectDir, "logs")
}

// LogPath returns the session logbook file.
func (c *Config) LogPath() string {
	return filepath.Join(c.LogsDir(), logFileName)
}

// JournalDir returns the directory transformation notes are written to.
func (c *Config) JournalDir() string {
	return filepath.Join(c.RedraftProjectDir, "journal")
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.RedraftProjectDir, "config.yaml")
}

// CleanupGrace returns the grace period settled operations live for.
func (c *Config) CleanupGrace() time.Duration {
	return time.Duration(c.Project.Session.CleanupGraceMS) * time.Millisecond
}

// MaxParallel returns the transformer concurrency cap; 0 means uncapped.
func (c *Config) MaxParallel() int {
	return c.Project.Session.MaxParallel
}

// FeedCapacity returns the review feed buffer size.
func (c *Config) FeedCapacity() int {
	return c.Project.Review.FeedCapacity
}

// JournalEnabled reports whether completed operations are journaled.
func (c *Config) JournalEnabled() bool {
	if c.Project.Journal.Enabled == nil {
		return true
	}
	return *c.Project.Journal.Enabled
}

// Packs returns the configured task pack references with resolved paths.
func (c *Config) Packs() []PackRef {
	return c.Project.Tasks.Packs
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	var parsed ProjectConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	parsed.applyDefaults()
	c.Project = parsed
	return nil
}

func defaultProjectConfig() ProjectConfig {
	pc := ProjectConfig{Version: 1}
	pc.applyDefaults()
	return pc
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if pc.Session.CleanupGraceMS == 0 {
		pc.Session.CleanupGraceMS = int(DefaultCleanupGrace / time.Millisecond)
	}
	if pc.Session.MaxParallel == 0 {
		pc.Session.MaxParallel = DefaultMaxParallel
	}
	if pc.Review.FeedCapacity == 0 {
		pc.Review.FeedCapacity = DefaultFeedCapacity
	}
	if pc.Tasks.Packs == nil {
		pc.Tasks.Packs = []PackRef{{Source: "yaml", Path: "tasks"}}
	}
}

func (pc *ProjectConfig) applyEnvOverrides() {
	if value := strings.TrimSpace(os.Getenv("REDRAFT_GRACE_MS")); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed >= 0 {
			pc.Session.CleanupGraceMS = parsed
		}
	}
	if value := strings.TrimSpace(os.Getenv("REDRAFT_MAX_PARALLEL")); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed >= 0 {
			pc.Session.MaxParallel = parsed
		}
	}
	if value := strings.TrimSpace(os.Getenv("REDRAFT_JOURNAL")); value != "" {
		if enabled, err := strconv.ParseBool(value); err == nil {
			pc.Journal.Enabled = &enabled
		}
	}
}

func (pc *ProjectConfig) normalize(base string) {
	for i := range pc.Tasks.Packs {
		pc.Tasks.Packs[i].normalize(base)
	}
	if pc.Session.CleanupGraceMS < 0 {
		pc.Session.CleanupGraceMS = 0
	}
	if pc.Session.MaxParallel < 0 {
		pc.Session.MaxParallel = 0
	}
	if pc.Review.FeedCapacity < 1 {
		pc.Review.FeedCapacity = DefaultFeedCapacity
	}
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	for i, pack := range pc.Tasks.Packs {
		if err := pack.validate(); err != nil {
			return fmt.Errorf("tasks.packs[%d]: %w", i, err)
		}
	}
	return nil
}

func (ref *PackRef) normalize(base string) {
	ref.Source = strings.ToLower(strings.TrimSpace(ref.Source))
	if ref.Source == "" {
		ref.Source = "yaml"
	}
	ref.Path = resolvePath(base, ref.Path)
}

func (ref PackRef) validate() error {
	switch ref.Source {
	case "yaml", "go":
	default:
		return fmt.Errorf("source must be 'yaml' or 'go'")
	}
	if ref.Path == "" {
		return fmt.Errorf("path is required")
	}
	return nil
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0o644)
}
