package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultSiteURL           = "https://example.com"
	defaultDocsDir           = "docs"
	defaultListenAddr        = "127.0.0.1:8080"
	defaultRefreshDebounceMS = 500
	defaultHTTPTimeoutSecs   = 15
	defaultFeedTitle         = "Morning Brief"
	defaultFeedDescription   = "Private daily briefing"
	defaultFeedLanguage      = "en-gb"
	defaultUserAgent         = "morning-brief/1.0 (+https://github.com/morning-brief)"
)

// Config carries every value the pipeline and the feed builder need.
type Config struct {
	SiteURL     string
	DocsDir     string
	EpisodeDir  string
	FeedPath    string
	IndexPath   string
	JournalPath string

	Feed FeedMetadata

	ListenAddr      string
	RefreshDebounce time.Duration
	HTTPTimeout     time.Duration
	UserAgent       string

	Sections []Section
	Sources  []Source
	Engines  []Engine
}

// FeedMetadata represents the static channel metadata of the podcast feed.
type FeedMetadata struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Language    string `yaml:"language"`
	Author      string `yaml:"author"`
}

// Section describes one topical part of the briefing.
type Section struct {
	Key        string `yaml:"key"`
	Title      string `yaml:"title"`
	Commentary string `yaml:"commentary"`
}

// Source kinds understood by the collector.
const (
	SourceKindFeed          = "feed"
	SourceKindYahooTrending = "yahoo-trending"
)

// Source is a single upstream headline provider.
type Source struct {
	Name        string `yaml:"name"`
	Section     string `yaml:"section"`
	Kind        string `yaml:"kind"`
	URL         string `yaml:"url"`
	Limit       int    `yaml:"limit"`
	Placeholder string `yaml:"placeholder"`
}

// Engine is an external text-to-speech program.
type Engine struct {
	Name    string   `yaml:"name"`
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
}

type fileConfig struct {
	SiteURL    string       `yaml:"site_url"`
	DocsDir    string       `yaml:"docs_dir"`
	EpisodeDir string       `yaml:"episode_dir"`
	FeedPath   string       `yaml:"feed_path"`
	IndexPath  string       `yaml:"index_path"`
	Journal    string       `yaml:"journal"`
	Feed       FeedMetadata `yaml:"feed"`
	Sections   []Section    `yaml:"sections"`
	Sources    []Source     `yaml:"sources"`
	Engines    []Engine     `yaml:"engines"`
}

// Load resolves the configuration from defaults, the optional YAML file named by
// BRIEF_CONFIG and environment overrides, in that order. Directories are created.
func Load() (Config, error) {
	var file fileConfig
	if path := strings.TrimSpace(os.Getenv("BRIEF_CONFIG")); path != "" {
		data, err := os.ReadFile(expandHome(path))
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &file); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg := Config{
		SiteURL:         firstNonEmpty(os.Getenv("BRIEF_SITE_URL"), os.Getenv("GH_PAGES_URL"), file.SiteURL, defaultSiteURL),
		ListenAddr:      ListenAddr(),
		RefreshDebounce: RefreshDebounce(),
		HTTPTimeout:     HTTPTimeout(),
		UserAgent:       firstNonEmpty(os.Getenv("BRIEF_USER_AGENT"), defaultUserAgent),
		Feed:            resolveFeedMetadata(file.Feed),
		Sections:        DefaultSections(),
		Sources:         DefaultSources(),
		Engines:         DefaultEngines(),
	}
	cfg.SiteURL = strings.TrimRight(strings.TrimSpace(cfg.SiteURL), "/")

	docs, err := resolveDir(firstNonEmpty(os.Getenv("BRIEF_DOCS_DIR"), file.DocsDir, defaultDocsDir))
	if err != nil {
		return Config{}, fmt.Errorf("resolve docs dir: %w", err)
	}
	cfg.DocsDir = docs

	episodes, err := resolveDir(firstNonEmpty(os.Getenv("BRIEF_EPISODE_DIR"), file.EpisodeDir, filepath.Join(docs, "episodes")))
	if err != nil {
		return Config{}, fmt.Errorf("resolve episode dir: %w", err)
	}
	cfg.EpisodeDir = episodes

	if cfg.FeedPath, err = resolveFile(firstNonEmpty(os.Getenv("BRIEF_FEED_PATH"), file.FeedPath, filepath.Join(docs, "feed.xml"))); err != nil {
		return Config{}, fmt.Errorf("resolve feed path: %w", err)
	}
	if cfg.IndexPath, err = resolveFile(firstNonEmpty(os.Getenv("BRIEF_INDEX_PATH"), file.IndexPath, filepath.Join(docs, "index.html"))); err != nil {
		return Config{}, fmt.Errorf("resolve index path: %w", err)
	}
	if journal := firstNonEmpty(os.Getenv("BRIEF_JOURNAL_DB"), file.Journal); journal != "" {
		if cfg.JournalPath, err = resolveFile(journal); err != nil {
			return Config{}, fmt.Errorf("resolve journal path: %w", err)
		}
	}

	if len(file.Sections) > 0 {
		cfg.Sections = file.Sections
	}
	if len(file.Sources) > 0 {
		cfg.Sources = file.Sources
	}
	if len(file.Engines) > 0 {
		cfg.Engines = file.Engines
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the cross-field rules and fills per-source defaults.
func (c *Config) Validate() error {
	if c.SiteURL == "" {
		return errors.New("site url must not be empty")
	}
	if !strings.HasPrefix(c.SiteURL, "http://") && !strings.HasPrefix(c.SiteURL, "https://") {
		return fmt.Errorf("site url %q must be absolute http(s)", c.SiteURL)
	}

	known := make(map[string]struct{}, len(c.Sections))
	for _, s := range c.Sections {
		if strings.TrimSpace(s.Key) == "" {
			return errors.New("section key must not be empty")
		}
		known[s.Key] = struct{}{}
	}

	for i := range c.Sources {
		src := &c.Sources[i]
		if _, ok := known[src.Section]; !ok {
			return fmt.Errorf("source %q references unknown section %q", src.Name, src.Section)
		}
		if src.Kind == "" {
			src.Kind = SourceKindFeed
		}
		if src.Kind != SourceKindFeed && src.Kind != SourceKindYahooTrending {
			return fmt.Errorf("source %q has unsupported kind %q", src.Name, src.Kind)
		}
		if src.Limit <= 0 {
			src.Limit = 1
		}
		if strings.TrimSpace(src.Placeholder) == "" {
			src.Placeholder = src.Name + " placeholder."
		}
	}

	for _, e := range c.Engines {
		if strings.TrimSpace(e.Command) == "" {
			return fmt.Errorf("engine %q has no command", e.Name)
		}
	}
	return nil
}

// ListenAddr returns the TCP address the preview server should bind to.
func ListenAddr() string {
	addr := strings.TrimSpace(os.Getenv("BRIEF_LISTEN_ADDR"))
	if addr == "" {
		return defaultListenAddr
	}
	return addr
}

// RefreshDebounce returns the delay between an episode directory change and the
// feed rebuild it triggers.
func RefreshDebounce() time.Duration {
	return positiveDuration("BRIEF_REFRESH_DEBOUNCE_MS", defaultRefreshDebounceMS, time.Millisecond)
}

// HTTPTimeout returns the per-request timeout used for upstream sources.
func HTTPTimeout() time.Duration {
	return positiveDuration("BRIEF_HTTP_TIMEOUT_SECONDS", defaultHTTPTimeoutSecs, time.Second)
}

// ValidateListenAddr ensures the configured listen address is restricted to localhost.
func ValidateListenAddr(addr string) error {
	addr = strings.TrimSpace(strings.ToLower(addr))
	if strings.HasPrefix(addr, "127.0.0.1:") || strings.HasPrefix(addr, "localhost:") || strings.HasPrefix(addr, "[::1]:") {
		return nil
	}
	return errors.New("listen address must bind to localhost")
}

func resolveFeedMetadata(file FeedMetadata) FeedMetadata {
	return FeedMetadata{
		Title:       firstNonEmpty(os.Getenv("BRIEF_FEED_TITLE"), file.Title, defaultFeedTitle),
		Description: firstNonEmpty(os.Getenv("BRIEF_FEED_DESCRIPTION"), file.Description, defaultFeedDescription),
		Language:    firstNonEmpty(os.Getenv("BRIEF_FEED_LANGUAGE"), file.Language, defaultFeedLanguage),
		Author:      firstNonEmpty(os.Getenv("BRIEF_FEED_AUTHOR"), file.Author),
	}
}

func positiveDuration(env string, fallback int, unit time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(env))
	if value == "" {
		return time.Duration(fallback) * unit
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return time.Duration(fallback) * unit
	}
	return time.Duration(n) * unit
}

func resolveDir(dir string) (string, error) {
	abs, err := filepath.Abs(expandHome(dir))
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return "", err
	}
	return abs, nil
}

func resolveFile(path string) (string, error) {
	return filepath.Abs(expandHome(path))
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
