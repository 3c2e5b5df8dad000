package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"BRIEF_CONFIG", "BRIEF_SITE_URL", "GH_PAGES_URL", "BRIEF_DOCS_DIR", "BRIEF_EPISODE_DIR",
		"BRIEF_FEED_PATH", "BRIEF_INDEX_PATH", "BRIEF_JOURNAL_DB", "BRIEF_FEED_TITLE",
		"BRIEF_FEED_DESCRIPTION", "BRIEF_FEED_LANGUAGE", "BRIEF_FEED_AUTHOR", "BRIEF_LISTEN_ADDR",
		"BRIEF_REFRESH_DEBOUNCE_MS", "BRIEF_HTTP_TIMEOUT_SECONDS", "BRIEF_USER_AGENT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	temp := t.TempDir()
	t.Setenv("BRIEF_DOCS_DIR", temp)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.SiteURL != defaultSiteURL {
		t.Fatalf("expected default site url, got %q", cfg.SiteURL)
	}
	assertSamePath(t, cfg.EpisodeDir, filepath.Join(temp, "episodes"))
	if filepath.Base(cfg.FeedPath) != "feed.xml" || filepath.Base(cfg.IndexPath) != "index.html" {
		t.Fatalf("unexpected default paths: %q %q", cfg.FeedPath, cfg.IndexPath)
	}
	if cfg.JournalPath != "" {
		t.Fatalf("expected journal disabled by default, got %q", cfg.JournalPath)
	}
	if cfg.Feed.Title != defaultFeedTitle || cfg.Feed.Language != "en-gb" || cfg.Feed.Description != defaultFeedDescription {
		t.Fatalf("unexpected feed defaults: %+v", cfg.Feed)
	}
	if len(cfg.Sections) != 4 || len(cfg.Sources) != 4 || len(cfg.Engines) != 2 {
		t.Fatalf("expected built-in sections, sources and engines, got %d/%d/%d", len(cfg.Sections), len(cfg.Sources), len(cfg.Engines))
	}
	if info, err := os.Stat(cfg.EpisodeDir); err != nil || !info.IsDir() {
		t.Fatalf("expected episode dir to be created: %v", err)
	}
}

func TestLoadSiteURLPrecedence(t *testing.T) {
	clearEnv(t)
	t.Setenv("BRIEF_DOCS_DIR", t.TempDir())

	t.Setenv("GH_PAGES_URL", "https://pages.example.org/brief/")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SiteURL != "https://pages.example.org/brief" {
		t.Fatalf("expected GH_PAGES_URL with trailing slash trimmed, got %q", cfg.SiteURL)
	}

	t.Setenv("BRIEF_SITE_URL", "https://brief.example.net")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SiteURL != "https://brief.example.net" {
		t.Fatalf("expected BRIEF_SITE_URL to win, got %q", cfg.SiteURL)
	}
}

func TestLoadFromFileWithEnvOverride(t *testing.T) {
	clearEnv(t)
	temp := t.TempDir()
	configPath := filepath.Join(temp, "brief.yaml")
	content := "" +
		"site_url: https://file.example.com\n" +
		"docs_dir: " + filepath.Join(temp, "site") + "\n" +
		"journal: " + filepath.Join(temp, "runs.db") + "\n" +
		"feed:\n" +
		"  title: File Brief\n" +
		"  author: Desk\n" +
		"sections:\n" +
		"  - key: tech\n" +
		"    title: Tech\n" +
		"sources:\n" +
		"  - name: Example\n" +
		"    section: tech\n" +
		"    url: https://feeds.example.com/rss\n" +
		"engines:\n" +
		"  - name: say\n" +
		"    command: say\n" +
		"    args: [\"-o\", \"{output}\", \"{text}\"]\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("BRIEF_CONFIG", configPath)
	t.Setenv("BRIEF_FEED_TITLE", "Env Brief")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.SiteURL != "https://file.example.com" {
		t.Fatalf("expected file site url, got %q", cfg.SiteURL)
	}
	if cfg.Feed.Title != "Env Brief" || cfg.Feed.Author != "Desk" {
		t.Fatalf("expected env title and file author, got %+v", cfg.Feed)
	}
	assertSamePath(t, cfg.DocsDir, filepath.Join(temp, "site"))
	if cfg.JournalPath != filepath.Join(temp, "runs.db") {
		t.Fatalf("unexpected journal path %q", cfg.JournalPath)
	}
	if len(cfg.Sources) != 1 {
		t.Fatalf("expected file sources to replace defaults, got %d", len(cfg.Sources))
	}
	src := cfg.Sources[0]
	if src.Kind != SourceKindFeed || src.Limit != 1 || src.Placeholder != "Example placeholder." {
		t.Fatalf("expected source defaults to be filled, got %+v", src)
	}
	if len(cfg.Engines) != 1 || cfg.Engines[0].Command != "say" {
		t.Fatalf("unexpected engines: %+v", cfg.Engines)
	}
}

func TestLoadRejectsUnknownSection(t *testing.T) {
	clearEnv(t)
	temp := t.TempDir()
	configPath := filepath.Join(temp, "brief.yaml")
	content := "sources:\n  - name: Orphan\n    section: sport\n    url: https://example.com/rss\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("BRIEF_CONFIG", configPath)
	t.Setenv("BRIEF_DOCS_DIR", temp)

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for source referencing unknown section")
	}
}

func TestValidateRejectsRelativeSiteURL(t *testing.T) {
	cfg := Config{SiteURL: "example.com"}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected relative site url to be rejected")
	}
}

func TestRefreshDebounceAndHTTPTimeout(t *testing.T) {
	t.Setenv("BRIEF_REFRESH_DEBOUNCE_MS", "")
	if RefreshDebounce() != 500*time.Millisecond {
		t.Fatalf("expected default debounce")
	}
	t.Setenv("BRIEF_REFRESH_DEBOUNCE_MS", "1500")
	if RefreshDebounce() != 1500*time.Millisecond {
		t.Fatalf("expected custom debounce")
	}
	t.Setenv("BRIEF_REFRESH_DEBOUNCE_MS", "-10")
	if RefreshDebounce() != 500*time.Millisecond {
		t.Fatalf("expected fallback debounce on negative value")
	}

	t.Setenv("BRIEF_HTTP_TIMEOUT_SECONDS", "not-a-number")
	if HTTPTimeout() != 15*time.Second {
		t.Fatalf("expected fallback timeout on parse error")
	}
	t.Setenv("BRIEF_HTTP_TIMEOUT_SECONDS", "3")
	if HTTPTimeout() != 3*time.Second {
		t.Fatalf("expected custom timeout")
	}
}

func TestValidateListenAddr(t *testing.T) {
	valid := []string{"127.0.0.1:8080", "localhost:9000", "[::1]:7000"}
	for _, addr := range valid {
		if err := ValidateListenAddr(addr); err != nil {
			t.Fatalf("expected %s to be valid: %v", addr, err)
		}
	}

	invalid := []string{"0.0.0.0:80", "192.168.1.1:1234", ":8080"}
	for _, addr := range invalid {
		if err := ValidateListenAddr(addr); err == nil {
			t.Fatalf("expected %s to be rejected", addr)
		}
	}
}

func assertSamePath(t *testing.T, got, want string) {
	t.Helper()
	resolvedGot, err := filepath.EvalSymlinks(got)
	if err != nil {
		t.Fatalf("eval symlinks for %s: %v", got, err)
	}
	resolvedWant, err := filepath.EvalSymlinks(want)
	if err != nil {
		t.Fatalf("eval symlinks for %s: %v", want, err)
	}
	if resolvedGot != resolvedWant {
		t.Fatalf("expected %s, got %s", resolvedWant, resolvedGot)
	}
}
