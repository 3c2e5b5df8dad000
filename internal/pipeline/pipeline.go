package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"morning-brief/internal/config"
	"morning-brief/internal/episodes"
	"morning-brief/internal/feed"
	"morning-brief/internal/journal"
	"morning-brief/internal/models"
	"morning-brief/internal/script"
	"morning-brief/internal/synth"
)

// Collector gathers the day's sections.
type Collector interface {
	Collect(ctx context.Context) []models.Section
}

// Synthesizer turns the script into an audio file, degrading rather than failing.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, outPath string) (synth.Result, error)
}

// Journal records finished runs.
type Journal interface {
	Record(ctx context.Context, e journal.Entry) error
}

// Report summarises a completed run.
type Report struct {
	RunID               string   `json:"run_id"`
	Episode             string   `json:"episode"`
	Engine              string   `json:"engine"`
	PlaceholderAudio    bool     `json:"placeholder_audio"`
	PlaceholderSections []string `json:"placeholder_sections,omitempty"`
	EpisodeCount        int      `json:"episode_count"`
	FeedPath            string   `json:"feed_path"`
	IndexCreated        bool     `json:"index_created"`
}

// Pipeline runs collect, compose, synthesize, discover, register and serialize as
// one sequential pass.
type Pipeline struct {
	cfg       config.Config
	collector Collector
	synth     Synthesizer
	journal   Journal
	store     *episodes.Store
	now       func() time.Time
	logger    zerolog.Logger

	mu sync.Mutex
}

// New wires a Pipeline. journal may be nil; now defaults to time.Now.
func New(cfg config.Config, collector Collector, synthesizer Synthesizer, j Journal, now func() time.Time, logger zerolog.Logger) *Pipeline {
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		cfg:       cfg,
		collector: collector,
		synth:     synthesizer,
		journal:   j,
		store:     episodes.NewStore(cfg.EpisodeDir, cfg.SiteURL, now, logger),
		now:       now,
		logger:    logger,
	}
}

// Store exposes the episode store backing the pipeline.
func (p *Pipeline) Store() *episodes.Store {
	return p.store
}

// Channel returns the feed channel metadata derived from the configuration.
func (p *Pipeline) Channel() feed.Channel {
	return feed.Channel{
		Title:       p.cfg.Feed.Title,
		Link:        p.cfg.SiteURL,
		Description: p.cfg.Feed.Description,
		Language:    p.cfg.Feed.Language,
		Author:      p.cfg.Feed.Author,
	}
}

// Preview collects headlines and composes today's script without synthesizing it.
func (p *Pipeline) Preview(ctx context.Context) (string, []models.Section, error) {
	sections := p.collector.Collect(ctx)
	text, err := script.Compose(p.now(), sections)
	if err != nil {
		return "", nil, fmt.Errorf("compose script: %w", err)
	}
	return text, sections, nil
}

// Run produces today's episode and rewrites the feed.
func (p *Pipeline) Run(ctx context.Context) (report Report, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	started := p.now()
	report = Report{RunID: uuid.NewString(), FeedPath: p.cfg.FeedPath}
	logger := p.logger.With().Str("run_id", report.RunID).Logger()
	logger.Info().Msg("pipeline run started")

	defer func() {
		p.record(ctx, logger, started, report, err)
	}()

	created, err := feed.EnsureIndex(p.cfg.IndexPath, p.cfg.Feed.Title, p.feedHref())
	if err != nil {
		return report, err
	}
	report.IndexCreated = created

	sections := p.collector.Collect(ctx)
	for _, s := range sections {
		if s.Status() != models.SectionOK {
			report.PlaceholderSections = append(report.PlaceholderSections, s.Key)
			logger.Warn().Str("section", s.Key).Str("status", string(s.Status())).Msg("section has no live headlines")
		}
	}

	text, err := script.Compose(started, sections)
	if err != nil {
		return report, fmt.Errorf("compose script: %w", err)
	}

	if err := os.MkdirAll(p.store.Dir(), 0o755); err != nil {
		return report, fmt.Errorf("create episode dir: %w", err)
	}
	report.Episode = episodes.FilenameForDate(started)
	result, err := p.synth.Synthesize(ctx, text, filepath.Join(p.store.Dir(), report.Episode))
	if err != nil {
		return report, fmt.Errorf("synthesize: %w", err)
	}
	report.Engine = result.Engine
	report.PlaceholderAudio = result.Placeholder

	existing, err := p.store.Discover()
	if err != nil {
		return report, err
	}
	eps := p.store.Register(existing, report.Episode)
	report.EpisodeCount = len(eps)

	if err := feed.Write(p.Channel(), eps, p.cfg.FeedPath, p.now()); err != nil {
		return report, fmt.Errorf("write feed: %w", err)
	}

	logger.Info().
		Str("episode", report.Episode).
		Str("engine", report.Engine).
		Int("episodes", report.EpisodeCount).
		Str("feed", report.FeedPath).
		Msg("pipeline run finished")
	return report, nil
}

// Rebuild regenerates the feed from the episode directory alone.
func (p *Pipeline) Rebuild() (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	eps, err := p.store.Discover()
	if err != nil {
		return 0, err
	}
	if err := feed.Write(p.Channel(), eps, p.cfg.FeedPath, p.now()); err != nil {
		return 0, fmt.Errorf("write feed: %w", err)
	}
	p.logger.Info().Int("episodes", len(eps)).Str("feed", p.cfg.FeedPath).Msg("feed rebuilt")
	return len(eps), nil
}

func (p *Pipeline) feedHref() string {
	rel, err := filepath.Rel(filepath.Dir(p.cfg.IndexPath), p.cfg.FeedPath)
	if err != nil {
		return filepath.Base(p.cfg.FeedPath)
	}
	return filepath.ToSlash(rel)
}

func (p *Pipeline) record(ctx context.Context, logger zerolog.Logger, started time.Time, report Report, runErr error) {
	if p.journal == nil {
		return
	}
	entry := journal.Entry{
		RunID:               report.RunID,
		StartedAt:           started,
		FinishedAt:          p.now(),
		Episode:             report.Episode,
		Engine:              report.Engine,
		PlaceholderAudio:    report.PlaceholderAudio,
		PlaceholderSections: len(report.PlaceholderSections),
		EpisodeCount:        report.EpisodeCount,
	}
	if runErr != nil {
		entry.Error = runErr.Error()
	}
	if err := p.journal.Record(context.WithoutCancel(ctx), entry); err != nil {
		logger.Warn().Err(err).Msg("journal record failed")
	}
}
