package episodes

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"morning-brief/internal/metadata"
	"morning-brief/internal/models"
)

// Store reconstructs the published episode set from the episode directory.
// The directory listing is the only source of truth; nothing else is persisted.
type Store struct {
	dir      string
	siteBase string
	now      func() time.Time
	logger   zerolog.Logger
}

// NewStore creates a Store over dir. now defaults to time.Now.
func NewStore(dir, siteBase string, now func() time.Time, logger zerolog.Logger) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		dir:      filepath.Clean(dir),
		siteBase: strings.TrimRight(siteBase, "/"),
		now:      now,
		logger:   logger,
	}
}

// Dir returns the episode directory.
func (s *Store) Dir() string {
	return s.dir
}

// Discover returns one Episode per audio file in the directory, in lexicographic
// filename order. Files whose names do not start with a YYYY-MM-DD date are kept and
// dated today at PublishHour; several such files therefore share a publish date.
func (s *Store) Discover() ([]models.Episode, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create episode dir: %w", err)
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list episode dir: %w", err)
	}

	today := PublishTime(s.now())
	episodes := make([]models.Episode, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !IsEpisodeFile(entry.Name()) {
			continue
		}
		name := entry.Name()

		published, ok := ParseFilenameDate(name, today.Location())
		if !ok {
			s.logger.Warn().Str("file", name).Msg("episode filename has no leading date; using today")
			published = today
		}

		ep := s.newEpisode(name, published)
		ep.DateFromName = ok
		s.enrich(&ep)
		episodes = append(episodes, ep)
	}

	return episodes, nil
}

// Register makes sure the freshly synthesized filename is part of the episode set.
// When an existing episode already resolves to the same filename the input is
// returned unchanged; otherwise a new episode dated today is appended.
//
// The audio file is expected to exist; Register does not touch the disk.
func (s *Store) Register(existing []models.Episode, filename string) []models.Episode {
	candidate := EpisodeURL(s.siteBase, filename)
	for _, ep := range existing {
		if ep.Filename == filename || ep.URL == candidate || strings.HasSuffix(ep.URL, "/"+filename) {
			return existing
		}
	}

	ep := s.newEpisode(filename, PublishTime(s.now()))
	s.logger.Info().Str("file", filename).Str("guid", ep.GUID).Msg("registered new episode")

	out := make([]models.Episode, len(existing), len(existing)+1)
	copy(out, existing)
	return append(out, ep)
}

func (s *Store) newEpisode(filename string, published time.Time) models.Episode {
	return models.Episode{
		GUID:        GUID(filename),
		Filename:    filename,
		Title:       TitleForDate(published),
		URL:         EpisodeURL(s.siteBase, filename),
		PublishDate: published,
	}
}

func (s *Store) enrich(ep *models.Episode) {
	audio, err := metadata.Probe(filepath.Join(s.dir, ep.Filename))
	if err != nil {
		s.logger.Debug().Err(err).Str("file", ep.Filename).Msg("probe failed")
		return
	}
	ep.FilesizeBytes = audio.FilesizeBytes
	ep.DurationSeconds = audio.DurationSeconds
	ep.Author = audio.Artist
}
