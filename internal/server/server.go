// Package server serves the generated site locally so the feed, landing page and
// episode audio can be checked before publishing.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	pathpkg "path"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"morning-brief/internal/models"
)

// EpisodeLister abstracts the episode source for the HTTP handlers.
type EpisodeLister interface {
	Discover() ([]models.Episode, error)
}

// Paths locates the generated artefacts on disk.
type Paths struct {
	EpisodeDir string
	FeedPath   string
	IndexPath  string
}

type serverHandler struct {
	episodes   EpisodeLister
	episodeDir string
	feedPath   string
	indexPath  string
	logger     zerolog.Logger
}

// New creates the HTTP handler for the preview server.
func New(episodes EpisodeLister, paths Paths, logger zerolog.Logger) http.Handler {
	root := filepath.Clean(paths.EpisodeDir)
	absRoot, err := filepath.Abs(root)
	if err != nil {
		logger.Warn().Err(err).Str("dir", paths.EpisodeDir).Msg("unable to resolve absolute episode dir")
		absRoot = root
	}

	h := &serverHandler{
		episodes:   episodes,
		episodeDir: absRoot,
		feedPath:   paths.FeedPath,
		indexPath:  paths.IndexPath,
		logger:     logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/api/episodes", h.handleEpisodes)
	mux.HandleFunc("/feed.xml", h.handleFeed)
	mux.HandleFunc("/episodes/", h.handleAudio)
	mux.HandleFunc("/", h.handleIndex)

	return logRequests(mux, logger)
}

func (h *serverHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (h *serverHandler) handleEpisodes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	eps, err := h.episodes.Discover()
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to discover episodes")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(eps); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode episodes")
	}
}

func (h *serverHandler) handleFeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	h.serveFile(w, r, h.feedPath)
}

func (h *serverHandler) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	h.serveFile(w, r, h.indexPath)
}

func (h *serverHandler) handleAudio(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	rel := strings.TrimPrefix(r.URL.Path, "/episodes/")
	rel = pathpkg.Clean(rel)
	rel = strings.TrimPrefix(rel, "/")
	if rel == "" || rel == "." {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	target := filepath.Join(h.episodeDir, filepath.FromSlash(rel))
	resolved, err := filepath.Abs(target)
	if err != nil {
		h.logger.Error().Err(err).Str("path", target).Msg("failed to resolve audio path")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if !pathWithinRoot(h.episodeDir, resolved) {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	h.serveFile(w, r, resolved)
}

func (h *serverHandler) serveFile(w http.ResponseWriter, r *http.Request, path string) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			w.Header().Del("Content-Type")
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.logger.Error().Err(err).Str("path", path).Msg("failed to stat file")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if info.IsDir() {
		w.Header().Del("Content-Type")
		w.WriteHeader(http.StatusNotFound)
		return
	}

	f, err := os.Open(path)
	if err != nil {
		h.logger.Error().Err(err).Str("path", path).Msg("failed to open file")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	defer f.Close()

	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

type statusWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}

func logRequests(next http.Handler, logger zerolog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sw, r)
		logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", sw.status).
			Int("bytes", sw.size).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func pathWithinRoot(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	return rel != ".." && !strings.HasPrefix(rel, "../")
}
