package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestJournalRecordAndRecent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "runs.db")
	j, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer j.Close()

	ctx := context.Background()
	base := time.Date(2024, time.March, 1, 5, 0, 0, 0, time.UTC)
	for day := 0; day < 3; day++ {
		started := base.AddDate(0, 0, day)
		e := Entry{
			RunID:               "run-" + started.Format("0102"),
			StartedAt:           started,
			FinishedAt:          started.Add(90 * time.Second),
			Episode:             started.Format("2006-01-02") + "-morning-brief.mp3",
			Engine:              "coqui-xtts",
			PlaceholderSections: day,
			EpisodeCount:        day + 1,
		}
		if day == 2 {
			e.Engine = "silence"
			e.PlaceholderAudio = true
			e.Error = "write feed: disk full"
		}
		if err := j.Record(ctx, e); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	entries, err := j.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	latest := entries[0]
	if latest.RunID != "run-0303" || latest.Engine != "silence" || !latest.PlaceholderAudio {
		t.Fatalf("unexpected latest entry %+v", latest)
	}
	if latest.EpisodeCount != 3 || latest.PlaceholderSections != 2 || latest.Error == "" {
		t.Fatalf("unexpected counters %+v", latest)
	}
	if !latest.StartedAt.Equal(base.AddDate(0, 0, 2)) {
		t.Fatalf("expected started_at to round-trip, got %s", latest.StartedAt)
	}
	if entries[1].RunID != "run-0302" || entries[1].PlaceholderAudio {
		t.Fatalf("unexpected second entry %+v", entries[1])
	}
}

func TestJournalRejectsDuplicateRunID(t *testing.T) {
	j, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer j.Close()

	e := Entry{RunID: "same", StartedAt: time.Now(), FinishedAt: time.Now()}
	if err := j.Record(context.Background(), e); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := j.Record(context.Background(), e); err == nil {
		t.Fatalf("expected duplicate run id to fail")
	}
}
