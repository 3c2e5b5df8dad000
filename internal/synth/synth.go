package synth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

const (
	// PlaceholderEngine names the silent fallback in a Result.
	PlaceholderEngine = "silence"
	// KeptEngine names the case where earlier audio at the output path was kept.
	KeptEngine = "existing"

	partSuffix = ".part"
)

// Engine converts text to an audio file at outPath.
type Engine interface {
	Name() string
	Synthesize(ctx context.Context, text, outPath string) error
}

// Result reports how the audio for a run was produced.
type Result struct {
	Engine      string
	Placeholder bool
	Kept        bool
	Attempts    []Attempt
}

// Attempt records a failed engine invocation.
type Attempt struct {
	Engine string
	Err    error
}

// Chain tries each engine in turn and falls back to a silent MP3 when all fail.
type Chain struct {
	engines []Engine
	silence int
	logger  zerolog.Logger
}

// NewChain creates a Chain over engines. The fallback is one second of silence.
func NewChain(engines []Engine, logger zerolog.Logger) *Chain {
	return &Chain{engines: engines, silence: 1000, logger: logger}
}

// Synthesize writes audio for text to outPath. Engines write to a ".part" file next
// to outPath that is renamed into place only once it holds audio, so a failed run
// never disturbs an episode already published at outPath. When every engine fails
// and outPath already holds audio, that file is kept; otherwise a silent placeholder
// is written. It only returns an error when even the placeholder cannot be written.
func (c *Chain) Synthesize(ctx context.Context, text, outPath string) (Result, error) {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return Result{}, fmt.Errorf("create audio dir: %w", err)
	}

	staging := outPath + partSuffix
	defer os.Remove(staging)

	var result Result
	for _, engine := range c.engines {
		_ = os.Remove(staging)
		err := engine.Synthesize(ctx, text, staging)
		if err == nil {
			err = checkOutput(staging)
		}
		if err == nil {
			err = os.Rename(staging, outPath)
		}
		if err == nil {
			result.Engine = engine.Name()
			c.logger.Info().Str("engine", engine.Name()).Str("output", outPath).Msg("speech synthesized")
			return result, nil
		}

		c.logger.Warn().Err(err).Str("engine", engine.Name()).Msg("speech engine failed")
		result.Attempts = append(result.Attempts, Attempt{Engine: engine.Name(), Err: err})

		if ctx.Err() != nil {
			break
		}
	}

	if checkOutput(outPath) == nil {
		result.Engine = KeptEngine
		result.Kept = true
		c.logger.Warn().Str("output", outPath).Msg("all speech engines failed; keeping existing audio")
		return result, nil
	}

	if err := WriteSilence(staging, c.silence); err != nil {
		return result, fmt.Errorf("write placeholder audio: %w", err)
	}
	if err := os.Rename(staging, outPath); err != nil {
		return result, fmt.Errorf("write placeholder audio: %w", err)
	}
	result.Engine = PlaceholderEngine
	result.Placeholder = true
	c.logger.Warn().Str("output", outPath).Msg("all speech engines failed; wrote silent placeholder")
	return result, nil
}

func checkOutput(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("engine produced no output: %w", err)
	}
	if info.IsDir() || info.Size() == 0 {
		return errors.New("engine produced empty output")
	}
	return nil
}
