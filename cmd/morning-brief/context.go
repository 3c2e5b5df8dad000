package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"morning-brief/internal/collector"
	"morning-brief/internal/config"
	"morning-brief/internal/fetch"
	"morning-brief/internal/journal"
	"morning-brief/internal/logging"
	"morning-brief/internal/pipeline"
	"morning-brief/internal/synth"
)

var errJournalDisabled = errors.New("run journal disabled; set BRIEF_JOURNAL_DB or journal in the config file")

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (config.Config, error) {
	c.configOnce.Do(func() {
		if c.configFlag != nil {
			if path := strings.TrimSpace(*c.configFlag); path != "" {
				if err := os.Setenv("BRIEF_CONFIG", path); err != nil {
					c.configErr = err
					return
				}
			}
		}
		c.config, c.configErr = config.Load()
	})
	return c.config, c.configErr
}

func (c *commandContext) logger(cmd *cobra.Command) zerolog.Logger {
	return logging.FromEnv(cmd.ErrOrStderr())
}

// openJournal returns nil without error when no journal is configured.
func (c *commandContext) openJournal(cfg config.Config) (*journal.Journal, error) {
	if cfg.JournalPath == "" {
		return nil, nil
	}
	j, err := journal.Open(cfg.JournalPath)
	if err != nil {
		return nil, fmt.Errorf("open run journal: %w", err)
	}
	return j, nil
}

// withPipeline wires the pipeline from the loaded configuration and closes its
// resources once fn returns.
func (c *commandContext) withPipeline(cmd *cobra.Command, fn func(*pipeline.Pipeline, zerolog.Logger) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger := c.logger(cmd)

	client := fetch.New(fetch.Options{Timeout: cfg.HTTPTimeout, UserAgent: cfg.UserAgent})
	col := collector.New(client, cfg.Sections, cfg.Sources, logger)
	chain := synth.NewChain(synth.EnginesFromConfig(cfg.Engines), logger)

	j, err := c.openJournal(cfg)
	if err != nil {
		return err
	}
	var runLog pipeline.Journal
	if j != nil {
		runLog = j
		defer func() {
			if err := j.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing run journal")
			}
		}()
	}

	return fn(pipeline.New(cfg, col, chain, runLog, time.Now, logger), logger)
}
