package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"morning-brief/internal/models"
	"morning-brief/internal/pipeline"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Collect headlines, synthesize today's episode and rewrite the feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withPipeline(cmd, func(p *pipeline.Pipeline, _ zerolog.Logger) error {
				report, err := p.Run(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, report)
				}

				placeholders := "none"
				if len(report.PlaceholderSections) > 0 {
					placeholders = strings.Join(report.PlaceholderSections, ", ")
				}
				rows := [][]string{
					{"Run", report.RunID},
					{"Episode", report.Episode},
					{"Engine", report.Engine},
					{"Placeholder audio", yesNo(report.PlaceholderAudio)},
					{"Placeholder sections", placeholders},
					{"Episodes in feed", strconv.Itoa(report.EpisodeCount)},
					{"Feed", report.FeedPath},
					{"Index created", yesNo(report.IndexCreated)},
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows, nil))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the run report as JSON")
	return cmd
}

func newRebuildCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild",
		Short: "Regenerate the feed from the episode directory without synthesizing",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withPipeline(cmd, func(p *pipeline.Pipeline, _ zerolog.Logger) error {
				count, err := p.Rebuild()
				if err != nil {
					return err
				}
				cfg, _ := ctx.ensureConfig()
				fmt.Fprintf(cmd.OutOrStdout(), "Feed rebuilt with %d episodes: %s\n", count, cfg.FeedPath)
				return nil
			})
		},
	}
}

func newScriptCommand(ctx *commandContext) *cobra.Command {
	var showSections bool

	cmd := &cobra.Command{
		Use:   "script",
		Short: "Print today's script without synthesizing it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withPipeline(cmd, func(p *pipeline.Pipeline, _ zerolog.Logger) error {
				text, sections, err := p.Preview(cmd.Context())
				if err != nil {
					return err
				}
				if showSections {
					fmt.Fprintln(cmd.OutOrStdout(), renderSections(sections))
					return nil
				}
				fmt.Fprint(cmd.OutOrStdout(), text)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&showSections, "sections", false, "Show per-section collection status instead of the script")
	return cmd
}

func renderSections(sections []models.Section) string {
	rows := make([][]string, 0, len(sections))
	for _, s := range sections {
		rows = append(rows, []string{s.Key, s.Title, string(s.Status()), strconv.Itoa(len(s.Headlines))})
	}
	return renderTable([]string{"Key", "Section", "Status", "Headlines"}, rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight})
}

func newEpisodesCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "episodes",
		Short: "List the episodes the feed would contain",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withPipeline(cmd, func(p *pipeline.Pipeline, _ zerolog.Logger) error {
				eps, err := p.Store().Discover()
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, eps)
				}
				if len(eps) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No episodes found in", p.Store().Dir())
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderEpisodes(eps))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print episodes as JSON")
	return cmd
}

func renderEpisodes(eps []models.Episode) string {
	rows := make([][]string, 0, len(eps))
	for _, ep := range eps {
		published := ep.PublishDate.Format("2006-01-02 15:04")
		if !ep.DateFromName {
			published += " *"
		}
		duration := "-"
		if ep.DurationSeconds != nil {
			duration = (time.Duration(*ep.DurationSeconds * float64(time.Second))).Round(time.Second).String()
		}
		rows = append(rows, []string{
			published,
			ep.Filename,
			humanize.Bytes(uint64(ep.FilesizeBytes)),
			duration,
			shortGUID(ep.GUID),
		})
	}
	return renderTable([]string{"Published", "File", "Size", "Duration", "GUID"}, rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft})
}

func shortGUID(guid string) string {
	if len(guid) > 12 {
		return guid[:12]
	}
	return guid
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent pipeline runs from the run journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			j, err := ctx.openJournal(cfg)
			if err != nil {
				return err
			}
			if j == nil {
				return errJournalDisabled
			}
			defer j.Close()

			entries, err := j.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				status := "ok"
				if e.Error != "" {
					status = e.Error
				}
				rows = append(rows, []string{
					humanize.Time(e.StartedAt),
					e.Episode,
					e.Engine,
					yesNo(e.PlaceholderAudio),
					strconv.Itoa(e.PlaceholderSections),
					strconv.Itoa(e.EpisodeCount),
					status,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Started", "Episode", "Engine", "Silent", "Placeholders", "Episodes", "Status"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to show")
	return cmd
}
