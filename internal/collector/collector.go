// Package collector gathers the day's headlines from the configured sources.
//
// A source that cannot be reached or parsed never fails the collection: it
// contributes a single placeholder headline instead, flagged as such so callers
// can tell real data from substitutes.
package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"

	"morning-brief/internal/config"
	"morning-brief/internal/models"
)

// Fetcher retrieves the raw body of a source URL.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Collector queries sources sequentially and groups results into sections.
type Collector struct {
	fetcher  Fetcher
	sections []config.Section
	sources  []config.Source
	logger   zerolog.Logger
}

// New creates a Collector for the given sections and sources.
func New(fetcher Fetcher, sections []config.Section, sources []config.Source, logger zerolog.Logger) *Collector {
	return &Collector{
		fetcher:  fetcher,
		sections: sections,
		sources:  sources,
		logger:   logger,
	}
}

// Collect returns one Section per configured section, in configuration order.
func (c *Collector) Collect(ctx context.Context) []models.Section {
	out := make([]models.Section, 0, len(c.sections))
	index := make(map[string]int, len(c.sections))
	for _, s := range c.sections {
		index[s.Key] = len(out)
		out = append(out, models.Section{Key: s.Key, Title: s.Title, Commentary: s.Commentary})
	}

	for _, src := range c.sources {
		i, ok := index[src.Section]
		if !ok {
			continue
		}
		headlines, err := c.collectSource(ctx, src)
		if err != nil {
			c.logger.Warn().Err(err).Str("source", src.Name).Str("section", src.Section).Msg("source unavailable; using placeholder")
			headlines = []models.Headline{{Title: src.Placeholder, Source: src.Name, Placeholder: true}}
		}
		out[i].Headlines = append(out[i].Headlines, headlines...)
	}

	for _, s := range out {
		c.logger.Debug().Str("section", s.Key).Str("status", string(s.Status())).Int("headlines", len(s.Headlines)).Msg("section collected")
	}
	return out
}

func (c *Collector) collectSource(ctx context.Context, src config.Source) ([]models.Headline, error) {
	body, err := c.fetcher.Get(ctx, src.URL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", src.URL, err)
	}

	switch src.Kind {
	case config.SourceKindYahooTrending:
		return parseTrending(body, src)
	default:
		return parseFeed(body, src)
	}
}

func parseFeed(body []byte, src config.Source) ([]models.Headline, error) {
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	headlines := make([]models.Headline, 0, src.Limit)
	for _, item := range feed.Items {
		title := collapseSpace(item.Title)
		if title == "" {
			continue
		}
		summary := item.Description
		if summary == "" {
			summary = item.Content
		}
		headlines = append(headlines, models.Headline{
			Title:   title,
			Summary: Summarize(summary, summaryLimit),
			Source:  src.Name,
		})
		if len(headlines) >= src.Limit {
			break
		}
	}
	return headlines, nil
}

type trendingResponse struct {
	Finance struct {
		Result []struct {
			Quotes []struct {
				Symbol string `json:"symbol"`
			} `json:"quotes"`
		} `json:"result"`
		Error any `json:"error"`
	} `json:"finance"`
}

// parseTrending turns the Yahoo Finance trending payload into a single headline
// listing up to src.Limit symbols.
func parseTrending(body []byte, src config.Source) ([]models.Headline, error) {
	var resp trendingResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode trending: %w", err)
	}
	if len(resp.Finance.Result) == 0 {
		return nil, errors.New("trending response has no result")
	}

	var symbols []string
	for _, q := range resp.Finance.Result[0].Quotes {
		if s := strings.TrimSpace(q.Symbol); s != "" {
			symbols = append(symbols, s)
		}
		if len(symbols) >= src.Limit {
			break
		}
	}
	if len(symbols) == 0 {
		return nil, nil
	}
	return []models.Headline{{
		Title:  "Trending tickers: " + strings.Join(symbols, ", "),
		Source: src.Name,
	}}, nil
}
