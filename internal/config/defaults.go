package config

// DefaultSections returns the four fixed briefing sections in narrative order.
func DefaultSections() []Section {
	return []Section{
		{Key: "markets", Title: "Markets & Economics", Commentary: "Oil softness eases inflation pressure."},
		{Key: "logistics", Title: "Logistics & Industry", Commentary: "Chokepoints risk Q4 retail prices."},
		{Key: "science", Title: "Science & Technology", Commentary: "Faster batteries could reset EV adoption."},
		{Key: "geopol", Title: "Critical Geopolitics"},
	}
}

// DefaultSources returns the upstream providers queried when no config file overrides them.
func DefaultSources() []Source {
	return []Source{
		{
			Name:        "Yahoo Finance trending",
			Section:     "markets",
			Kind:        SourceKindYahooTrending,
			URL:         "https://query1.finance.yahoo.com/v1/finance/trending/US",
			Limit:       5,
			Placeholder: "Markets data placeholder.",
		},
		{
			Name:        "UNCTAD",
			Section:     "logistics",
			Kind:        SourceKindFeed,
			URL:         "https://unctad.org/rss.xml",
			Limit:       1,
			Placeholder: "UNCTAD logistics headline placeholder.",
		},
		{
			Name:        "arXiv energy",
			Section:     "science",
			Kind:        SourceKindFeed,
			URL:         "http://export.arxiv.org/api/query?search_query=all:energy&start=0&max_results=2&sortBy=submittedDate&sortOrder=descending",
			Limit:       2,
			Placeholder: "Science placeholder.",
		},
		{
			Name:        "NATO news",
			Section:     "geopol",
			Kind:        SourceKindFeed,
			URL:         "https://www.nato.int/cps/en/natohq/news.htm?selectedLocale=en&format=xml",
			Limit:       1,
			Placeholder: "Geopolitics placeholder.",
		},
	}
}

// DefaultEngines returns the synthesis engines tried in order before falling back
// to a silent placeholder.
func DefaultEngines() []Engine {
	return []Engine{
		{
			Name:    "coqui-xtts",
			Command: "tts",
			Args: []string{
				"--model_name", "tts_models/multilingual/multi-dataset/xtts_v2",
				"--text", "{text}",
				"--language_idx", "en",
				"--out_path", "{output}",
			},
		},
		{
			Name:    "espeak-ng",
			Command: "espeak-ng",
			Args:    []string{"-v", "en-gb", "-f", "{text_file}", "-w", "{output}"},
		},
	}
}
