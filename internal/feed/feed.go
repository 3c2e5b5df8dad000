package feed

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"morning-brief/internal/models"
)

const itunesNS = "http://www.itunes.com/dtds/podcast-1.0.dtd"

// Channel describes the constant channel-level metadata.
type Channel struct {
	Title       string
	Link        string
	Description string
	Language    string
	Author      string
}

// Render serializes the channel and every episode into an RSS 2.0 document with the
// iTunes podcast namespace. Items keep the order of episodes.
func Render(ch Channel, episodes []models.Episode, built time.Time) ([]byte, error) {
	if ch.Language == "" {
		ch.Language = "en-gb"
	}
	if ch.Description == "" {
		ch.Description = ch.Title
	}

	rss := rssFeed{
		Version:  "2.0",
		ITunesNS: itunesNS,
		Channel: rssChannel{
			Title:          ch.Title,
			Link:           ch.Link,
			Description:    ch.Description,
			Language:       ch.Language,
			LastBuildDate:  built.Format(time.RFC1123Z),
			ITunesExplicit: "false",
			ITunesAuthor:   ch.Author,
			Items:          make([]rssItem, 0, len(episodes)),
		},
	}

	for _, ep := range episodes {
		item := rssItem{
			Title:       ep.Title,
			Description: ep.Title,
			PubDate:     ep.PublishDate.Format(time.RFC1123Z),
			GUID:        rssGUID{IsPermaLink: "false", Value: ep.GUID},
			Enclosure: rssEnclosure{
				URL:    ep.URL,
				Length: 0,
				Type:   "audio/mpeg",
			},
		}
		if ep.DurationSeconds != nil {
			item.ITunesDuration = formatDuration(*ep.DurationSeconds)
		}
		if ep.Author != nil {
			item.ITunesAuthor = *ep.Author
		}
		rss.Channel.Items = append(rss.Channel.Items, item)
	}

	output, err := xml.MarshalIndent(rss, "", "  ")
	if err != nil {
		return nil, err
	}

	data := append([]byte(xml.Header), output...)
	return append(data, '\n'), nil
}

// Write renders the feed and replaces the file at path in one rename, so readers
// never observe a partially written document. The parent directory is created.
func Write(ch Channel, episodes []models.Episode, path string, built time.Time) error {
	data, err := Render(ch, episodes, built)
	if err != nil {
		return fmt.Errorf("render feed: %w", err)
	}
	return writeFileAtomic(path, data, 0o644)
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create feed dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp feed: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp feed: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp feed: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp feed: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace feed: %w", err)
	}
	return nil
}

func formatDuration(seconds float64) string {
	if seconds <= 0 {
		return ""
	}
	total := int64(seconds + 0.5)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
}

type rssFeed struct {
	XMLName  xml.Name   `xml:"rss"`
	Version  string     `xml:"version,attr"`
	ITunesNS string     `xml:"xmlns:itunes,attr"`
	Channel  rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title          string    `xml:"title"`
	Link           string    `xml:"link"`
	Description    string    `xml:"description"`
	Language       string    `xml:"language"`
	LastBuildDate  string    `xml:"lastBuildDate"`
	ITunesExplicit string    `xml:"itunes:explicit"`
	ITunesAuthor   string    `xml:"itunes:author,omitempty"`
	Items          []rssItem `xml:"item"`
}

type rssItem struct {
	Title          string       `xml:"title"`
	Description    string       `xml:"description"`
	PubDate        string       `xml:"pubDate"`
	GUID           rssGUID      `xml:"guid"`
	Enclosure      rssEnclosure `xml:"enclosure"`
	ITunesDuration string       `xml:"itunes:duration,omitempty"`
	ITunesAuthor   string       `xml:"itunes:author,omitempty"`
}

type rssGUID struct {
	IsPermaLink string `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

type rssEnclosure struct {
	URL    string `xml:"url,attr"`
	Length int64  `xml:"length,attr"`
	Type   string `xml:"type,attr"`
}
