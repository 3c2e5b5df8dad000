package episodes

import (
	"crypto/sha1"
	"encoding/hex"
	"net/url"
	"path/filepath"
	"strings"
	"time"
)

const (
	// Extension is the only audio extension treated as an episode.
	Extension = ".mp3"

	filenameSuffix = "-morning-brief" + Extension
	dateLayout     = "2006-01-02"
	titleLayout    = "02 Jan 2006"
	titlePrefix    = "Morning Brief — "

	// PublishHour is the local time-of-day every episode is published at.
	PublishHour = 4
)

// FilenameForDate returns the canonical episode filename for the given day.
func FilenameForDate(day time.Time) string {
	return day.Format(dateLayout) + filenameSuffix
}

// ParseFilenameDate extracts the publish date from the leading YYYY-MM-DD fields
// of an episode filename. The result is placed at PublishHour in loc.
func ParseFilenameDate(name string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	stem := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	parts := strings.Split(stem, "-")
	if len(parts) < 3 {
		return time.Time{}, false
	}

	day, err := time.ParseInLocation(dateLayout, strings.Join(parts[:3], "-"), loc)
	if err != nil {
		return time.Time{}, false
	}
	return PublishTime(day), true
}

// PublishTime returns the publish instant for the calendar day of t.
func PublishTime(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), PublishHour, 0, 0, 0, t.Location())
}

// TitleForDate renders the human-readable episode title.
func TitleForDate(day time.Time) string {
	return titlePrefix + day.Format(titleLayout)
}

// EpisodeURL joins the site base, the episodes path segment and the filename.
func EpisodeURL(siteBase, filename string) string {
	joined, err := url.JoinPath(siteBase, "episodes", filename)
	if err != nil {
		return strings.TrimRight(siteBase, "/") + "/episodes/" + filename
	}
	return joined
}

// GUID returns the stable item identifier: the hex SHA-1 of the filename.
func GUID(filename string) string {
	sum := sha1.Sum([]byte(filename))
	return hex.EncodeToString(sum[:])
}

// IsEpisodeFile reports whether name carries the episode audio extension.
func IsEpisodeFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), Extension)
}
