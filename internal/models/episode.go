package models

import "time"

// Episode represents one published briefing audio file.
type Episode struct {
	GUID            string    `json:"guid"`
	Filename        string    `json:"filename"`
	Title           string    `json:"title"`
	URL             string    `json:"url"`
	PublishDate     time.Time `json:"publish_date"`
	DateFromName    bool      `json:"date_from_name"`
	Author          *string   `json:"author,omitempty"`
	DurationSeconds *float64  `json:"duration_seconds,omitempty"`
	FilesizeBytes   int64     `json:"filesize_bytes"`
}
