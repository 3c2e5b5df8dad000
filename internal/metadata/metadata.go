package metadata

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
	"github.com/tcolgate/mp3"
)

// Audio holds what can be learned from an episode file without trusting its name.
type Audio struct {
	Title           string
	Artist          *string
	DurationSeconds *float64
	FilesizeBytes   int64
}

// Probe inspects the audio file at path. Tag and duration failures are not errors;
// only a missing or unreadable file is.
func Probe(path string) (Audio, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Audio{}, err
	}

	title, artist := readTags(path)
	audio := Audio{
		Title:         title,
		Artist:        artist,
		FilesizeBytes: info.Size(),
	}

	if strings.EqualFold(filepath.Ext(path), ".mp3") {
		if dur, err := MP3Duration(path); err == nil && dur > 0 {
			audio.DurationSeconds = &dur
		}
	}
	return audio, nil
}

func readTags(path string) (string, *string) {
	f, err := os.Open(path)
	if err != nil {
		return "", nil
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil {
		return "", nil
	}
	return strings.TrimSpace(meta.Title()), optionalString(meta.Artist())
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

// MP3Duration sums the frame durations of the MPEG audio stream at path.
func MP3Duration(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	return DecodeDuration(f)
}

// DecodeDuration sums frame durations read from r until EOF.
func DecodeDuration(r io.Reader) (float64, error) {
	decoder := mp3.NewDecoder(r)
	var frame mp3.Frame
	var skipped int
	var total float64

	for {
		err := decoder.Decode(&frame, &skipped)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return 0, err
		}
		total += frame.Duration().Seconds()
	}

	return total, nil
}
