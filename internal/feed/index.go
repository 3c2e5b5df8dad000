package feed

import (
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
)

var indexTemplate = template.Must(template.New("index").Parse(
	`<!doctype html><meta charset="utf-8"><title>{{.Title}}</title><p>Feed: <a href="{{.Feed}}">{{.Feed}}</a>` + "\n"))

// EnsureIndex writes the landing page at path unless a file already exists there.
// It reports whether the page was created.
func EnsureIndex(path, title, feedHref string) (bool, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("create index dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return false, nil
		}
		return false, fmt.Errorf("create index: %w", err)
	}

	err = indexTemplate.Execute(f, struct{ Title, Feed string }{title, feedHref})
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return false, fmt.Errorf("write index: %w", err)
	}
	return true, nil
}
