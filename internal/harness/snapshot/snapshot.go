// Package snapshot writes sanitized HTML captures of failed scenarios.
package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/grez-lucas/bank-uicheck/internal/harness/browser"
	"github.com/sirupsen/logrus"
)

// Flattener is implemented by pages that can inline shadow roots and
// same-origin iframes into the captured document.
type Flattener interface {
	FlattenedHTML(ctx context.Context) (string, error)
}

type Writer struct {
	Dir string
	log logrus.FieldLogger
}

func NewWriter(dir string, log logrus.FieldLogger) *Writer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Writer{Dir: dir, log: log}
}

// Capture saves the current document of page as <Dir>/<name>.html and
// returns the path. Slashes in name become underscores.
func (w *Writer) Capture(ctx context.Context, name string, page browser.Page) (string, error) {
	html, err := documentOf(ctx, page, w.log)
	if err != nil {
		return "", fmt.Errorf("capture %s: %w", name, err)
	}

	clean, err := SanitizeHTML(html)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create artifacts dir: %w", err)
	}
	path := filepath.Join(w.Dir, FileName(name))
	if err := os.WriteFile(path, []byte(clean), 0o644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	w.log.WithField("path", path).Info("Saved failure snapshot")
	return path, nil
}

func documentOf(ctx context.Context, page browser.Page, log logrus.FieldLogger) (string, error) {
	if f, ok := page.(Flattener); ok {
		html, err := f.FlattenedHTML(ctx)
		if err == nil {
			return html, nil
		}
		log.WithError(err).Debug("Flattening failed, using plain HTML")
	}
	return page.HTML(ctx)
}

// FileName maps a scenario name to a snapshot file name.
func FileName(name string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", " ", "-", ":", "-")
	return r.Replace(name) + ".html"
}
