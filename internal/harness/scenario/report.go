package scenario

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

// Status of a finished scenario.
type Status string

const (
	StatusPass Status = "pass"
	// StatusPassAlternate means the scenario passed, but at least one check
	// was satisfied only by its alternate outcome.
	StatusPassAlternate Status = "pass-alternate"
	StatusFail          Status = "fail"
)

type Result struct {
	Name     string   `json:"name" yaml:"name"`
	Status   Status   `json:"status" yaml:"status"`
	Seconds  float64  `json:"seconds" yaml:"seconds"`
	Outcomes []string `json:"outcomes,omitempty" yaml:"outcomes,omitempty"`
	Error    string   `json:"error,omitempty" yaml:"error,omitempty"`
	Snapshot string   `json:"snapshot,omitempty" yaml:"snapshot,omitempty"`
}

type Report struct {
	Engine  string    `json:"engine" yaml:"engine"`
	BaseURL string    `json:"base_url" yaml:"base_url"`
	Started time.Time `json:"started" yaml:"started"`
	Results []Result  `json:"results" yaml:"results"`
}

func (r *Report) count(s Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}

func (r *Report) Passed() int { return r.count(StatusPass) + r.count(StatusPassAlternate) }
func (r *Report) Alternates() int { return r.count(StatusPassAlternate) }
func (r *Report) Failed() int { return r.count(StatusFail) }

// OK reports whether every scenario passed.
func (r *Report) OK() bool { return r.Failed() == 0 }

func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func (r *Report) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return err
	}
	return enc.Close()
}

//nolint:gochecknoglobals
var (
	SuccColor = color.New(color.FgGreen)
	WarnColor = color.New(color.FgYellow)
	FailColor = color.New(color.FgRed)
)

const (
	SuccMark = "✓"
	WarnMark = "!"
	FailMark = "✗"
)

// WriteSummary prints a human readable line per scenario followed by totals.
func (r *Report) WriteSummary(w io.Writer, noColor bool) {
	for _, res := range r.Results {
		mark, c := SuccMark, SuccColor
		switch res.Status {
		case StatusPassAlternate:
			mark, c = WarnMark, WarnColor
		case StatusFail:
			mark, c = FailMark, FailColor
		}
		line := fmt.Sprintf("%s %s (%.1fs)", mark, res.Name, res.Seconds)
		if noColor {
			_, _ = fmt.Fprintln(w, line)
		} else {
			_, _ = c.Fprintln(w, line)
		}
		for _, o := range res.Outcomes {
			_, _ = fmt.Fprintf(w, "    %s\n", o)
		}
		if res.Error != "" {
			_, _ = fmt.Fprintf(w, "    error: %s\n", res.Error)
		}
		if res.Snapshot != "" {
			_, _ = fmt.Fprintf(w, "    snapshot: %s\n", res.Snapshot)
		}
	}
	_, _ = fmt.Fprintf(w, "\n%d passed (%d via alternate), %d failed\n", r.Passed(), r.Alternates(), r.Failed())
}
