package outcome

import (
	"context"
	"sync"
)

type recorderKey struct{}

// Recorder collects the verdicts accepted while a context is in flight, so a
// runner can tell a clean pass from one that went through an alternate path.
type Recorder struct {
	mu       sync.Mutex
	verdicts []Verdict
}

// WithRecorder returns a context whose evaluations are recorded in r.
func WithRecorder(ctx context.Context, r *Recorder) context.Context {
	return context.WithValue(ctx, recorderKey{}, r)
}

func recorderFrom(ctx context.Context) *Recorder {
	r, _ := ctx.Value(recorderKey{}).(*Recorder)
	return r
}

func (r *Recorder) add(v Verdict) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.verdicts = append(r.verdicts, v)
	r.mu.Unlock()
}

func (r *Recorder) Verdicts() []Verdict {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Verdict(nil), r.verdicts...)
}

// Alternates returns the verdicts that were accepted through the alternate path.
func (r *Recorder) Alternates() []Verdict {
	var out []Verdict
	for _, v := range r.Verdicts() {
		if v.Outcome == Alternate {
			out = append(out, v)
		}
	}
	return out
}
