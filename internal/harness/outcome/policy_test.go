package outcome

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixed(name string, ok bool) Probe {
	return Probe{Name: name, Check: func(context.Context) (bool, error) { return ok, nil }}
}

func failing(name string, err error) Probe {
	return Probe{Name: name, Check: func(context.Context) (bool, error) { return false, err }}
}

func TestEvaluate_PriorityOrder(t *testing.T) {
	tests := []struct {
		name      string
		primary   bool
		secondary bool
		alternate bool
		want      Outcome
	}{
		{"primary wins", true, true, true, Primary},
		{"secondary when primary missing", false, true, true, Secondary},
		{"alternate as last resort", false, false, true, Alternate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := test.NewNullLogger()
			p := NewPolicy(logger)

			v, err := p.Evaluate(context.Background(), Expectation{
				Check:     "failed-login",
				Primary:   fixed("title", tt.primary),
				Secondary: fixed("alert", tt.secondary),
				Alternate: fixed("dashboard", tt.alternate),
			})

			require.NoError(t, err)
			assert.Equal(t, tt.want, v.Outcome)
			assert.Equal(t, "failed-login", v.Check)
		})
	}
}

func TestEvaluate_StopsAtFirstMatch(t *testing.T) {
	p := NewPolicy(nil)
	called := false

	_, err := p.Evaluate(context.Background(), Expectation{
		Check:   "c",
		Primary: fixed("first", true),
		Secondary: Probe{Name: "second", Check: func(context.Context) (bool, error) {
			called = true
			return true, nil
		}},
	})

	require.NoError(t, err)
	assert.False(t, called)
}

func TestEvaluate_AlternateIsLoggedAtWarn(t *testing.T) {
	logger, hook := test.NewNullLogger()
	p := NewPolicy(logger)

	_, err := p.Evaluate(context.Background(), Expectation{
		Check:     "failed-login",
		Primary:   fixed("title", false),
		Secondary: fixed("alert", false),
		Alternate: fixed("dashboard", true),
	})
	require.NoError(t, err)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "alternate", entry.Data["outcome"])
	assert.Equal(t, "failed-login", entry.Data["check"])
}

func TestEvaluate_NothingObserved(t *testing.T) {
	p := NewPolicy(nil)
	boom := errors.New("detached")

	_, err := p.Evaluate(context.Background(), Expectation{
		Check:     "failed-login",
		Primary:   fixed("title", false),
		Secondary: failing("alert", boom),
		Alternate: fixed("dashboard", false),
	})

	require.ErrorIs(t, err, ErrAmbiguous)
	assert.ErrorIs(t, err, boom)

	var amb *AmbiguousError
	require.ErrorAs(t, err, &amb)
	assert.Equal(t, []string{"title", "alert", "dashboard"}, amb.Tried)
}

func TestEvaluate_ProbeErrorFallsThrough(t *testing.T) {
	p := NewPolicy(nil)

	v, err := p.Evaluate(context.Background(), Expectation{
		Check:     "balance",
		Primary:   failing("visible", errors.New("timeout")),
		Secondary: fixed("present", true),
	})

	require.NoError(t, err)
	assert.Equal(t, Secondary, v.Outcome)
}

func TestEvaluate_SkipsUnsetProbes(t *testing.T) {
	p := NewPolicy(nil)

	_, err := p.Evaluate(context.Background(), Expectation{
		Check:   "balance",
		Primary: fixed("visible", false),
	})

	var amb *AmbiguousError
	require.ErrorAs(t, err, &amb)
	assert.Equal(t, []string{"visible"}, amb.Tried)
}

func TestEvaluate_CancelledContext(t *testing.T) {
	p := NewPolicy(nil)
	ctx, cancel := context.WithCancel(context.Background())

	_, err := p.Evaluate(ctx, Expectation{
		Check: "c",
		Primary: Probe{Name: "cancels", Check: func(context.Context) (bool, error) {
			cancel()
			return false, context.Canceled
		}},
		Secondary: fixed("never", true),
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrAmbiguous)
}

func TestRecorder(t *testing.T) {
	p := NewPolicy(nil)
	rec := &Recorder{}
	ctx := WithRecorder(context.Background(), rec)

	_, err := p.Evaluate(ctx, Expectation{Check: "a", Primary: fixed("p", true)})
	require.NoError(t, err)
	_, err = p.Evaluate(ctx, Expectation{Check: "b", Primary: fixed("p", false), Alternate: fixed("alt", true)})
	require.NoError(t, err)
	_, err = p.Evaluate(ctx, Expectation{Check: "c", Primary: fixed("p", false)})
	require.Error(t, err)

	assert.Len(t, rec.Verdicts(), 2)
	assert.Equal(t, []Verdict{{Check: "b", Outcome: Alternate, Probe: "alt"}}, rec.Alternates())

	// Evaluating without a recorder is fine.
	_, err = p.Evaluate(context.Background(), Expectation{Check: "d", Primary: fixed("p", true)})
	assert.NoError(t, err)
}
