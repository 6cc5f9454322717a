package scenario

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/remorses/tuistory/screen"
	"github.com/remorses/tuistory/session"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenario(t *testing.T) {
	path := writeScenario(t, `
name: smoke
command: bash --norc --noprofile
cols: 60
rows: 24
env:
  PS1: "$ "
steps:
  - type: 'echo "value: 42"'
  - press: [enter]
  - wait: '/value: \d+/'
  - click: { pattern: "42", first: true }
  - snapshot: after-echo
`)

	sc, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "smoke", sc.Name)
	require.Equal(t, 60, sc.Cols)
	require.Equal(t, "$ ", sc.Env["PS1"])
	require.Len(t, sc.Steps, 5)
	require.Equal(t, []string{"enter"}, sc.Steps[1].Press)
	require.True(t, sc.Steps[3].Click.First)
}

func TestLoadRejectsMissingCommand(t *testing.T) {
	path := writeScenario(t, `
name: broken
steps:
  - type: hi
`)
	_, err := Load(path)
	require.ErrorContains(t, err, "command is required")
}

func TestLoadRejectsEmptyStep(t *testing.T) {
	path := writeScenario(t, `
command: cat
steps:
  - {}
`)
	_, err := Load(path)
	require.ErrorContains(t, err, "step 1: no action")
}

func TestLoadRejectsMultiActionStep(t *testing.T) {
	path := writeScenario(t, `
command: cat
steps:
  - type: hi
    press: [enter]
`)
	_, err := Load(path)
	require.ErrorContains(t, err, "more than one action")
}

func TestLoadRejectsBadScrollDirection(t *testing.T) {
	path := writeScenario(t, `
command: cat
steps:
  - scroll: { direction: sideways }
`)
	_, err := Load(path)
	require.ErrorContains(t, err, "scroll direction")
}

func TestLaunchOptionsSplitsCommand(t *testing.T) {
	sc := &Scenario{
		Command: `bash -c 'echo "hi there"'`,
		Cols:    50,
		Rows:    20,
	}
	opts, err := sc.LaunchOptions()
	require.NoError(t, err)
	require.Equal(t, "bash", opts.Command)
	require.Equal(t, []string{"-c", `echo "hi there"`}, opts.Args)
	require.Equal(t, 50, opts.Cols)
}

// recorder captures every driver call a scenario run makes.
type recorder struct {
	calls  []string
	frames []string
	text   string
}

func (r *recorder) record(call string) { r.calls = append(r.calls, call) }

func (r *recorder) Type(text string) error { r.record("type:" + text); return nil }
func (r *recorder) Press(names ...string) error {
	r.record("press:" + names[0])
	return nil
}
func (r *recorder) Text(opts *screen.TextOptions) (string, error) {
	r.record("text")
	return r.text, nil
}
func (r *recorder) WaitForText(p screen.Pattern, timeout time.Duration) (string, error) {
	r.record("wait:" + p.String())
	return "", nil
}
func (r *recorder) WaitIdle(timeout time.Duration) error { r.record("wait_idle"); return nil }
func (r *recorder) Click(p screen.Pattern, opts *session.ClickOptions) error {
	r.record("click:" + p.String())
	return nil
}
func (r *recorder) ClickAt(x, y int) error    { r.record("click_at"); return nil }
func (r *recorder) ScrollUp(lines int) error  { r.record("scroll_up"); return nil }
func (r *recorder) ScrollDown(lines int) error {
	r.record("scroll_down")
	return nil
}
func (r *recorder) CaptureFrames(names []string, opts *session.CaptureOptions) ([]string, error) {
	r.record("frames")
	return r.frames, nil
}
func (r *recorder) Resize(cols, rows int) error { r.record("resize"); return nil }

func TestRunDispatchesSteps(t *testing.T) {
	rec := &recorder{text: "\nsnapshot body", frames: []string{"\nf0", "\nf1"}}
	reportDir := t.TempDir()

	sc := &Scenario{
		Command: "cat",
		Steps: []Step{
			{Type: "hello"},
			{Press: []string{"enter"}},
			{Wait: "/value: \\d+/"},
			{Click: &ClickStep{Pattern: "42", First: true}},
			{Scroll: &ScrollStep{Direction: "down", Lines: 2}},
			{Frames: &FramesStep{Keys: []string{"tab"}, Count: 2}},
			{Snapshot: "final"},
			{Resize: &SizeStep{Cols: 100, Rows: 30}},
		},
	}
	require.NoError(t, sc.Validate())
	require.NoError(t, Run(rec, sc, reportDir))

	require.Equal(t, []string{
		"type:hello",
		"press:enter",
		`wait:/value: \d+/`,
		`click:"42"`,
		"scroll_down",
		"frames",
		"text",
		"resize",
	}, rec.calls)

	// Artifacts were written.
	data, err := os.ReadFile(filepath.Join(reportDir, "final.txt"))
	require.NoError(t, err)
	require.Equal(t, "\nsnapshot body", string(data))

	_, err = os.Stat(filepath.Join(reportDir, "frame-000.txt"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(reportDir, "frame-001.txt"))
	require.NoError(t, err)
}

func TestRunStopsOnFirstFailure(t *testing.T) {
	rec := &failingRecorder{}
	sc := &Scenario{
		Command: "cat",
		Steps: []Step{
			{Type: "boom"},
			{Press: []string{"enter"}},
		},
	}
	err := Run(rec, sc, "")
	require.ErrorContains(t, err, "step 1")
	require.Equal(t, 1, rec.typeCalls)
	require.Zero(t, rec.pressCalls)
}

type failingRecorder struct {
	recorder
	typeCalls  int
	pressCalls int
}

func (f *failingRecorder) Type(text string) error {
	f.typeCalls++
	return os.ErrInvalid
}

func (f *failingRecorder) Press(names ...string) error {
	f.pressCalls++
	return nil
}
