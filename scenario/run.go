package scenario

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/remorses/tuistory/log"
	"github.com/remorses/tuistory/screen"
	"github.com/remorses/tuistory/session"
)

// Driver is the slice of the session surface a scenario exercises. It is
// satisfied by *session.Session; tests substitute a recorder.
type Driver interface {
	Type(text string) error
	Press(names ...string) error
	Text(opts *screen.TextOptions) (string, error)
	WaitForText(pattern screen.Pattern, timeout time.Duration) (string, error)
	WaitIdle(timeout time.Duration) error
	Click(pattern screen.Pattern, opts *session.ClickOptions) error
	ClickAt(x, y int) error
	ScrollUp(lines int) error
	ScrollDown(lines int) error
	CaptureFrames(names []string, opts *session.CaptureOptions) ([]string, error)
	Resize(cols, rows int) error
}

// Run executes every step in order against the driver. Snapshot and frame
// steps write artifacts under reportDir (created on first use). The first
// failing step aborts the run.
func Run(drv Driver, sc *Scenario, reportDir string) error {
	for i, step := range sc.Steps {
		if err := runStep(drv, &step, reportDir); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
		log.Debug("scenario %s: step %d done", sc.Name, i+1)
	}
	return nil
}

func runStep(drv Driver, st *Step, reportDir string) error {
	switch {
	case st.Type != "":
		return drv.Type(st.Type)

	case len(st.Press) > 0:
		return drv.Press(st.Press...)

	case st.Wait != "":
		pattern, err := screen.ParsePattern(st.Wait)
		if err != nil {
			return err
		}
		_, err = drv.WaitForText(pattern, 0)
		return err

	case st.WaitIdleMs > 0:
		return drv.WaitIdle(msDuration(st.WaitIdleMs))

	case st.Click != nil:
		pattern, err := screen.ParsePattern(st.Click.Pattern)
		if err != nil {
			return err
		}
		return drv.Click(pattern, &session.ClickOptions{
			First:   st.Click.First,
			Timeout: msDuration(st.Click.TimeoutMs),
		})

	case st.ClickAt != nil:
		return drv.ClickAt(st.ClickAt.X, st.ClickAt.Y)

	case st.Scroll != nil:
		if st.Scroll.Direction == "up" {
			return drv.ScrollUp(st.Scroll.Lines)
		}
		return drv.ScrollDown(st.Scroll.Lines)

	case st.Frames != nil:
		frames, err := drv.CaptureFrames(st.Frames.Keys, &session.CaptureOptions{
			FrameCount: st.Frames.Count,
			Interval:   msDuration(st.Frames.IntervalMs),
		})
		if err != nil {
			return err
		}
		return writeFrames(reportDir, frames)

	case st.Snapshot != "":
		txt, err := drv.Text(&screen.TextOptions{Immediate: true, TrimEnd: true})
		if err != nil {
			return err
		}
		return writeArtifact(reportDir, st.Snapshot+".txt", txt)

	case st.SleepMs > 0:
		time.Sleep(msDuration(st.SleepMs))
		return nil

	case st.Resize != nil:
		return drv.Resize(st.Resize.Cols, st.Resize.Rows)
	}

	return fmt.Errorf("empty step")
}

func writeFrames(reportDir string, frames []string) error {
	for i, frame := range frames {
		name := fmt.Sprintf("frame-%03d.txt", i)
		if err := writeArtifact(reportDir, name, frame); err != nil {
			return err
		}
	}
	return nil
}

func writeArtifact(reportDir, name, content string) error {
	if reportDir == "" {
		return nil
	}
	if err := os.MkdirAll(reportDir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(reportDir, name), []byte(content), 0o644)
}
