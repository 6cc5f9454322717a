// Package scenario runs YAML-scripted interactions against a session: type
// text, press chords, wait for patterns, click matches, capture frames.
package scenario

import (
	"fmt"
	"os"
	"time"

	shellquote "github.com/kballard/go-shellquote"
	"gopkg.in/yaml.v3"

	"github.com/remorses/tuistory/session"
)

// Scenario is one scripted run of a terminal program.
type Scenario struct {
	Name    string            `yaml:"name"`
	Command string            `yaml:"command"`
	Cols    int               `yaml:"cols,omitempty"`
	Rows    int               `yaml:"rows,omitempty"`
	Cwd     string            `yaml:"cwd,omitempty"`
	Env     map[string]string `yaml:"env,omitempty"`
	Steps   []Step            `yaml:"steps"`
}

// Step is a single action. Exactly one field may be set.
type Step struct {
	Type       string      `yaml:"type,omitempty"`
	Press      []string    `yaml:"press,omitempty"`
	Wait       string      `yaml:"wait,omitempty"`
	WaitIdleMs int         `yaml:"wait_idle_ms,omitempty"`
	Click      *ClickStep  `yaml:"click,omitempty"`
	ClickAt    *PointStep  `yaml:"click_at,omitempty"`
	Scroll     *ScrollStep `yaml:"scroll,omitempty"`
	Frames     *FramesStep `yaml:"frames,omitempty"`
	Snapshot   string      `yaml:"snapshot,omitempty"`
	SleepMs    int         `yaml:"sleep_ms,omitempty"`
	Resize     *SizeStep   `yaml:"resize,omitempty"`
}

type ClickStep struct {
	Pattern   string `yaml:"pattern"`
	First     bool   `yaml:"first,omitempty"`
	TimeoutMs int    `yaml:"timeout_ms,omitempty"`
}

type PointStep struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

type ScrollStep struct {
	// Direction is "up" or "down".
	Direction string `yaml:"direction"`
	Lines     int    `yaml:"lines,omitempty"`
}

type FramesStep struct {
	Keys       []string `yaml:"keys"`
	Count      int      `yaml:"count,omitempty"`
	IntervalMs int      `yaml:"interval_ms,omitempty"`
}

type SizeStep struct {
	Cols int `yaml:"cols"`
	Rows int `yaml:"rows"`
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return &sc, nil
}

// Validate checks the scenario for structural problems before anything is
// spawned.
func (sc *Scenario) Validate() error {
	if sc.Command == "" {
		return fmt.Errorf("command is required")
	}
	if _, err := shellquote.Split(sc.Command); err != nil {
		return fmt.Errorf("command %q: %w", sc.Command, err)
	}
	for i, step := range sc.Steps {
		n := step.actionCount()
		if n == 0 {
			return fmt.Errorf("step %d: no action", i+1)
		}
		if n > 1 {
			return fmt.Errorf("step %d: more than one action", i+1)
		}
		if step.Scroll != nil && step.Scroll.Direction != "up" && step.Scroll.Direction != "down" {
			return fmt.Errorf("step %d: scroll direction must be \"up\" or \"down\"", i+1)
		}
	}
	return nil
}

func (st *Step) actionCount() int {
	n := 0
	if st.Type != "" {
		n++
	}
	if len(st.Press) > 0 {
		n++
	}
	if st.Wait != "" {
		n++
	}
	if st.WaitIdleMs > 0 {
		n++
	}
	if st.Click != nil {
		n++
	}
	if st.ClickAt != nil {
		n++
	}
	if st.Scroll != nil {
		n++
	}
	if st.Frames != nil {
		n++
	}
	if st.Snapshot != "" {
		n++
	}
	if st.SleepMs > 0 {
		n++
	}
	if st.Resize != nil {
		n++
	}
	return n
}

// LaunchOptions builds the session launch options for the scenario,
// splitting the command line with shell quoting rules.
func (sc *Scenario) LaunchOptions() (session.LaunchOptions, error) {
	argv, err := shellquote.Split(sc.Command)
	if err != nil {
		return session.LaunchOptions{}, fmt.Errorf("command %q: %w", sc.Command, err)
	}
	return session.LaunchOptions{
		Command: argv[0],
		Args:    argv[1:],
		Cols:    sc.Cols,
		Rows:    sc.Rows,
		Cwd:     sc.Cwd,
		Env:     sc.Env,
	}, nil
}

func msDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
