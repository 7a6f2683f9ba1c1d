package tether

import (
	"encoding/json"
	"fmt"
)

// testStep represents a single action in a gesture script.
type testStep struct {
	Action string  `json:"action"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	FromX  float64 `json:"fromX,omitempty"`
	FromY  float64 `json:"fromY,omitempty"`
	ToX    float64 `json:"toX,omitempty"`
	ToY    float64 `json:"toY,omitempty"`
	Steps  int     `json:"steps,omitempty"`
	Frames int     `json:"frames,omitempty"`
}

// testScript is the top-level JSON structure for a gesture script.
type testScript struct {
	Steps []testStep `json:"steps"`
}

// TestRunner sequences injected pointer gestures across frames for
// automated interaction testing. Attach to a Manager via SetTestRunner;
// the runner advances one action at a time, letting each injected gesture
// drain through the frame loop before the next action fires.
//
// Supported actions: "press", "move" and "release" (x, y), "drag" (fromX,
// fromY, toX, toY, steps), and "wait" (frames).
type TestRunner struct {
	steps     []testStep
	cursor    int
	waitCount int
	done      bool
}

// LoadTestScript parses a JSON gesture script and returns a TestRunner
// ready to be attached to a Manager via SetTestRunner.
func LoadTestScript(jsonData []byte) (*TestRunner, error) {
	var script testScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse gesture script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse gesture script: no steps")
	}
	return &TestRunner{steps: script.Steps}, nil
}

// SetTestRunner attaches a TestRunner to the manager. The runner's step
// method is called from Manager.Update before the injection queue drains
// each frame. Pass nil to detach.
func (m *Manager) SetTestRunner(runner *TestRunner) {
	m.testRunner = runner
}

// Done reports whether all steps in the script have been executed and
// their injected events dispatched.
func (r *TestRunner) Done() bool {
	return r.done
}

// step advances the runner by one frame. Called from Manager.Update.
func (r *TestRunner) step(m *Manager) {
	if r.done {
		return
	}
	// Wait for pending injections to drain before advancing.
	if m.PendingInjected() > 0 {
		return
	}
	// Count down wait frames.
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "press":
		m.InjectPress(st.X, st.Y)
	case "move":
		m.InjectMove(st.X, st.Y)
	case "release":
		m.InjectRelease(st.X, st.Y)
	case "drag":
		steps := st.Steps
		if steps < 1 {
			steps = 1
		}
		m.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, steps)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	}

	// Check if we've reached the end after executing.
	if r.cursor >= len(r.steps) && r.waitCount == 0 && m.PendingInjected() == 0 {
		r.done = true
	}
}
