package utils

// CycleDetector remembers recent grid hashes to spot still lifes and short
// oscillators.
type CycleDetector struct {
	window  int
	history []string
	streak  int
}

// NewCycleDetector keeps the last window hashes (minimum 2).
func NewCycleDetector(window int) *CycleDetector {
	return &CycleDetector{window: max(window, 2)}
}

// Observe records hash and reports whether it repeats a state inside the window.
func (d *CycleDetector) Observe(hash string) bool {
	repeated := false
	for _, h := range d.history {
		if h == hash {
			repeated = true
			break
		}
	}

	d.history = append(d.history, hash)
	// Keep only the last window states
	if len(d.history) > d.window {
		d.history = d.history[1:]
	}

	if repeated {
		d.streak++
	} else {
		d.streak = 0
	}
	return repeated
}

// Streak returns how many consecutive observations repeated an earlier state.
func (d *CycleDetector) Streak() int {
	return d.streak
}

// Reset forgets all history.
func (d *CycleDetector) Reset() {
	d.history = nil
	d.streak = 0
}
