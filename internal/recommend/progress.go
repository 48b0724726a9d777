package recommend

import (
	"fmt"
	"io"
	"time"
)

// Indicator shows progress while a model builds. Run must return promptly
// once done is closed.
type Indicator interface {
	Run(done <-chan struct{})
}

// Spinner draws a rotating |/-\ frame on one terminal line
type Spinner struct {
	Out      io.Writer
	Label    string
	Interval time.Duration
}

// NewSpinner returns a spinner writing to out
func NewSpinner(out io.Writer, interval time.Duration) *Spinner {
	return &Spinner{Out: out, Label: "Training model...", Interval: interval}
}

func (s *Spinner) Run(done <-chan struct{}) {
	interval := s.Interval
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	const frames = `|/-\`
	for i := 0; ; i++ {
		fmt.Fprintf(s.Out, "\r%s %c", s.Label, frames[i%len(frames)])
		select {
		case <-done:
			fmt.Fprintf(s.Out, "\rModel training complete!%*s\n", len(s.Label), "")
			return
		case <-ticker.C:
		}
	}
}
