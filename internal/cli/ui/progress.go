// Package ui provides terminal feedback for long-running bench operations.
package ui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates an indeterminate bench operation on one terminal line
type Spinner struct {
	writer   io.Writer
	interval time.Duration
	noColor  bool

	mu      sync.Mutex
	message string
	done    chan struct{}
	stopped bool
}

// NewSpinner creates a spinner writing to w
func NewSpinner(w io.Writer, message string, noColor bool) *Spinner {
	return &Spinner{
		writer:   w,
		interval: 100 * time.Millisecond,
		noColor:  noColor,
		message:  message,
		done:     make(chan struct{}),
	}
}

// Start begins the animation
func (s *Spinner) Start() {
	go s.animate()
}

// Stop halts the animation and clears the line. Safe to call twice.
func (s *Spinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	close(s.done)
	fmt.Fprint(s.writer, "\r\033[K")
}

// UpdateMessage changes the text shown next to the spinner
func (s *Spinner) UpdateMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
}

func (s *Spinner) animate() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	cyan := color.New(color.FgCyan)
	if s.noColor {
		cyan.DisableColor()
	}

	frame := 0
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.mu.Lock()
			msg := s.message
			s.mu.Unlock()
			cyan.Fprintf(s.writer, "\r%s %s", spinnerFrames[frame], msg)
			frame = (frame + 1) % len(spinnerFrames)
		}
	}
}

// Step runs fn under a spinner and replaces it with a ✓ or ✗ line
func Step(w io.Writer, message string, noColor bool, fn func() error) error {
	s := NewSpinner(w, message, noColor)
	s.Start()

	err := fn()
	s.Stop()

	if err != nil {
		red := color.New(color.FgRed, color.Bold)
		if noColor {
			red.DisableColor()
		}
		red.Fprintf(w, "✗ %s\n", message)
		return err
	}

	green := color.New(color.FgGreen, color.Bold)
	if noColor {
		green.DisableColor()
	}
	green.Fprintf(w, "✓ %s\n", message)
	return nil
}
