package log

import (
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"
)

// Spinner shows progress while blocking on the network. It is a no-op
// unless attached to a terminal.
type Spinner struct {
	spin *spinner.Spinner
}

func NewSpinner(out *os.File, enabled bool) *Spinner {
	if !enabled || out == nil || !isatty.IsTerminal(out.Fd()) {
		return &Spinner{}
	}
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(out))
	return &Spinner{spin: s}
}

func (s *Spinner) Start(msg string) {
	if s == nil || s.spin == nil {
		return
	}
	s.spin.Suffix = fmt.Sprintf(" %s...", msg)
	s.spin.Start()
}

func (s *Spinner) Stop() {
	if s == nil || s.spin == nil {
		return
	}
	s.spin.Stop()
}
