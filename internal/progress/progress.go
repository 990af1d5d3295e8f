// Package progress prints one status line per step: the step message,
// then OK or the error that ended it.
package progress

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
)

var (
	okColor    = color.New(color.FgGreen)
	errorColor = color.New(color.FgRed, color.Bold)
)

// Step prints "message... ", runs fn and completes the line with its
// outcome. It returns the error of fn.
func Step(w io.Writer, message string, fn func() error) error {
	fmt.Fprintf(w, "%s... ", message)
	err := fn()
	fmt.Fprintln(w, outcome(err))
	return err
}

func outcome(err error) string {
	if err != nil {
		return errorColor.Sprint("ERROR: ") + err.Error()
	}
	return okColor.Sprint("OK")
}

// Printer serializes status lines written from several goroutines.
type Printer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewPrinter creates a printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Step runs fn while holding the printer, so the line stays contiguous.
func (p *Printer) Step(message string, fn func() error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Step(p.w, message, fn)
}

// Report prints the complete line of a step that already ran. Concurrent
// steps use it so their lines do not interleave.
func (p *Printer) Report(message string, err error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "%s... %s\n", message, outcome(err))
	return err
}
