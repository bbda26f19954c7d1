package internal

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// UIManager handles all user interface concerns (progress, verbose output, warnings)
type UIManager interface {
	// Progress bars
	NewBytesBar(total int64, description string) ProgressBar

	// Verbose output
	Verbose(format string, args ...any)

	// Status messages
	Printf(format string, args ...any)
	Println(args ...any)

	// Warnings and errors go to stderr even in quiet mode
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// ProgressBar abstracts progress bar operations. Writes advance the bar.
type ProgressBar interface {
	io.Writer
	Describe(description string)
	Finish()
}

// StandardUIManager handles normal UI operations
type StandardUIManager struct {
	verbose bool
	quiet   bool
	out     io.Writer
	errOut  io.Writer
	tty     bool
}

func NewUIManager(verbose, quiet bool) UIManager {
	return &StandardUIManager{
		verbose: verbose,
		quiet:   quiet,
		out:     os.Stdout,
		errOut:  os.Stderr,
		tty:     isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()),
	}
}

// NewUIManagerTo creates a UI manager writing to the given streams.
// Progress bars are never drawn.
func NewUIManagerTo(out, errOut io.Writer, verbose, quiet bool) UIManager {
	return &StandardUIManager{
		verbose: verbose,
		quiet:   quiet,
		out:     out,
		errOut:  errOut,
	}
}

// Progress Bar Methods
func (ui *StandardUIManager) NewBytesBar(total int64, description string) ProgressBar {
	if ui.quiet || !ui.tty {
		return &SilentProgressBar{}
	}

	if total <= 0 {
		total = -1
	}
	bar := progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(ui.out),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
	return &VisibleProgressBar{bar: bar}
}

// Verbose Output Methods
func (ui *StandardUIManager) Verbose(format string, args ...any) {
	if ui.verbose {
		fmt.Fprintf(ui.out, format, args...)
	}
}

// Status Message Methods
func (ui *StandardUIManager) Printf(format string, args ...any) {
	if !ui.quiet {
		fmt.Fprintf(ui.out, format, args...)
	}
}

func (ui *StandardUIManager) Println(args ...any) {
	if !ui.quiet {
		fmt.Fprintln(ui.out, args...)
	}
}

func (ui *StandardUIManager) Warnf(format string, args ...any) {
	fmt.Fprintf(ui.errOut, "Warning: "+format, args...)
}

func (ui *StandardUIManager) Errorf(format string, args ...any) {
	fmt.Fprintf(ui.errOut, "Error: "+format, args...)
}

// VisibleProgressBar wraps the actual progress bar
type VisibleProgressBar struct {
	bar *progressbar.ProgressBar
}

func (v *VisibleProgressBar) Write(p []byte) (int, error) {
	return v.bar.Write(p)
}

func (v *VisibleProgressBar) Describe(description string) {
	v.bar.Describe(description)
}

func (v *VisibleProgressBar) Finish() {
	_ = v.bar.Finish()
}

// SilentProgressBar implements a silent progress bar
type SilentProgressBar struct{}

func (s *SilentProgressBar) Write(p []byte) (int, error) {
	return len(p), nil
}

func (s *SilentProgressBar) Describe(description string) {
	// Do nothing for silent mode
}

func (s *SilentProgressBar) Finish() {}
