package registration

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Console is the user-facing output of a registration run: progress on Out,
// diagnostics on Err.
type Console struct {
	Out io.Writer
	Err io.Writer

	okOut   *color.Color
	failOut *color.Color
	failErr *color.Color
}

// NewConsole wraps the two streams. Markers are colored only on terminals.
func NewConsole(out, errOut io.Writer) *Console {
	return &Console{
		Out:     out,
		Err:     errOut,
		okOut:   marker(out, color.FgGreen),
		failOut: marker(out, color.FgRed),
		failErr: marker(errOut, color.FgRed),
	}
}

func marker(w io.Writer, attr color.Attribute) *color.Color {
	c := color.New(attr, color.Bold)
	if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

func (c *Console) Println(a ...any) {
	fmt.Fprintln(c.Out, a...)
}

func (c *Console) Printf(format string, a ...any) {
	fmt.Fprintf(c.Out, format, a...)
}

// Errorf writes a plain diagnostic line to Err.
func (c *Console) Errorf(format string, a ...any) {
	fmt.Fprintf(c.Err, format, a...)
}

// Success prints a ✓ line on Out.
func (c *Console) Success(format string, a ...any) {
	c.okOut.Fprint(c.Out, "✓")
	fmt.Fprintf(c.Out, " "+format+"\n", a...)
}

// Miss prints a ✗ line on Out for informational negative outcomes.
func (c *Console) Miss(format string, a ...any) {
	c.failOut.Fprint(c.Out, "✗")
	fmt.Fprintf(c.Out, " "+format+"\n", a...)
}

// Failure prints a ✗ line on Err.
func (c *Console) Failure(format string, a ...any) {
	c.failErr.Fprint(c.Err, "✗")
	fmt.Fprintf(c.Err, " "+format+"\n", a...)
}
