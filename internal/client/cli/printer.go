package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/goalkeeper/internal/client/client"
	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	faint  = color.New(color.Faint)
)

// stdout and stderr are swapped in tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

func success(format string, a ...any) {
	green.Fprintf(stdout, "✓ "+format+"\n", a...)
}

func warn(format string, a ...any) {
	yellow.Fprintf(stdout, format+"\n", a...)
}

func info(format string, a ...any) {
	fmt.Fprintf(stdout, format+"\n", a...)
}

// fail prints err with a hint matching its kind and returns it.
func fail(err error) error {
	red.Fprintf(stderr, "✗ %s\n", err)
	if hint := hintFor(err); hint != "" {
		faint.Fprintln(stderr, "  "+hint)
	}
	return err
}

func hintFor(err error) string {
	switch {
	case errors.Is(err, client.ErrUnavailable):
		return "the server is not reachable right now, try again in a moment"
	case errors.Is(err, client.ErrUnauthorized):
		return "check the username and password"
	case errors.Is(err, client.ErrConflict):
		return "pick another username"
	case errors.Is(err, client.ErrNotFound):
		return "run list to refresh goal numbers"
	default:
		return ""
	}
}
