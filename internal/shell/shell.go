// Package shell implements the interactive front end: a read-eval loop over
// stdin that feeds each line to the kernel's interpreter and exits cleanly
// either on a top-level 'quit' or when stdin (possibly redirected from a
// file) runs dry.
//
// Grounded on the reference shell's shellUI() in shell.c, which detects
// redirection by checking whether the line read ended with a newline and,
// if not, tries to reopen /dev/tty to resume interactive reads. Here that
// same distinction is made once, up front, with mattn/go-isatty rather than
// re-probed after every line: redirected input runs to EOF and stops: there
// is no /dev/tty to reopen inside a container or CI job, so silently
// continuing as if a terminal reappeared would be misleading.
package shell

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/kernelsim/mykernel/internal/interpreter"
)

// Shell drives the interpreter from an input stream, printing a prompt only
// when that stream is an interactive terminal.
type Shell struct {
	in          io.Reader
	out         io.Writer
	interactive bool
	interp      *interpreter.Interpreter
}

// New returns a Shell reading from in and writing prompts/output to out. The
// prompt is suppressed automatically when in is not backed by a terminal
// (a file redirection or a pipe).
func New(in *os.File, out io.Writer, interp *interpreter.Interpreter) *Shell {
	return &Shell{
		in:          in,
		out:         out,
		interactive: isatty.IsTerminal(in.Fd()) || isatty.IsCygwinTerminal(in.Fd()),
		interp:      interp,
	}
}

// Run reads lines until the interpreter signals QuitShell or the input
// stream reaches EOF, whichever comes first.
func (s *Shell) Run() {
	fmt.Fprintln(s.out, "Shell version 1.0 loaded!")
	fmt.Fprintln(s.out, "Enter 'help' to display all available commands")

	scanner := bufio.NewScanner(s.in)
	for {
		if s.interactive {
			fmt.Fprint(s.out, "$ ")
		}
		if !scanner.Scan() {
			break
		}
		if s.interp.DispatchLine(scanner.Text()) == interpreter.QuitShell {
			break
		}
	}

	if !s.interactive {
		fmt.Fprintln(s.out, "Redirection finished!")
	}
	fmt.Fprintln(s.out, "Exiting shell...")
}
