// Package interpreter turns a parsed instruction line into a command
// execution against shell memory and, for 'run' and 'exec', against a
// nested script or the kernel's launcher.
//
// Grounded on the reference kernel's interpreter.c. The reference tracks
// whether a 'quit' should end the current script or the whole shell using
// four global mutable flags (runningScript, executingScript,
// quitRunningScript, quitExecutingScript) plus a parallel "script stack" of
// markers, and a side-channel "reset requested" flag for when recursion
// overflows mid-execution. Here that whole mechanism collapses into a single
// returned Outcome value threaded back through each call: depth alone
// decides whether 'quit' ends a script or the shell, and there is no
// flag to forget to reset.
package interpreter

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kernelsim/mykernel/internal/kernelerrs"
	"github.com/kernelsim/mykernel/internal/shellmemory"
)

// Outcome reports what a dispatched line asked the caller to do next.
type Outcome int

const (
	// Continue means keep reading the next line at the current level.
	Continue Outcome = iota
	// QuitScript means the innermost running or executing script (from
	// 'run' or 'exec') should stop; the level above keeps going.
	QuitScript
	// QuitShell means a bare top-level 'quit' was issued with no script
	// running, so the interactive shell itself should stop.
	QuitShell
)

// Launcher is the kernel capability the interpreter needs for 'exec': run a
// batch of scripts to completion under the scheduler, and abort whatever the
// kernel is doing when recursion overflows. Satisfied by *kernel.Kernel
// without interpreter importing kernel.
type Launcher interface {
	Exec(files []string) error
	Abort() error
}

// Interpreter holds shell memory, the nested-script depth guard, and the
// launcher used by 'exec'.
type Interpreter struct {
	mem      *shellmemory.Memory
	launcher Launcher
	out      io.Writer

	maxDepth  int
	depth     int
	execDepth int
}

// New returns an Interpreter bound to mem and launcher. maxDepth bounds how
// many 'run'/'exec' frames may nest (the reference kernel's 200-deep script
// stack). Output goes to out (typically os.Stdout).
func New(mem *shellmemory.Memory, launcher Launcher, maxDepth int, out io.Writer) *Interpreter {
	return &Interpreter{mem: mem, launcher: launcher, maxDepth: maxDepth, out: out}
}

// Dispatch executes line and reports whether it ended the current script.
// This is the method cpu.Dispatcher requires: the scheduler's paged
// execution path calls it once per fetched instruction.
func (it *Interpreter) Dispatch(line string) bool {
	return it.DispatchLine(line) != Continue
}

// DispatchLine parses line into a command and its arguments and executes it.
// Blank lines (after trimming) are ignored, matching the reference shell's
// handling of a bare newline.
func (it *Interpreter) DispatchLine(raw string) Outcome {
	line := strings.TrimSpace(raw)
	if line == "" {
		return Continue
	}
	words := strings.Fields(line)

	switch words[0] {
	case "help":
		if len(words) != 1 {
			fmt.Fprintln(it.out, "Error: The 'help' command cannot take parameters!")
			return Continue
		}
		it.help()
	case "quit":
		if len(words) != 1 {
			fmt.Fprintln(it.out, "Error: The 'quit' command cannot take parameters!")
			return Continue
		}
		return it.quit()
	case "clearmem":
		if len(words) != 1 {
			fmt.Fprintln(it.out, "Error: The 'clearmem' command cannot take parameters!")
			return Continue
		}
		it.mem.Clear()
		fmt.Fprintln(it.out, "Shell memory cleared!")
	case "set":
		if len(words) != 3 {
			fmt.Fprintln(it.out, "Error: The 'set' command must take exactly two parameters!")
			return Continue
		}
		if err := it.mem.Set(words[1], words[2]); err != nil {
			fmt.Fprintf(it.out, "Error: %v\n", err)
		}
	case "print":
		if len(words) != 2 {
			fmt.Fprintln(it.out, "Error: The 'print' command must take exactly one parameter!")
			return Continue
		}
		it.print(words[1])
	case "run":
		if len(words) != 2 {
			fmt.Fprintln(it.out, "Error: The 'run' command must take exactly one parameter!")
			return Continue
		}
		return it.runCommand(words[1])
	case "exec":
		if len(words) < 2 {
			fmt.Fprintln(it.out, "Error: The 'exec' command must take at least one parameter!")
			return Continue
		}
		if len(words) > 4 {
			fmt.Fprintln(it.out, "Error: The 'exec' command cannot take more than three parameters!")
			return Continue
		}
		if it.execDepth > 0 {
			fmt.Fprintln(it.out, "Error: Recursive 'exec' calls are not supported!")
			return Continue
		}
		return it.execCommand(words[1:])
	default:
		fmt.Fprintf(it.out, "Error: Unknown command '%s'\n", words[0])
	}
	return Continue
}

func (it *Interpreter) help() {
	fmt.Fprint(it.out,
		"help\t\t\t\tDisplays all available commands\n"+
			"quit\t\t\t\tExits the shell or the script with \"Bye!\"\n"+
			"clearmem\t\t\tClears the shell memory\n"+
			"set VAR STRING\t\t\tAssigns STRING to variable VAR in shell memory\n"+
			"print VAR\t\t\tDisplays the value assigned to variable VAR\n"+
			"run SCRIPT.TXT\t\t\tExecutes the file SCRIPT.TXT\n"+
			"exec S1.TXT S2.TXT S3.TXT\tExecutes up to three files concurrently\n",
	)
}

func (it *Interpreter) quit() Outcome {
	fmt.Fprintln(it.out, "Bye!")
	if it.depth == 0 {
		return QuitShell
	}
	return QuitScript
}

func (it *Interpreter) print(name string) {
	val, ok := it.mem.Get(name)
	if !ok || val == "" {
		fmt.Fprintf(it.out, "Error: Variable '%s' not found\n", name)
		return
	}
	fmt.Fprintln(it.out, val)
}

// pushFrame reserves one level of nesting, failing once maxDepth is reached.
func (it *Interpreter) pushFrame() bool {
	if it.depth >= it.maxDepth {
		return false
	}
	it.depth++
	return true
}

func (it *Interpreter) popFrame() {
	if it.depth > 0 {
		it.depth--
	}
}

func (it *Interpreter) scriptStackFull() {
	fmt.Fprintf(it.out, "Error: Maximum recursion depth (%d) reached\n", it.maxDepth)
	if it.launcher != nil {
		_ = it.launcher.Abort()
	}
}

// runCommand executes file line by line without paging, dispatching each
// line exactly as if it had been typed. A 'quit' inside the script stops
// only this level; DispatchLine's recursive call into runCommand for a
// nested 'run' means each level absorbs its own QuitScript independently.
func (it *Interpreter) runCommand(file string) Outcome {
	if !it.pushFrame() {
		it.scriptStackFull()
		return QuitScript
	}
	defer it.popFrame()

	f, err := os.Open(file)
	if err != nil {
		fmt.Fprintf(it.out, "Error: script '%s' not found\n", file)
		return Continue
	}
	defer f.Close()

	r := bufio.NewReader(f)
	for {
		raw, err := r.ReadString('\n')
		if raw != "" {
			if it.DispatchLine(raw) != Continue {
				return Continue
			}
		}
		if err != nil {
			break
		}
	}
	return Continue
}

// execCommand hands files to the launcher, which runs them to completion
// under the scheduler using the paging memory manager. Unlike 'run', a
// script loaded by 'exec' cannot itself issue a nested 'exec' (guarded by
// execDepth in DispatchLine); nested 'run' is unaffected.
func (it *Interpreter) execCommand(files []string) Outcome {
	if !it.pushFrame() {
		it.scriptStackFull()
		return QuitScript
	}
	it.execDepth++
	err := it.launcher.Exec(files)
	it.execDepth--
	it.popFrame()

	if err != nil {
		it.reportExecError(err)
	}
	return Continue
}

func (it *Interpreter) reportExecError(err error) {
	var notFound *kernelerrs.NotFoundError
	var tooLarge *kernelerrs.TooLargeError
	var noVictim *kernelerrs.NoVictimError

	switch {
	case errors.As(err, &notFound):
		fmt.Fprintf(it.out, "Error: Script '%s' not found\n", notFound.Name)
	case errors.As(err, &tooLarge):
		fmt.Fprintf(it.out, "Error: Script '%s' could not be loaded since it has more than %d instructions!\n", tooLarge.Name, tooLarge.RAMSize)
	case errors.As(err, &noVictim):
		fmt.Fprintf(it.out, "Error: Script '%s' could not be loaded because a victim frame could not be found!\n", noVictim.Name)
	default:
		fmt.Fprintf(it.out, "Error: %v\n", err)
	}
}
