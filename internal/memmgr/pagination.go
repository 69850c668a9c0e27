package memmgr

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/kernelsim/mykernel/internal/proc"
)

// Paginate reads the script at path, splits it into pageSize-line pages, and
// writes each page to the backing store as "<PID>.<k>.txt". It returns the
// newly allocated PID and the page count (pages_max).
//
// Every line is normalized to Unicode NFC before its length is measured
// against maxInstructionLen (L), so that combining-character variants of the
// same visible instruction consume the same budget; lines longer than L are
// truncated rather than rejected, matching the reference kernel's
// fixed-size fgets buffer.
//
// An empty file still yields pages_max = 1, per the one-page-minimum
// decision recorded in DESIGN.md. A script needing more pages than RAM has
// frames fails with ErrTooLarge.
func (m *Manager) Paginate(path string, maxInstructionLen int) (proc.PID, int, error) {
	lines, err := readScriptLines(path, maxInstructionLen)
	if err != nil {
		return 0, 0, err
	}

	pagesMax := (len(lines) + m.pageSize - 1) / m.pageSize
	if pagesMax == 0 {
		pagesMax = 1
	}
	if pagesMax > m.numFrames {
		return 0, 0, fmt.Errorf("%w: needs %d pages, RAM has %d frames", ErrTooLarge, pagesMax, m.numFrames)
	}

	pid := m.nextPID()
	for k := 0; k < pagesMax; k++ {
		if err := m.writePage(pid, k, lines); err != nil {
			return 0, 0, err
		}
	}
	return pid, pagesMax, nil
}

// writePage writes page k's slice of lines to its backing-store file. Only
// the page's final slot omits a trailing newline; every earlier slot keeps
// one, so concatenating a script's page files reproduces the source file,
// possibly missing the final newline of each page.
func (m *Manager) writePage(pid proc.PID, k int, lines []string) error {
	f, err := m.store.CreatePage(int(pid), k)
	if err != nil {
		return fmt.Errorf("create page %d.%d: %w", pid, k, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	start := k * m.pageSize
	for s := 0; s < m.pageSize; s++ {
		idx := start + s
		if idx >= len(lines) {
			break
		}
		if _, err := w.WriteString(lines[idx]); err != nil {
			return fmt.Errorf("write page %d.%d: %w", pid, k, err)
		}
		if s != m.pageSize-1 {
			if err := w.WriteByte('\n'); err != nil {
				return fmt.Errorf("write page %d.%d: %w", pid, k, err)
			}
		}
	}
	return w.Flush()
}

// readScriptLines reads path line by line, normalizing and length-bounding
// each line. A missing trailing newline on the file's last line is not an
// error; it simply terminates the final logical line.
func readScriptLines(path string, maxInstructionLen int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	r := bufio.NewReader(f)
	for {
		raw, err := r.ReadString('\n')
		if raw != "" {
			lines = append(lines, normalizeInstruction(raw, maxInstructionLen))
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("read %q: %w", path, err)
		}
	}
	return lines, nil
}

func normalizeInstruction(raw string, maxLen int) string {
	if n := len(raw); n > 0 && raw[n-1] == '\n' {
		raw = raw[:n-1]
	}
	s := norm.NFC.String(raw)
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen])
}
