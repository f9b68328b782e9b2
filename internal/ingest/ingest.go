// Package ingest reads feedback items from files, readers and arguments.
package ingest

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// maxLine bounds one feedback item.
const maxLine = 1 << 20

// Lines reads one feedback item per line. Lines are trimmed and blank lines
// are skipped.
func Lines(r io.Reader) ([]string, error) {
	var items []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			items = append(items, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read feedback: %w", err)
	}
	return items, nil
}

// ReadFile reads feedback items from path; "-" reads stdin.
func ReadFile(path string) ([]string, error) {
	if path == "-" {
		return Lines(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open feedback file: %w", err)
	}
	defer f.Close()
	return Lines(f)
}

// Args returns the non-blank positional arguments, trimmed.
func Args(args []string) []string {
	items := make([]string, 0, len(args))
	for _, a := range args {
		if a = strings.TrimSpace(a); a != "" {
			items = append(items, a)
		}
	}
	return items
}
