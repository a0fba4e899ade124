// Package symbols provides card face alphabets.
package symbols

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Default is the built-in card alphabet. It holds enough symbols for every
// supported board to use each symbol on exactly one pair.
var Default = []string{
	"🐶", "🐱", "🐭", "🐹", "🐰", "🦊", "🐻", "🐼",
	"🦁", "🐮", "🐯", "🐷", "🐸", "🐵", "🐔", "🐧",
	"🐦", "🐤", "🦆", "🦅", "🦉", "🦇", "🐺", "🐗",
	"🐴", "🦄", "🐝", "🐛", "🦋", "🐌", "🐞", "🐢",
}

// LoadSymbols reads one symbol per line from the provided file path.
// Blank lines and lines starting with '#' are skipped; duplicates are dropped.
func LoadSymbols(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only symbol file.
			_ = cerr
		}
	}()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	out := Filter(lines, Usable)
	if len(out) == 0 {
		return nil, fmt.Errorf("symbol file is empty")
	}
	return out, nil
}

// Resolve returns the alphabet stored at path, or Default when path is empty.
func Resolve(path string) ([]string, error) {
	if path == "" {
		return Default, nil
	}
	return LoadSymbols(path)
}
