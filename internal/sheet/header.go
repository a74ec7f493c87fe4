package sheet

import (
	"fmt"
	"strings"

	"github.com/nconklindev/bomdiff/internal/types"
)

// HeaderWindow is the number of leading rows searched for a header.
// Rows past it are never considered, whatever the caller asks for.
const HeaderWindow = 50

// DetectHeaderRow returns the 0-based index of the row with the most text cells
// among the first window rows. The earliest row wins a tie and row 0 is returned
// when no row has any text.
//
// A data row with many free-text cells can outscore a terse header.
func DetectHeaderRow(grid types.Grid, window int) int {
	searchLimit := clampWindow(window)
	if searchLimit > len(grid) {
		searchLimit = len(grid)
	}

	headerIdx := 0
	maxSignificant := 0
	for i := 0; i < searchLimit; i++ {
		if n := countSignificantCells(grid[i]); n > maxSignificant {
			maxSignificant = n
			headerIdx = i
		}
	}

	return headerIdx
}

func clampWindow(window int) int {
	if window <= 0 || window > HeaderWindow {
		return HeaderWindow
	}
	return window
}

// countSignificantCells counts string cells that contain at least one letter.
func countSignificantCells(row []types.Cell) int {
	count := 0
	for _, cell := range row {
		if s, ok := cell.(string); ok && containsLetters(s) {
			count++
		}
	}
	return count
}

// containsLetters checks if a string contains any alphabetic characters
func containsLetters(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}

// NameColumns turns a header row into unique field names. Repeated names get an
// occurrence suffix ("Cost", "Cost-2", "Cost-3") counted per raw header.
func NameColumns(row []types.Cell) []string {
	names := make([]string, len(row))
	seen := make(map[string]int, len(row))
	used := make(map[string]bool, len(row))

	for i, cell := range row {
		base := strings.TrimSpace(types.CellString(cell))
		seen[base]++
		name := base
		if seen[base] > 1 {
			name = fmt.Sprintf("%s-%d", base, seen[base])
		}
		// a literal "X-2" further left would otherwise collide
		for used[name] {
			seen[base]++
			name = fmt.Sprintf("%s-%d", base, seen[base])
		}
		used[name] = true
		names[i] = name
	}

	return names
}
