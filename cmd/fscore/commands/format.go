package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

const (
	singleLine = "───────────────────────────────────────────────────────────"
	doubleLine = "═══════════════════════════════════════════════════════════"
)

// PrintHeader prints a titled block with key/value lines
func PrintHeader(w io.Writer, title string, kv ...[2]string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, doubleLine)
	fmt.Fprintf(w, "  %s\n", title)
	fmt.Fprintln(w, singleLine)
	for _, pair := range kv {
		fmt.Fprintf(w, "  %-10s: %s\n", pair[0], pair[1])
	}
	fmt.Fprintln(w, singleLine)
}

// PrintSuccess prints a success message
func PrintSuccess(w io.Writer, message string) {
	fmt.Fprintf(w, "✅ %s\n", message)
}

// PrintWarning prints a warning message
func PrintWarning(w io.Writer, message string) {
	fmt.Fprintf(w, "⚠️  %s\n", message)
}

// PrintInfo prints an info message
func PrintInfo(w io.Writer, message string) {
	fmt.Fprintf(w, "ℹ️  %s\n", message)
}

// PrintTableHeader prints a table header
func PrintTableHeader(w io.Writer, columns []string, widths []int) {
	PrintTableRow(w, columns, widths)

	total := 0
	for i, width := range widths {
		total += width
		if i < len(widths)-1 {
			total += 2 // spacing
		}
	}
	fmt.Fprintln(w, strings.Repeat("─", total))
}

// PrintTableRow prints a table row
func PrintTableRow(w io.Writer, values []string, widths []int) {
	for i, val := range values {
		fmt.Fprintf(w, "%-*s", widths[i], val)
		if i < len(values)-1 {
			fmt.Fprint(w, "  ")
		}
	}
	fmt.Fprintln(w)
}

// PrintJSON writes v as indented JSON
func PrintJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
