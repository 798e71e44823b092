package cli

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/sadopc/dayplan/internal/interval"
)

var (
	// fatih/color turns these off when output is not a terminal.
	successColor = color.New(color.FgGreen, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
	headerColor  = color.New(color.FgBlue, color.Bold)
	labelColor   = color.New(color.FgWhite, color.Bold)
	dimColor     = color.New(color.FgHiBlack)
)

// printSection prints a section header
func printSection(w io.Writer, title string) {
	fmt.Fprintln(w)
	_, _ = headerColor.Fprintf(w, "▸ %s\n", title)
	fmt.Fprintln(w)
}

// printSuccess prints a success message with a checkmark
func printSuccess(w io.Writer, msg string) {
	_, _ = successColor.Fprintf(w, "✓ %s\n", msg)
}

// printWarning prints a warning message with a warning symbol
func printWarning(w io.Writer, msg string) {
	_, _ = warningColor.Fprintf(w, "⚠ %s\n", msg)
}

func printError(w io.Writer, err error) {
	_, _ = errorColor.Fprintf(w, "error: %v\n", err)
}

func printInfo(w io.Writer, msg string) {
	_, _ = infoColor.Fprintln(w, msg)
}

// printLabelValue prints a label-value pair with proper formatting
func printLabelValue(w io.Writer, label, value string) {
	_, _ = labelColor.Fprintf(w, "  %s: ", label)
	fmt.Fprintln(w, value)
}

// printTable prints rows under a header, columns padded to the widest cell.
func printTable(w io.Writer, headers []string, rows [][]string) {
	if len(headers) == 0 || len(rows) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], utf8.RuneCountInString(cell))
			}
		}
	}

	fmt.Fprint(w, "  ")
	for i, h := range headers {
		_, _ = labelColor.Fprint(w, pad(h, widths[i]))
		fmt.Fprint(w, "  ")
	}
	fmt.Fprintln(w)

	fmt.Fprint(w, "  ")
	for i := range headers {
		_, _ = dimColor.Fprint(w, strings.Repeat("─", widths[i]))
		fmt.Fprint(w, "  ")
	}
	fmt.Fprintln(w)

	for _, row := range rows {
		fmt.Fprint(w, "  ")
		for i, cell := range row {
			if i < len(widths) {
				fmt.Fprint(w, pad(cell, widths[i]))
				fmt.Fprint(w, "  ")
			}
		}
		fmt.Fprintln(w)
	}
}

func pad(s string, width int) string {
	return s + strings.Repeat(" ", max(0, width-utf8.RuneCountInString(s)))
}

func formatMinutes(mins int) string {
	return fmt.Sprintf("%dh %02dm", mins/60, mins%60)
}

func formatPercent(ratio float64) string {
	return fmt.Sprintf("%.0f%%", ratio*100)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// parseDay accepts YYYY-MM-DD or a day relative to now. Empty means today.
func parseDay(s string, now time.Time) (time.Time, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return interval.Day(now), nil
	case "yesterday":
		return interval.Day(now).AddDate(0, 0, -1), nil
	case "tomorrow":
		return interval.Day(now).AddDate(0, 0, 1), nil
	}
	return interval.ParseDate(s)
}
