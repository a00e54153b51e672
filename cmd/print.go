// Package cmd implements the command-line interface for bilisan.
package cmd

import (
	"fmt"
	"strings"

	"github.com/bilisan-cli/bilisan/color"
	"github.com/bilisan-cli/bilisan/media"
	"github.com/bilisan-cli/bilisan/style"
	"github.com/bilisan-cli/bilisan/util"
	"github.com/spf13/cobra"
)

// printResult renders a resolution outcome for human consumption. The JSON
// flag covers the scriptable path; this one is for eyes.
func printResult(cmd *cobra.Command, result media.Result) {
	switch r := result.(type) {
	case *media.Entry:
		printEntry(cmd, r)
	case *media.Composite:
		cmd.Println(style.Title(lineOr(r.Title, r.ID)))
		cmd.Println(style.Faint(util.Quantify(len(r.Entries), "part", "parts")))
		for _, entry := range r.Entries {
			cmd.Println()
			printEntry(cmd, entry)
		}
	case *media.Playlist:
		cmd.Println(style.Title(lineOr(r.Title, r.ID)))
		cmd.Println(style.Faint(util.Quantify(len(r.Links), "link", "links")))
		for _, link := range r.Links {
			if link.Title != "" {
				cmd.Printf("%s %s\n", style.Fg(color.Blue)(link.URL), style.Faint(link.Title))
			} else {
				cmd.Println(style.Fg(color.Blue)(link.URL))
			}
		}
	}
}

func printEntry(cmd *cobra.Command, entry *media.Entry) {
	cmd.Println(style.Bold(entry.String()))

	var details []string
	if entry.Uploader != "" {
		details = append(details, entry.Uploader)
	}
	if entry.Duration != nil {
		details = append(details, fmt.Sprintf("%.0fs", *entry.Duration))
	}
	details = append(details, util.Quantify(len(entry.Formats), "format", "formats"))
	cmd.Println(style.Faint(strings.Join(details, " · ")))

	truncate := formatTruncator()
	for _, format := range entry.Formats {
		cmd.Println(truncate(formatLine(format)))
	}
}

func formatLine(format *media.Format) string {
	columns := []string{style.Fg(color.Yellow)(format.ID)}

	if format.Width != nil && format.Height != nil {
		columns = append(columns, fmt.Sprintf("%dx%d", *format.Width, *format.Height))
	}
	if format.Ext != "" {
		columns = append(columns, format.Ext)
	}
	if format.Note != "" {
		columns = append(columns, style.Faint(format.Note))
	}

	return "  " + strings.Join(columns, "  ")
}

// formatTruncator bounds format lines to the terminal width, or leaves them
// unbounded when no terminal is attached.
func formatTruncator() func(string) string {
	width, _, err := util.TerminalSize()
	if err != nil || width <= 0 {
		return func(s string) string { return s }
	}
	return style.Truncate(width)
}

func lineOr(preferred, fallback string) string {
	if preferred != "" {
		return preferred
	}
	return fallback
}
