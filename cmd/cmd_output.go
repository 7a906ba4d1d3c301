// cmd_output.go - Ausgabe als Tabelle oder JSON
// Hauptfunktionen: wantJSON, printJSON, newTable, humanTime
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// wantJSON - JSON bei --json oder wenn die Ausgabe kein Terminal ist
func wantJSON(cmd *cobra.Command) bool {
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return true
	}
	f, ok := cmd.OutOrStdout().(*os.File)
	return !ok || !term.IsTerminal(int(f.Fd()))
}

func addJSONFlag(cmd *cobra.Command) {
	cmd.Flags().Bool("json", false, "Print JSON instead of a table")
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// newTable - Tabelle im Stil von "list": ohne Rahmen, linksbuendig
func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.SetAutoWrapText(false)
	return table
}

// humanTime - Relative Zeitangabe wie "3 hours ago"
func humanTime(t time.Time, zero string) string {
	if t.IsZero() {
		return zero
	}

	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "Less than a minute ago"
	case d < time.Hour:
		return plural(int(math.Round(d.Minutes())), "minute") + " ago"
	case d < 48*time.Hour:
		return plural(int(math.Round(d.Hours())), "hour") + " ago"
	case d < 30*24*time.Hour:
		return plural(int(d.Hours()/24), "day") + " ago"
	default:
		return t.Format("2006-01-02")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
