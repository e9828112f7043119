package arg

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/SoarinFerret/FocusWarden/internal/journal"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recently finished sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, done := connect()
		defer done()

		entries, err := client.History(historyLimit)
		if err != nil {
			return err
		}
		printHistory(os.Stdout, entries)
		return nil
	},
}

func printHistory(w io.Writer, entries []journal.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No finished sessions yet")
		return
	}
	for _, e := range entries {
		fmt.Fprintf(w, "%s  ", e.EndedAt.Format("Jan 02 15:04"))
		modeColor(e.Mode).Fprintf(w, "%-11s", e.Mode.Label())
		fmt.Fprintf(w, "  %s / %s  ", formatClock(e.Elapsed), formatClock(e.Planned))
		outcomeColor(e.Outcome).Fprintln(w, e.Outcome)
	}
}

func outcomeColor(o journal.Outcome) *color.Color {
	switch o {
	case journal.Completed:
		return color.New(color.FgGreen)
	case journal.Skipped:
		return color.New(color.FgYellow)
	}
	return color.New(color.FgRed)
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of sessions to show")
}
