package arg

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/SoarinFerret/FocusWarden/internal/engine"
	"github.com/SoarinFerret/FocusWarden/internal/usage"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show focus statistics for today and the last week",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, done := connect()
		defer done()

		stats, err := client.Stats()
		if err != nil {
			return err
		}
		printStats(os.Stdout, stats)
		return nil
	},
}

func printStats(w io.Writer, stats engine.Stats) {
	cyan := color.New(color.FgCyan, color.Bold)
	red := color.New(color.FgRed)

	cyan.Fprintln(w, "Today")
	fmt.Fprintf(w, "  Focus:     %s\n", usage.FormatDuration(stats.Today.Focus))
	fmt.Fprintf(w, "  Break:     %s\n", usage.FormatDuration(stats.Today.Break))
	fmt.Fprintf(w, "  Completed: %d\n", stats.CompletedToday)
	fmt.Fprintln(w)

	cyan.Fprintln(w, "Last 7 days")
	for _, day := range stats.Week {
		fmt.Fprintf(w, "  %s ", day.Weekday)
		red.Fprint(w, bar(day.BarPercent, 20))
		fmt.Fprintf(w, " %s\n", usage.FormatDuration(day.Focus))
	}
	fmt.Fprintf(w, "  Total %s, average %s a day\n",
		usage.FormatDuration(stats.WeekFocus), usage.FormatDuration(stats.WeekAverage))
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
