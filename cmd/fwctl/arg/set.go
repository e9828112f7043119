package arg

import (
	"os"

	"github.com/spf13/cobra"
)

var setCmd = &cobra.Command{
	Use:   "set <minutes|mm:ss>",
	Short: "Set the length of the current session",
	Long: `Set the length of the current session while the timer is paused.
Examples:
  fwctl set 50
  fwctl set 12:30`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seconds, err := parseDuration(args[0])
		if err != nil {
			return err
		}

		client, done := connect()
		defer done()

		st, err := client.SetDuration(seconds)
		if err != nil {
			return err
		}
		printStatus(os.Stdout, st)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(setCmd)
}
