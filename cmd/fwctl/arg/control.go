package arg

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/SoarinFerret/FocusWarden/internal/ipc"
	"github.com/SoarinFerret/FocusWarden/internal/pomodoro"
)

// controlCommand builds a command that performs one action and prints the
// resulting status.
func controlCommand(use, short string, aliases []string, action func(*ipc.Client) (pomodoro.Status, error)) *cobra.Command {
	return &cobra.Command{
		Use:     use,
		Aliases: aliases,
		Short:   short,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, done := connect()
			defer done()

			st, err := action(client)
			if err != nil {
				return err
			}
			printStatus(os.Stdout, st)
			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(
		controlCommand("start", "Start or resume the timer", []string{"resume"}, (*ipc.Client).Start),
		controlCommand("pause", "Pause the timer", []string{"p"}, (*ipc.Client).Pause),
		controlCommand("toggle", "Start the timer if paused, pause it if running", []string{"t"}, (*ipc.Client).Toggle),
		controlCommand("skip", "End the current session and move to the next one", nil, (*ipc.Client).Skip),
		controlCommand("reset", "Restart the current session from its configured length", nil, (*ipc.Client).Reset),
		controlCommand("confirm", "Acknowledge the alarm and move to the next session", []string{"ack"}, (*ipc.Client).Confirm),
	)
}
