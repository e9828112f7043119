package arg

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	focusMinutes      int
	shortBreakMinutes int
	longBreakMinutes  int
	sessionsCount     int
	autoStart         bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change the timer configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the configuration the daemon is running with",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, done := connect()
		defer done()

		cfg, err := client.Config()
		if err != nil {
			return err
		}
		fmt.Print(cfg)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change timer durations",
	Long: `Change timer durations. Only the flags given are changed and the
daemon writes them back to its config file. The running session keeps
its length; the new values apply from the next session.
Examples:
  fwctl config set --focus 50 --short-break 10
  fwctl config set --auto-start=true`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fields := timerFields(cmd)
		if len(fields) == 0 {
			return errors.New("nothing to change, see fwctl config set --help")
		}

		client, done := connect()
		defer done()

		s, err := client.UpdateTimer(fields)
		if err != nil {
			return err
		}
		fmt.Printf("Focus:        %d min\n", s.FocusMinutes)
		fmt.Printf("Short break:  %d min\n", s.ShortBreakMinutes)
		fmt.Printf("Long break:   %d min\n", s.LongBreakMinutes)
		fmt.Printf("Long break every %d sessions\n", s.SessionsBeforeLongBreak)
		fmt.Printf("Auto start:   %t\n", s.AutoStart)
		return nil
	},
}

// timerFields collects the flags that were set, keyed by their JSON names.
func timerFields(cmd *cobra.Command) map[string]any {
	fields := map[string]any{}
	flags := cmd.Flags()
	if flags.Changed("focus") {
		fields["focus"] = focusMinutes
	}
	if flags.Changed("short-break") {
		fields["shortBreak"] = shortBreakMinutes
	}
	if flags.Changed("long-break") {
		fields["longBreak"] = longBreakMinutes
	}
	if flags.Changed("sessions") {
		fields["sessionsBeforeLongBreak"] = sessionsCount
	}
	if flags.Changed("auto-start") {
		fields["autoStart"] = autoStart
	}
	return fields
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configSetCmd)

	configSetCmd.Flags().IntVar(&focusMinutes, "focus", 0, "Focus length in minutes (1-120)")
	configSetCmd.Flags().IntVar(&shortBreakMinutes, "short-break", 0, "Short break length in minutes (1-30)")
	configSetCmd.Flags().IntVar(&longBreakMinutes, "long-break", 0, "Long break length in minutes (1-60)")
	configSetCmd.Flags().IntVar(&sessionsCount, "sessions", 0, "Focus sessions before a long break")
	configSetCmd.Flags().BoolVar(&autoStart, "auto-start", false, "Start the next session without confirmation")
}
