package arg

import (
	"fmt"
	"log"
	"os"

	"github.com/godbus/dbus/v5"
	"github.com/spf13/cobra"

	"github.com/SoarinFerret/FocusWarden/internal/ipc"
)

var rootCmd = &cobra.Command{
	Use:   "fwctl",
	Short: "fwctl is the command line tool for FocusWarden",
	Long: `fwctl talks to the focuswardend timer over the D-Bus session bus.
Use it to start and stop focus sessions, acknowledge alarms and review
your focus statistics.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return statusCmd.RunE(cmd, args)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// connect opens the session bus. The returned func closes it.
func connect() (*ipc.Client, func()) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		log.Fatal("Failed to connect to session bus:", err)
	}
	return ipc.NewClient(conn), func() { conn.Close() }
}
