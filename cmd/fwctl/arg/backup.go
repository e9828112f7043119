package arg

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write a backup of statistics and settings",
	Long: `Write a backup of statistics, settings and the current session as
JSON. Without a file the backup goes to stdout.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, done := connect()
		defer done()

		data, err := client.Export()
		if err != nil {
			return err
		}
		if len(args) == 0 || args[0] == "-" {
			fmt.Println(data)
			return nil
		}
		if err := os.WriteFile(args[0], []byte(data), 0600); err != nil {
			return fmt.Errorf("failed to write backup: %w", err)
		}
		fmt.Printf("Backup written to %s\n", args[0])
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file|->",
	Short: "Restore a backup written by export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var data []byte
		var err error
		if args[0] == "-" {
			data, err = io.ReadAll(os.Stdin)
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to read backup: %w", err)
		}

		client, done := connect()
		defer done()

		if err := client.Import(string(data)); err != nil {
			return err
		}
		fmt.Println("Backup restored")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd, importCmd)
}
