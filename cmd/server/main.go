package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagHost     string
	flagPort     string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "pocket-server",
	Short:         "Pocket Mini App backend",
	Long:          "Session-scoped backend for the Pocket Mini App: counter, notes, score board, JSON export and upload previews.",
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and WebSocket server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Preview a local csv, json or txt file the way an upload is previewed",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (overrides LOG_LEVEL)")

	for _, cmd := range []*cobra.Command{rootCmd, serveCmd} {
		cmd.Flags().StringVar(&flagHost, "host", "", "listen host (overrides HOST)")
		cmd.Flags().StringVar(&flagPort, "port", "", "listen port (overrides PORT)")
	}

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(inspectCmd)
}
