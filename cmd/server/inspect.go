package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"pocket-mini-server/internal/ingest"
	"pocket-mini-server/pkg/logging"

	"github.com/spf13/cobra"
)

func runInspect(cmd *cobra.Command, args []string) error {
	path := args[0]

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	level := flagLogLevel
	if level == "" {
		level = "warn"
	}
	logger := logging.NewWithOutput(cmd.ErrOrStderr(), level, logging.FormatText)

	ing := ingest.New(logging.Component(logger, "ingest"))
	preview := ing.Ingest(ingest.NewFile(filepath.Base(path), content))

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(preview)
}
