package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ddellaringa6/btis/internal/config"
)

// runShow prints the last written score document verbatim.
func runShow(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(cfg.Output.Path)
	if err != nil {
		return fmt.Errorf("no score document at %s (run `btis run` first): %w", cfg.Output.Path, err)
	}

	fmt.Print(string(data))
	return nil
}
