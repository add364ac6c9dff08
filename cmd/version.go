package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ugrc/geocode-cli/internal/config"
	"github.com/ugrc/geocode-cli/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Report the installed and latest published tool versions",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		cfg := config.MustLoad()
		logger := setupLogger(cfg.Env)

		exe, err := os.Executable()
		if err != nil {
			return fmt.Errorf("failed to locate executable: %w", err)
		}

		local, err := version.Local(exe)
		if err != nil {
			return err
		}

		if local == "" {
			cmd.Println("installed: unknown (no version descriptor found)")
		} else {
			cmd.Printf("installed: %s\n", local)
		}

		remote, err := version.NewResolver(logger).Remote(ctx)
		if err != nil {
			return err
		}

		cmd.Printf("latest: %s\n", remote)

		if local != "" && local != remote {
			cmd.Println("an update is available")
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
