package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan <profile-id>",
	Short: "Run a full acquisition-and-score pass for a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		profile, err := env.Store.GetProfile(ctx, args[0])
		if err != nil {
			return err
		}

		result, err := env.Pipeline.Scan(ctx, *profile)
		if err != nil {
			return err
		}

		if result.LeadsFound == 0 {
			fmt.Printf("Scanned %d items, no new leads found.\n", result.ItemsScanned)
			return nil
		}
		fmt.Printf("Scanned %d items, found %d new leads.\n", result.ItemsScanned, result.LeadsFound)
		fmt.Printf("View them with: leadscout leads %s\n", profile.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}
