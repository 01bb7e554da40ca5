package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var leadsLimit int

var leadsCmd = &cobra.Command{
	Use:   "leads <profile-id>",
	Short: "List stored leads for a profile, highest score first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		leads, err := env.Store.ListLeads(cmd.Context(), args[0], leadsLimit)
		if err != nil {
			return err
		}
		if len(leads) == 0 {
			fmt.Println("No leads stored for this profile yet.")
			return nil
		}

		for _, l := range leads {
			fmt.Printf("[%3d] r/%s by u/%s (%s)\n", l.Score, l.Content.Community, l.Content.Author, l.Content.Kind)
			fmt.Printf("      intent %d / urgency %d / fit %d\n", l.Breakdown.Intent, l.Breakdown.Urgency, l.Breakdown.Fit)
			fmt.Printf("      %s\n", l.Insight)
			fmt.Printf("      > %s\n", l.Snippet)
			fmt.Printf("      https://www.reddit.com%s\n\n", l.Content.Permalink)
		}
		return nil
	},
}

func init() {
	leadsCmd.Flags().IntVar(&leadsLimit, "limit", 50, "maximum leads to list")
	rootCmd.AddCommand(leadsCmd)
}
