package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var analyzeJSON bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze <description>",
	Short: "Derive keywords, communities and a profile name from a product description",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		description := strings.Join(args, " ")
		if len(strings.TrimSpace(description)) < 10 {
			return eris.New("description must be at least 10 characters")
		}

		an, err := buildAnalyzer(cfg.Rules)
		if err != nil {
			return err
		}
		analysis := an.Analyze(description)

		if analyzeJSON {
			out, err := json.MarshalIndent(analysis, "", "  ")
			if err != nil {
				return eris.Wrap(err, "marshal analysis")
			}
			fmt.Println(string(out))
			return nil
		}

		fmt.Printf("Profile name: %s\n", analysis.ProfileName)
		fmt.Printf("Categories:   %s\n", strings.Join(analysis.Categories, ", "))
		fmt.Printf("Communities:  %s\n", strings.Join(analysis.Communities, ", "))
		fmt.Println("Keywords:")
		for _, kw := range analysis.Keywords {
			fmt.Printf("  - %s\n", kw)
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print analysis as JSON")
	rootCmd.AddCommand(analyzeCmd)
}
