package main

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/leadscout/internal/model"
)

var (
	profileDescription string
	profileName        string
	profileKeywords    []string
	profileCommunities []string
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Manage product profiles",
}

var profilesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Analyze a description and persist it as a profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(strings.TrimSpace(profileDescription)) < 10 {
			return eris.New("--description must be at least 10 characters")
		}

		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		analysis := env.Analyzer.Analyze(profileDescription)

		profile := model.Profile{
			Name:        analysis.ProfileName,
			Description: profileDescription,
			Keywords:    analysis.Keywords,
			Communities: analysis.Communities,
		}
		if profileName != "" {
			profile.Name = profileName
		}
		// Caller-supplied targets override the derived ones.
		if len(profileKeywords) > 0 {
			profile.Keywords = profileKeywords
		}
		if len(profileCommunities) > 0 {
			profile.Communities = profileCommunities
		}

		created, err := env.Store.CreateProfile(cmd.Context(), profile)
		if err != nil {
			return err
		}

		fmt.Printf("Created profile %s (%s)\n", created.Name, created.ID)
		fmt.Printf("Keywords:    %s\n", strings.Join(created.Keywords, ", "))
		fmt.Printf("Communities: %s\n", strings.Join(created.Communities, ", "))
		return nil
	},
}

var profilesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		profiles, err := env.Store.ListProfiles(cmd.Context())
		if err != nil {
			return err
		}
		if len(profiles) == 0 {
			fmt.Println("No profiles yet. Create one with: leadscout profiles create --description \"...\"")
			return nil
		}

		for _, p := range profiles {
			fmt.Printf("%s  %-30s  %d keywords, %d communities\n",
				p.ID, p.Name, len(p.Keywords), len(p.Communities))
		}
		return nil
	},
}

var profilesEditCmd = &cobra.Command{
	Use:   "edit <profile-id>",
	Short: "Replace a profile's keywords or communities",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(profileKeywords) == 0 && len(profileCommunities) == 0 {
			return eris.New("nothing to update: pass --keyword or --community")
		}

		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		profile, err := env.Store.GetProfile(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		keywords := profile.Keywords
		if len(profileKeywords) > 0 {
			keywords = profileKeywords
		}
		communities := profile.Communities
		if len(profileCommunities) > 0 {
			communities = profileCommunities
		}

		if err := env.Store.UpdateProfileTargets(cmd.Context(), profile.ID, keywords, communities); err != nil {
			return err
		}
		fmt.Printf("Updated profile %s\n", profile.ID)
		return nil
	},
}

func init() {
	profilesCreateCmd.Flags().StringVar(&profileDescription, "description", "", "product description (required)")
	profilesCreateCmd.Flags().StringVar(&profileName, "name", "", "override the generated profile name")
	profilesCreateCmd.Flags().StringSliceVar(&profileKeywords, "keyword", nil, "override derived keywords (repeatable)")
	profilesCreateCmd.Flags().StringSliceVar(&profileCommunities, "community", nil, "override derived communities (repeatable)")
	_ = profilesCreateCmd.MarkFlagRequired("description")

	profilesEditCmd.Flags().StringSliceVar(&profileKeywords, "keyword", nil, "replacement keywords (repeatable)")
	profilesEditCmd.Flags().StringSliceVar(&profileCommunities, "community", nil, "replacement communities (repeatable)")

	profilesCmd.AddCommand(profilesCreateCmd, profilesListCmd, profilesEditCmd)
	rootCmd.AddCommand(profilesCmd)
}
