package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nexa-tasks/nexa/internal/cli/config"
	"github.com/nexa-tasks/nexa/internal/cli/profileselect"
)

// NewSelectProfileCmd creates the select-profile command
func NewSelectProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "select-profile [name-or-url]",
		Short: "Select the API profile to use for commands",
		Long: `Select the API profile to use for commands.

Profiles come from ~/.config/nexa/config.yaml and the nearest .nexa.yaml.
If no param is provided, an interactive prompt will be shown.

Examples:
  $ nexa select-profile                        # Interactive selection
  $ nexa select-profile staging                # Select by name
  $ nexa select-profile https://api.example.com  # Select by API URL`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var nameOrURL string
			if len(args) > 0 {
				nameOrURL = args[0]
			}
			return runSelectProfile(cmd, nameOrURL)
		},
	}

	return cmd
}

func runSelectProfile(cmd *cobra.Command, nameOrURL string) error {
	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	user, err := config.LoadUser()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg, _, err := config.Profiles(workDir, user)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	var profile *config.Profile

	if nameOrURL != "" {
		// User provided a name or URL, find it
		if profile, err = profileselect.GetProfileByNameOrURL(cfg, nameOrURL); err != nil {
			return err
		}
		if err := config.SetSelectedProfile(profile.Name); err != nil {
			return fmt.Errorf("failed to save selected profile: %w", err)
		}
	} else {
		// Show interactive selection, which remembers the choice
		if profile, err = profileselect.PromptProfileSelection(cfg); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Selected profile: %s\n", profileselect.Label(profile))
	return nil
}
