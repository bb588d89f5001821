package profileselect

import (
	"fmt"
	"os"

	"github.com/manifoldco/promptui"
	"golang.org/x/term"

	"github.com/nexa-tasks/nexa/internal/cli/config"
)

// Chooser returns the interactive chooser when stdin is a terminal and the
// non-interactive one otherwise
func Chooser() config.Chooser {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return PromptProfileSelection
	}
	return config.FirstProfile
}

// PromptProfileSelection shows an interactive prompt for the user to select a
// profile and remembers the choice in the user config
func PromptProfileSelection(cfg *config.Config) (*config.Profile, error) {
	profile, err := prompt(cfg)
	if err != nil {
		return nil, err
	}

	// Save the selected profile
	if err := config.SetSelectedProfile(profile.Name); err != nil {
		// Don't fail if we can't save, just continue
		fmt.Fprintf(os.Stderr, "Warning: failed to save selected profile: %v\n", err)
	}

	return profile, nil
}

func prompt(cfg *config.Config) (*config.Profile, error) {
	if len(cfg.Profiles) == 0 {
		return nil, fmt.Errorf("no profiles configured in %s", config.ConfigFileName)
	}

	// Create display labels for each profile
	type profileOption struct {
		Label   string
		Profile *config.Profile
	}

	options := make([]profileOption, len(cfg.Profiles))
	for i := range cfg.Profiles {
		profile := &cfg.Profiles[i]
		options[i] = profileOption{
			Label:   Label(profile),
			Profile: profile,
		}
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "> {{ .Label | cyan }}",
		Inactive: "  {{ .Label }}",
		Selected: "{{ .Label | green }}",
	}

	sel := promptui.Select{
		Label:     "Select a profile",
		Items:     options,
		Templates: templates,
		Size:      10,
	}

	index, _, err := sel.Run()
	if err != nil {
		return nil, fmt.Errorf("profile selection cancelled: %w", err)
	}

	return options[index].Profile, nil
}

// Label formats a profile for display
func Label(p *config.Profile) string {
	return fmt.Sprintf("%s (%s)", p.Name, p.APIURL)
}

// GetProfileByNameOrURL finds a profile by name or API URL
func GetProfileByNameOrURL(cfg *config.Config, nameOrURL string) (*config.Profile, error) {
	// First try by name
	for i := range cfg.Profiles {
		if cfg.Profiles[i].Name == nameOrURL {
			return &cfg.Profiles[i], nil
		}
	}

	// Then try by URL
	for i := range cfg.Profiles {
		if cfg.Profiles[i].APIURL == nameOrURL {
			return &cfg.Profiles[i], nil
		}
	}

	return nil, fmt.Errorf("profile with name or URL '%s' not found", nameOrURL)
}
