package commands

import (
	"fmt"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nexa-tasks/nexa/internal/api"
	"github.com/nexa-tasks/nexa/internal/forms"
	"github.com/nexa-tasks/nexa/internal/router"
)

// requireUser loads the session. Without a logged-in user the login page is
// shown and errNotLoggedIn returned.
func requireUser(cmd *cobra.Command, app *App) error {
	ctx := cmd.Context()
	if err := app.InitSession(ctx); err != nil {
		return err
	}
	if _, err := app.CurrentUser(); err != nil {
		if visitErr := app.Visit(ctx, router.RouteLogin, nil); visitErr != nil {
			return visitErr
		}
		return err
	}
	return nil
}

// NewProfileCmd creates the profile command
func NewProfileCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show your profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireUser(cmd, app); err != nil {
				return err
			}
			return app.Out.Profile(app.Session.User())
		},
	}
}

// NewAvatarCmd creates the avatar command
func NewAvatarCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "avatar <image>",
		Short: "Upload a new profile picture",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form := &forms.Avatar{}
			if len(args) == 1 {
				form.Path = args[0]
			}
			if err := form.Validate(); err != nil {
				return err
			}
			if err := requireUser(cmd, app); err != nil {
				return err
			}

			ctx := cmd.Context()
			url, err := uploadImageFile(cmd, app, form.Path)
			if err != nil {
				return app.fail(ctx, err)
			}

			user, err := app.Client.UpdateProfile(ctx, api.ProfileUpdate{ProfileImageURL: url})
			if err != nil {
				return app.fail(ctx, &userError{msg: api.UserMessage(err, "Failed to update profile picture."), err: err})
			}
			app.Session.Update(user)

			app.Out.Success("Profile picture updated.")
			app.Out.Subtle("%s", user.ProfileImageURL)
			return nil
		},
	}
}

// NewPasswordCmd creates the password command
func NewPasswordCmd(app *App) *cobra.Command {
	var form forms.ChangePassword

	cmd := &cobra.Command{
		Use:   "password",
		Short: "Change your password",
		Long: `Change your password.

Without flags a form asks for the current and new password.

Examples:
  $ nexa password
  $ nexa password --current old-secret --new new-secret --confirm new-secret`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if form.Current == "" && form.New == "" && form.Confirm == "" && app.Interactive {
				f := huh.NewForm(huh.NewGroup(
					huh.NewInput().
						Title("Current password").
						EchoMode(huh.EchoModePassword).
						Value(&form.Current),
					huh.NewInput().
						Title("New password").
						Description("At least 8 characters").
						EchoMode(huh.EchoModePassword).
						Value(&form.New),
					huh.NewInput().
						Title("Confirm new password").
						EchoMode(huh.EchoModePassword).
						Value(&form.Confirm),
				))
				if err := f.RunWithContext(ctx); err != nil {
					return formError(err)
				}
			}

			if err := form.Validate(); err != nil {
				return err
			}
			if err := requireUser(cmd, app); err != nil {
				return err
			}

			resp, err := app.Client.ChangePassword(ctx, form.Current, form.New)
			if err != nil {
				return app.fail(ctx, &userError{msg: api.UserMessage(err, "Failed to change password."), err: err})
			}

			msg := resp.Message
			if msg == "" {
				msg = "Password updated successfully."
			}
			app.Out.Success("%s", msg)
			return nil
		},
	}

	cmd.Flags().StringVar(&form.Current, "current", "", "Current password")
	cmd.Flags().StringVar(&form.New, "new", "", "New password, at least 8 characters")
	cmd.Flags().StringVar(&form.Confirm, "confirm", "", "New password again")

	return cmd
}

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the active profile, API and logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.InitSession(cmd.Context()); err != nil {
				return err
			}

			user := app.Session.User()
			token, _ := app.Tokens.Token()
			exp, hasExp := api.TokenExpiry(token)

			if app.Out.JSONMode() {
				out := map[string]any{
					"profile":     app.Settings.Profile,
					"api_url":     app.Client.BaseURL(),
					"token_store": app.Settings.TokenStore,
					"user":        user,
				}
				if hasExp {
					out["token_expires_at"] = exp
				}
				return app.Out.JSON(out)
			}

			app.Out.Info("Profile:     %s", app.Settings.Profile)
			app.Out.Info("API:         %s", app.Client.BaseURL())
			app.Out.Info("Token store: %s", app.Settings.TokenStore)
			if user == nil {
				app.Out.Warning("Not logged in")
				return nil
			}
			app.Out.Info("User:        %s (%s)", user.Name, user.Email)
			app.Out.Info("Role:        %s", user.Role)
			if hasExp {
				app.Out.Info("Token:       %s", describeExpiry(exp, time.Now()))
			}
			return nil
		},
	}
}

func describeExpiry(exp, now time.Time) string {
	if !exp.After(now) {
		return fmt.Sprintf("expired %s", exp.Local().Format(time.DateTime))
	}
	return fmt.Sprintf("expires %s (in %s)", exp.Local().Format(time.DateTime), exp.Sub(now).Round(time.Minute))
}
