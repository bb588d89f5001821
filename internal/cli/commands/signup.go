package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nexa-tasks/nexa/internal/api"
	"github.com/nexa-tasks/nexa/internal/forms"
	"github.com/nexa-tasks/nexa/internal/router"
)

// NewSignupCmd creates the signup command
func NewSignupCmd(app *App) *cobra.Command {
	var form forms.Signup

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		Long: `Create an account and sign in.

An admin invite token grants the admin role. A profile image is uploaded
before the account is created.

Examples:
  $ nexa signup --name "Jane Doe" --email jane@example.com
  $ nexa signup --name Ada --email ada@example.com --admin-invite-token 4f1c...
  $ nexa signup --name Jane --email jane@example.com --image ./me.png`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSignup(cmd, app, &form)
		},
	}

	cmd.Flags().StringVar(&form.Name, "name", "", "Full name")
	cmd.Flags().StringVar(&form.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&form.Password, "password", "", "Password, at least 8 characters (or set NEXA_PASSWORD, will prompt if not provided)")
	cmd.Flags().StringVar(&form.AdminInviteToken, "admin-invite-token", "", "Invite token that grants the admin role")
	cmd.Flags().StringVar(&form.ProfileImagePath, "image", "", "Profile image to upload")

	return cmd
}

func runSignup(cmd *cobra.Command, app *App, form *forms.Signup) error {
	ctx := cmd.Context()

	if form.Password == "" {
		form.Password = os.Getenv("NEXA_PASSWORD")
	}
	if form.Password == "" {
		var err error
		if form.Password, err = app.promptPassword("Password"); err != nil {
			return fmt.Errorf("%w (use --password flag or NEXA_PASSWORD env var)", err)
		}
	}

	if err := form.Validate(); err != nil {
		return err
	}

	req := api.RegisterRequest{
		Name:             form.Name,
		Email:            form.Email,
		Password:         form.Password,
		AdminInviteToken: form.AdminInviteToken,
	}

	if form.ProfileImagePath != "" {
		url, err := uploadImageFile(cmd, app, form.ProfileImagePath)
		if err != nil {
			return err
		}
		req.ProfileImageURL = url
	}

	user, err := app.Client.Register(ctx, req)
	if err != nil {
		return failed("sign up", err)
	}

	if err := app.Login(user); err != nil {
		return fmt.Errorf("failed to save authentication token: %w", err)
	}

	app.Out.Success("✓ Account created!")
	app.Out.Info("  User: %s (%s)", user.Name, user.Email)
	if user.IsAdmin() {
		app.Out.Info("  Role: Admin")
	}

	return app.Visit(ctx, router.RouteRoot, nil)
}

// uploadImageFile uploads a local image and returns its URL
func uploadImageFile(cmd *cobra.Command, app *App, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	url, err := app.Client.UploadImage(cmd.Context(), path, f)
	if err != nil {
		if api.UserMessage(err, "") == "" {
			return "", &userError{msg: "Image upload failed.", err: err}
		}
		return "", failed("upload image", err)
	}
	return url, nil
}
