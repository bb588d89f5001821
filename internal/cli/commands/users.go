package commands

import (
	"context"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/nexa-tasks/nexa/internal/api"
	"github.com/nexa-tasks/nexa/internal/models"
	"github.com/nexa-tasks/nexa/internal/router"
)

func newAdminUsersCmd(app *App) *cobra.Command {
	var export, remove string
	var yes bool

	cmd := &cobra.Command{
		Use:   "users",
		Short: "List team members with their task counts",
		Long: `List team members with their task counts.

Examples:
  $ nexa admin users
  $ nexa admin users --export              # saves users_report.csv
  $ nexa admin users --delete <user-id> --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var page router.Page
			switch {
			case remove != "":
				page = func(ctx context.Context, req router.Request) error {
					return deleteUser(ctx, app, req, remove, yes)
				}
			case cmd.Flags().Changed("export"):
				page = func(ctx context.Context, req router.Request) error {
					report, err := app.Client.ExportUsers(ctx)
					if err != nil {
						return failed("download report", err)
					}
					return app.saveReport(report, export, "users_report.csv")
				}
			}
			return app.Open(cmd.Context(), router.RouteAdminUsers, page)
		},
	}

	cmd.Flags().StringVar(&export, "export", "", "Download the user report to a file or directory")
	cmd.Flags().Lookup("export").NoOptDefVal = "."
	cmd.Flags().StringVar(&remove, "delete", "", "Delete the user with this ID")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the delete confirmation")

	cmd.AddCommand(newAddUserCmd(app))
	cmd.AddCommand(newEditUserCmd(app))

	return cmd
}

func deleteUser(ctx context.Context, app *App, req router.Request, userID string, yes bool) error {
	if !yes {
		if !app.Interactive {
			return fmt.Errorf("refusing to delete without confirmation (use --yes)")
		}
		confirm := promptui.Prompt{
			Label:     fmt.Sprintf("Delete user %s", userID),
			IsConfirm: true,
		}
		if _, err := confirm.Run(); err != nil {
			app.Out.Info("Cancelled")
			return nil
		}
	}

	if err := app.Client.DeleteUser(ctx, userID); err != nil {
		return failed("delete user", err)
	}
	app.Out.Success("✓ User deleted successfully")
	return app.usersPage(ctx, req)
}

func newAddUserCmd(app *App) *cobra.Command {
	var input api.UserInput
	var role string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a team member account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Open(cmd.Context(), router.RouteAdminUsers, func(ctx context.Context, req router.Request) error {
				if input.Name == "" || input.Email == "" {
					return fmt.Errorf("--name and --email are required")
				}
				if input.Password == "" {
					var err error
					if input.Password, err = app.promptPassword("Password"); err != nil {
						return fmt.Errorf("%w (use --password flag)", err)
					}
				}
				r, err := app.chooseRole(role)
				if err != nil {
					return err
				}
				input.Role = r

				user, err := app.Client.CreateUser(ctx, input)
				if err != nil {
					return failed("create user", err)
				}
				app.Out.Success("✓ Created %s (%s) as %s", user.Name, user.Email, user.Role)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&input.Name, "name", "", "Full name")
	cmd.Flags().StringVar(&input.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&input.Password, "password", "", "Initial password")
	cmd.Flags().StringVar(&role, "role", "", "Role: user or admin (will prompt if not provided)")

	return cmd
}

func newEditUserCmd(app *App) *cobra.Command {
	var input api.UserInput
	var role string

	cmd := &cobra.Command{
		Use:   "edit <user-id>",
		Short: "Change a team member's name, email or role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Open(cmd.Context(), router.RouteAdminUsers, func(ctx context.Context, req router.Request) error {
				if cmd.Flags().Changed("role") {
					r, err := app.chooseRole(role)
					if err != nil {
						return err
					}
					input.Role = r
				}
				if input == (api.UserInput{}) {
					return fmt.Errorf("nothing to change (use --name, --email or --role)")
				}

				user, err := app.Client.UpdateUser(ctx, args[0], input)
				if err != nil {
					return failed("update user", err)
				}
				app.Out.Success("✓ Updated %s (%s)", user.Name, user.Email)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&input.Name, "name", "", "New name")
	cmd.Flags().StringVar(&input.Email, "email", "", "New email address")
	cmd.Flags().StringVar(&role, "role", "", "New role: user or admin")

	return cmd
}

// chooseRole validates role, or asks for one when empty and interactive
func (a *App) chooseRole(role string) (models.Role, error) {
	if role != "" {
		r := models.Role(role)
		if !r.Valid() {
			return "", fmt.Errorf("invalid role '%s', must be one of: user, admin", role)
		}
		return r, nil
	}
	if !a.Interactive {
		return models.RoleUser, nil
	}

	sel := promptui.Select{
		Label: "Select a role",
		Items: []models.Role{models.RoleUser, models.RoleAdmin},
	}
	_, picked, err := sel.Run()
	if err != nil {
		return "", fmt.Errorf("role selection cancelled: %w", err)
	}
	return models.Role(picked), nil
}
