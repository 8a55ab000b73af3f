package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"todo-planner/internal/model"
	"todo-planner/internal/validation"
)

func newSignUpCmd(a *app) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "signup <email>",
		Short: "Create an account and sign in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			creds := model.Credentials{Email: args[0], Password: password}
			if creds.Password == "" {
				var err error
				if creds.Password, err = a.prompt("Password: "); err != nil {
					return err
				}
				confirm, err := a.prompt("Confirm password: ")
				if err != nil {
					return err
				}
				if err := validation.ConfirmPassword(creds.Password, confirm); err != nil {
					return err
				}
			}

			result, err := a.client.SignUp(cmd.Context(), creds)
			if err != nil {
				return a.explain(err)
			}
			if err := a.remember(result); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Account created. Signed in as %s.\n", a.styles.title.Render(result.User.Email))
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when empty)")
	return cmd
}

func newLoginCmd(a *app) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login [email]",
		Short: "Sign in to the task server",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			creds := model.Credentials{Email: a.cfg.Email, Password: password}
			if len(args) == 1 {
				creds.Email = args[0]
			}
			var err error
			if creds.Email == "" {
				if creds.Email, err = a.prompt("Email: "); err != nil {
					return err
				}
			}
			if creds.Password == "" {
				if creds.Password, err = a.prompt("Password: "); err != nil {
					return err
				}
			}

			result, err := a.client.Login(cmd.Context(), creds)
			if err != nil {
				return a.explain(err)
			}
			if err := a.remember(result); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Welcome back, %s.\n", a.styles.title.Render(result.User.Email))
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when empty)")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the saved token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !a.session.Authenticated() {
				fmt.Fprintln(a.out, "Not signed in.")
				return nil
			}
			if err := a.client.Logout(cmd.Context()); err != nil {
				fmt.Fprintln(a.errOut, "Warning: the server did not confirm the logout:", err)
			}
			a.cfg.Token = ""
			if err := a.save(); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Signed out.")
			return nil
		},
	}
}

func newWhoAmICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			user, err := a.client.Me(cmd.Context())
			if err != nil {
				return a.explain(err)
			}
			fmt.Fprintf(a.out, "%s (member since %s)\n", a.styles.title.Render(user.Email), user.CreatedAt.In(a.loc).Format("2006-01-02"))
			fmt.Fprintf(a.out, "server: %s\n", a.cfg.Server)
			return nil
		},
	}
}

// remember persists a fresh sign-in.
func (a *app) remember(result model.AuthResult) error {
	a.cfg.Token = result.Token
	a.cfg.Email = result.User.Email
	if err := a.save(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}
