package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-trackjournal/pkg/auth"
	"github.com/goliatone/go-trackjournal/pkg/tui"
	"github.com/goliatone/go-trackjournal/pkg/validation"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Sign up, sign in and manage your account",
	}
	cmd.AddCommand(
		newSignUpCmd(),
		newSignInCmd(),
		newSignOutCmd(),
		newWhoAmICmd(),
		newResetCmd(),
		newResetConfirmCmd(),
	)
	return cmd
}

// withApp builds the app for commands that do not need a session.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app, driver tui.PromptDriver) error) error {
	ctx := cmd.Context()
	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a, tui.NewSurveyDriver(cmd.OutOrStdout()))
}

func askEmail(ctx context.Context, driver tui.PromptDriver, email string) (string, error) {
	if email != "" {
		return email, nil
	}
	return driver.Input(ctx, tui.InputConfig{
		Message: "Email",
		Validator: func(s string) error {
			if msg := validation.Email(s); msg != "" {
				return errors.New(msg)
			}
			return nil
		},
	})
}

func newSignUpCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app, driver tui.PromptDriver) error {
				address, err := askEmail(ctx, driver, email)
				if err != nil {
					return err
				}
				password, err := driver.Password(ctx, tui.InputConfig{Message: "Password"})
				if err != nil {
					return err
				}
				confirm, err := driver.Password(ctx, tui.InputConfig{Message: "Confirm password"})
				if err != nil {
					return err
				}
				if errs := validation.SignUp(address, password, confirm); !errs.Empty() {
					return errs
				}
				session, err := a.auth.SignUp(ctx, address, password)
				if err != nil {
					return auth.Normalize(err, auth.FallbackSignUp)
				}
				return finishSignIn(cmd, session)
			})
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	return cmd
}

func newSignInCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in with email and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app, driver tui.PromptDriver) error {
				address, err := askEmail(ctx, driver, email)
				if err != nil {
					return err
				}
				password, err := driver.Password(ctx, tui.InputConfig{Message: "Password"})
				if err != nil {
					return err
				}
				session, err := a.auth.SignIn(ctx, address, password)
				if err != nil {
					return auth.Normalize(err, auth.FallbackSignIn)
				}
				return finishSignIn(cmd, session)
			})
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	return cmd
}

func finishSignIn(cmd *cobra.Command, session auth.Session) error {
	if err := saveSession(sessionPath, session); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", session.Email)
	return nil
}

func newSignOutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := clearSession(sessionPath); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newWhoAmICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUser(cmd, func(ctx context.Context, a *app, uid string) error {
				profile, err := a.profiles.GetProfile(ctx, uid)
				if err != nil {
					s, serr := loadSession(sessionPath)
					if serr != nil {
						return serr
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", s.Email, uid)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%s), member since %s\n",
					profile.Email, uid, profile.CreatedAt.Format("2006-01-02"))
				return nil
			})
		},
	}
}

func newResetCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Email a password reset link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app, driver tui.PromptDriver) error {
				address, err := askEmail(ctx, driver, email)
				if err != nil {
					return err
				}
				if err := a.auth.SendPasswordReset(ctx, address); err != nil {
					return auth.Normalize(err, auth.FallbackPasswordReset)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Password reset email sent to %s\n", address)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	return cmd
}

func newResetConfirmCmd() *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "reset-confirm",
		Short: "Choose a new password with a reset token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app, driver tui.PromptDriver) error {
				password, err := driver.Password(ctx, tui.InputConfig{
					Message: "New password",
					Validator: func(s string) error {
						if msg := validation.Password(s); msg != "" {
							return errors.New(msg)
						}
						return nil
					},
				})
				if err != nil {
					return err
				}
				if err := a.resetter.ConfirmPasswordReset(ctx, token, password); err != nil {
					return auth.Normalize(err, auth.FallbackPasswordReset)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Password updated. Sign in with the new password.")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "reset token from the email link")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}
