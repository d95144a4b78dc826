package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"banbds/internal/services/account"
)

func loginCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login <phone>",
		Short: "Log in and store the user session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("BANBDS_PASSWORD")
			}
			if password == "" {
				return errors.New("password required (--password or BANBDS_PASSWORD)")
			}
			p, err := appCtx.Account.Login(cmd.Context(), args[0], password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", p.FullName, p.Phone)
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "account password")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the user session; the device stays registered",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := appCtx.Account.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func otpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "otp <phone>",
		Short: "Request a one-time code by SMS",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := appCtx.Account.SendOTP(cmd.Context(), args[0])
			switch {
			case errors.Is(err, account.ErrOTPThrottled):
				return errors.New("a code was sent recently; wait before asking again")
			case err != nil:
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Code sent")
			return nil
		},
	}
}

func profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or update the user profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := appCtx.Account.Profile(cmd.Context())
			if err != nil {
				return loginHint(err)
			}
			return printJSON(cmd.OutOrStdout(), p)
		},
	}

	var upd account.ProfileUpdate
	update := &cobra.Command{
		Use:   "update",
		Short: "Change profile fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			if upd == (account.ProfileUpdate{}) {
				return errors.New("nothing to update")
			}
			p, err := appCtx.Account.UpdateProfile(cmd.Context(), upd)
			if err != nil {
				return loginHint(err)
			}
			return printJSON(cmd.OutOrStdout(), p)
		},
	}
	update.Flags().StringVar(&upd.FullName, "name", "", "full name")
	update.Flags().StringVar(&upd.Email, "email", "", "email address")
	update.Flags().StringVar(&upd.Address, "address", "", "postal address")
	update.Flags().StringVar(&upd.Avatar, "avatar", "", "avatar image URL")

	cmd.AddCommand(update)
	return cmd
}
