package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func deviceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "device",
		Short: "Inspect or reset the device identity",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "status",
			Short: "Show which parts of the device identity are stored",
			RunE: func(cmd *cobra.Command, args []string) error {
				state, err := appCtx.Device.State(cmd.Context())
				if err != nil {
					return err
				}
				id, _, err := appCtx.Device.DeviceID(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "state: %s\n", state)
				if id != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "device id: %s\n", id)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "token",
			Short: "Print the device token, registering the device if needed",
			RunE: func(cmd *cobra.Command, args []string) error {
				tok, err := appCtx.Device.Token(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), tok)
				return nil
			},
		},
		&cobra.Command{
			Use:   "renew",
			Short: "Replace the device token",
			RunE: func(cmd *cobra.Command, args []string) error {
				old, err := appCtx.Device.Token(cmd.Context())
				if err != nil {
					return err
				}
				tok, err := appCtx.Device.Refresh(cmd.Context(), old)
				if err != nil {
					return fmt.Errorf("renewing device token: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), tok)
				return nil
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Forget the device identity; the next call registers again",
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := appCtx.Device.Forget(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Device identity removed")
				return nil
			},
		},
	)
	return cmd
}
