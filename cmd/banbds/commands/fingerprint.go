package commands

import (
	"github.com/spf13/cobra"

	"banbds/internal/domain"
	"banbds/internal/fingerprint"
)

func fingerprintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint",
		Short: "Print the fingerprint sent when registering this device",
		RunE: func(cmd *cobra.Command, args []string) error {
			var src domain.FingerprintProvider = fingerprint.New()
			if opts.Fingerprints != nil {
				src = opts.Fingerprints
			}
			fp, err := src.Fingerprint(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]string{
				"brand":    fp.Brand,
				"model":    fp.Model,
				"deviceId": fp.HardwareID,
				"os":       fp.OS(),
				"macId":    fp.MACID,
			})
		},
	}
}
