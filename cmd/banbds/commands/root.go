package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"banbds/internal/app"
	"banbds/internal/logging"
)

var (
	appCtx  *app.App
	verbose bool

	// opts lets tests inject collaborators.
	opts app.Options
)

// Execute runs the CLI with os.Args.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return newRoot().ExecuteContext(ctx)
}

func newRoot() *cobra.Command {
	root := &cobra.Command{
		Use:          "banbds",
		Short:        "Real-estate listing client",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v := app.NewViper()
			for _, name := range []string{"home", "base-url", "store", "redis-url", "sqlite-path", "passphrase", "log-level", "log-format", "http-timeout"} {
				if err := v.BindPFlag(flagKey(name), cmd.Flags().Lookup(name)); err != nil {
					return err
				}
			}
			cfg, err := app.Load(v)
			if err != nil {
				return err
			}
			log := logging.NewWithWriter(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
			appCtx, err = app.New(cmd.Context(), cfg, log, opts)
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if appCtx == nil {
				return nil
			}
			if verbose {
				s := appCtx.Gateway.Stats()
				fmt.Fprintf(cmd.ErrOrStderr(), "calls=%d attempts=%d renewals=%d\n", s.Calls, s.Attempts, s.Renewals)
			}
			err := appCtx.Close()
			appCtx = nil
			return err
		},
	}

	pf := root.PersistentFlags()
	pf.String("home", "", "state dir (default ~/.banbds)")
	pf.String("base-url", "", "backend base URL (e.g. http://127.0.0.1:8080)")
	pf.String("store", "", "session store: file, redis, sqlite or memory")
	pf.String("redis-url", "", "redis URL for --store=redis")
	pf.String("sqlite-path", "", "database file for --store=sqlite")
	pf.StringP("passphrase", "p", "", "encrypt the file store with this passphrase")
	pf.String("log-level", "", "debug, info, warn or error")
	pf.String("log-format", "", "text or json")
	pf.Duration("http-timeout", 0, "per-request timeout")
	pf.BoolVarP(&verbose, "verbose", "v", false, "print call statistics on exit")

	root.AddCommand(
		deviceCmd(),
		fingerprintCmd(),
		loginCmd(),
		logoutCmd(),
		otpCmd(),
		profileCmd(),
		postsCmd(),
		newsCmd(),
		projectsCmd(),
		uploadCmd(),
		callCmd(),
	)
	return root
}

// flagKey maps a flag name onto its config key. Unset flags leave the
// environment value in place.
func flagKey(name string) string { return strings.ReplaceAll(name, "-", "_") }

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
