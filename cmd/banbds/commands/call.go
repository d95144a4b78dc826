package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"banbds/internal/domain"
)

// callCmd sends an arbitrary request through the gateway. Handy for
// endpoints without a dedicated command.
func callCmd() *cobra.Command {
	var (
		data   string
		query  []string
		asUser bool
	)
	cmd := &cobra.Command{
		Use:   "call <method> <path>",
		Short: "Send a raw authenticated request",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := domain.Request{
				Method:       strings.ToUpper(args[0]),
				Path:         args[1],
				RequiresUser: asUser,
			}
			if data != "" {
				if !json.Valid([]byte(data)) {
					return errors.New("--data must be valid JSON")
				}
				req.Body = json.RawMessage(data)
			}
			if len(query) > 0 {
				req.Query = url.Values{}
				for _, kv := range query {
					k, v, ok := strings.Cut(kv, "=")
					if !ok {
						return fmt.Errorf("--query %q: want key=value", kv)
					}
					req.Query.Add(k, v)
				}
			}

			var (
				out domain.Outcome
				err error
			)
			if asUser {
				out, err = appCtx.Account.CallAsUser(cmd.Context(), req)
			} else {
				out, err = appCtx.Gateway.Call(cmd.Context(), req)
			}
			if err != nil {
				return loginHint(err)
			}
			if err := out.Err(); err != nil {
				return err
			}
			if len(out.Data) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "OK")
				return nil
			}
			return printJSON(cmd.OutOrStdout(), out.Data)
		},
	}
	cmd.Flags().StringVarP(&data, "data", "d", "", "JSON request body")
	cmd.Flags().StringArrayVarP(&query, "query", "q", nil, "query parameter key=value (repeatable)")
	cmd.Flags().BoolVarP(&asUser, "user", "u", false, "attach the user session")
	return cmd
}
