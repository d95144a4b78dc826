package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"banbds/internal/services/listing"
)

func pageFlags(cmd *cobra.Command, p *listing.Page) {
	cmd.Flags().IntVar(&p.Number, "page", listing.DefaultPage, "page number, starting at 1")
	cmd.Flags().IntVar(&p.Size, "size", listing.DefaultPageSize, "items per page")
}

func postsCmd() *cobra.Command {
	var page listing.Page
	cmd := &cobra.Command{
		Use:   "posts",
		Short: "List your posts",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := appCtx.Listing.MyPosts(cmd.Context(), page)
			if err != nil {
				return loginHint(err)
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	pageFlags(cmd, &page)

	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show one post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := appCtx.Listing.Post(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), p)
		},
	})
	return cmd
}

func newsCmd() *cobra.Command {
	var page listing.Page
	cmd := &cobra.Command{
		Use:   "news",
		Short: "List news articles",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := appCtx.Listing.News(cmd.Context(), page)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	pageFlags(cmd, &page)
	return cmd
}

func projectsCmd() *cobra.Command {
	var page listing.Page
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List development projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := appCtx.Listing.Projects(cmd.Context(), page)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	pageFlags(cmd, &page)
	return cmd
}

func uploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload an image for your posts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			img, err := appCtx.Listing.UploadImage(cmd.Context(), f.Name(), f)
			if err != nil {
				return loginHint(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), img.URL)
			return nil
		},
	}
}
