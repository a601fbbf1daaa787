package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/2beens/blogsave/internal/blog"
	"github.com/2beens/blogsave/internal/config"
)

func newRecordsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Work with saved blog records",
	}

	cmd.AddCommand(newRecordsListCmd(opts))

	return cmd
}

func newRecordsListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print all saved records as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), opts, func(_ *config.Config, repo *blog.Repo) error {
				records, err := repo.ListRecords(cmd.Context())
				if err != nil {
					return err
				}

				out, err := json.MarshalIndent(records, "", "  ")
				if err != nil {
					return fmt.Errorf("marshal records: %w", err)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return err
			})
		},
	}
}
