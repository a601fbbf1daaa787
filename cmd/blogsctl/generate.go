package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/2beens/blogsave/internal"
	"github.com/2beens/blogsave/internal/blog"
	"github.com/2beens/blogsave/internal/config"
	"github.com/2beens/blogsave/internal/generation"
)

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	var prompt string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a blog for the prompt and save it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(prompt) == "" {
				return blog.ErrPromptEmpty
			}

			return withRepo(cmd.Context(), opts, func(cfg *config.Config, repo *blog.Repo) error {
				model, err := internal.NewTextModel(cmd.Context(), internal.NewTextModelParams{
					Config:      cfg,
					TGIToken:    os.Getenv("BLOGSAVE_TGI_TOKEN"),
					GenAIAPIKey: os.Getenv("GEMINI_API_KEY"),
				})
				if err != nil {
					return err
				}

				text, err := generation.NewAdapter(model, nil).Generate(cmd.Context(), prompt)
				if err != nil {
					return err
				}
			
				repo.SaveRecord(cmd.Context(), prompt, text)

				_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&prompt, "prompt", "", "prompt to generate the blog from")

	return cmd
}
