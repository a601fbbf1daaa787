package main

import (
	"context"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/2beens/blogsave/internal"
	"github.com/2beens/blogsave/internal/blog"
	"github.com/2beens/blogsave/internal/config"
	"github.com/2beens/blogsave/internal/logging"
)

type rootOptions struct {
	env        string
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "blogsctl",
		Short:         "blogsctl inspects and feeds the blogsave records store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetOutput(cmd.ErrOrStderr())
			log.SetLevel(logging.GetLevel(opts.logLevel))
		},
	}

	cmd.PersistentFlags().StringVar(&opts.env, "env", "development", "environment [prod | production | dev | development]")
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "./config.toml", "path for the TOML config file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level")

	cmd.AddCommand(
		newRecordsCmd(opts),
		newGenerateCmd(opts),
	)

	return cmd
}

// withRepo loads the config and opens the configured store for the duration of fn.
func withRepo(ctx context.Context, opts *rootOptions, fn func(cfg *config.Config, repo *blog.Repo) error) error {
	cfg, err := config.Load(opts.env, opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	storeSetup, err := internal.NewRecordStore(ctx, internal.NewRecordStoreParams{
		Config:        cfg,
		RedisPassword: os.Getenv("BLOGSAVE_REDIS_PASS"),
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := storeSetup.Close(); err != nil {
			log.Errorf("close records store: %s", err)
		}
	}()

	return fn(cfg, blog.NewRepo(storeSetup.Store, nil))
}
