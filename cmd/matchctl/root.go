// cmd/matchctl/root.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"freelance-matcher/internal/common/config"
	"freelance-matcher/internal/common/database"
	commonhttp "freelance-matcher/internal/common/http"
	"freelance-matcher/internal/common/logger"
	"freelance-matcher/internal/matching/stack"
	"freelance-matcher/internal/matching/store"
)

type rootOptions struct {
	configPath string
	dataPath   string
	debug      bool
	jsonLogs   bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "matchctl",
		Short:        "Operate the freelancer matching engine from the command line",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a config file (default: configs/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.dataPath, "data", "", "JSON fixtures file used instead of Postgres")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")
	cmd.PersistentFlags().BoolVar(&opts.jsonLogs, "json", false, "log in JSON format")

	cmd.AddCommand(
		newRankCmd(opts),
		newReindexCmd(opts),
		newRegistryCmd(),
		newDeployCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// session is an engine opened for a single command run.
type session struct {
	cfg    *config.Config
	engine *stack.Stack
	log    *zap.Logger
	close  func()
}

func (o *rootOptions) logger() *zap.Logger {
	level, format := "warn", "console"
	if o.debug {
		level = "debug"
	}
	if o.jsonLogs {
		format = "json"
	}
	return logger.New(level, format, "stderr")
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	switch {
	case o.configPath != "":
		return config.LoadFromFile(o.configPath)
	case o.dataPath != "":
		return config.Defaults(), nil
	default:
		return config.Load()
	}
}

// open builds the matching stack. With --data the records come from the
// fixtures file and no infrastructure is contacted.
func (o *rootOptions) open(ctx context.Context) (*session, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	zapLog := o.logger()

	deps := stack.Deps{
		HTTPClient: commonhttp.NewClient(30*time.Second, "matchctl/"+version).Standard(),
		Logger:     logger.NewZapAdapter(zapLog),
	}
	closer := func() { _ = zapLog.Sync() }

	if o.dataPath != "" {
		mem, err := store.LoadFixtures(o.dataPath)
		if err != nil {
			return nil, err
		}
		deps.Store = mem
	} else {
		clients, err := database.Connect(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("connect data stores: %w", err)
		}
		deps.DB = clients.Postgres.GetDB()
		deps.Redis = clients.Redis.GetClient()
		if clients.ES != nil {
			deps.ES = clients.ES.Client
		}
		closer = func() {
			clients.Close()
			_ = zapLog.Sync()
		}
	}

	engine, err := stack.Build(ctx, cfg, deps)
	if err != nil {
		closer()
		return nil, err
	}
	return &session{cfg: cfg, engine: engine, log: zapLog, close: closer}, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
