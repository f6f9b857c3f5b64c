// Package cli implements the command-line interface.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/distributhor/arangotools/cache"
	"github.com/distributhor/arangotools/config"
	"github.com/distributhor/arangotools/driver"
	"github.com/distributhor/arangotools/repository"
)

var (
	// Global flags
	configPath string

	// Resolved values
	cfg    config.Config
	logger = slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelWarn}))
)

// offline marks commands that never touch the database.
const offline = "offline"

var rootCmd = &cobra.Command{
	Use:   "arangotools",
	Short: "Compose AQL filters and manage ArangoDB databases",
	Long: `arangotools turns simple filter expressions into parameterized AQL,
runs them against ArangoDB, and provisions or validates the databases,
collections and graphs described in a YAML config.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config loading for commands that don't need it
		if cmd.Annotations[offline] != "" || cmd.Name() == "completion" {
			return nil
		}
		if cmd.Parent() != nil && cmd.Parent().Name() == "completion" {
			return nil
		}
		c, err := config.Load(configPath)
		if err != nil {
			return err
		}
		l, err := c.BuildLogger()
		if err != nil {
			return fmt.Errorf("cannot create logger: %w", err)
		}
		cfg, logger = c, l
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "arangotools.yaml", "path to the YAML config")
}

// Execute runs the CLI.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// connect opens a Connection for the configured server. The returned func
// releases the cache client, if any.
func connect() (*repository.Connection, func(), error) {
	client, err := driver.NewArangoClient(cfg.Arango.ArangoConfig)
	if err != nil {
		return nil, nil, err
	}
	opts := []repository.Option{repository.WithLogger(logger)}
	release := func() {}
	if cfg.Cache != nil {
		store, err := cache.Open(*cfg.Cache)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, repository.WithCache(store))
		if c, ok := store.(io.Closer); ok {
			release = func() { _ = c.Close() }
		}
	}
	return repository.NewConnection(client, opts...), release, nil
}

func database(ctx context.Context) (*repository.DB, func(), error) {
	conn, release, err := connect()
	if err != nil {
		return nil, nil, err
	}
	db, err := conn.DB(ctx, cfg.Arango.Database)
	if err != nil {
		release()
		return nil, nil, err
	}
	return db, release, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
