package commands

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/teller/internal/accounts"
	"github.com/cleared-dev/teller/internal/activity"
	"github.com/cleared-dev/teller/internal/clients"
	"github.com/cleared-dev/teller/internal/config"
	"github.com/cleared-dev/teller/internal/gitops"
	"github.com/cleared-dev/teller/internal/logging"
	"github.com/cleared-dev/teller/internal/store/csvstore"
	"github.com/cleared-dev/teller/internal/store/sqlite"
)

// env is everything a subcommand needs, built from the project's teller.yaml.
type env struct {
	repoRoot string
	cfg      *config.Config
	log      zerolog.Logger
	clients  *clients.Service
	accounts *accounts.Service
	closers  []func() error
}

func loadEnv(cmd *cobra.Command, opts *rootOptions) (*env, error) {
	root, err := filepath.Abs(opts.repoDir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.Load(filepath.Join(root, config.FileName))
	if err != nil {
		return nil, fmt.Errorf("loading project: %w", err)
	}

	logCfg := logging.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty || opts.pretty}
	if opts.logLevel != "" {
		logCfg.Level = opts.logLevel
	}
	log := logging.New(cmd.ErrOrStderr(), logCfg)

	e := &env{repoRoot: root, cfg: cfg, log: log}

	var (
		clientStore  clients.Store
		accountStore accounts.Store
	)
	switch cfg.Storage.Driver {
	case config.DriverCSV:
		dataDir := filepath.Join(root, cfg.Storage.Path)
		clientStore = csvstore.NewClientStore(dataDir)
		accountStore = csvstore.NewAccountStore(dataDir)
	case config.DriverSQLite:
		db, err := sqlite.Open(filepath.Join(root, cfg.Storage.Path), log)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		e.closers = append(e.closers, db.Close)
		clientStore = db.Clients()
		accountStore = db.Accounts()
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	clientOpts := []clients.Option{clients.WithLogger(log)}
	if cfg.Rules.MinimumAge > 0 {
		clientOpts = append(clientOpts, clients.WithMinimumAge(cfg.Rules.MinimumAge))
	}
	e.clients = clients.NewService(clientStore, clientOpts...)

	var catalog *accounts.Catalog
	if products := cfg.ProductList(); len(products) > 0 {
		catalog = accounts.NewCatalog(products...)
	}
	e.accounts = accounts.NewService(accountStore, e.clients, catalog, accounts.WithLogger(log))

	return e, nil
}

func (e *env) Close() {
	for _, c := range e.closers {
		if err := c(); err != nil {
			e.log.Warn().Err(err).Msg("closing store")
		}
	}
}

// record appends entry to the activity log and, with auto_commit, commits
// the data and log files. Failures are logged,
// not returned: the registry write already happened.
func (e *env) record(entry activity.Entry, message string) {
	entry.Timestamp = time.Now()
	if err := activity.Append(e.repoRoot, entry); err != nil {
		e.log.Warn().Err(err).Msg("writing activity log")
	}

	if !e.cfg.Git.AutoCommit || !gitops.IsRepo(e.repoRoot) {
		return
	}
	repo := gitops.New(e.repoRoot, e.cfg.Git.AuthorName, e.cfg.Git.AuthorEmail)
	hash, err := repo.Commit(message, e.cfg.Storage.Path, "logs")
	if err != nil {
		e.log.Warn().Err(err).Msg("committing changes")
		return
	}
	e.log.Debug().Str("commit", hash).Msg("changes committed")
}
