package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/teller/internal/config"
	"github.com/cleared-dev/teller/internal/gitops"
)

func newInitCommand() *cobra.Command {
	var (
		bank   string
		driver string
		noGit  bool
	)

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new teller project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			cfg := config.Default(bank, driver)
			if noGit {
				cfg.Git.AutoCommit = false
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			hash, err := runInit(absDir, cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if hash != "" {
				fmt.Fprintf(out, "Initialized teller project at %s (%s)\n", absDir, hash)
			} else {
				fmt.Fprintf(out, "Initialized teller project at %s\n", absDir)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&bank, "bank", "", "bank name (required)")
	_ = cmd.MarkFlagRequired("bank")
	cmd.Flags().StringVar(&driver, "driver", config.DriverCSV, "storage driver (csv, sqlite)")
	cmd.Flags().BoolVar(&noGit, "no-git", false, "do not track the project in git")

	return cmd
}

// runInit lays out a project in dir and returns the initial commit hash, or
// "" when git is disabled.
func runInit(dir string, cfg *config.Config) (string, error) {
	if _, err := os.Stat(filepath.Join(dir, config.FileName)); err == nil {
		return "", fmt.Errorf("%s already exists in %s", config.FileName, dir)
	}

	dirs := []string{"logs"}
	switch cfg.Storage.Driver {
	case config.DriverCSV:
		dirs = append(dirs,
			filepath.Join(cfg.Storage.Path, "clients"),
			filepath.Join(cfg.Storage.Path, "accounts"),
		)
	case config.DriverSQLite:
		dirs = append(dirs, filepath.Dir(cfg.Storage.Path))
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return "", fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	if err := config.Save(filepath.Join(dir, config.FileName), cfg); err != nil {
		return "", fmt.Errorf("writing config: %w", err)
	}

	gitignore := "*.db-journal\n*.db-wal\n*.db-shm\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return "", fmt.Errorf("writing .gitignore: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "logs", ".gitkeep"), []byte{}, 0o644); err != nil {
		return "", fmt.Errorf("writing .gitkeep: %w", err)
	}

	if !cfg.Git.AutoCommit {
		return "", nil
	}

	repo := gitops.New(dir, cfg.Git.AuthorName, cfg.Git.AuthorEmail)
	if err := repo.Init(); err != nil {
		return "", fmt.Errorf("git init: %w", err)
	}
	hash, err := repo.Commit("init: Initialize " + cfg.Bank.Name)
	if err != nil {
		return "", fmt.Errorf("initial commit: %w", err)
	}
	return hash, nil
}
