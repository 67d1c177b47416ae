package main

import (
	"fmt"
	"strconv"

	"github.com/friendsofgo/errors"
	"github.com/spf13/cobra"

	"github.com/nrfta/realestates-go/config"
	"github.com/nrfta/realestates-go/db"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the PostgreSQL database",
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create, upgrade or roll back the database schema",
}

var dbMigrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply every pending migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		url, err := databaseURL()
		if err != nil {
			return err
		}
		if err := db.Up(url); err != nil {
			return err
		}
		return printVersion(cmd, url)
	},
}

var dbMigrateDownCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Roll back migrations (default 1)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		steps := 1
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 {
				return errors.Errorf("steps must be a positive number, got %q", args[0])
			}
			steps = n
		}

		url, err := databaseURL()
		if err != nil {
			return err
		}
		if err := db.Down(url, steps); err != nil {
			return err
		}
		return printVersion(cmd, url)
	},
}

var dbMigrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the applied schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		url, err := databaseURL()
		if err != nil {
			return err
		}
		return printVersion(cmd, url)
	},
}

func databaseURL() (string, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return "", err
	}
	if cfg.Store.DatabaseURL == "" {
		return "", errors.New("store.databaseURL (DATABASE_URL) is not set")
	}
	return cfg.Store.DatabaseURL, nil
}

func printVersion(cmd *cobra.Command, url string) error {
	version, dirty, err := db.Version(url)
	if err != nil {
		return err
	}
	state := "clean"
	if dirty {
		state = "dirty"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (%s)\n", version, state)
	return nil
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(dbMigrateCmd)
	dbMigrateCmd.AddCommand(dbMigrateUpCmd, dbMigrateDownCmd, dbMigrateStatusCmd)
}
