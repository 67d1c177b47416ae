package main

import (
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/nrfta/realestates-go"
	"github.com/nrfta/realestates-go/auth"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print a bearer token for a user",
	Long: `Print a bearer token signed with the configured secret.

Example:
  realestates token --user alice
  realestates token --user root --groups admin --ttl 1h`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		user, _ := cmd.Flags().GetString("user")
		groups, _ := cmd.Flags().GetStringSlice("groups")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		p := realestates.Principal{
			ID:     user,
			Groups: groups,
			Admin:  slices.Contains(groups, realestates.AdminGroup),
		}
		token, err := auth.New(cfg.Auth.Secret, cfg.Auth.Issuer).Issue(p, ttl)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().StringP("user", "u", "", "principal id (required)")
	tokenCmd.Flags().StringSliceP("groups", "g", nil, "groups of the principal")
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "token lifetime")
	_ = tokenCmd.MarkFlagRequired("user")
}
