/*
This project is the automatic timetable backend for the OpenSourceDUTH team. It builds weekly class timetables from teacher availability with the help of a generative model.
Timetable API Copyright (C) 2025 OpenSourceDUTH
    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU General Public License as published by
    the Free Software Foundation, either version 3 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU General Public License
    along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"TimetableAPI/internal/auth"
	"TimetableAPI/internal/databases"
	"TimetableAPI/internal/env"
)

var dbPath string

func openStore() (*auth.TokenStore, func(), error) {
	db, err := databases.OpenAndMigrate(context.Background(), dbPath, databases.Auth)
	if err != nil {
		return nil, nil, err
	}
	return auth.NewTokenStore(auth.NewRepository(db)), func() { db.Close() }, nil
}

func issueCmd() *cobra.Command {
	var (
		label   string
		scopes  []string
		ips     []string
		rpm     int
		expires time.Duration
	)

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a new API token and print it once",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeDB, err := openStore()
			if err != nil {
				return err
			}
			defer closeDB()

			req := auth.TokenIssueRequest{Label: label, AllowedIPs: ips}
			for _, s := range scopes {
				req.Scopes = append(req.Scopes, auth.Scope(strings.TrimSpace(s)))
			}
			if cmd.Flags().Changed("rpm") {
				req.RPMLimit = &rpm
			}
			if expires > 0 {
				at := time.Now().Add(expires)
				req.ExpiresAt = &at
			}

			token, err := store.IssueToken(req)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "id:     %d\nlabel:  %s\nscopes: %s\ntoken:  %s\n",
				token.ID, token.Label, joinScopes(token.Scopes), token.RawToken)
			fmt.Fprintln(cmd.ErrOrStderr(), "Store the token now; it cannot be shown again.")
			return nil
		},
	}

	cmd.Flags().StringVar(&label, "label", "", "human readable label (required)")
	cmd.Flags().StringSliceVar(&scopes, "scope", []string{string(auth.ScopeGenerate), string(auth.ScopeRead)}, "scopes: generate, read")
	cmd.Flags().StringSliceVar(&ips, "allow-ip", nil, "restrict the token to these client IPs")
	cmd.Flags().IntVar(&rpm, "rpm", 0, "requests per minute for this token (0 = unlimited; default is the server's AUTH_DEFAULT_RPM)")
	cmd.Flags().DurationVar(&expires, "expires-in", 0, "token lifetime, e.g. 720h (0 = never)")
	_ = cmd.MarkFlagRequired("label")
	return cmd
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List issued tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeDB, err := openStore()
			if err != nil {
				return err
			}
			defer closeDB()

			tokens, err := store.ListTokens()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tLABEL\tSCOPES\tRPM\tSTATE\tCREATED")
			for _, t := range tokens {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
					t.ID, t.Label, joinScopes(t.Scopes), rpmString(t.RPMLimit), tokenState(t), t.CreatedAt.Format(time.RFC3339))
			}
			return w.Flush()
		},
	}
}

func revokeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <id>",
		Short: "Revoke a token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid token id %q", args[0])
			}

			store, closeDB, err := openStore()
			if err != nil {
				return err
			}
			defer closeDB()

			if err := store.RevokeToken(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "token %d revoked\n", id)
			return nil
		},
	}
}

func joinScopes(scopes []auth.Scope) string {
	out := make([]string, len(scopes))
	for i, s := range scopes {
		out[i] = string(s)
	}
	return strings.Join(out, ",")
}

func rpmString(rpm *int) string {
	if rpm == nil {
		return "default"
	}
	if *rpm == auth.UnlimitedRPM {
		return "unlimited"
	}
	return strconv.Itoa(*rpm)
}

func tokenState(t auth.Token) string {
	switch {
	case t.RevokedAt != nil:
		return "revoked"
	case t.ExpiresAt != nil && t.ExpiresAt.Before(time.Now()):
		return "expired"
	default:
		return "active"
	}
}

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "tokens",
		Short:         "Manage API tokens for the timetable backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dbPath, "db", env.GetEnv(env.EnvAuthDBPath, "./internal/databases/auth.db"), "path to the auth database")
	root.AddCommand(issueCmd(), listCmd(), revokeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
