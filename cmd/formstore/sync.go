// Sync command pushes local state to the remote backend.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openpatra/formstore/internal/dbsync"
	"github.com/openpatra/formstore/internal/remote"
)

var (
	flagSyncRemote string
	flagSyncToken  string
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push local categories, institutions, files, and forms to the remote backend",
	Long: `Sync pushes local state to the remote backend in dependency order.
Individual item failures are reported and skipped; the run continues.

Example:
  formstore sync --remote https://forms.example.org`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		remoteURL := flagSyncRemote
		if remoteURL == "" {
			remoteURL = configRemoteURL
		}
		if remoteURL == "" {
			return fmt.Errorf("no remote configured (use --remote or set remote.url in config.yaml)")
		}
		token := flagSyncToken
		if token == "" {
			token = configRemoteToken
		}

		store, closeStore, err := openStore(cmd.Context())
		if err != nil {
			fatal("sync", err)
		}
		defer closeStore()

		var opts []remote.Option
		if token != "" {
			opts = append(opts, remote.WithToken(token))
		}
		client := remote.NewClient(remoteURL, opts...)

		res := dbsync.New(store, client).SyncToRemote(cmd.Context(), func(p dbsync.Progress) {
			if p.Phase == dbsync.PhaseComplete {
				return
			}
			fmt.Printf("[%s] %d/%d %s\n", p.Phase, p.Current, p.Total, p.CurrentItem)
		})

		for _, e := range res.Errors {
			fmt.Fprintln(os.Stderr, "sync error:", e)
		}
		if !res.Success {
			return fmt.Errorf("sync failed: %s", res.Message)
		}
		fmt.Println("Sync complete:", res.Message)
		return nil
	},
}

func init() {
	syncCmd.Flags().StringVar(&flagSyncRemote, "remote", "", "remote backend base URL")
	syncCmd.Flags().StringVar(&flagSyncToken, "token", "", "bearer token for the remote backend")
}
