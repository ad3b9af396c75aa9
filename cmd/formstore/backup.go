// Backup and restore commands for the formstore CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openpatra/formstore/internal/backup"
)

var backupCmd = &cobra.Command{
	Use:   "backup <file>",
	Short: "Write a full backup bundle to a file",
	Long: `Backup packs the database and every stored form file into one
portable JSON bundle.

Example:
  formstore backup portal-2026-08-28.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := openStore(cmd.Context())
		if err != nil {
			fatal("backup", err)
		}
		defer closeStore()

		bundle, err := backup.New(store.Engine(), store.Files()).Create(cmd.Context())
		if err != nil {
			return fmt.Errorf("create backup: %w", err)
		}

		out, err := os.Create(args[0])
		if err != nil {
			return fmt.Errorf("create bundle file: %w", err)
		}
		defer out.Close()
		if err := bundle.Encode(out); err != nil {
			return fmt.Errorf("write bundle: %w", err)
		}

		fmt.Printf("Backup written to %s (%d files)\n", args[0], len(bundle.Files))
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <file>",
	Short: "Replace all local state from a backup bundle",
	Long: `Restore fully replaces the database and file store with a bundle's
contents. The bundle is validated before anything is touched.

Example:
  formstore restore portal-2026-08-28.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open bundle file: %w", err)
		}
		defer in.Close()
		bundle, err := backup.Decode(in)
		if err != nil {
			return fmt.Errorf("read bundle: %w", err)
		}

		store, closeStore, err := openStore(cmd.Context())
		if err != nil {
			fatal("restore", err)
		}
		defer closeStore()

		res := backup.New(store.Engine(), store.Files()).Restore(cmd.Context(), bundle)
		if !res.Success {
			return fmt.Errorf("restore failed: %s", res.Message)
		}
		fmt.Println("Restore complete:", res.Message)
		return nil
	},
}
