// Init command for the formstore CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize formstore storage",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := resolveConfigDir()
		if err != nil {
			fatal("init", err)
		}
		if err := ensureConfigDir(configDir); err != nil {
			fatal("init", err)
		}
		if err := ensureDefaultConfigFile(configDir); err != nil {
			fatal("init", err)
		}

		// Boot the engine once so the schema and the first snapshot exist.
		store, closeStore, err := openStore(cmd.Context())
		if err != nil {
			fatal("init", err)
		}
		defer closeStore()
		if err := store.Engine().Save(); err != nil {
			fatal("init", err)
		}

		dataDir, err := resolveDataDir()
		if err != nil {
			fatal("init", err)
		}

		fmt.Println("Formstore initialized successfully")
		fmt.Println("  config:", configDir)
		fmt.Println("  data:  ", dataDir)
		return nil
	},
}
