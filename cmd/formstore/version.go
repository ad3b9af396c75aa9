// Version command for the formstore CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openpatra/formstore/pkg/formstore"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the formstore version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("formstore", formstore.Version)
	},
}
