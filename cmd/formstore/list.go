// List command prints the portal's categories, institutions, or forms.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list <categories|institutions|forms>",
	Short: "List portal entities",
	Long: `List prints the entities of one family.

Example:
  formstore list categories
  formstore list forms --json`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"categories", "institutions", "forms"},
	RunE:      runList,
}

func runList(cmd *cobra.Command, args []string) error {
	store, closeStore, err := openStore(cmd.Context())
	if err != nil {
		fatal("list", err)
	}
	defer closeStore()

	switch args[0] {
	case "categories":
		cats, err := store.Categories().List()
		if err != nil {
			return fmt.Errorf("list categories: %w", err)
		}
		if flagJSON {
			return printJSON(cats)
		}
		for _, c := range cats {
			fmt.Printf("%s  %s (%d forms)\n", c.ID, c.NameEN, c.FormCount)
		}
	case "institutions":
		insts, err := store.Institutions().List()
		if err != nil {
			return fmt.Errorf("list institutions: %w", err)
		}
		if flagJSON {
			return printJSON(insts)
		}
		for _, i := range insts {
			fmt.Printf("%s  %s [%s] (%d forms)\n", i.ID, i.NameEN, i.Type, i.FormCount)
		}
	case "forms":
		forms, err := store.Forms().List()
		if err != nil {
			return fmt.Errorf("list forms: %w", err)
		}
		if flagJSON {
			return printJSON(forms)
		}
		for _, f := range forms {
			fmt.Printf("%s  %s [%s]\n", f.ID, f.TitleEN, f.Status)
		}
	default:
		return fmt.Errorf("unknown entity %q (valid: categories, institutions, forms)", args[0])
	}
	return nil
}
