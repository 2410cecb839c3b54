package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/champrules/internal/output"
)

var (
	importsCmd = &cobra.Command{
		Use:   "imports",
		Short: "List stored imports",
		Long: `List the match file imports held in the database, newest first.

Use 'champrules imports delete <id>' to remove an import and its teams.`,
		Args: cobra.NoArgs,
		RunE: runImportsList,
	}

	importsDeleteCmd = &cobra.Command{
		Use:     "delete <id>",
		Short:   "Delete an import and its teams",
		Example: `  champrules imports delete 0b4f1c9e`,
		Args:    cobra.ExactArgs(1),
		RunE:    runImportsDelete,
	}
)

func init() {
	importsCmd.AddCommand(importsDeleteCmd)
}

func runImportsList(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	imports, err := st.ListImports()
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), output.RenderImportTable(imports))
	return nil
}

func runImportsDelete(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	id, err := resolveImportID(st, args[0])
	if err != nil {
		return err
	}

	if err := st.DeleteImport(id); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted import %s\n", output.ShortID(id))
	return nil
}
