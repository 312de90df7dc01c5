package commands

import (
	"fmt"

	"github.com/marshallshelly/starfaves/cmd/starfaves/output"
	"github.com/marshallshelly/starfaves/internal/models"
	"github.com/marshallshelly/starfaves/pkg/migration"
	"github.com/spf13/cobra"
)

var schemaDown bool

// schemaCmd prints the DDL of the data model
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the schema DDL",
	Long: `Print the CREATE statements for every table, parents before children.
No database connection is needed.

Examples:
  starfaves schema           # CREATE TABLE statements
  starfaves schema --down    # matching DROP TABLE statements`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSchema()
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.Flags().BoolVar(&schemaDown, "down", false, "Print the DROP statements instead")
}

func runSchema() error {
	reg, err := models.NewRegistry()
	if err != nil {
		return err
	}
	tables, err := reg.Ordered()
	if err != nil {
		return err
	}

	up, down := migration.NewPlanner().CreateSchema(tables)
	if jsonOutput {
		return output.JSON(map[string]string{"up": up, "down": down})
	}

	if schemaDown {
		_, _ = fmt.Fprint(output.Stdout, down)
	} else {
		_, _ = fmt.Fprint(output.Stdout, up)
	}
	return nil
}
