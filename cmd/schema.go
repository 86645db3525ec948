package main

import (
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ICTylor/json-to-relational/internal/db"
	"github.com/ICTylor/json-to-relational/internal/model"
)

var schemaFormat string

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the relational schema without touching the database",
	Long:  "Prints the CREATE TABLE statements for the configured store driver, or the table definitions as YAML.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeSchema(cmd.OutOrStdout(), cfg.Store.Driver, schemaFormat)
	},
}

func init() {
	schemaCmd.Flags().StringVar(&schemaFormat, "format", "sql", "output format: sql or yaml")
	rootCmd.AddCommand(schemaCmd)
}

func writeSchema(w io.Writer, driver, format string) error {
	reg := model.DefaultRegistry()

	switch format {
	case "sql":
		d, err := db.LookupDialect(driver)
		if err != nil {
			return err
		}
		for _, stmt := range db.SchemaSQL(d, reg) {
			if _, err := fmt.Fprintf(w, "%s;\n\n", stmt); err != nil {
				return eris.Wrap(err, "write schema")
			}
		}
		return nil
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(reg.Tables()); err != nil {
			return eris.Wrap(err, "encode schema")
		}
		return enc.Close()
	default:
		return eris.Errorf("unsupported schema format: %s", format)
	}
}
