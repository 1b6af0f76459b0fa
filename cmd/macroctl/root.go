package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/poofware/macro-service/internal/app"
	"github.com/poofware/macro-service/internal/config"
	"github.com/poofware/macro-service/internal/services"
	"github.com/poofware/macro-service/internal/utils"
)

type rootOptions struct {
	db         string
	policyFile string
	output     string
}

// env bundles what a subcommand needs; close releases the database.
type env struct {
	app     *app.App
	policy  config.MacroPolicy
	query   *services.RowQueryService
	update  *services.RowUpdateService
	bulk    *services.BulkUpdateService
	catalog *services.CatalogService
	export  *services.ExportService
}

func (e *env) close() { e.app.Close() }

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "macroctl",
		Short:         "Search and update macro spreadsheet rows",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			utils.InitLoggerTo(cmd.ErrOrStderr(), "macroctl")
			switch opts.output {
			case "json", "yaml":
				return nil
			default:
				return fmt.Errorf("unsupported --output %q (want json or yaml)", opts.output)
			}
		},
	}

	root.PersistentFlags().StringVar(&opts.db, "db", "macro.db", "SQLite file path, sqlite:// URL or postgres:// URL")
	root.PersistentFlags().StringVar(&opts.policyFile, "policy", "", "Macro policy YAML file (defaults when empty)")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", "json", "Output format: json or yaml")

	root.AddCommand(
		newSearchCmd(opts),
		newUpdateCmd(opts),
		newBulkCmd(opts),
		newStatsCmd(opts),
		newFilesCmd(opts),
		newExportCmd(opts),
		newSeedCmd(opts),
	)
	return root
}

func databaseURL(db string) string {
	if strings.HasPrefix(db, "postgres://") || strings.HasPrefix(db, "postgresql://") || strings.HasPrefix(db, "sqlite://") {
		return db
	}
	return "sqlite://" + db
}

func openEnv(opts *rootOptions) (*env, error) {
	policy, err := config.LoadPolicy(opts.policyFile)
	if err != nil {
		return nil, err
	}

	a, err := app.NewApp(&config.Config{
		AppName: "macroctl",
		DBUrl:   databaseURL(opts.db),
		Policy:  policy,
	})
	if err != nil {
		return nil, err
	}

	filter := services.NewEligibilityFilter(policy)
	query := services.NewRowQueryService(policy, a.Rows, filter)
	update := services.NewRowUpdateService(a.Rows, filter)
	return &env{
		app:     a,
		policy:  policy,
		query:   query,
		update:  update,
		bulk:    services.NewBulkUpdateService(update),
		catalog: services.NewCatalogService(policy, a.Files, a.Rows, filter, query),
		export:  services.NewExportService(query),
	}, nil
}

// render writes v as indented JSON, or as YAML keyed by the same JSON field
// names.
func render(w io.Writer, format string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	if format != "yaml" {
		_, err := w.Write(buf.Bytes())
		return err
	}

	var generic any
	if err := json.Unmarshal(buf.Bytes(), &generic); err != nil {
		return err
	}
	out, err := yaml.Marshal(generic)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}
