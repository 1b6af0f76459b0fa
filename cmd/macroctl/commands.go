package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/poofware/macro-service/internal/app"
	"github.com/poofware/macro-service/internal/constants"
	"github.com/poofware/macro-service/internal/dtos"
	"github.com/poofware/macro-service/internal/services"
)

type scopeFlags struct {
	scope string
	file  string
	sheet string
}

func (f *scopeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.scope, "scope", "all", "Search scope: all, priority, makro or hesap")
	cmd.Flags().StringVar(&f.file, "file", "", "Exact file name filter")
	cmd.Flags().StringVar(&f.sheet, "sheet", "", "Exact sheet name filter")
}

func (f *scopeFlags) resolve(e *env) (services.SearchScope, error) {
	scope, ok := services.ParseScope(f.scope, e.policy)
	if !ok {
		return services.SearchScope{}, fmt.Errorf("unknown --scope %q", f.scope)
	}
	return scope, nil
}

func newSearchCmd(opts *rootOptions) *cobra.Command {
	flags := &scopeFlags{}
	cmd := &cobra.Command{
		Use:   "search <documentNumber>",
		Short: "Find rows whose payload contains the document number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer e.close()

			scope, err := flags.resolve(e)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), constants.RequestTimeout)
			defer cancel()

			res, err := e.query.Search(ctx, args[0], scope, flags.file, flags.sheet)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.output, dtos.SearchResponse{
				Success:        len(res.Rows) > 0,
				DocumentNumber: res.Scope.DocumentNumber,
				TotalRows:      len(res.Rows),
				Data:           res.Rows,
				SearchedFiles:  res.Scope.Files,
				Message:        fmt.Sprintf("%d rows found", len(res.Rows)),
			})
		},
	}
	flags.register(cmd)
	return cmd
}

// parseAssignments turns col=value pairs into a change map.
func parseAssignments(pairs []string) (map[string]string, error) {
	changes := make(map[string]string, len(pairs))
	for _, p := range pairs {
		col, val, ok := strings.Cut(p, "=")
		if !ok || col == "" {
			return nil, fmt.Errorf("invalid --set %q (want column=value)", p)
		}
		changes[col] = val
	}
	return changes, nil
}

func newUpdateCmd(opts *rootOptions) *cobra.Command {
	var (
		rowID int64
		sets  []string
		actor string
	)
	cmd := &cobra.Command{
		Use:   "update <documentNumber>",
		Short: "Update columns of one row that belongs to the document number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			changes, err := parseAssignments(sets)
			if err != nil {
				return err
			}
			e, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer e.close()

			ctx, cancel := context.WithTimeout(cmd.Context(), constants.RequestTimeout)
			defer cancel()

			row, err := e.update.Update(ctx, rowID, args[0], changes, actor)
			if err != nil {
				return err
			}
			resp, err := services.ToExcelDataResponse(row)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.output, resp)
		},
	}
	cmd.Flags().Int64Var(&rowID, "row", 0, "Row id to update")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "column=value (repeatable)")
	cmd.Flags().StringVar(&actor, "actor", os.Getenv("USER"), "Identity recorded as modifier")
	_ = cmd.MarkFlagRequired("row")
	_ = cmd.MarkFlagRequired("set")
	return cmd
}

func newBulkCmd(opts *rootOptions) *cobra.Command {
	var (
		file  string
		actor string
	)
	cmd := &cobra.Command{
		Use:   "bulk-update <documentNumber>",
		Short: "Apply a list of row updates read from a JSON file",
		Long: `Reads a JSON array of {"rowId": N, "updateData": {...}} items and applies
them one by one. Failed items are reported and do not stop the batch.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			var items []dtos.BulkUpdateItem
			if err := decodeJSON(raw, &items); err != nil {
				return fmt.Errorf("parse %s: %w", file, err)
			}

			e, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer e.close()

			ctx, cancel := context.WithTimeout(cmd.Context(), constants.BulkUpdateTimeout)
			defer cancel()

			res, err := e.bulk.BulkUpdate(ctx, args[0], items, actor)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.output, res)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file with the update items")
	cmd.Flags().StringVar(&actor, "actor", os.Getenv("USER"), "Identity recorded as modifier")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newStatsCmd(opts *rootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "stats <documentNumber>",
		Short: "Row, file and sheet counts for a document number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer e.close()

			ctx, cancel := context.WithTimeout(cmd.Context(), constants.RequestTimeout)
			defer cancel()

			stats, err := e.catalog.DocumentStatistics(ctx, args[0], file)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.output, stats)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Restrict to one file")
	return cmd
}

func newFilesCmd(opts *rootOptions) *cobra.Command {
	var excluded bool
	cmd := &cobra.Command{
		Use:   "files",
		Short: "List eligible files with row counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer e.close()

			ctx, cancel := context.WithTimeout(cmd.Context(), constants.RequestTimeout)
			defer cancel()

			if excluded {
				b, err := e.catalog.FileBreakdown(ctx)
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), opts.output, b.Excluded)
			}
			files, err := e.catalog.AvailableFiles(ctx)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.output, files)
		},
	}
	cmd.Flags().BoolVar(&excluded, "excluded", false, "List the active files the policy excludes instead")
	return cmd
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	flags := &scopeFlags{}
	var out string
	cmd := &cobra.Command{
		Use:   "export <documentNumber>",
		Short: "Write the rows of a document number to an xlsx file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer e.close()

			scope, err := flags.resolve(e)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), constants.ExportTimeout)
			defer cancel()

			data, count, err := e.export.ExportDocument(ctx, args[0], scope, flags.file, flags.sheet)
			if err != nil {
				return err
			}
			target := out
			if target == "" {
				target = args[0] + ".xlsx"
			}
			if err := os.WriteFile(target, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s\n", count, target)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&out, "out", "", "Target xlsx path (default <documentNumber>.xlsx)")
	return cmd
}

func newSeedCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load sample macro files and rows (idempotent)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer e.close()

			if err := app.SeedAllTestData(cmd.Context(), e.policy, e.app.Files, e.app.Rows); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded; try: macroctl search %s\n", app.SentinelDocumentNumber)
			return nil
		},
	}
}

func decodeJSON(raw []byte, v any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return errors.New("empty input")
	}
	return json.Unmarshal(raw, v)
}
