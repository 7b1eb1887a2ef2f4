package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mediaorg/internal/config"
	"mediaorg/internal/library"
	"mediaorg/internal/store"
)

func newGenerateDBCommand(ctx *commandContext) *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "generate-db <library>",
		Short: "Rebuild the hash database from the files in a library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := config.ExpandPath(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("resolve library path: %w", err)
			}
			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			return ctx.withLock(func() error {
				return ctx.withStore(func(st *store.Store) error {
					n, err := library.NewMaintainer(st, concurrency, logger).Rebuild(cmd.Context(), root)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Indexed %s into %s\n", plural(n, "file"), st.Path())
					return nil
				})
			})
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Files to checksum in parallel")
	return cmd
}

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	var concurrency int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check every recorded file against its stored checksum",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			return ctx.withStore(func(st *store.Store) error {
				report, err := library.NewMaintainer(st, concurrency, logger).Verify(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOutput {
					if err := writeJSON(cmd, report.Checks); err != nil {
						return err
					}
				} else {
					renderVerifyReport(cmd, report)
				}
				if n := report.Failed(); n > 0 {
					return errors.New(plural(n, "file") + " failed verification")
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Files to checksum in parallel")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	return cmd
}

func renderVerifyReport(cmd *cobra.Command, report library.Report) {
	out := cmd.OutOrStdout()
	if len(report.Checks) == 0 {
		fmt.Fprintln(out, "Hash database is empty")
		return
	}
	var rows [][]string
	for _, c := range report.Checks {
		if c.Status != library.StatusOK {
			rows = append(rows, []string{c.Path, string(c.Status)})
		}
	}
	if len(rows) > 0 {
		fmt.Fprintln(out, renderTable([]string{"Path", "Status"}, rows, nil))
	}
	fmt.Fprintf(out, "Verified %s, %d ok\n", plural(len(report.Checks), "file"), len(report.Checks)-len(rows))
}
