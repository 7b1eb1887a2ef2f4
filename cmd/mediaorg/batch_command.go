package main

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"mediaorg/internal/plugins"
	"mediaorg/internal/services"
	"mediaorg/internal/store"
)

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Run deferred plugin work such as queued uploads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			return ctx.withLock(func() error {
				return ctx.withStore(func(st *store.Store) error {
					out := cmd.OutOrStdout()
					set, err := plugins.Build(cfg, plugins.Deps{Store: st, Logger: logger, DryRun: dryRun, Out: out})
					if err != nil {
						return err
					}
					if len(set.Names()) == 0 {
						fmt.Fprintln(out, "No plugins configured")
						return nil
					}

					runCtx := services.WithRunID(cmd.Context(), uuid.NewString())
					results := set.RunBatch(runCtx)
					rows := make([][]string, 0, len(results))
					failed := 0
					for _, r := range results {
						status := "ok"
						if !r.OK {
							status = "failed"
							failed++
						}
						rows = append(rows, []string{r.Plugin, status, strconv.Itoa(r.Count)})
					}
					fmt.Fprintln(out, renderTable([]string{"Plugin", "Status", "Items"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight}))
					if failed > 0 {
						return fmt.Errorf("%s reported failures", plural(failed, "plugin"))
					}
					return nil
				})
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the batch work without performing it")
	return cmd
}
