package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"mediaorg/internal/config"
	"mediaorg/internal/fileops"
	"mediaorg/internal/location"
	"mediaorg/internal/media"
	"mediaorg/internal/media/exiftool"
	"mediaorg/internal/pipeline"
	"mediaorg/internal/plugins"
	"mediaorg/internal/services"
	"mediaorg/internal/store"
)

type importFlags struct {
	destination    string
	move           bool
	allowDuplicate bool
	album          string
	title          string
	exclude        []string
	trash          bool
	dryRun         bool
	jsonOutput     bool
	showTree       bool
}

func newImportCommand(ctx *commandContext) *cobra.Command {
	var flags importFlags

	cmd := &cobra.Command{
		Use:   "import <path>...",
		Short: "Import files or directories into the library",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			destination, err := config.ExpandPath(strings.TrimSpace(flags.destination))
			if err != nil {
				return fmt.Errorf("resolve destination: %w", err)
			}
			if destination == "" {
				return errors.New("--destination is required")
			}
			sources := make([]string, 0, len(args))
			for _, arg := range args {
				source, err := config.ExpandPath(arg)
				if err != nil {
					return fmt.Errorf("resolve source %q: %w", arg, err)
				}
				sources = append(sources, source)
			}
			return ctx.withLock(func() error {
				return ctx.withStore(func(st *store.Store) error {
					return runImport(cmd, ctx, st, sources, destination, flags)
				})
			})
		},
	}

	cmd.Flags().StringVarP(&flags.destination, "destination", "d", "", "Library root to import into")
	cmd.Flags().BoolVar(&flags.move, "move", false, "Move files instead of copying")
	cmd.Flags().BoolVar(&flags.allowDuplicate, "allow-duplicates", false, "Import files whose checksum is already in the library")
	cmd.Flags().StringVar(&flags.album, "album", "", "Album to assign to every imported file")
	cmd.Flags().StringVar(&flags.title, "title", "", "Title to assign to every imported file")
	cmd.Flags().StringArrayVar(&flags.exclude, "exclude", nil, "Regular expression of paths to skip (repeatable)")
	cmd.Flags().BoolVar(&flags.trash, "trash", false, "Move sources to the trash directory after copying")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Print the operations without changing anything")
	cmd.Flags().BoolVar(&flags.jsonOutput, "json", false, "Output results as JSON")
	cmd.Flags().BoolVar(&flags.showTree, "tree", false, "Render the resulting library layout as a tree (always on with --dry-run)")
	cmd.MarkFlagsMutuallyExclusive("move", "trash")
	return cmd
}

func runImport(cmd *cobra.Command, ctx *commandContext, st *store.Store, sources []string, destination string, flags importFlags) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.logger(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	set, err := plugins.Build(cfg, plugins.Deps{Store: st, Logger: logger, DryRun: flags.dryRun, Out: out})
	if err != nil {
		return err
	}

	var tool *exiftool.Tool
	var writer pipeline.MetadataWriter
	if cfg.ExifTool.Enabled {
		tool = exiftool.New(cfg.ExifTool.Binary)
		writer = tool
	}

	p := pipeline.New(cfg, pipeline.Deps{
		Executor: fileops.NewExecutor(fileops.Options{
			DryRun:   flags.dryRun,
			Out:      out,
			TrashDir: cfg.Paths.TrashDir,
			Logger:   logger,
		}),
		Plugins: set,
		Store:   st,
		Writer:  writer,
		Logger:  logger,
	})
	opener := pipeline.MediaOpener(media.Options{
		Geocoder:      location.NewConfiguredGeocoder(cfg, st, logger),
		FFprobeBinary: cfg.FFprobe.Binary,
		ExifTool:      tool,
		Logger:        logger,
	})
	exclude := append(append([]string(nil), cfg.Library.Exclude...), flags.exclude...)
	importer, err := pipeline.NewImporter(p, opener, exclude, logger)
	if err != nil {
		return err
	}

	runCtx := services.WithRunID(cmd.Context(), uuid.NewString())
	summary, err := importer.Run(runCtx, sources, destination, pipeline.ImportOptions{
		Options: pipeline.Options{
			Move:           flags.move,
			AllowDuplicate: flags.allowDuplicate,
			Trash:          flags.trash,
		},
		Album: flags.album,
		Title: flags.title,
	})
	if err != nil {
		return err
	}

	if flags.jsonOutput {
		if err := writeJSON(cmd, importJSON(summary)); err != nil {
			return err
		}
	} else {
		renderImportSummary(out, summary, shouldColorize(out))
		if flags.showTree || flags.dryRun {
			fmt.Fprintln(out, renderLibraryTree(destination, summary))
		}
	}

	if summary.HasFailures() {
		return fmt.Errorf("%s failed to import", plural(summary.Counts[pipeline.OutcomeFailed], "file"))
	}
	return nil
}
