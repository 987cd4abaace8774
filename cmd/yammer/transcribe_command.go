package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"yammer/internal/config"
	"yammer/internal/pipeline"
)

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	var (
		inputDir      string
		modelID       string
		chunkLength   int
		moveCompleted bool
		joinText      bool
		basicSpelling bool
	)

	cmd := &cobra.Command{
		Use:   "transcribe",
		Short: "Transcribe every media file in a directory",
		Long: "Transcribe splits each media file in the input directory into " +
			"fixed-length chunks, decodes them sequentially with the configured " +
			"acoustic model, and writes transcripts, metadata, and a keyword " +
			"database alongside the sources.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := ctx.ensure()
			if err != nil {
				return err
			}
			input, err := config.ExpandPath(inputDir)
			if err != nil {
				return fmt.Errorf("resolve input directory: %w", err)
			}

			move := cfg.Paths.MoveCompleted
			if cmd.Flags().Changed("move-completed") {
				move = moveCompleted
			}
			opts := pipeline.Options{
				InputDir:      input,
				ModelID:       modelID,
				ChunkLength:   chunkLength,
				MoveCompleted: move,
				JoinText:      joinText,
				BasicSpelling: basicSpelling,
			}
			progress := newProgressReporter(!ctx.verbose())
			opts.OnChunk = progress.chunkDone
			opts.OnFileDone = progress.fileDone

			result, err := pipeline.Run(cmd.Context(), cfg, opts, logger)
			if result != nil {
				fmt.Fprintln(cmd.OutOrStdout(), renderRunReport(result))
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&inputDir, "input", "i", "", "Directory containing media files to transcribe")
	cmd.Flags().StringVarP(&modelID, "model", "m", "", "Acoustic model identifier (overrides config)")
	cmd.Flags().IntVar(&chunkLength, "chunk-length", 0, "Chunk duration in seconds (overrides config)")
	cmd.Flags().BoolVar(&moveCompleted, "move-completed", false, "Move finished sources into completed/")
	cmd.Flags().BoolVar(&joinText, "join-text", false, "Write corrected text as one line instead of one sentence per line")
	cmd.Flags().BoolVar(&basicSpelling, "basic-spelling", false, "Skip the neural corrector and use basic spelling only")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}
