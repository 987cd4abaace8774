package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"yammer/internal/config"
	"yammer/internal/postprocess"
	"yammer/internal/spell"
)

func newPostprocessCommand(ctx *commandContext) *cobra.Command {
	var (
		transcriptDir string
		joinText      bool
		basicSpelling bool
	)

	cmd := &cobra.Command{
		Use:   "postprocess",
		Short: "Spell-correct existing transcripts and rebuild the keyword database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := ctx.ensure()
			if err != nil {
				return err
			}
			dir, err := config.ExpandPath(transcriptDir)
			if err != nil {
				return fmt.Errorf("resolve transcripts directory: %w", err)
			}

			preferred := spell.VariantAdvanced
			if basicSpelling {
				preferred = spell.VariantBasic
			}
			handle, err := spell.Acquire(cmd.Context(), cfg.Spell, preferred, logger)
			if err != nil {
				return err
			}

			reducer := postprocess.NewReducer(handle, cfg.Keywords, !joinText, logger)
			timestamp := time.Now().UTC().Format("20060102_150405")
			correctedDir, err := reducer.Reduce(cmd.Context(), dir, dir, timestamp)
			if err != nil {
				return err
			}
			if correctedDir == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "No transcripts found, nothing to do")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Corrected text: %s (spelling: %s)\n", correctedDir, handle.Variant())
			return nil
		},
	}

	cmd.Flags().StringVarP(&transcriptDir, "transcripts", "t", "", "Directory containing *_full.txt transcripts")
	cmd.Flags().BoolVar(&joinText, "join-text", false, "Write corrected text as one line instead of one sentence per line")
	cmd.Flags().BoolVar(&basicSpelling, "basic-spelling", false, "Skip the neural corrector and use basic spelling only")
	_ = cmd.MarkFlagRequired("transcripts")

	return cmd
}
