package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/NikolaiRadke/AI.duino-sub001/pkg/completion"
)

var completeFlags struct {
	file   string
	line   int
	column int
	dryRun bool
}

var completeCmd = &cobra.Command{
	Use:   "complete",
	Short: "Request an inline completion for a cursor position",
	Long: `Complete runs the trigger detector on a sketch file and, when the
cursor context warrants it, requests an inline completion.

With --dry-run only the trigger decision is printed, which is useful
for checking why a position does or does not complete:

  aiduino complete --file blink.ino --line 4 --col 18 --dry-run

The completion cache lives for the process, so a one-shot invocation
always starts cold; cache hits accrue in long-lived processes such as
serve or editor integrations embedding the completion package.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		data, err := os.ReadFile(completeFlags.file)
		if err != nil {
			return fmt.Errorf("failed to read sketch: %w", err)
		}
		document := string(data)
		pos := completion.Position{Line: completeFlags.line, Column: completeFlags.column}

		out := cmd.OutOrStdout()

		if completeFlags.dryRun {
			detector := &completion.Detector{MinCommentLength: a.cfg.Completion.MinCommentLength}
			decision := detector.Detect(document, pos)
			fmt.Fprintf(out, "trigger: %v\n", decision.Trigger)
			if decision.Trigger {
				fmt.Fprintf(out, "kind: %s\n", decision.Kind)
				fmt.Fprintf(out, "cache_key: %q\n", decision.CacheKey)
			}
			return nil
		}

		text, ok, err := a.completionService().Complete(cmd.Context(), a.activeProvider(), document, pos)
		if err != nil {
			return fmt.Errorf("%s", userMessage(err))
		}
		if !ok {
			fmt.Fprintln(cmd.ErrOrStderr(), "no completion for this position")
			return nil
		}
		fmt.Fprintln(out, text)
		return nil
	},
}

func init() {
	completeCmd.Flags().StringVar(&completeFlags.file, "file", "", "sketch file to complete in")
	completeCmd.Flags().IntVar(&completeFlags.line, "line", 0, "zero-based cursor line")
	completeCmd.Flags().IntVar(&completeFlags.column, "col", 0, "zero-based cursor column")
	completeCmd.Flags().BoolVar(&completeFlags.dryRun, "dry-run", false, "print the trigger decision only")
	_ = completeCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(completeCmd)
}
