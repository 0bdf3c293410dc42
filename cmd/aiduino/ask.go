package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/NikolaiRadke/AI.duino-sub001/pkg/client"
	"github.com/NikolaiRadke/AI.duino-sub001/pkg/i18n"
)

var askCmd = &cobra.Command{
	Use:   "ask [prompt...]",
	Short: "Ask the AI provider a question",
	Long: `Ask sends a prompt to the active provider and prints the response.

The prompt comes from the arguments, or from stdin when piped:

  aiduino ask "why does my servo jitter?"
  cat sketch.ino | aiduino ask "explain this sketch"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		prompt, err := buildAskPrompt(args, cmd.InOrStdin())
		if err != nil {
			return err
		}
		if prompt == "" {
			return fmt.Errorf("%s", i18n.T("ask.no_prompt"))
		}

		providerID := a.activeProvider()
		if desc, ok := a.registry.Get(providerID); ok {
			fmt.Fprintln(cmd.ErrOrStderr(), i18n.T("ask.thinking", desc.DisplayName()))
		}

		// Ctrl-C aborts the in-flight call instead of killing the process.
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var text string
		err = a.guard.Do("ask ai", func() error {
			var askErr error
			text, askErr = a.client.Ask(ctx, providerID, prompt)
			return askErr
		})
		if err != nil {
			var busy *client.ErrOperationInProgress
			if errors.As(err, &busy) {
				return fmt.Errorf("%s", i18n.T("errors.busy", busy.Operation))
			}
			return fmt.Errorf("%s", userMessage(err))
		}

		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	},
}

// buildAskPrompt joins the argument prompt with piped stdin, when any.
func buildAskPrompt(args []string, stdin io.Reader) (string, error) {
	prompt := strings.TrimSpace(strings.Join(args, " "))

	if f, ok := stdin.(*os.File); ok {
		info, err := f.Stat()
		if err != nil || info.Mode()&os.ModeCharDevice != 0 {
			return prompt, nil
		}
	}

	piped, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	if text := strings.TrimSpace(string(piped)); text != "" {
		if prompt == "" {
			return text, nil
		}
		prompt = prompt + "\n\n" + text
	}
	return prompt, nil
}

func init() {
	rootCmd.AddCommand(askCmd)
}
