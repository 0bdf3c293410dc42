package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/NikolaiRadke/AI.duino-sub001/pkg/i18n"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Manage AI providers and their credentials",
}

var providersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available providers",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		selected := a.activeProvider()
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, i18n.T("providers.list_header"))
		for _, id := range a.registry.IDs() {
			desc, _ := a.registry.Get(id)
			keyStatus := i18n.T("providers.key_missing")
			if _, err := a.store.APIKey(id); err == nil {
				keyStatus = i18n.T("providers.key_present")
			}
			marker := " "
			if id == selected {
				marker = "*"
			}
			fmt.Fprintf(out, "%s %-10s %-12s %s (%s)\n", marker, id, desc.DisplayName(), desc.Model(), keyStatus)
		}
		return nil
	},
}

var providersSelectCmd = &cobra.Command{
	Use:   "select <provider>",
	Short: "Select the active provider",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		id := args[0]
		desc, ok := a.registry.Get(id)
		if !ok {
			return fmt.Errorf("%s", i18n.T("errors.unknown_provider", id))
		}
		if err := a.store.Select(id); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), i18n.T("providers.select_done", desc.DisplayName()))
		return nil
	},
}

var providersSetKeyCmd = &cobra.Command{
	Use:   "set-key <provider> [key]",
	Short: "Store the API key for a provider",
	Long: `Store the API key for a provider in an owner-only file.

When the key argument is omitted, it is read as one line from stdin,
which keeps it out of the shell history.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		id := args[0]
		desc, ok := a.registry.Get(id)
		if !ok {
			return fmt.Errorf("%s", i18n.T("errors.unknown_provider", id))
		}

		var key string
		if len(args) == 2 {
			key = args[1]
		} else {
			key, err = readKey(cmd)
			if err != nil {
				return err
			}
		}

		if err := a.store.SetAPIKey(id, key); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), i18n.T("providers.key_stored", desc.DisplayName()))
		return nil
	},
}

// readKey reads one line from stdin. Keys passed this way stay out of
// the shell history, unlike the positional argument.
func readKey(cmd *cobra.Command) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), "API key: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read key from stdin: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func init() {
	providersCmd.AddCommand(providersListCmd)
	providersCmd.AddCommand(providersSelectCmd)
	providersCmd.AddCommand(providersSetKeyCmd)
	rootCmd.AddCommand(providersCmd)
}
