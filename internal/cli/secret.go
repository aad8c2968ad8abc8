package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joacominatel/askdb/internal/config"
)

func newSecretCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Manage secrets in the OS keyring",
		Long: `Manage passwords and API keys stored in the OS keyring.

Keys are "llm:<provider>" for API keys and "conn:<name>" for connection
passwords. Shortcuts: "openai", "anthropic" and a saved connection name.`,
	}
	cmd.AddCommand(newSecretSetCommand())
	cmd.AddCommand(newSecretDeleteCommand())
	return cmd
}

// secretKey expands shortcuts to keyring keys.
func secretKey(cfg *config.Config, name string) string {
	switch {
	case strings.Contains(name, ":"):
		return name
	case name == "openai" || name == "anthropic":
		return config.LLMSecretKey(name)
	case cfg.HasConnection(name):
		return config.ConnectionSecretKey(name)
	}
	return name
}

func newSecretSetCommand() *cobra.Command {
	var value string

	cmd := &cobra.Command{
		Use:   "set <key>",
		Short: "Store a secret, read from --value or stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := fromContext(cmd.Context())

			if value == "" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read secret: %w", err)
				}
				value = strings.TrimRight(line, "\r\n")
			}
			if value == "" {
				return errors.New("empty secret")
			}

			key := secretKey(rt.cfg, args[0])
			if err := config.SetSecret(key, value); err != nil {
				return fmt.Errorf("store secret: %w", err)
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Stored %s\n", key)
			return err
		},
	}
	cmd.Flags().StringVar(&value, "value", "", "secret value (default: read from stdin)")
	return cmd
}

func newSecretDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <key>",
		Short: "Remove a secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := fromContext(cmd.Context())

			key := secretKey(rt.cfg, args[0])
			if err := config.DeleteSecret(key); err != nil {
				return fmt.Errorf("delete secret: %w", err)
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", key)
			return err
		},
	}
}
