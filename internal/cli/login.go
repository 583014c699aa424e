package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// newLoginCmd creates and returns a new login command
func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the storefront",
		Long: `Sign in to the storefront and store the session token in your configuration file.

Example:
  mercado login --email ana@mercado.dev --password ana123`,
		RunE: runLogin,
	}

	cmd.Flags().String("email", "", "Account email")
	cmd.Flags().String("password", "", "Account password")
	cmd.MarkFlagRequired("email")
	return cmd
}

// runLogin handles the login command execution
func runLogin(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if cfg == nil {
		return fmt.Errorf("no configuration loaded")
	}

	email, _ := cmd.Flags().GetString("email")
	passwd, _ := cmd.Flags().GetString("password")

	tok, err := newAPI(cfg).Login(cmdContext(cmd), email, passwd)
	if err != nil {
		return err
	}

	cfg.Token = tok.Token
	cfg.TokenExpiry = ""
	if !tok.ExpiresAt.IsZero() {
		cfg.TokenExpiry = tok.ExpiresAt.UTC().Format(time.RFC3339)
	}
	if err := cfg.WriteConfig(configFile); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		printJSON(out, map[string]any{
			"status":     "success",
			"message":    "Login successful",
			"expires_at": cfg.TokenExpiry,
		})
	} else {
		okLabel.Fprintln(out, "✓ Login successful")
		if cfg.TokenExpiry != "" {
			fmt.Fprintf(out, "Token expires at: %s\n", cfg.TokenExpiry)
		}
	}
	return nil
}

// newLogoutCmd forgets the stored session.
func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := GetConfig()
			if cfg == nil {
				return fmt.Errorf("no configuration loaded")
			}
			cfg.Token = ""
			cfg.TokenExpiry = ""
			if err := cfg.WriteConfig(configFile); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}
			if jsonOutput {
				printJSON(cmd.OutOrStdout(), map[string]int{"result": 1})
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			}
			return nil
		},
	}
}
