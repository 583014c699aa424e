package cli

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/pac-william/mercado/internal/common/apperrors"
	"github.com/pac-william/mercado/internal/common/httpclient"
	"github.com/pac-william/mercado/internal/storefront/session"
)

// StatusResponse represents the response from the /version endpoint
type StatusResponse struct {
	ServerVersion string `json:"serverVersion"`
	ApiVersion    string `json:"apiVersion"`
}

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server version and session state",
	Long: `Show the server version and whether a session is stored.

Examples:
  mercado status
  mercado status -j`,
	RunE: getStatus,
}

// whoamiCmd represents the whoami command
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Long: `Show the signed-in user as the server sees it. With --offline the stored
token is only decoded locally.`,
	RunE: whoami,
}

func init() {
	whoamiCmd.Flags().Bool("offline", false, "Decode the stored token without calling the server")
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(whoamiCmd)
}

// getStatus handles retrieving server status information
func getStatus(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if cfg == nil {
		return fmt.Errorf("no configuration loaded")
	}

	var rsp StatusResponse
	err := newGateway(cfg).DoJSON(cmdContext(cmd), httpclient.RequestOptions{
		Method: http.MethodGet,
		Path:   "version",
	}, &rsp)
	if err != nil {
		return err
	}

	s, signedIn := session.NewTokenAccessor(cfg).GetSession()
	out := cmd.OutOrStdout()
	if jsonOutput {
		kv := map[string]any{
			"version_cli":    getCLIVersion(),
			"server":         cfg.ServerURL,
			"server_version": rsp.ServerVersion,
			"api_version":    rsp.ApiVersion,
			"signed_in":      signedIn,
		}
		if signedIn && s.User.ID != "" {
			kv["user_id"] = s.User.ID
		}
		printJSON(out, kv)
		return nil
	}

	fmt.Fprintf(out, "mercado CLI %s\n", getCLIVersion())
	fmt.Fprintf(out, "Server: %s\n", cfg.ServerURL)
	fmt.Fprintf(out, "Server version: %s (API %s)\n", rsp.ServerVersion, rsp.ApiVersion)
	if signedIn {
		okLabel.Fprintf(out, "Signed in")
		if s.User.Name != "" {
			fmt.Fprintf(out, " as %s", s.User.Name)
		}
		fmt.Fprintln(out)
	} else {
		warnLabel.Fprintln(out, "Not signed in")
	}
	return nil
}

func whoami(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if cfg == nil {
		return fmt.Errorf("no configuration loaded")
	}
	s, ok := session.NewTokenAccessor(cfg).GetSession()
	if !ok {
		return apperrors.ErrUnauthenticated.New("not signed in; run \"mercado login\"")
	}

	user := s.User
	offline, _ := cmd.Flags().GetBool("offline")
	if !offline {
		var err error
		user, err = newAPI(cfg).Me(cmdContext(cmd))
		if err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		kv := map[string]any{"user": user}
		if !s.ExpiresAt.IsZero() {
			kv["expires_at"] = s.ExpiresAt.UTC().Format(time.RFC3339)
		}
		printJSON(out, kv)
		return nil
	}
	fmt.Fprintf(out, "ID:    %s\n", user.ID)
	if user.Name != "" {
		fmt.Fprintf(out, "Name:  %s\n", user.Name)
	}
	if user.Email != "" {
		fmt.Fprintf(out, "Email: %s\n", user.Email)
	}
	fmt.Fprintf(out, "Role:  %s\n", user.Role)
	if !s.ExpiresAt.IsZero() {
		fmt.Fprintf(out, "Session expires at %s\n", s.ExpiresAt.Local().Format(time.RFC1123))
	}
	return nil
}
