package cli

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/pac-william/mercado/internal/common/logtrace"
	"github.com/pac-william/mercado/internal/storefront/stubsrv"
)

// stubServerCmd runs the in-memory backend for local development.
var stubServerCmd = &cobra.Command{
	Use:   "stub-server",
	Short: "Run an in-memory storefront backend",
	Long: `Run an in-memory storefront backend with a seeded catalogue, for local
development and demos. Settings and seed data can be read from a TOML file.

Examples:
  mercado stub-server --port 8080
  mercado stub-server --stub-config stub.toml --suggestion-delay 8s`,
	RunE: runStubServer,
}

func init() {
	stubServerCmd.Flags().String("port", "", "Port to listen on (overrides the file)")
	stubServerCmd.Flags().String("stub-config", "", "TOML file with settings and seed data")
	stubServerCmd.Flags().Duration("suggestion-delay", 0, "How long suggestions take to prepare")
	stubServerCmd.Flags().Bool("trace", false, "Print the route table at startup")
	rootCmd.AddCommand(stubServerCmd)
}

func runStubServer(cmd *cobra.Command, args []string) error {
	file, _ := cmd.Flags().GetString("stub-config")
	cfg, err := stubsrv.LoadConfig(file)
	if err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Port = port
	}
	if d, _ := cmd.Flags().GetDuration("suggestion-delay"); d > 0 {
		cfg.SuggestionDelay = d
	} else if file == "" {
		cfg.SuggestionDelay = 6 * time.Second
	}
	if trace, _ := cmd.Flags().GetBool("trace"); trace {
		logtrace.EnableTrace(true)
	}

	logtrace.InitLogger()
	if debugLog {
		logtrace.SetLevel("debug")
	} else {
		logtrace.SetLevel(cfg.LogLevel)
	}

	srv, err := stubsrv.CreateNewServer(cfg)
	if err != nil {
		return err
	}
	srv.MountHandlers()

	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("port", cfg.Port).
		Dur("suggestion_delay", cfg.SuggestionDelay).
		Int("products", len(cfg.Products)).
		Msg("starting stub backend")
	return srv.ListenAndServe(ctx)
}
