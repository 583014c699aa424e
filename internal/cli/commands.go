package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pac-william/mercado/internal/common/logtrace"
)

var (
	// Global flags
	jsonOutput bool
	configFile string
	debugLog   bool
)

var ErrAlreadyHandled = errors.New("already handled")

var okLabel = color.New(color.FgGreen)
var warnLabel = color.New(color.FgYellow)
var errorLabel = color.New(color.FgRed)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mercado [command] [flags]",
	Short: "mercado CLI - shop the mercado storefront from the terminal",
	Long: `mercado is a command line client for the mercado grocery storefront.
It lists products, markets and orders, prepares shopping list suggestions
and manages your session.

Examples:
  # Point the CLI at a server
  mercado config create --server http://localhost:8080/api

  # Sign in
  mercado login --email ana@mercado.dev --password ana123

  # Search products, cheapest first
  mercado list products --name leite --sort price

  # Ask for a shopping list suggestion
  mercado suggest "lasanha para quatro pessoas"`,
	PersistentPreRun: preRunHandlePersistents,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "", "", "Path to configuration file to override default")
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&debugLog, "debug", "", false, "Log backend calls to stderr")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	err := rootCmd.Execute()
	if err != nil {
		if errors.Is(err, ErrAlreadyHandled) {
			os.Exit(1)
		}
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// preRunHandlePersistents sets up logging and loads the config file, except for
// commands that work without one.
func preRunHandlePersistents(cmd *cobra.Command, args []string) {
	logtrace.InitConsoleLogger(os.Stderr, debugLog)

	if configFile == "" {
		var err error
		configFile, err = GetDefaultConfigPath()
		if err != nil {
			errorLabel.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	if !needsConfig(cmd) {
		return
	}
	if err := LoadConfig(configFile); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintln(os.Stderr, "mercado config file not found. Configure mercado with \"mercado config create\" first.")
		} else {
			errorLabel.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func needsConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "config", "version", "stub-server":
			return false
		}
	}
	return true
}

// newVersionCmd creates and returns a new version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of the mercado CLI",
		Run: func(cmd *cobra.Command, args []string) {
			configPath, err := GetDefaultConfigPath()
			if err != nil {
				configPath = "unknown"
			}
			if configFile != "" {
				configPath = configFile
			}

			if jsonOutput {
				printJSON(cmd.OutOrStdout(), map[string]string{
					"version":     getCLIVersion(),
					"config_file": configPath,
				})
			} else {
				cmd.Printf("mercado CLI %s\n", getCLIVersion())
				cmd.Printf("Config file: %s\n", configPath)
			}
		},
	}
}

// printError prints err once, as JSON when --json is set.
func printError(w io.Writer, err error) {
	if jsonOutput {
		printJSON(w, map[string]string{"error": err.Error()})
		return
	}
	errorLabel.Fprintf(w, "Error: %v\n", err)
}

// printJSON prints data as indented JSON
func printJSON(w io.Writer, data any) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintln(w, string(jsonData))
}

// getCLIVersion returns the current CLI version
func getCLIVersion() string {
	return "v0.3.0"
}
