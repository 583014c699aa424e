package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// getCmd represents the get command
var getCmd = &cobra.Command{
	Use:   "get RESOURCE_TYPE/RESOURCE_NAME",
	Short: "Get a suggestion by id",
	Long: `Get a suggestion prepared earlier by "mercado suggest".

Examples:
  # Show a suggestion as YAML
  mercado get suggestion/0197f3a2-5c1e-7b7a-9c1d-2f4e8a6b1c3d

  # Show it as JSON
  mercado get suggestion/0197f3a2-5c1e-7b7a-9c1d-2f4e8a6b1c3d -j`,
	Args: cobra.ExactArgs(1),
	RunE: getResourceValue,
}

// getResourceValue fetches the resource and prints it as YAML or JSON
func getResourceValue(cmd *cobra.Command, args []string) error {
	resourceType, name, err := splitResourcePath(args[0])
	if err != nil {
		return err
	}
	if resourceType != "suggestions" {
		return fmt.Errorf("invalid resource type. Expected suggestions")
	}

	s, err := newAPI(GetConfig()).GetSuggestion(cmdContext(cmd), name)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		printJSON(out, map[string]any{
			"result": 1,
			"value":  s,
		})
		return nil
	}
	yamlBytes, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to convert to YAML: %v", err)
	}
	fmt.Fprint(out, string(yamlBytes))
	return nil
}

func init() {
	rootCmd.AddCommand(getCmd)
}
