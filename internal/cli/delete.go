package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete RESOURCE_TYPE/RESOURCE_NAME",
	Short: "Delete a suggestion",
	Long: `Delete a suggestion you no longer need.

Example:
  mercado delete suggestion/0197f3a2-5c1e-7b7a-9c1d-2f4e8a6b1c3d`,
	Args: cobra.ExactArgs(1),
	RunE: deleteResource,
}

// deleteResource handles the deletion of a resource by type and name
func deleteResource(cmd *cobra.Command, args []string) error {
	resourceType, name, err := splitResourcePath(args[0])
	if err != nil {
		return err
	}
	if resourceType != "suggestions" {
		return fmt.Errorf("only suggestions can be deleted")
	}
	if err := newAPI(GetConfig()).DeleteSuggestion(cmdContext(cmd), name); err != nil {
		return err
	}
	if jsonOutput {
		printJSON(cmd.OutOrStdout(), map[string]int{"result": 1})
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Successfully deleted %s/%s\n", resourceType, name)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
