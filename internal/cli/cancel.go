package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cancelCmd = &cobra.Command{
	Use:   "cancel order/ORDER_ID",
	Short: "Cancel a pending order",
	Long: `Cancel an order that is still pending. Orders already delivered or
cancelled are rejected by the server.

Example:
  mercado cancel order/o-001`,
	Args: cobra.ExactArgs(1),
	RunE: cancelOrder,
}

func cancelOrder(cmd *cobra.Command, args []string) error {
	resourceType, id, err := splitResourcePath(args[0])
	if err != nil {
		return err
	}
	if resourceType != "orders" {
		return fmt.Errorf("only orders can be cancelled")
	}
	o, err := newAPI(GetConfig()).CancelOrder(cmdContext(cmd), id)
	if err != nil {
		return err
	}
	if jsonOutput {
		printJSON(cmd.OutOrStdout(), map[string]any{"result": 1, "value": o})
	} else {
		okLabel.Fprintf(cmd.OutOrStdout(), "✓ Order %s is now %s\n", o.ID, o.Status)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(cancelCmd)
}
