package cli

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pac-william/mercado/internal/common/eventbus"
	"github.com/pac-william/mercado/internal/storefront/api"
	"github.com/pac-william/mercado/internal/storefront/listquery"
)

var (
	// List command flags
	listName   string
	listSort   string
	listPage   int
	listSize   int
	listStatus string
	listMarket string
	listRadius int
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list RESOURCE_TYPE [flags]",
	Short: "List products, markets or orders",
	Long: `List products, markets or orders one page at a time. Supported resource types:
  - products
  - markets
  - orders (requires login)

A page past the last one is corrected to page 1.

Examples:
  # Products whose name contains "leite", cheapest first
  mercado list products --name leite --sort price

  # Third page of markets
  mercado list markets --page 3

  # Pending orders in JSON format
  mercado list orders --status pending -j`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"products", "markets", "orders"},
	RunE:      listResources,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&listName, "name", "n", "", "Filter by name")
	listCmd.Flags().StringVarP(&listSort, "sort", "s", "", "Sort order, e.g. name, -price")
	listCmd.Flags().IntVarP(&listPage, "page", "p", 1, "Page number")
	listCmd.Flags().IntVar(&listSize, "size", 0, "Page size")
	listCmd.Flags().StringVar(&listStatus, "status", "", "Order status (orders only)")
	listCmd.Flags().StringVar(&listMarket, "market", "", "Market id (products only)")
	listCmd.Flags().IntVar(&listRadius, "window", listquery.DefaultWindowRadius, "Pages shown on each side of the current page")
}

// listView is what one list invocation fetched.
type listView struct {
	Resource    string
	Items       any
	Rows        [][]string
	Meta        api.PageMeta
	Window      []int
	Corrections []listquery.NavigateEvent
	URL         string
}

// listFlags are the user's choices, applied to the location through the controller.
type listFlags struct {
	Name   string
	Sort   string
	Page   int
	Size   int
	Status string
	Market string
	Radius int
}

// listResources handles listing resources of a specific type
func listResources(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if cfg == nil {
		return fmt.Errorf("no configuration loaded")
	}
	view, err := runList(cmdContext(cmd), newAPI(cfg), args[0], listFlags{
		Name:   listName,
		Sort:   listSort,
		Page:   listPage,
		Size:   listSize,
		Status: listStatus,
		Market: listMarket,
		Radius: listRadius,
	})
	if err != nil {
		return err
	}
	return printResourceList(cmd.OutOrStdout(), view)
}

func runList(ctx context.Context, client *api.Client, resource string, f listFlags) (*listView, error) {
	view := &listView{Resource: resource}

	var fetch listquery.FetcherFunc
	switch resource {
	case "products":
		fetch = func(ctx context.Context, q url.Values) (api.PageMeta, error) {
			page, err := client.ListProducts(ctx, q)
			view.Items, view.Rows = page.Items, productRows(page.Items)
			return page.Meta, err
		}
	case "markets":
		fetch = func(ctx context.Context, q url.Values) (api.PageMeta, error) {
			page, err := client.ListMarkets(ctx, q)
			view.Items, view.Rows = page.Items, marketRows(page.Items)
			return page.Meta, err
		}
	case "orders":
		fetch = func(ctx context.Context, q url.Values) (api.PageMeta, error) {
			page, err := client.ListOrders(ctx, q)
			view.Items, view.Rows = page.Items, orderRows(page.Items)
			return page.Meta, err
		}
	default:
		return nil, fmt.Errorf("unknown resource type %q; use products, markets or orders", resource)
	}

	loc, err := listquery.NewMemoryLocation("/" + resource)
	if err != nil {
		return nil, err
	}
	bus := eventbus.New()
	defer bus.Shutdown()
	navs, unsubscribe := bus.Subscribe(listquery.TopicNavigate, 16)
	defer unsubscribe()

	ctrl := listquery.New(loc, listquery.Options{Bus: bus, Fetcher: fetch})
	if f.Name != "" {
		ctrl.SubmitSearch(f.Name)
	}
	ctrl.SetSort(f.Sort)
	if f.Size > 0 {
		size := strconv.Itoa(f.Size)
		ctrl.SetFilter(listquery.SizeKey, &size)
	}
	if f.Status != "" {
		ctrl.SetFilter("status", &f.Status)
	}
	if f.Market != "" {
		ctrl.SetFilter("marketId", &f.Market)
	}
	if f.Page > 1 {
		page := strconv.Itoa(f.Page)
		ctrl.SetFilter(listquery.PageKey, &page)
	}

	meta, err := ctrl.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	for drained := false; !drained; {
		select {
		case e := <-navs:
			if ev, ok := e.Data.(listquery.NavigateEvent); ok && ev.Reason == listquery.ReasonCorrection {
				view.Corrections = append(view.Corrections, ev)
			}
		default:
			drained = true
		}
	}

	view.Meta = meta
	view.Window = ctrl.Window(f.Radius)
	view.URL = loc.URL()
	return view, nil
}

// printResourceList formats and prints resources in either JSON or human-readable format
func printResourceList(w io.Writer, view *listView) error {
	if jsonOutput {
		printJSON(w, map[string]any{
			"result":    1,
			"value":     view.Items,
			"meta":      view.Meta,
			"pages":     view.Window,
			"query":     view.URL,
			"corrected": len(view.Corrections) > 0,
		})
		return nil
	}
	return printResourceListHumanReadable(w, view)
}

// printResourceListHumanReadable prints a title, a table and the page window.
func printResourceListHumanReadable(w io.Writer, view *listView) error {
	if len(view.Corrections) > 0 {
		warnLabel.Fprintln(w, "Requested page is past the last page; showing page 1")
	}
	fmt.Fprintf(w, "%s:\n", cases.Title(language.English).String(view.Resource))
	if len(view.Rows) == 0 {
		fmt.Fprintln(w, "  (none)")
	} else {
		printTable(w, view.Rows)
	}
	if view.Meta.TotalPages > 0 {
		fmt.Fprintf(w, "\nPage %d of %d  %s\n", view.Meta.CurrentPage, view.Meta.TotalPages, formatWindow(view.Window, view.Meta.CurrentPage))
	}
	return nil
}

func productRows(items []api.Product) [][]string {
	rows := [][]string{{"ID", "NAME", "PRICE", "UNIT", "MARKET"}}
	for _, p := range items {
		rows = append(rows, []string{p.ID, p.Name, fmt.Sprintf("R$ %.2f", p.Price), p.Unit, p.MarketID})
	}
	return rows
}

func marketRows(items []api.Market) [][]string {
	rows := [][]string{{"ID", "NAME", "ADDRESS"}}
	for _, m := range items {
		rows = append(rows, []string{m.ID, m.Name, m.Address})
	}
	return rows
}

func orderRows(items []api.Order) [][]string {
	rows := [][]string{{"ID", "STATUS", "TOTAL", "MARKET", "CREATED"}}
	for _, o := range items {
		rows = append(rows, []string{o.ID, o.Status, fmt.Sprintf("R$ %.2f", o.Total), o.MarketID, o.CreatedAt.Format("2006-01-02")})
	}
	return rows
}

// printTable renders rows as a table; the first row is the header.
func printTable(w io.Writer, rows [][]string) {
	if len(rows) <= 1 {
		fmt.Fprintln(w, "  (none)")
		return
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(toRow(rows[0]))
	for _, r := range rows[1:] {
		tw.AppendRow(toRow(r))
	}
	tw.Render()
}

func toRow(cells []string) table.Row {
	row := make(table.Row, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	return row
}

// formatWindow renders pages like "1 [2] 3 4 5 …".
func formatWindow(pages []int, current int) string {
	parts := make([]string, 0, len(pages))
	for _, p := range pages {
		if p == current {
			parts = append(parts, "["+strconv.Itoa(p)+"]")
		} else {
			parts = append(parts, strconv.Itoa(p))
		}
	}
	return strings.Join(parts, " ")
}
