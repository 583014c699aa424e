package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pac-william/mercado/internal/common/apperrors"
	"github.com/pac-william/mercado/internal/storefront/api"
	"github.com/pac-william/mercado/internal/storefront/listquery"
)

func TestRunListFirstPage(t *testing.T) {
	cfg := useStub(t, nil)

	view, err := runList(context.Background(), newAPI(cfg), "products", listFlags{Radius: 2})
	require.NoError(t, err)
	assert.Equal(t, api.PageMeta{TotalPages: 3, CurrentPage: 1, Size: 10}, view.Meta)
	assert.Equal(t, []int{1, 2, 3}, view.Window)
	assert.Equal(t, "/products", view.URL)
	assert.Empty(t, view.Corrections)
	assert.Len(t, view.Rows, 11)
	assert.Equal(t, []string{"ID", "NAME", "PRICE", "UNIT", "MARKET"}, view.Rows[0])
}

func TestRunListFilters(t *testing.T) {
	cfg := useStub(t, nil)

	view, err := runList(context.Background(), newAPI(cfg), "products", listFlags{Name: "leite", Sort: "-price", Radius: 2})
	require.NoError(t, err)
	assert.Equal(t, "/products?name=leite&sort=-price", view.URL)
	assert.Equal(t, 1, view.Meta.TotalPages)
	require.Len(t, view.Rows, 3)
	items, ok := view.Items.([]api.Product)
	require.True(t, ok)
	assert.GreaterOrEqual(t, items[0].Price, items[1].Price)
}

func TestRunListCorrectsPagePastTheEnd(t *testing.T) {
	cfg := useStub(t, nil)

	view, err := runList(context.Background(), newAPI(cfg), "products", listFlags{Page: 7, Radius: 2})
	require.NoError(t, err)
	require.Len(t, view.Corrections, 1)
	assert.Equal(t, listquery.ReasonCorrection, view.Corrections[0].Reason)
	assert.Equal(t, "page=7", view.Corrections[0].From)
	assert.Equal(t, "", view.Corrections[0].To)
	assert.Equal(t, "/products", view.URL)
	assert.Equal(t, 1, view.Meta.CurrentPage)
	assert.Len(t, view.Rows, 11)
}

func TestRunListKeepsValidPage(t *testing.T) {
	cfg := useStub(t, nil)

	view, err := runList(context.Background(), newAPI(cfg), "products", listFlags{Page: 3, Radius: 1})
	require.NoError(t, err)
	assert.Empty(t, view.Corrections)
	assert.Equal(t, "/products?page=3", view.URL)
	assert.Equal(t, 3, view.Meta.CurrentPage)
	assert.Equal(t, []int{1, 2, 3}, view.Window)
	assert.Len(t, view.Rows, 6)
}

func TestRunListOrders(t *testing.T) {
	cfg := useStub(t, nil)

	_, err := runList(context.Background(), newAPI(cfg), "orders", listFlags{})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthenticated))

	loginAs(t, cfg, "ana@mercado.dev", "ana123")
	view, err := runList(context.Background(), newAPI(cfg), "orders", listFlags{Status: "delivered"})
	require.NoError(t, err)
	assert.Equal(t, "/orders?status=delivered", view.URL)
	require.Len(t, view.Rows, 3)
	assert.Equal(t, "delivered", view.Rows[1][1])
}

func TestRunListRejectsUnknownResource(t *testing.T) {
	cfg := useStub(t, nil)
	_, err := runList(context.Background(), newAPI(cfg), "coupons", listFlags{})
	assert.Error(t, err)
}

func TestPrintResourceList(t *testing.T) {
	cfg := useStub(t, nil)
	view, err := runList(context.Background(), newAPI(cfg), "markets", listFlags{Page: 9, Radius: 2})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, printResourceList(&out, view))
	s := out.String()
	assert.Contains(t, s, "showing page 1")
	assert.Contains(t, s, "Markets:")
	assert.Contains(t, s, "Mercado Central")
	assert.Contains(t, s, "Page 1 of 1  [1]")

	jsonOutput = true
	out.Reset()
	require.NoError(t, printResourceList(&out, view))
	assert.Contains(t, out.String(), `"corrected": true`)
	assert.Contains(t, out.String(), `"query": "/markets"`)
}

func TestFormatWindow(t *testing.T) {
	assert.Equal(t, "1 [2] 3 4 5", formatWindow([]int{1, 2, 3, 4, 5}, 2))
	assert.Equal(t, "[1]", formatWindow([]int{1}, 1))
	assert.Equal(t, "", formatWindow(nil, 1))
}

func TestPrintTable(t *testing.T) {
	var out bytes.Buffer
	printTable(&out, [][]string{
		{"ID", "NAME"},
		{"p-001", "Açúcar"},
		{"p-10", "Pão"},
	})
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 6)
	assert.Contains(t, lines[1], "ID")
	assert.Contains(t, lines[1], "NAME")
	assert.Contains(t, lines[3], "p-001")
	assert.Contains(t, lines[3], "Açúcar")
	assert.Contains(t, lines[4], "Pão")

	out.Reset()
	printTable(&out, [][]string{{"ID"}})
	assert.Equal(t, "  (none)\n", out.String())
}
