package stubsrv

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pac-william/mercado/internal/common/httpx"
	"github.com/pac-william/mercado/internal/common/uuid"
	"github.com/pac-william/mercado/internal/storefront/api"
	"github.com/pac-william/mercado/internal/storefront/session"
)

type suggestionRecord struct {
	owner string
	api.Suggestion
}

type orderRecord struct {
	owner string
	api.Order
}

// store is the in-memory state of the stub backend.
type store struct {
	mu          sync.RWMutex
	users       []UserSeed
	products    []api.Product
	markets     []api.Market
	orders      []*orderRecord
	suggestions map[string]*suggestionRecord
	now         func() time.Time
}

func newStore(cfg *Config) *store {
	s := &store{
		users:       cfg.Users,
		suggestions: make(map[string]*suggestionRecord),
		now:         time.Now,
	}
	for _, p := range cfg.Products {
		s.products = append(s.products, api.Product{ID: p.ID, Name: p.Name, Price: p.Price, Unit: p.Unit, MarketID: p.MarketID})
	}
	for _, m := range cfg.Markets {
		s.markets = append(s.markets, api.Market{ID: m.ID, Name: m.Name, Address: m.Address})
	}
	s.orders = seedOrders(s.users, s.markets)
	return s
}

// seedOrders gives every customer a few orders, newest first, the first one still pending.
func seedOrders(users []UserSeed, markets []api.Market) []*orderRecord {
	var orders []*orderRecord
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	statuses := []string{"pending", "delivered", "delivered", "cancelled"}
	n := 0
	for _, u := range users {
		if session.Role(u.Role) != session.RoleCustomer {
			continue
		}
		for i, status := range statuses {
			n++
			o := &orderRecord{owner: u.ID}
			o.ID = fmt.Sprintf("o-%03d", n)
			o.Status = status
			o.Total = float64(40+n*7) + 0.9
			if len(markets) > 0 {
				o.MarketID = markets[n%len(markets)].ID
			}
			o.CreatedAt = base.Add(-time.Duration(i) * 72 * time.Hour)
			orders = append(orders, o)
		}
	}
	return orders
}

func (s *store) authenticate(email, password string) (session.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) && u.Password == password {
			return session.User{ID: u.ID, Name: u.Name, Email: u.Email, Role: session.Role(u.Role)}, true
		}
	}
	return session.User{}, false
}

func (s *store) listProducts(q listQuery) ([]api.Product, api.PageMeta, error) {
	s.mu.RLock()
	items := make([]api.Product, 0, len(s.products))
	for _, p := range s.products {
		if q.matches(p.Name) && (q.marketID == "" || q.marketID == p.MarketID) {
			items = append(items, p)
		}
	}
	s.mu.RUnlock()

	switch q.sort {
	case "", "name":
		sort.SliceStable(items, func(i, j int) bool { return strings.ToLower(items[i].Name) < strings.ToLower(items[j].Name) })
	case "-name":
		sort.SliceStable(items, func(i, j int) bool { return strings.ToLower(items[i].Name) > strings.ToLower(items[j].Name) })
	case "price":
		sort.SliceStable(items, func(i, j int) bool { return items[i].Price < items[j].Price })
	case "-price":
		sort.SliceStable(items, func(i, j int) bool { return items[i].Price > items[j].Price })
	default:
		return nil, api.PageMeta{}, httpx.ErrInvalidRequest("Ordenação inválida: " + q.sort)
	}
	page, meta := paginate(items, q.page, q.size)
	return page, meta, nil
}

func (s *store) listMarkets(q listQuery) ([]api.Market, api.PageMeta, error) {
	s.mu.RLock()
	items := make([]api.Market, 0, len(s.markets))
	for _, m := range s.markets {
		if q.matches(m.Name) {
			items = append(items, m)
		}
	}
	s.mu.RUnlock()

	switch q.sort {
	case "", "name":
		sort.SliceStable(items, func(i, j int) bool { return strings.ToLower(items[i].Name) < strings.ToLower(items[j].Name) })
	case "-name":
		sort.SliceStable(items, func(i, j int) bool { return strings.ToLower(items[i].Name) > strings.ToLower(items[j].Name) })
	default:
		return nil, api.PageMeta{}, httpx.ErrInvalidRequest("Ordenação inválida: " + q.sort)
	}
	page, meta := paginate(items, q.page, q.size)
	return page, meta, nil
}

// listOrders returns the user's orders; admins see every order.
func (s *store) listOrders(user session.User, q listQuery) ([]api.Order, api.PageMeta, error) {
	s.mu.RLock()
	items := make([]api.Order, 0)
	for _, o := range s.orders {
		if user.Role != session.RoleAdmin && o.owner != user.ID {
			continue
		}
		if q.status != "" && o.Status != q.status {
			continue
		}
		items = append(items, o.Order)
	}
	s.mu.RUnlock()

	switch q.sort {
	case "", "-createdAt":
		sort.SliceStable(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	case "createdAt":
		sort.SliceStable(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
	case "total":
		sort.SliceStable(items, func(i, j int) bool { return items[i].Total < items[j].Total })
	case "-total":
		sort.SliceStable(items, func(i, j int) bool { return items[i].Total > items[j].Total })
	default:
		return nil, api.PageMeta{}, httpx.ErrInvalidRequest("Ordenação inválida: " + q.sort)
	}
	page, meta := paginate(items, q.page, q.size)
	return page, meta, nil
}

// cancelOrder moves a pending order to cancelled.
func (s *store) cancelOrder(user session.User, id string) (api.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.ID != id || (user.Role != session.RoleAdmin && o.owner != user.ID) {
			continue
		}
		if o.Status != "pending" {
			return api.Order{}, httpx.ErrConflict("Pedido já finalizado não pode ser cancelado")
		}
		o.Status = "cancelled"
		return o.Order, nil
	}
	return api.Order{}, httpx.ErrNotFound("Pedido não encontrado")
}

// createSuggestion builds a shopping list from the catalogue products whose
// names share a word with the query.
func (s *store) createSuggestion(user session.User, query string) api.Suggestion {
	words := strings.Fields(strings.ToLower(query))

	s.mu.Lock()
	defer s.mu.Unlock()

	sug := api.Suggestion{
		ID:        uuid.NewID("sug"),
		Query:     query,
		Title:     "Sugestão para " + query,
		CreatedAt: s.now().UTC(),
	}
	for _, p := range s.products {
		name := strings.ToLower(p.Name)
		for _, w := range words {
			if len(w) >= 3 && strings.Contains(name, w) {
				sug.Items = append(sug.Items, api.SuggestionItem{ProductID: p.ID, Name: p.Name, Quantity: 1, Unit: p.Unit})
				break
			}
		}
	}
	if len(sug.Items) == 0 {
		for _, p := range s.products[:min(3, len(s.products))] {
			sug.Items = append(sug.Items, api.SuggestionItem{ProductID: p.ID, Name: p.Name, Quantity: 1, Unit: p.Unit})
		}
	}
	s.suggestions[sug.ID] = &suggestionRecord{owner: user.ID, Suggestion: sug}
	return sug
}

func (s *store) getSuggestion(user session.User, id string) (api.Suggestion, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.suggestions[id]
	if !ok || (user.Role != session.RoleAdmin && rec.owner != user.ID) {
		return api.Suggestion{}, false
	}
	return rec.Suggestion, true
}

func (s *store) deleteSuggestion(user session.User, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.suggestions[id]
	if !ok || (user.Role != session.RoleAdmin && rec.owner != user.ID) {
		return false
	}
	delete(s.suggestions, id)
	return true
}

// listQuery is the parsed form of the common collection query parameters.
type listQuery struct {
	page     int
	size     int
	name     string
	sort     string
	marketID string
	status   string
}

func parseListQuery(v url.Values, defaultSize int) (listQuery, error) {
	q := listQuery{
		page:     1,
		size:     defaultSize,
		name:     strings.ToLower(strings.TrimSpace(v.Get("name"))),
		sort:     v.Get("sort"),
		marketID: v.Get("marketId"),
		status:   v.Get("status"),
	}
	if p := v.Get("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 {
			return q, httpx.ErrInvalidRequest("Página inválida: " + p)
		}
		q.page = n
	}
	if sz := v.Get("size"); sz != "" {
		n, err := strconv.Atoi(sz)
		if err != nil || n < 1 || n > 100 {
			return q, httpx.ErrInvalidRequest("Tamanho de página inválido: " + sz)
		}
		q.size = n
	}
	return q, nil
}

func (q listQuery) matches(name string) bool {
	return q.name == "" || strings.Contains(strings.ToLower(name), q.name)
}

// paginate slices items for page. A page past the end yields no items but still
// reports the requested page as current.
func paginate[T any](items []T, page, size int) ([]T, api.PageMeta) {
	total := (len(items) + size - 1) / size
	meta := api.PageMeta{TotalPages: total, CurrentPage: page, Size: size}
	start := (page - 1) * size
	if start >= len(items) {
		return []T{}, meta
	}
	end := min(start+size, len(items))
	return items[start:end], meta
}
