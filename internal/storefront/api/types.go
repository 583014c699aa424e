package api

import (
	"time"
)

// PageMeta is the pagination summary the backend returns with every collection.
type PageMeta struct {
	TotalPages  int `json:"totalPages" validate:"gte=0"`
	CurrentPage int `json:"currentPage" validate:"gte=1"`
	Size        int `json:"size" validate:"gt=0"`
}

// Page is one page of a paginated collection.
type Page[T any] struct {
	Items []T
	Meta  PageMeta
}

type Product struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Unit     string  `json:"unit,omitempty"`
	MarketID string  `json:"marketId,omitempty"`
	ImageURL string  `json:"imageUrl,omitempty"`
}

type Market struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

type Order struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Total     float64   `json:"total"`
	MarketID  string    `json:"marketId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// SuggestionResult is all the suggestion task needs to finish: the id of the
// suggestion the backend created.
type SuggestionResult struct {
	ID string `json:"id" validate:"required"`
}

// SuggestionItem is one product line of a shopping list suggestion.
type SuggestionItem struct {
	ProductID string  `json:"productId,omitempty"`
	Name      string  `json:"name"`
	Quantity  float64 `json:"quantity"`
	Unit      string  `json:"unit,omitempty"`
}

// Suggestion is the full payload fetched by the suggestion detail destination.
type Suggestion struct {
	ID        string           `json:"id"`
	Query     string           `json:"query"`
	Title     string           `json:"title,omitempty"`
	Items     []SuggestionItem `json:"items"`
	CreatedAt time.Time        `json:"createdAt"`
}

// Token is the credential returned by a successful login.
type Token struct {
	Token     string    `json:"token" validate:"required"`
	ExpiresAt time.Time `json:"expiresAt"`
}
