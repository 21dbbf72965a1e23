// Package appstore implements the App Store catalog client the gateway
// forwards to. Results are raw JSON; the payload shape is owned by the
// store endpoints and passed through untouched.
package appstore

import (
	"context"
	"encoding/json"
)

// AppParams identifies a single app lookup.
type AppParams struct {
	ID      string
	Ratings bool
	Country string
	Lang    string
}

// ListParams selects a collection feed.
type ListParams struct {
	Collection string
	Category   int
	Num        int
	Country    string
}

// SearchParams drives a term search.
type SearchParams struct {
	Term    string
	Num     int
	Page    int
	Country string
}

// DeveloperParams identifies a developer's app listing.
type DeveloperParams struct {
	DevID   string
	Country string
}

// ReviewsParams pages through an app's customer reviews.
type ReviewsParams struct {
	ID      string
	Page    int
	Sort    string
	Country string
}

// IDParams identifies an app for operations that take nothing else.
type IDParams struct {
	ID      string
	Country string
}

// Review sort orders accepted by the reviews feed.
const (
	SortRecent  = "mostRecent"
	SortHelpful = "mostHelpful"
)

// Catalog exposes the eight store operations. Implementations return the
// store's JSON payload verbatim or fail with a message string.
type Catalog interface {
	App(ctx context.Context, p AppParams) (json.RawMessage, error)
	List(ctx context.Context, p ListParams) (json.RawMessage, error)
	Search(ctx context.Context, p SearchParams) (json.RawMessage, error)
	Developer(ctx context.Context, p DeveloperParams) (json.RawMessage, error)
	Reviews(ctx context.Context, p ReviewsParams) (json.RawMessage, error)
	Similar(ctx context.Context, p IDParams) (json.RawMessage, error)
	Privacy(ctx context.Context, p IDParams) (json.RawMessage, error)
	VersionHistory(ctx context.Context, p IDParams) (json.RawMessage, error)
}
