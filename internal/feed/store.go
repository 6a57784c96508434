package feed

import (
	"context"
	"errors"
	"time"
	"vinolog/backend/internal/models"
)

// ErrMissingColumn reports that a query referenced an optional column the backing
// store does not have. Callers recover by re-issuing a narrower query with
// SchemaLegacy and disabling the dependent features for that request.
var ErrMissingColumn = errors.New("feed: store is missing an optional column")

// SchemaGeneration names the set of optional columns a query may rely on.
type SchemaGeneration int

const (
	// SchemaFull assumes root_entry_id and is_feed_visible exist.
	SchemaFull SchemaGeneration = iota
	// SchemaLegacy avoids optional columns. Dedup and the feed-visibility filter
	// are disabled; rows are assumed already canonical.
	SchemaLegacy
)

// CandidateQuery describes one raw feed window fetch, ordered created_at descending.
type CandidateQuery struct {
	// OwnerIDs restricts candidates to these owners when non-empty.
	OwnerIDs []uint
	// PublicOnly restricts candidates to entries with public entry privacy.
	PublicOnly bool
	// ExcludeOwner drops this user's own entries from the window.
	ExcludeOwner uint
	// Before keeps only rows strictly older than this instant, when set.
	Before *time.Time
	// Limit caps the raw window size.
	Limit int
	// Generation selects which optional columns the query may touch.
	Generation SchemaGeneration
}

// EntrySource provides raw candidate windows for the aggregator.
type EntrySource interface {
	FeedCandidates(ctx context.Context, q CandidateQuery) ([]models.Entry, error)
}

// EdgeSource provides accepted friend edges for graph resolution.
type EdgeSource interface {
	// AcceptedEdges returns accepted edges touching userID on either side.
	AcceptedEdges(ctx context.Context, userID uint) ([]models.UserRelation, error)
	// AcceptedEdgesFrom returns accepted edges whose requester is in ids.
	AcceptedEdgesFrom(ctx context.Context, ids []uint) ([]models.UserRelation, error)
	// AcceptedEdgesTo returns accepted edges whose recipient is in ids.
	AcceptedEdgesTo(ctx context.Context, ids []uint) ([]models.UserRelation, error)
}

// ReactionSource provides reaction rows per entry.
type ReactionSource interface {
	ReactionsByEntry(ctx context.Context, entryID uint) ([]models.Reaction, error)
}

// CommentSource provides comment rows and counts per entry.
type CommentSource interface {
	// CommentsByEntry returns all comments for an entry oldest first, including
	// soft-deleted rows (they are needed for reply threading).
	CommentsByEntry(ctx context.Context, entryID uint) ([]models.Comment, error)
	// CommentCount returns the number of live comments for an entry.
	CommentCount(ctx context.Context, entryID uint) (int64, error)
}

// Profile is the author information attached to feed entries and comments.
type Profile struct {
	ID          uint   `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	AvatarPath  string `json:"-"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// ProfileSource resolves user IDs to profiles.
type ProfileSource interface {
	ProfilesByIDs(ctx context.Context, ids []uint) ([]Profile, error)
}

// Signer converts a stored object path into a fetchable URL.
type Signer interface {
	Sign(ctx context.Context, path string) (string, error)
}

// Store is everything the engine needs from persistence.
type Store interface {
	EntrySource
	EdgeSource
	ReactionSource
	CommentSource
	ProfileSource
}
