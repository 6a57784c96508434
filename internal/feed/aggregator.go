package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"vinolog/backend/internal/logger"
	"vinolog/backend/internal/models"

	"golang.org/x/sync/errgroup"
)

// Scope selects which candidate entries a feed page draws from.
type Scope string

const (
	// ScopeFriends shows entries owned by the viewer's friends and friends of
	// friends, excluding the viewer's own.
	ScopeFriends Scope = "friends"
	// ScopePublic shows public entries from everyone but the viewer.
	ScopePublic Scope = "public"
)

// ErrUnknownScope reports a feed scope outside {friends, public}.
var ErrUnknownScope = errors.New("feed: unknown scope")

const (
	defaultPageSize = 20
	// maxRawWindow caps the raw over-fetch regardless of the requested limit.
	maxRawWindow = 160
)

// rawWindow sizes the over-fetch needed to absorb rows lost to dedup and
// filtering and still fill a page: min(160, limit*5+1).
func rawWindow(limit int) int {
	w := limit*5 + 1
	if w > maxRawWindow {
		return maxRawWindow
	}
	return w
}

// FeedEntry is one fully enriched entry in a feed page.
type FeedEntry struct {
	ID           uint            `json:"id"`
	OwnerID      uint            `json:"owner_id"`
	Owner        *Profile        `json:"owner,omitempty"`
	WineName     string          `json:"wine_name"`
	Vintage      int             `json:"vintage,omitempty"`
	Region       string          `json:"region,omitempty"`
	Rating       int             `json:"rating"`
	Notes        string          `json:"notes,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	PhotoURLs    []string        `json:"photo_urls"`
	Grapes       []string        `json:"grapes"`
	Reactions    ReactionSummary `json:"reactions"`
	CommentCount int64           `json:"comment_count"`
}

// Page is one feed page. NextCursor is the created_at of the last row the page
// math returned; passing it back fetches strictly older rows. HasMore reflects
// the deduplicated candidate count before the photo filter runs, so a page can
// come back shorter than the limit, or even empty, with HasMore still true.
// Clients loop until a full page or HasMore=false.
type Page struct {
	Entries    []FeedEntry `json:"entries"`
	NextCursor *time.Time  `json:"next_cursor,omitempty"`
	HasMore    bool        `json:"has_more"`
}

// Service decides what a viewer sees: it resolves the social graph, applies
// per-facet privacy, collapses duplicated tasting rows and assembles stable,
// cursor-paginated feed pages. It never mutates anything.
type Service struct {
	store  Store
	signer Signer
	log    *logger.Logger
}

func NewService(store Store, signer Signer, log *logger.Logger) *Service {
	return &Service{store: store, signer: signer, log: log.With("component", "feed")}
}

// FetchPage assembles one feed page for the viewer. Calling it twice with the
// same arguments over unchanged data returns identical results.
func (s *Service) FetchPage(ctx context.Context, viewer uint, scope Scope, cursor *time.Time, limit int) (Page, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}

	graph, err := ResolveGraph(ctx, s.store, s.log, viewer)
	if err != nil {
		return Page{}, err
	}

	q := CandidateQuery{
		ExcludeOwner: viewer,
		Before:       cursor,
		Limit:        rawWindow(limit),
		Generation:   SchemaFull,
	}
	switch scope {
	case ScopeFriends:
		audience := graph.Audience()
		if len(audience) == 0 {
			return Page{Entries: []FeedEntry{}}, nil
		}
		q.OwnerIDs = audience
	case ScopePublic:
		q.PublicOnly = true
	default:
		return Page{}, fmt.Errorf("%w: %q", ErrUnknownScope, scope)
	}

	rows, err := s.store.FeedCandidates(ctx, q)
	if errors.Is(err, ErrMissingColumn) {
		// Degraded schema: retry without the optional columns. Dedup and the
		// feed-visibility filter are off for this request; the feed still renders.
		s.log.Warn("feed columns missing, serving without dedup", "viewer_id", viewer, "error", err)
		q.Generation = SchemaLegacy
		rows, err = s.store.FeedCandidates(ctx, q)
	}
	if err != nil {
		return Page{}, fmt.Errorf("fetch feed candidates: %w", err)
	}

	if q.Generation == SchemaFull {
		rows = Deduplicate(rows)
	}

	// Page math runs on the deduplicated window, before privacy and photo
	// filtering, so the cursor always advances past every examined row.
	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}
	var nextCursor *time.Time
	if hasMore && len(rows) > 0 {
		t := rows[len(rows)-1].CreatedAt
		nextCursor = &t
	}

	visible := make([]models.Entry, 0, len(rows))
	for _, row := range rows {
		if graph.Allows(row.OwnerID, ResolveFacets(row).Entry) {
			visible = append(visible, row)
		}
	}

	enriched, err := s.enrich(ctx, graph, visible)
	if err != nil {
		return Page{}, err
	}

	// The feed is photo-first by contract: entries without photos never appear,
	// even though they counted toward the page math above.
	entries := make([]FeedEntry, 0, len(enriched))
	for i, row := range visible {
		if len(row.Photos) == 0 {
			continue
		}
		entries = append(entries, enriched[i])
	}

	return Page{Entries: entries, NextCursor: nextCursor, HasMore: hasMore}, nil
}

// enrich attaches profiles, signed photo URLs, grapes, reaction summaries and
// comment counts to each surviving entry. Facet-denied and failed lookups yield
// zero values; enrichment never fails the page.
func (s *Service) enrich(ctx context.Context, graph Graph, rows []models.Entry) ([]FeedEntry, error) {
	profiles := s.ownerProfiles(ctx, rows)
	urls := s.signPhotoPaths(ctx, rows, profiles)

	out := make([]FeedEntry, len(rows))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, row := range rows {
		i, row := i, row
		eg.Go(func() error {
			fe := FeedEntry{
				ID:           row.ID,
				OwnerID:      row.OwnerID,
				WineName:     row.WineName,
				Vintage:      row.Vintage,
				Region:       row.Region,
				Rating:       row.Rating,
				Notes:        row.Notes,
				CreatedAt:    row.CreatedAt,
				PhotoURLs:    []string{},
				Grapes:       []string{},
				Reactions:    emptyReactionSummary(),
				CommentCount: 0,
			}
			if p, ok := profiles[row.OwnerID]; ok {
				owner := p
				if url, ok := urls[p.AvatarPath]; ok {
					owner.AvatarURL = url
				}
				fe.Owner = &owner
			}
			for _, photo := range row.Photos {
				if url, ok := urls[photo.Path]; ok {
					fe.PhotoURLs = append(fe.PhotoURLs, url)
				}
			}
			for _, g := range row.Grapes {
				fe.Grapes = append(fe.Grapes, g.Name)
			}

			facets := ResolveFacets(row)
			if graph.Allows(row.OwnerID, facets.Reactions) {
				reactions, err := s.store.ReactionsByEntry(egCtx, row.ID)
				if err != nil {
					s.log.Warn("reaction lookup failed, rendering entry without reactions",
						"entry_id", row.ID, "error", err)
				} else {
					fe.Reactions = summarizeReactions(reactions, graph.ViewerID)
				}
			}
			if graph.Allows(row.OwnerID, facets.Comments) {
				count, err := s.store.CommentCount(egCtx, row.ID)
				if err != nil {
					s.log.Warn("comment count failed, rendering entry without it",
						"entry_id", row.ID, "error", err)
				} else {
					fe.CommentCount = count
				}
			}

			out[i] = fe
			return nil
		})
	}
	_ = eg.Wait()
	return out, nil
}

func (s *Service) ownerProfiles(ctx context.Context, rows []models.Entry) map[uint]Profile {
	idSet := make(map[uint]struct{})
	for _, row := range rows {
		idSet[row.OwnerID] = struct{}{}
	}
	if len(idSet) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	found, err := s.store.ProfilesByIDs(ctx, ids)
	if err != nil {
		s.log.Warn("owner profile lookup failed, rendering page without authors", "error", err)
		return nil
	}
	out := make(map[uint]Profile, len(found))
	for _, p := range found {
		out[p.ID] = p
	}
	return out
}

// signPhotoPaths signs every distinct object path referenced by the page exactly
// once. A failed or slow signing only loses that one URL.
func (s *Service) signPhotoPaths(ctx context.Context, rows []models.Entry, profiles map[uint]Profile) map[string]string {
	pathSet := make(map[string]struct{})
	for _, row := range rows {
		for _, photo := range row.Photos {
			if photo.Path != "" {
				pathSet[photo.Path] = struct{}{}
			}
		}
	}
	for _, p := range profiles {
		if p.AvatarPath != "" {
			pathSet[p.AvatarPath] = struct{}{}
		}
	}
	if len(pathSet) == 0 {
		return nil
	}

	var mu sync.Mutex
	urls := make(map[string]string, len(pathSet))
	eg, egCtx := errgroup.WithContext(ctx)
	for path := range pathSet {
		path := path
		eg.Go(func() error {
			url, err := s.signer.Sign(egCtx, path)
			if err != nil {
				s.log.Warn("photo URL signing failed, leaving photo absent", "path", path, "error", err)
				return nil
			}
			mu.Lock()
			urls[path] = url
			mu.Unlock()
			return nil
		})
	}
	_ = eg.Wait()
	return urls
}

// CanView reports whether the viewer may see the entry itself.
func (s *Service) CanView(ctx context.Context, viewer uint, entry models.Entry) (bool, error) {
	graph, err := ResolveGraph(ctx, s.store, s.log, viewer)
	if err != nil {
		return false, err
	}
	return graph.Allows(entry.OwnerID, ResolveFacets(entry).Entry), nil
}

// CanComment reports whether the viewer may comment on the entry. Write paths
// call this server-side; a write a stale client believed allowed is still
// rejected here.
func (s *Service) CanComment(ctx context.Context, viewer uint, entry models.Entry) (bool, error) {
	graph, err := ResolveGraph(ctx, s.store, s.log, viewer)
	if err != nil {
		return false, err
	}
	return graph.Allows(entry.OwnerID, ResolveFacets(entry).Comments), nil
}

// CanReact reports whether the viewer may react to the entry.
func (s *Service) CanReact(ctx context.Context, viewer uint, entry models.Entry) (bool, error) {
	graph, err := ResolveGraph(ctx, s.store, s.log, viewer)
	if err != nil {
		return false, err
	}
	return graph.Allows(entry.OwnerID, ResolveFacets(entry).Reactions), nil
}
