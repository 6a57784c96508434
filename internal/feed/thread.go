package feed

import (
	"context"
	"fmt"
	"time"
	"vinolog/backend/internal/models"
)

// ThreadComment is one rendered comment. Replies are populated only on top-level
// comments; the thread is never deeper than two levels.
type ThreadComment struct {
	ID        uint            `json:"id"`
	EntryID   uint            `json:"entry_id"`
	Author    *Profile        `json:"author"`
	Body      string          `json:"body"`
	CreatedAt time.Time       `json:"created_at"`
	Deleted   bool            `json:"deleted"`
	Replies   []ThreadComment `json:"replies"`
}

// ReactionSummary aggregates the reactions on one entry as seen by one viewer.
type ReactionSummary struct {
	Total  int64            `json:"total"`
	Counts map[string]int64 `json:"counts"`
	Mine   []string         `json:"mine"`
}

func emptyReactionSummary() ReactionSummary {
	return ReactionSummary{Counts: map[string]int64{}, Mine: []string{}}
}

// Thread returns the entry's comment thread: top-level comments oldest first, each
// with its replies oldest first. A viewer the comments facet denies gets an empty
// thread, not an error.
func (s *Service) Thread(ctx context.Context, viewer uint, entry models.Entry) ([]ThreadComment, error) {
	graph, err := ResolveGraph(ctx, s.store, s.log, viewer)
	if err != nil {
		return nil, err
	}
	if !graph.Allows(entry.OwnerID, ResolveFacets(entry).Comments) {
		return []ThreadComment{}, nil
	}

	comments, err := s.store.CommentsByEntry(ctx, entry.ID)
	if err != nil {
		return nil, fmt.Errorf("fetch comments for entry %d: %w", entry.ID, err)
	}

	profiles := s.authorProfiles(ctx, comments)
	return buildThread(comments, profiles), nil
}

// ReactionSummaryFor aggregates reactions on an entry for a viewer, or an empty
// summary when the reactions facet denies them.
func (s *Service) ReactionSummaryFor(ctx context.Context, viewer uint, entry models.Entry) (ReactionSummary, error) {
	graph, err := ResolveGraph(ctx, s.store, s.log, viewer)
	if err != nil {
		return emptyReactionSummary(), err
	}
	if !graph.Allows(entry.OwnerID, ResolveFacets(entry).Reactions) {
		return emptyReactionSummary(), nil
	}
	rows, err := s.store.ReactionsByEntry(ctx, entry.ID)
	if err != nil {
		return emptyReactionSummary(), fmt.Errorf("fetch reactions for entry %d: %w", entry.ID, err)
	}
	return summarizeReactions(rows, viewer), nil
}

func (s *Service) authorProfiles(ctx context.Context, comments []models.Comment) map[uint]Profile {
	idSet := make(map[uint]struct{})
	for _, c := range comments {
		if !commentDeleted(c) {
			idSet[c.UserID] = struct{}{}
		}
	}
	if len(idSet) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	rows, err := s.store.ProfilesByIDs(ctx, ids)
	if err != nil {
		s.log.Warn("comment author lookup failed, rendering thread without authors", "error", err)
		return nil
	}
	out := make(map[uint]Profile, len(rows))
	for _, p := range rows {
		if p.AvatarPath != "" {
			if url, err := s.signer.Sign(ctx, p.AvatarPath); err == nil {
				p.AvatarURL = url
			}
		}
		out[p.ID] = p
	}
	return out
}

// buildThread groups replies under their parents in a single-level map. Replies
// whose parent is itself a reply are dropped rather than nested further.
func buildThread(comments []models.Comment, profiles map[uint]Profile) []ThreadComment {
	top := make([]ThreadComment, 0)
	index := make(map[uint]int)

	for _, c := range comments {
		if c.ParentCommentID != nil {
			continue
		}
		index[c.ID] = len(top)
		top = append(top, renderComment(c, profiles))
	}
	for _, c := range comments {
		if c.ParentCommentID == nil {
			continue
		}
		i, ok := index[*c.ParentCommentID]
		if !ok {
			continue
		}
		top[i].Replies = append(top[i].Replies, renderComment(c, profiles))
	}
	return top
}

func renderComment(c models.Comment, profiles map[uint]Profile) ThreadComment {
	tc := ThreadComment{
		ID:        c.ID,
		EntryID:   c.EntryID,
		Body:      c.Body,
		CreatedAt: c.CreatedAt,
		Replies:   []ThreadComment{},
	}
	if commentDeleted(c) {
		tc.Deleted = true
		tc.Body = models.DeletedCommentBody
		return tc
	}
	if p, ok := profiles[c.UserID]; ok {
		tc.Author = &p
	}
	return tc
}

func commentDeleted(c models.Comment) bool {
	return c.DeletedAt.Valid || c.Body == models.DeletedCommentBody
}

func summarizeReactions(rows []models.Reaction, viewer uint) ReactionSummary {
	sum := emptyReactionSummary()
	for _, r := range rows {
		sum.Total++
		sum.Counts[r.Emoji]++
		if r.UserID == viewer {
			sum.Mine = append(sum.Mine, r.Emoji)
		}
	}
	return sum
}
