package feed

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
	"vinolog/backend/internal/models"
)

// fakeStore is an in-memory Store with per-method error injection.
type fakeStore struct {
	entries   []models.Entry
	edges     []models.UserRelation
	reactions map[uint][]models.Reaction
	comments  map[uint][]models.Comment
	profiles  map[uint]Profile

	missingColumns bool // full-generation candidate queries fail with ErrMissingColumn
	edgesErr       error
	edgesFromErr   error
	edgesToErr     error
	candidatesErr  error
	reactionsErr   error
	countErr       error
	profilesErr    error
}

func (f *fakeStore) FeedCandidates(_ context.Context, q CandidateQuery) ([]models.Entry, error) {
	if f.candidatesErr != nil {
		return nil, f.candidatesErr
	}
	if q.Generation == SchemaFull && f.missingColumns {
		return nil, fmt.Errorf("feed candidate query: %w", ErrMissingColumn)
	}

	owners := make(map[uint]struct{}, len(q.OwnerIDs))
	for _, id := range q.OwnerIDs {
		owners[id] = struct{}{}
	}

	var out []models.Entry
	for _, e := range f.entries {
		if e.OwnerID == q.ExcludeOwner {
			continue
		}
		if len(q.OwnerIDs) > 0 {
			if _, ok := owners[e.OwnerID]; !ok {
				continue
			}
		}
		if q.PublicOnly && e.EntryPrivacy != string(PrivacyPublic) {
			continue
		}
		if q.Before != nil && !e.CreatedAt.Before(*q.Before) {
			continue
		}
		if q.Generation == SchemaFull && e.IsFeedVisible != nil && !*e.IsFeedVisible {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (f *fakeStore) AcceptedEdges(_ context.Context, userID uint) ([]models.UserRelation, error) {
	if f.edgesErr != nil {
		return nil, f.edgesErr
	}
	var out []models.UserRelation
	for _, e := range f.edges {
		if e.Status != models.StatusAccepted {
			continue
		}
		if e.FromUserID == userID || e.ToUserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) AcceptedEdgesFrom(_ context.Context, ids []uint) ([]models.UserRelation, error) {
	if f.edgesFromErr != nil {
		return nil, f.edgesFromErr
	}
	set := idSet(ids)
	var out []models.UserRelation
	for _, e := range f.edges {
		if e.Status != models.StatusAccepted {
			continue
		}
		if _, ok := set[e.FromUserID]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) AcceptedEdgesTo(_ context.Context, ids []uint) ([]models.UserRelation, error) {
	if f.edgesToErr != nil {
		return nil, f.edgesToErr
	}
	set := idSet(ids)
	var out []models.UserRelation
	for _, e := range f.edges {
		if e.Status != models.StatusAccepted {
			continue
		}
		if _, ok := set[e.ToUserID]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) ReactionsByEntry(_ context.Context, entryID uint) ([]models.Reaction, error) {
	if f.reactionsErr != nil {
		return nil, f.reactionsErr
	}
	return f.reactions[entryID], nil
}

func (f *fakeStore) CommentsByEntry(_ context.Context, entryID uint) ([]models.Comment, error) {
	return f.comments[entryID], nil
}

func (f *fakeStore) CommentCount(_ context.Context, entryID uint) (int64, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	var n int64
	for _, c := range f.comments[entryID] {
		if !commentDeleted(c) {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) ProfilesByIDs(_ context.Context, ids []uint) ([]Profile, error) {
	if f.profilesErr != nil {
		return nil, f.profilesErr
	}
	var out []Profile
	for _, id := range ids {
		if p, ok := f.profiles[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func idSet(ids []uint) map[uint]struct{} {
	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// fakeSigner signs every path deterministically, with optional per-path failure.
type fakeSigner struct {
	failPaths map[string]bool
}

func (f *fakeSigner) Sign(_ context.Context, path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if f.failPaths[path] {
		return "", errors.New("signing unavailable")
	}
	return "https://signed.example/" + path, nil
}

func accepted(from, to uint) models.UserRelation {
	return models.UserRelation{FromUserID: from, ToUserID: to, Status: models.StatusAccepted}
}

func pending(from, to uint) models.UserRelation {
	return models.UserRelation{FromUserID: from, ToUserID: to, Status: models.StatusPending}
}

func strPtr(s string) *string { return &s }

func uintPtr(u uint) *uint { return &u }

var testEpoch = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

// entryAt builds a public entry with one photo, created at testEpoch minus age.
func entryAt(id, owner uint, age time.Duration) models.Entry {
	e := models.Entry{
		OwnerID:      owner,
		WineName:     fmt.Sprintf("wine-%d", id),
		Rating:       4,
		EntryPrivacy: string(PrivacyPublic),
		Photos:       []models.EntryPhoto{{ID: id, EntryID: id, Path: fmt.Sprintf("photos/%d.jpg", id)}},
	}
	e.ID = id
	e.CreatedAt = testEpoch.Add(-age)
	return e
}
