package feed

import (
	"context"
	"errors"
	"testing"
	"vinolog/backend/internal/logger"
	"vinolog/backend/internal/models"
)

func TestResolveGraphTwoTiers(t *testing.T) {
	// Viewer 1 is friends with 2 and 3; 2 is friends with 4 and 5; 3 is friends
	// with 1 (already direct) and 6. 7 is unrelated.
	store := &fakeStore{edges: []models.UserRelation{
		accepted(1, 2),
		accepted(3, 1),
		accepted(2, 4),
		accepted(5, 2),
		accepted(3, 6),
		accepted(7, 8),
	}}

	g, err := ResolveGraph(context.Background(), store, logger.NewNop(), 1)
	if err != nil {
		t.Fatalf("ResolveGraph: %v", err)
	}

	wantDirect := []uint{2, 3}
	for _, id := range wantDirect {
		if _, ok := g.Direct[id]; !ok {
			t.Errorf("user %d missing from Direct", id)
		}
	}
	if len(g.Direct) != len(wantDirect) {
		t.Errorf("Direct size: want=%d got=%d", len(wantDirect), len(g.Direct))
	}

	wantExtended := []uint{4, 5, 6}
	for _, id := range wantExtended {
		if _, ok := g.Extended[id]; !ok {
			t.Errorf("user %d missing from Extended", id)
		}
	}
	if len(g.Extended) != len(wantExtended) {
		t.Errorf("Extended size: want=%d got=%d", len(wantExtended), len(g.Extended))
	}
}

func TestResolveGraphTiersNeverOverlap(t *testing.T) {
	// 2 and 3 are both direct friends of 1 and of each other, so each appears in
	// the expansion results too. Neither may land in Extended, and nor may 1.
	store := &fakeStore{edges: []models.UserRelation{
		accepted(1, 2),
		accepted(1, 3),
		accepted(2, 3),
	}}

	g, err := ResolveGraph(context.Background(), store, logger.NewNop(), 1)
	if err != nil {
		t.Fatalf("ResolveGraph: %v", err)
	}
	if len(g.Extended) != 0 {
		t.Fatalf("Extended should be empty, got %v", g.Extended)
	}
	if _, ok := g.Direct[1]; ok {
		t.Fatal("viewer must not appear in its own Direct set")
	}
}

func TestResolveGraphIgnoresPendingEdges(t *testing.T) {
	store := &fakeStore{edges: []models.UserRelation{
		pending(1, 2),
		accepted(1, 3),
	}}

	g, err := ResolveGraph(context.Background(), store, logger.NewNop(), 1)
	if err != nil {
		t.Fatalf("ResolveGraph: %v", err)
	}
	if _, ok := g.Direct[2]; ok {
		t.Fatal("pending edge must not produce a direct friend")
	}
	if _, ok := g.Direct[3]; !ok {
		t.Fatal("accepted edge missing from Direct")
	}
}

func TestResolveGraphNoFriendsShortCircuits(t *testing.T) {
	store := &fakeStore{
		edges: []models.UserRelation{accepted(2, 3)},
		// The expansion queries must never run for a friendless viewer.
		edgesFromErr: errors.New("must not be called"),
		edgesToErr:   errors.New("must not be called"),
	}

	g, err := ResolveGraph(context.Background(), store, logger.NewNop(), 1)
	if err != nil {
		t.Fatalf("ResolveGraph: %v", err)
	}
	if len(g.Direct) != 0 || len(g.Extended) != 0 {
		t.Fatalf("want empty graph, got direct=%v extended=%v", g.Direct, g.Extended)
	}
}

func TestResolveGraphDirectFetchFailureIsHard(t *testing.T) {
	wantErr := errors.New("db down")
	store := &fakeStore{edgesErr: wantErr}

	_, err := ResolveGraph(context.Background(), store, logger.NewNop(), 1)
	if !errors.Is(err, wantErr) {
		t.Fatalf("want wrapped %v, got %v", wantErr, err)
	}
}

func TestResolveGraphExpansionFailureShrinksExtended(t *testing.T) {
	store := &fakeStore{
		edges: []models.UserRelation{
			accepted(1, 2),
			accepted(2, 4),
		},
		edgesFromErr: errors.New("replica lagging"),
		edgesToErr:   errors.New("replica lagging"),
	}

	g, err := ResolveGraph(context.Background(), store, logger.NewNop(), 1)
	if err != nil {
		t.Fatalf("expansion failure must not fail graph resolution: %v", err)
	}
	if _, ok := g.Direct[2]; !ok {
		t.Fatal("direct friend lost")
	}
	if len(g.Extended) != 0 {
		t.Fatalf("Extended should be empty after failed expansion, got %v", g.Extended)
	}
}

func TestAudienceCoversBothTiers(t *testing.T) {
	g := Graph{
		ViewerID: 1,
		Direct:   map[uint]struct{}{2: {}},
		Extended: map[uint]struct{}{3: {}, 4: {}},
	}
	got := g.Audience()
	if len(got) != 3 {
		t.Fatalf("audience size: want=3 got=%d (%v)", len(got), got)
	}
	seen := idSet(got)
	for _, id := range []uint{2, 3, 4} {
		if _, ok := seen[id]; !ok {
			t.Errorf("user %d missing from audience", id)
		}
	}
}
