package feed

import (
	"context"
	"fmt"
	"vinolog/backend/internal/logger"

	"golang.org/x/sync/errgroup"
)

// Graph is the resolved social neighborhood of one viewer, computed once per
// request and passed into every visibility decision for that request.
//
// Direct holds users with an accepted edge to the viewer. Extended holds users
// reachable through exactly one more accepted edge, excluding the viewer and
// everyone already in Direct, so the two sets never overlap.
type Graph struct {
	ViewerID uint
	Direct   map[uint]struct{}
	Extended map[uint]struct{}
}

// Audience returns every user whose entries belong in the viewer's friends feed.
func (g Graph) Audience() []uint {
	ids := make([]uint, 0, len(g.Direct)+len(g.Extended))
	for id := range g.Direct {
		ids = append(ids, id)
	}
	for id := range g.Extended {
		ids = append(ids, id)
	}
	return ids
}

// ResolveGraph computes the viewer's direct friends and friends of friends.
//
// A failure fetching the viewer's own edges is a hard error. Failures in either
// second-degree expansion query only shrink the Extended set: that tier is an
// optimization of visibility breadth, and losing it fails closed.
func ResolveGraph(ctx context.Context, src EdgeSource, log *logger.Logger, viewer uint) (Graph, error) {
	g := Graph{
		ViewerID: viewer,
		Direct:   make(map[uint]struct{}),
		Extended: make(map[uint]struct{}),
	}

	edges, err := src.AcceptedEdges(ctx, viewer)
	if err != nil {
		return Graph{}, fmt.Errorf("resolve direct friends of user %d: %w", viewer, err)
	}
	for _, e := range edges {
		other := e.FromUserID
		if other == viewer {
			other = e.ToUserID
		}
		if other != viewer {
			g.Direct[other] = struct{}{}
		}
	}

	// No friends means no friends of friends; skip the second fetch entirely.
	if len(g.Direct) == 0 {
		return g, nil
	}

	ids := make([]uint, 0, len(g.Direct))
	for id := range g.Direct {
		ids = append(ids, id)
	}

	var fromEdges, toEdges []edgePair
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		rows, err := src.AcceptedEdgesFrom(egCtx, ids)
		if err != nil {
			log.Warn("friends-of-friends expansion failed, continuing with a narrower graph",
				"viewer_id", viewer, "side", "requester", "error", err)
			return nil
		}
		for _, r := range rows {
			fromEdges = append(fromEdges, edgePair{r.FromUserID, r.ToUserID})
		}
		return nil
	})
	eg.Go(func() error {
		rows, err := src.AcceptedEdgesTo(egCtx, ids)
		if err != nil {
			log.Warn("friends-of-friends expansion failed, continuing with a narrower graph",
				"viewer_id", viewer, "side", "recipient", "error", err)
			return nil
		}
		for _, r := range rows {
			toEdges = append(toEdges, edgePair{r.FromUserID, r.ToUserID})
		}
		return nil
	})
	_ = eg.Wait()

	for _, e := range fromEdges {
		g.addExtended(e.a)
		g.addExtended(e.b)
	}
	for _, e := range toEdges {
		g.addExtended(e.a)
		g.addExtended(e.b)
	}
	return g, nil
}

type edgePair struct{ a, b uint }

func (g Graph) addExtended(id uint) {
	if id == g.ViewerID {
		return
	}
	if _, ok := g.Direct[id]; ok {
		return
	}
	g.Extended[id] = struct{}{}
}
