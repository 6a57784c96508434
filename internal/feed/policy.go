package feed

import "vinolog/backend/internal/models"

// Privacy is a visibility level for an entry or one of its facets. Each level is
// visible to a superset of viewers relative to the next narrower one:
// public > friends_of_friends > friends > private.
type Privacy string

const (
	PrivacyPublic           Privacy = "public"
	PrivacyFriendsOfFriends Privacy = "friends_of_friends"
	PrivacyFriends          Privacy = "friends"
	PrivacyPrivate          Privacy = "private"
)

// Legacy comments_scope values, predating per-facet privacy.
const (
	legacyScopeViewers = "viewers"
	legacyScopeFriends = "friends"
)

// KnownPrivacy reports whether raw is one of the four recognized levels.
func KnownPrivacy(raw string) bool {
	switch Privacy(raw) {
	case PrivacyPublic, PrivacyFriendsOfFriends, PrivacyFriends, PrivacyPrivate:
		return true
	}
	return false
}

// NormalizePrivacy maps raw onto a known level, substituting fallback for anything
// unrecognized. Evaluation never sees an invalid level; unknown input takes the
// caller's fallback (typically public, matching existing entry semantics), not a
// silent deny.
func NormalizePrivacy(raw string, fallback Privacy) Privacy {
	if KnownPrivacy(raw) {
		return Privacy(raw)
	}
	return fallback
}

// Allows reports whether the viewer behind g may see content owned by owner at the
// given level. The owner always passes.
func (g Graph) Allows(owner uint, level Privacy) bool {
	if owner == g.ViewerID {
		return true
	}
	switch level {
	case PrivacyPublic:
		return true
	case PrivacyPrivate:
		return false
	case PrivacyFriends:
		_, ok := g.Direct[owner]
		return ok
	case PrivacyFriendsOfFriends:
		if _, ok := g.Direct[owner]; ok {
			return true
		}
		_, ok := g.Extended[owner]
		return ok
	}
	return false
}

// FacetLevels holds the three independently gated visibility levels of one entry.
type FacetLevels struct {
	Entry     Privacy
	Reactions Privacy
	Comments  Privacy
}

// ResolveFacets computes the effective per-facet levels for an entry.
//
// Absent facet settings default to the entry's own level. A legacy
// comments_scope of "friends" on a non-private entry narrows comments to
// friends; "viewers" means whoever sees the entry sees its comments.
func ResolveFacets(e models.Entry) FacetLevels {
	base := NormalizePrivacy(e.EntryPrivacy, PrivacyPublic)
	f := FacetLevels{Entry: base, Reactions: base, Comments: base}

	if e.ReactionPrivacy != nil {
		f.Reactions = NormalizePrivacy(*e.ReactionPrivacy, base)
	}

	switch {
	case e.CommentsPrivacy != nil:
		f.Comments = NormalizePrivacy(*e.CommentsPrivacy, base)
	case e.CommentsScope != nil && *e.CommentsScope == legacyScopeFriends && base != PrivacyPrivate:
		f.Comments = PrivacyFriends
	}
	return f
}
