package feed

import (
	"testing"
	"vinolog/backend/internal/models"
)

func TestNormalizePrivacy(t *testing.T) {
	tests := []struct {
		raw      string
		fallback Privacy
		want     Privacy
	}{
		{"public", PrivacyPrivate, PrivacyPublic},
		{"friends", PrivacyPublic, PrivacyFriends},
		{"friends_of_friends", PrivacyPublic, PrivacyFriendsOfFriends},
		{"private", PrivacyPublic, PrivacyPrivate},
		{"", PrivacyPublic, PrivacyPublic},
		{"everyone", PrivacyPublic, PrivacyPublic},
		{"PUBLIC", PrivacyFriends, PrivacyFriends}, // levels are case-sensitive
	}
	for _, tt := range tests {
		if got := NormalizePrivacy(tt.raw, tt.fallback); got != tt.want {
			t.Errorf("NormalizePrivacy(%q, %q): want=%q got=%q", tt.raw, tt.fallback, tt.want, got)
		}
	}
}

func TestGraphAllows(t *testing.T) {
	g := Graph{
		ViewerID: 1,
		Direct:   map[uint]struct{}{2: {}},
		Extended: map[uint]struct{}{3: {}},
	}
	// 4 is a stranger.
	tests := []struct {
		owner uint
		level Privacy
		want  bool
	}{
		{1, PrivacyPrivate, true}, // owner always sees their own
		{2, PrivacyPublic, true},
		{2, PrivacyFriends, true},
		{2, PrivacyFriendsOfFriends, true},
		{2, PrivacyPrivate, false},
		{3, PrivacyPublic, true},
		{3, PrivacyFriends, false},
		{3, PrivacyFriendsOfFriends, true},
		{3, PrivacyPrivate, false},
		{4, PrivacyPublic, true},
		{4, PrivacyFriends, false},
		{4, PrivacyFriendsOfFriends, false},
		{4, PrivacyPrivate, false},
	}
	for _, tt := range tests {
		if got := g.Allows(tt.owner, tt.level); got != tt.want {
			t.Errorf("Allows(owner=%d, %q): want=%v got=%v", tt.owner, tt.level, tt.want, got)
		}
	}
}

func TestResolveFacetsDefaultsToEntryLevel(t *testing.T) {
	e := models.Entry{EntryPrivacy: "friends"}
	f := ResolveFacets(e)
	if f.Entry != PrivacyFriends || f.Reactions != PrivacyFriends || f.Comments != PrivacyFriends {
		t.Fatalf("all facets should inherit the entry level, got %+v", f)
	}
}

func TestResolveFacetsIndependentLevels(t *testing.T) {
	e := models.Entry{
		EntryPrivacy:    "public",
		ReactionPrivacy: strPtr("friends"),
		CommentsPrivacy: strPtr("private"),
	}
	f := ResolveFacets(e)
	if f.Entry != PrivacyPublic {
		t.Errorf("entry facet: want=public got=%q", f.Entry)
	}
	if f.Reactions != PrivacyFriends {
		t.Errorf("reactions facet: want=friends got=%q", f.Reactions)
	}
	if f.Comments != PrivacyPrivate {
		t.Errorf("comments facet: want=private got=%q", f.Comments)
	}
}

func TestResolveFacetsInvalidFacetFallsBackToBase(t *testing.T) {
	e := models.Entry{
		EntryPrivacy:    "friends",
		ReactionPrivacy: strPtr("besties"),
	}
	f := ResolveFacets(e)
	if f.Reactions != PrivacyFriends {
		t.Fatalf("invalid reaction level should fall back to the entry level, got %q", f.Reactions)
	}
}

func TestResolveFacetsInvalidEntryLevelReadsAsPublic(t *testing.T) {
	f := ResolveFacets(models.Entry{EntryPrivacy: "whatever"})
	if f.Entry != PrivacyPublic {
		t.Fatalf("invalid entry level: want=public got=%q", f.Entry)
	}
}

func TestResolveFacetsLegacyCommentsScope(t *testing.T) {
	tests := []struct {
		name  string
		entry models.Entry
		want  Privacy
	}{
		{
			name:  "friends scope narrows a public entry's comments",
			entry: models.Entry{EntryPrivacy: "public", CommentsScope: strPtr("friends")},
			want:  PrivacyFriends,
		},
		{
			name:  "viewers scope follows the entry",
			entry: models.Entry{EntryPrivacy: "friends_of_friends", CommentsScope: strPtr("viewers")},
			want:  PrivacyFriendsOfFriends,
		},
		{
			name:  "friends scope cannot widen a private entry",
			entry: models.Entry{EntryPrivacy: "private", CommentsScope: strPtr("friends")},
			want:  PrivacyPrivate,
		},
		{
			name: "explicit comments privacy beats the legacy scope",
			entry: models.Entry{
				EntryPrivacy:    "public",
				CommentsPrivacy: strPtr("public"),
				CommentsScope:   strPtr("friends"),
			},
			want: PrivacyPublic,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveFacets(tt.entry).Comments; got != tt.want {
				t.Fatalf("comments facet: want=%q got=%q", tt.want, got)
			}
		})
	}
}
