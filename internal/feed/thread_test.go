package feed

import (
	"context"
	"testing"
	"time"
	"vinolog/backend/internal/logger"
	"vinolog/backend/internal/models"

	"gorm.io/gorm"
)

func commentAt(id, entryID, userID uint, body string, parent *uint, age time.Duration) models.Comment {
	c := models.Comment{
		EntryID:         entryID,
		UserID:          userID,
		ParentCommentID: parent,
		Body:            body,
	}
	c.ID = id
	c.CreatedAt = testEpoch.Add(-age)
	return c
}

func TestThreadGroupsRepliesUnderParents(t *testing.T) {
	store := &fakeStore{
		edges: []models.UserRelation{accepted(1, 2)},
		comments: map[uint][]models.Comment{
			1: {
				commentAt(10, 1, 2, "first", nil, 3*time.Minute),
				commentAt(11, 1, 3, "reply to first", uintPtr(10), 2*time.Minute),
				commentAt(12, 1, 2, "second", nil, time.Minute),
			},
		},
		profiles: map[uint]Profile{
			2: {ID: 2, DisplayName: "maria"},
			3: {ID: 3, DisplayName: "jo"},
		},
	}
	svc := newTestService(store)
	entry := entryAt(1, 2, time.Hour)

	thread, err := svc.Thread(context.Background(), 1, entry)
	if err != nil {
		t.Fatalf("Thread: %v", err)
	}
	if len(thread) != 2 {
		t.Fatalf("want 2 top-level comments, got %d", len(thread))
	}
	if thread[0].ID != 10 || thread[1].ID != 12 {
		t.Fatalf("top-level order: want=[10 12] got=[%d %d]", thread[0].ID, thread[1].ID)
	}
	if len(thread[0].Replies) != 1 || thread[0].Replies[0].ID != 11 {
		t.Fatalf("reply 11 should sit under comment 10: %+v", thread[0].Replies)
	}
	if thread[0].Author == nil || thread[0].Author.DisplayName != "maria" {
		t.Fatalf("author missing on comment 10: %+v", thread[0].Author)
	}
	if len(thread[1].Replies) != 0 {
		t.Fatalf("comment 12 should have no replies, got %d", len(thread[1].Replies))
	}
}

func TestThreadRedactsDeletedComments(t *testing.T) {
	softDeleted := commentAt(10, 1, 2, "rude remark", nil, 2*time.Minute)
	softDeleted.DeletedAt = gorm.DeletedAt{Time: testEpoch, Valid: true}
	legacyDeleted := commentAt(11, 1, 2, models.DeletedCommentBody, nil, time.Minute)

	store := &fakeStore{
		edges: []models.UserRelation{accepted(1, 2)},
		comments: map[uint][]models.Comment{
			1: {
				softDeleted,
				commentAt(12, 1, 3, "reply survives", uintPtr(10), 90*time.Second),
				legacyDeleted,
			},
		},
		profiles: map[uint]Profile{3: {ID: 3, DisplayName: "jo"}},
	}
	svc := newTestService(store)

	thread, err := svc.Thread(context.Background(), 1, entryAt(1, 2, time.Hour))
	if err != nil {
		t.Fatalf("Thread: %v", err)
	}
	if len(thread) != 2 {
		t.Fatalf("deleted comments keep their slot: want=2 got=%d", len(thread))
	}
	for _, tc := range thread {
		if !tc.Deleted {
			t.Errorf("comment %d should read deleted", tc.ID)
		}
		if tc.Body != models.DeletedCommentBody {
			t.Errorf("comment %d body: want=%q got=%q", tc.ID, models.DeletedCommentBody, tc.Body)
		}
		if tc.Author != nil {
			t.Errorf("comment %d should carry no author", tc.ID)
		}
	}
	if len(thread[0].Replies) != 1 || thread[0].Replies[0].Body != "reply survives" {
		t.Fatalf("reply under deleted parent lost: %+v", thread[0].Replies)
	}
}

func TestThreadDropsRepliesToReplies(t *testing.T) {
	store := &fakeStore{
		edges: []models.UserRelation{accepted(1, 2)},
		comments: map[uint][]models.Comment{
			1: {
				commentAt(10, 1, 2, "top", nil, 3*time.Minute),
				commentAt(11, 1, 3, "reply", uintPtr(10), 2*time.Minute),
				commentAt(12, 1, 2, "reply to reply", uintPtr(11), time.Minute),
			},
		},
	}
	svc := newTestService(store)

	thread, err := svc.Thread(context.Background(), 1, entryAt(1, 2, time.Hour))
	if err != nil {
		t.Fatalf("Thread: %v", err)
	}
	if len(thread) != 1 {
		t.Fatalf("want 1 top-level comment, got %d", len(thread))
	}
	if len(thread[0].Replies) != 1 {
		t.Fatalf("want exactly the first-level reply, got %d", len(thread[0].Replies))
	}
	if len(thread[0].Replies[0].Replies) != 0 {
		t.Fatal("nesting must stop at one level")
	}
}

func TestThreadDeniedViewerGetsEmptyThread(t *testing.T) {
	entry := entryAt(1, 2, time.Hour)
	entry.CommentsPrivacy = strPtr("private")

	store := &fakeStore{
		edges: []models.UserRelation{accepted(1, 2)},
		comments: map[uint][]models.Comment{
			1: {commentAt(10, 1, 2, "secret", nil, time.Minute)},
		},
	}
	svc := newTestService(store)

	thread, err := svc.Thread(context.Background(), 1, entry)
	if err != nil {
		t.Fatalf("denied thread must not error: %v", err)
	}
	if thread == nil || len(thread) != 0 {
		t.Fatalf("want empty thread, got %v", thread)
	}
}

func TestReactionSummaryFor(t *testing.T) {
	store := &fakeStore{
		edges: []models.UserRelation{accepted(1, 2)},
		reactions: map[uint][]models.Reaction{
			1: {
				{EntryID: 1, UserID: 1, Emoji: "🍷"},
				{EntryID: 1, UserID: 1, Emoji: "👍"},
				{EntryID: 1, UserID: 3, Emoji: "🍷"},
			},
		},
	}
	svc := newTestService(store)

	sum, err := svc.ReactionSummaryFor(context.Background(), 1, entryAt(1, 2, time.Hour))
	if err != nil {
		t.Fatalf("ReactionSummaryFor: %v", err)
	}
	if sum.Total != 3 {
		t.Errorf("total: want=3 got=%d", sum.Total)
	}
	if sum.Counts["🍷"] != 2 || sum.Counts["👍"] != 1 {
		t.Errorf("counts wrong: %v", sum.Counts)
	}
	if len(sum.Mine) != 2 {
		t.Errorf("viewer's reactions: want=2 got=%v", sum.Mine)
	}
}

func TestReactionSummaryForDeniedViewer(t *testing.T) {
	entry := entryAt(1, 2, time.Hour)
	entry.ReactionPrivacy = strPtr("private")

	store := &fakeStore{
		edges: []models.UserRelation{accepted(1, 2)},
		reactions: map[uint][]models.Reaction{
			1: {{EntryID: 1, UserID: 3, Emoji: "🍷"}},
		},
	}
	svc := NewService(store, &fakeSigner{}, logger.NewNop())

	sum, err := svc.ReactionSummaryFor(context.Background(), 1, entry)
	if err != nil {
		t.Fatalf("denied summary must not error: %v", err)
	}
	if sum.Total != 0 || len(sum.Counts) != 0 || len(sum.Mine) != 0 {
		t.Fatalf("want empty summary, got %+v", sum)
	}
}
