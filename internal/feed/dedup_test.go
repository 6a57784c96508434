package feed

import (
	"testing"
	"time"
	"vinolog/backend/internal/models"
)

func TestDeduplicateCollapsesSharedCopies(t *testing.T) {
	root := entryAt(10, 1, 2*time.Minute)
	copy1 := entryAt(11, 2, time.Minute)
	copy1.RootEntryID = uintPtr(10)
	copy2 := entryAt(12, 3, time.Minute)
	copy2.RootEntryID = uintPtr(10)
	other := entryAt(20, 4, 3*time.Minute)

	out := Deduplicate([]models.Entry{copy1, root, copy2, other})
	if len(out) != 2 {
		t.Fatalf("want 2 logical entries, got %d", len(out))
	}
}

func TestDeduplicatePrefersCanonicalRoot(t *testing.T) {
	// The copy arrives before the root in the window; the root must still win.
	root := entryAt(10, 1, 2*time.Minute)
	cp := entryAt(11, 2, time.Minute)
	cp.RootEntryID = uintPtr(10)

	out := Deduplicate([]models.Entry{cp, root})
	if len(out) != 1 {
		t.Fatalf("want 1 entry, got %d", len(out))
	}
	if out[0].ID != 10 {
		t.Fatalf("canonical root should survive: want id=10 got id=%d", out[0].ID)
	}
}

func TestDeduplicateFirstCopyWinsWithoutRoot(t *testing.T) {
	// The root row fell outside the window; among copies, input order decides.
	cp1 := entryAt(11, 2, time.Minute)
	cp1.RootEntryID = uintPtr(10)
	cp2 := entryAt(12, 3, time.Minute)
	cp2.RootEntryID = uintPtr(10)

	out := Deduplicate([]models.Entry{cp1, cp2})
	if len(out) != 1 {
		t.Fatalf("want 1 entry, got %d", len(out))
	}
	if out[0].ID != 11 {
		t.Fatalf("first encountered copy should survive: want id=11 got id=%d", out[0].ID)
	}
}

func TestDeduplicateSortsNewestFirst(t *testing.T) {
	a := entryAt(1, 1, 3*time.Hour)
	b := entryAt(2, 2, time.Hour)
	c := entryAt(3, 3, 2*time.Hour)

	out := Deduplicate([]models.Entry{a, b, c})
	want := []uint{2, 3, 1}
	for i, id := range want {
		if out[i].ID != id {
			t.Fatalf("position %d: want id=%d got id=%d", i, id, out[i].ID)
		}
	}
}

func TestDeduplicateEmptyInput(t *testing.T) {
	out := Deduplicate(nil)
	if len(out) != 0 {
		t.Fatalf("want empty output, got %d rows", len(out))
	}
}
