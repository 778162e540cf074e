package outline

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"checklist-cli/internal/model"
)

func idp(n int64) *int64      { return &n }
func pidp(f float64) *float64 { return &f }

func parent(title string) model.ChecklistItem {
	return model.ChecklistItem{Title: title, Level: 0}
}
func child(title string) model.ChecklistItem {
	return model.ChecklistItem{Title: title, Level: 1}
}

// shape renders the list as "title@order[^parent]" tokens for compact assertions.
func shape(items []model.ChecklistItem) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		s := fmt.Sprintf("%s@%g", it.Title, it.OrderIndex)
		if it.ParentID != nil {
			s += fmt.Sprintf("^%g", *it.ParentID)
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " ")
}

// assertEncoding checks the two-level encoding holds for the whole list.
func assertEncoding(t *testing.T, items []model.ChecklistItem) {
	t.Helper()
	parentNum := 0
	for i, it := range items {
		switch it.Level {
		case 0:
			parentNum++
			if it.OrderIndex != float64(parentNum) || it.ParentID != nil {
				t.Fatalf("item %d (%s): parent encoding broken: order=%g parent=%v", i, it.Title, it.OrderIndex, it.ParentID)
			}
		case 1:
			if parentNum == 0 {
				t.Fatalf("item %d (%s): child without parent", i, it.Title)
			}
			if it.ParentID == nil || *it.ParentID != float64(parentNum) {
				t.Fatalf("item %d (%s): parent_id=%v want %d", i, it.Title, it.ParentID, parentNum)
			}
			if it.OrderIndex <= float64(parentNum) || it.OrderIndex >= float64(parentNum+1) {
				t.Fatalf("item %d (%s): child order %g outside (%d,%d)", i, it.Title, it.OrderIndex, parentNum, parentNum+1)
			}
		default:
			t.Fatalf("item %d (%s): level %d", i, it.Title, it.Level)
		}
		if i > 0 && items[i-1].OrderIndex >= it.OrderIndex {
			t.Fatalf("order_index not strictly increasing at %d: %g >= %g", i, items[i-1].OrderIndex, it.OrderIndex)
		}
	}
}

func TestMove_ParentToTopKeepsChildGroup(t *testing.T) {
	ed := NewEditor([]model.ChecklistItem{
		{ID: idp(1), Title: "P1", OrderIndex: 1, Level: 0},
		{ID: idp(2), Title: "C1", OrderIndex: 1.1, Level: 1, ParentID: pidp(1)},
		{ID: idp(3), Title: "P2", OrderIndex: 2, Level: 0},
	})
	if err := ed.Move(2, 0); err != nil {
		t.Fatalf("move: %v", err)
	}
	got := ed.Items()
	if s := shape(got); s != "P2@1 P1@2 C1@2.1^2" {
		t.Fatalf("unexpected shape: %s", s)
	}
	if *got[0].ID != 3 || *got[1].ID != 1 || *got[2].ID != 2 {
		t.Fatalf("ids not preserved: %+v", got)
	}
}

func TestMove_NeighbourRules(t *testing.T) {
	cases := []struct {
		name     string
		from, to int
		want     string
	}{
		// Start: A@1 a1@1.1 B@2 C@3
		{name: "first slot becomes parent", from: 1, to: 0, want: "a1@1 A@2 B@3 C@4"},
		{name: "after parent before child joins group", from: 3, to: 1, want: "A@1 C@1.1^1 a1@1.2^1 B@2"},
		{name: "after child joins that group", from: 3, to: 2, want: "A@1 a1@1.1^1 C@1.2^1 B@2"},
		{name: "between parents becomes parent", from: 1, to: 2, want: "A@1 B@2 a1@3 C@4"},
		{name: "after last parent becomes its child", from: 1, to: 3, want: "A@1 B@2 C@3 a1@3.1^3"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ed := NewEditor([]model.ChecklistItem{parent("A"), child("a1"), parent("B"), parent("C")})
			if err := ed.Move(tc.from, tc.to); err != nil {
				t.Fatalf("move: %v", err)
			}
			if s := shape(ed.Items()); s != tc.want {
				t.Fatalf("got %s\nwant %s", s, tc.want)
			}
			assertEncoding(t, ed.Items())
		})
	}
}

func TestMove_ChildAfterChildJoinsGroup(t *testing.T) {
	ed := NewEditor([]model.ChecklistItem{parent("A"), child("a1"), child("a2"), parent("B"), child("b1")})
	// b1 dropped right after a1 (predecessor a1 is a child of A).
	if err := ed.Move(4, 2); err != nil {
		t.Fatalf("move: %v", err)
	}
	if s := shape(ed.Items()); s != "A@1 a1@1.1^1 b1@1.2^1 a2@1.3^1 B@2" {
		t.Fatalf("unexpected shape: %s", s)
	}
}

func TestMove_ParentCascadesChildrenInOrder(t *testing.T) {
	ed := NewEditor([]model.ChecklistItem{
		parent("A"), child("a1"), child("a2"), child("a3"),
		parent("B"), parent("C"),
	})
	// Drop A between B and C.
	if err := ed.Move(0, 4); err != nil {
		t.Fatalf("move: %v", err)
	}
	got := ed.Items()
	if s := shape(got); s != "B@1 A@2 a1@2.1^2 a2@2.2^2 a3@2.3^2 C@3" {
		t.Fatalf("unexpected shape: %s", s)
	}
	assertEncoding(t, got)
}

func TestMove_ParentIntoOwnGroupStaysParent(t *testing.T) {
	ed := NewEditor([]model.ChecklistItem{parent("A"), child("a1"), child("a2"), parent("B")})
	if err := ed.Move(0, 2); err != nil {
		t.Fatalf("move: %v", err)
	}
	if s := shape(ed.Items()); s != "A@1 a1@1.1^1 a2@1.2^1 B@2" {
		t.Fatalf("unexpected shape: %s", s)
	}
}

func TestMove_SameIndexIsNoop(t *testing.T) {
	ed := NewEditor([]model.ChecklistItem{parent("A"), child("a1")})
	before := ed.Items()
	if err := ed.Move(1, 1); err != nil {
		t.Fatalf("move: %v", err)
	}
	if diff := cmp.Diff(before, ed.Items()); diff != "" {
		t.Fatalf("items changed (-before +after):\n%s", diff)
	}
}

func TestMove_OutOfRange(t *testing.T) {
	ed := NewEditor([]model.ChecklistItem{parent("A")})
	err := ed.Move(0, 5)
	var ie *IndexError
	if !errors.As(err, &ie) {
		t.Fatalf("expected IndexError, got %v", err)
	}
	if ie.Index != 5 || ie.Len != 1 {
		t.Fatalf("unexpected error fields: %+v", ie)
	}
	if err := ed.Move(-1, 0); err == nil {
		t.Fatalf("expected error for negative index")
	}
}

func TestMove_RandomSequencesKeepEncoding(t *testing.T) {
	ed := NewEditor([]model.ChecklistItem{
		parent("A"), child("a1"), child("a2"),
		parent("B"), parent("C"), child("c1"), parent("D"),
	})
	moves := [][2]int{{0, 6}, {3, 1}, {6, 0}, {2, 5}, {4, 4}, {5, 1}, {1, 6}, {0, 3}}
	for _, mv := range moves {
		if err := ed.Move(mv[0], mv[1]); err != nil {
			t.Fatalf("move %v: %v", mv, err)
		}
		items := ed.Items()
		assertEncoding(t, items)
		if len(items) != 7 {
			t.Fatalf("move %v changed item count: %d", mv, len(items))
		}
	}
}

func TestRecalculate_Idempotent(t *testing.T) {
	ed := NewEditor([]model.ChecklistItem{parent("A"), child("a1"), parent("B"), child("b1"), child("b2")})
	first := ed.Items()
	ed.Recalculate()
	if diff := cmp.Diff(first, ed.Items()); diff != "" {
		t.Fatalf("second pass changed items:\n%s", diff)
	}
}

func TestRecalculate_LeadingChildIsPromoted(t *testing.T) {
	ed := NewEditor([]model.ChecklistItem{child("orphan"), child("x"), parent("B")})
	if s := shape(ed.Items()); s != "orphan@1 x@1.1^1 B@2" {
		t.Fatalf("unexpected shape: %s", s)
	}
}

func TestRecalculate_WideGroupsStayUnique(t *testing.T) {
	items := []model.ChecklistItem{parent("A")}
	for i := 1; i <= 12; i++ {
		items = append(items, child(fmt.Sprintf("a%d", i)))
	}
	items = append(items, parent("B"))
	ed := NewEditor(items)
	got := ed.Items()
	assertEncoding(t, got)

	if got[1].OrderIndex != 1.01 || got[10].OrderIndex != 1.1 || got[12].OrderIndex != 1.12 {
		t.Fatalf("unexpected wide keys: %g %g %g", got[1].OrderIndex, got[10].OrderIndex, got[12].OrderIndex)
	}
	seen := map[float64]bool{}
	for _, it := range got {
		if seen[it.OrderIndex] {
			t.Fatalf("duplicate order_index %g", it.OrderIndex)
		}
		seen[it.OrderIndex] = true
	}
}

func TestRemove_ParentTakesChildren(t *testing.T) {
	ed := NewEditor([]model.ChecklistItem{parent("A"), child("a1"), child("a2"), parent("B"), child("b1")})
	if err := ed.Remove(0); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if s := shape(ed.Items()); s != "B@1 b1@1.1^1" {
		t.Fatalf("unexpected shape: %s", s)
	}
}

func TestRemove_ChildRenumbersSiblings(t *testing.T) {
	ed := NewEditor([]model.ChecklistItem{parent("A"), child("a1"), child("a2"), child("a3")})
	if err := ed.Remove(1); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if s := shape(ed.Items()); s != "A@1 a2@1.1^1 a3@1.2^1" {
		t.Fatalf("unexpected shape: %s", s)
	}
}

func TestPromote_ChildBecomesParent(t *testing.T) {
	ed := NewEditor([]model.ChecklistItem{parent("A"), child("a1"), child("a2"), parent("B")})
	if err := ed.Promote(1); err != nil {
		t.Fatalf("promote: %v", err)
	}
	if s := shape(ed.Items()); s != "A@1 a1@2 a2@2.1^2 B@3" {
		t.Fatalf("unexpected shape: %s", s)
	}
}

func TestDemote(t *testing.T) {
	ed := NewEditor([]model.ChecklistItem{parent("A"), child("a1"), parent("B"), child("b1")})
	if err := ed.Demote(2); err != nil {
		t.Fatalf("demote: %v", err)
	}
	if s := shape(ed.Items()); s != "A@1 a1@1.1^1 B@1.2^1 b1@1.3^1" {
		t.Fatalf("unexpected shape: %s", s)
	}

	if err := ed.Demote(1); !errors.Is(err, ErrMaxDepth) {
		t.Fatalf("expected ErrMaxDepth, got %v", err)
	}
	if err := ed.Demote(0); !errors.Is(err, ErrNoParentAbove) {
		t.Fatalf("expected ErrNoParentAbove, got %v", err)
	}
}

func TestAddVariants(t *testing.T) {
	ed := NewEditor([]model.ChecklistItem{parent("A"), child("a1"), parent("B")})

	if i := ed.Add(model.ChecklistItem{ID: idp(99), Title: "C"}); i != 3 {
		t.Fatalf("add index = %d", i)
	}
	if it, _ := ed.Item(3); it.ID != nil {
		t.Fatalf("new item kept an id: %v", *it.ID)
	}

	// Sub-item on a child lands in that child's group.
	if _, err := ed.AddSubItem(1, model.ChecklistItem{Title: "a2"}); err != nil {
		t.Fatalf("add-sub: %v", err)
	}
	if _, err := ed.AddSubItem(3, model.ChecklistItem{Title: "b1"}); err != nil {
		t.Fatalf("add-sub: %v", err)
	}
	if s := shape(ed.Items()); s != "A@1 a1@1.1^1 a2@1.2^1 B@2 b1@2.1^2 C@3" {
		t.Fatalf("after add-sub: %s", s)
	}

	if _, err := ed.AddAbove(1, model.ChecklistItem{Title: "a0"}); err != nil {
		t.Fatalf("add-above: %v", err)
	}
	if _, err := ed.AddBelow(0, model.ChecklistItem{Title: "A2"}); err != nil {
		t.Fatalf("add-below: %v", err)
	}
	if s := shape(ed.Items()); s != "A@1 a0@1.1^1 a1@1.2^1 a2@1.3^1 A2@2 B@3 b1@3.1^3 C@4" {
		t.Fatalf("after add-above/below: %s", s)
	}
	assertEncoding(t, ed.Items())

	if _, err := ed.AddAbove(42, model.ChecklistItem{}); err == nil {
		t.Fatalf("expected index error")
	}
}

func TestDuplicate(t *testing.T) {
	ed := NewEditor([]model.ChecklistItem{
		{ID: idp(1), Title: "A", Level: 0, SampleImages: model.SampleImages{{ID: idp(5), URL: "/a.png"}}},
		{ID: idp(2), Title: "a1", Level: 1},
		{ID: idp(3), Title: "B", Level: 0},
	})
	at, err := ed.Duplicate(0)
	if err != nil {
		t.Fatalf("duplicate: %v", err)
	}
	if at != 2 {
		t.Fatalf("duplicate of parent should land after its group, got %d", at)
	}
	cp, _ := ed.Item(at)
	if cp.Title != "A (Copy)" || cp.ID != nil || cp.SampleImages[0].ID != nil || cp.SampleImages[0].URL != "/a.png" {
		t.Fatalf("unexpected copy: %+v", cp)
	}
	if s := shape(ed.Items()); s != "A@1 a1@1.1^1 A (Copy)@2 B@3" {
		t.Fatalf("unexpected shape: %s", s)
	}

	if _, err := ed.Duplicate(1); err != nil {
		t.Fatalf("duplicate child: %v", err)
	}
	if s := shape(ed.Items()); s != "A@1 a1@1.1^1 a1 (Copy)@1.2^1 A (Copy)@2 B@3" {
		t.Fatalf("unexpected shape: %s", s)
	}
}

func TestMoveUpDownBounds(t *testing.T) {
	ed := NewEditor([]model.ChecklistItem{parent("A"), parent("B")})
	if err := ed.MoveUp(0); err != nil {
		t.Fatalf("move-up at top: %v", err)
	}
	if err := ed.MoveDown(1); err != nil {
		t.Fatalf("move-down at bottom: %v", err)
	}
	if s := shape(ed.Items()); s != "A@1 B@2" {
		t.Fatalf("bounds moves changed list: %s", s)
	}
	if err := ed.MoveUp(1); err != nil {
		t.Fatalf("move-up: %v", err)
	}
	if s := shape(ed.Items()); s != "B@1 A@2" {
		t.Fatalf("unexpected shape: %s", s)
	}
}

func TestOutlineNumber(t *testing.T) {
	ed := NewEditor([]model.ChecklistItem{parent("A"), child("a1"), child("a2"), parent("B")})
	want := []string{"1", "1.1", "1.2", "2"}
	for i, w := range want {
		got, err := ed.OutlineNumber(i)
		if err != nil {
			t.Fatalf("outline %d: %v", i, err)
		}
		if got != w {
			t.Fatalf("outline %d = %q want %q", i, got, w)
		}
	}
}

func TestUpdateKeepsStructure(t *testing.T) {
	ed := NewEditor([]model.ChecklistItem{parent("A"), child("a1")})
	err := ed.Update(1, func(it *model.ChecklistItem) {
		it.Title = "renamed"
		it.Level = 0
		it.OrderIndex = 42
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if s := shape(ed.Items()); s != "A@1 renamed@1.1^1" {
		t.Fatalf("unexpected shape: %s", s)
	}
}
