package planner

import (
	"errors"
	"fmt"
	"testing"

	"github.com/porticus-lab/go-planner/canvas"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("page-%d", n)
	}
}

func TestPageStore_NewPageHasNoSideEffect(t *testing.T) {
	s := NewPageStore(sequentialIDs())
	a := s.NewPage()
	b := s.NewPage()

	if a.ID == b.ID {
		t.Fatal("NewPage returned duplicate ids")
	}
	if a.HasSnapshot() || a.Thumbnail != nil {
		t.Error("NewPage returned a page with content")
	}
	if s.Len() != 0 || s.Active() != -1 {
		t.Errorf("NewPage changed the store: len=%d active=%d", s.Len(), s.Active())
	}
}

func TestPageStore_AppendAndActivate(t *testing.T) {
	s := NewPageStore(sequentialIDs())
	for i := 0; i < 3; i++ {
		s.AppendAndActivate(s.NewPage())
		if s.Len() != i+1 {
			t.Fatalf("len = %d, want %d", s.Len(), i+1)
		}
		if s.Active() != i {
			t.Fatalf("active = %d, want %d", s.Active(), i)
		}
	}
	pages := s.Pages()
	for i, p := range pages {
		if want := fmt.Sprintf("page-%d", i+1); p.ID != want {
			t.Errorf("page %d id = %q, want %q", i, p.ID, want)
		}
	}
}

func TestPageStore_ReplaceAt(t *testing.T) {
	s := NewPageStore(sequentialIDs())
	s.AppendAndActivate(s.NewPage())
	s.AppendAndActivate(s.NewPage())

	snap := canvas.Snapshot(`{"version":1}`)
	thumb := []byte("thumb")
	if !s.ReplaceAt(0, snap, thumb) {
		t.Fatal("ReplaceAt(0) returned false")
	}
	p, _ := s.At(0)
	if p.ID != "page-1" || !p.Snapshot.Equal(snap) || string(p.Thumbnail) != "thumb" {
		t.Errorf("page 0 = %+v", p)
	}
	if other, _ := s.At(1); other.HasSnapshot() {
		t.Error("ReplaceAt touched another page")
	}

	for _, i := range []int{-1, 2} {
		if s.ReplaceAt(i, snap, thumb) {
			t.Errorf("ReplaceAt(%d) returned true", i)
		}
	}
}

func TestPageStore_SetActive(t *testing.T) {
	s := NewPageStore(sequentialIDs())
	s.AppendAndActivate(s.NewPage())
	s.AppendAndActivate(s.NewPage())

	if err := s.SetActive(0); err != nil {
		t.Fatal(err)
	}
	if s.Active() != 0 {
		t.Errorf("active = %d, want 0", s.Active())
	}
	if err := s.SetActive(5); !errors.Is(err, ErrPageOutOfRange) {
		t.Errorf("SetActive(5) err = %v, want ErrPageOutOfRange", err)
	}
	if s.Active() != 0 {
		t.Error("failed SetActive changed the active page")
	}
}

func TestPageStore_PagesIsACopy(t *testing.T) {
	s := NewPageStore(sequentialIDs())
	s.AppendAndActivate(s.NewPage())

	pages := s.Pages()
	pages[0].ID = "mutated"
	if p, _ := s.At(0); p.ID != "page-1" {
		t.Error("Pages exposed the store's backing slice")
	}
}
