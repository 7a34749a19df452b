package panel_test

import (
	"testing"

	"github.com/ocn-sys/ocn/internal/panel"
)

func TestStore(t *testing.T) {
	s := panel.NewStore("a", "b", "a")

	if s.Len() != 2 {
		t.Fatalf("Len = %d, want 2", s.Len())
	}
	if got := s.IDs(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("IDs = %v", got)
	}
	if s.Get("missing") != nil {
		t.Error("Get of unknown id should be nil")
	}
	if s.Ensure("c") != s.Get("c") {
		t.Error("Ensure should register the panel")
	}
}

func TestSetMarkupVersion(t *testing.T) {
	p := panel.NewStore("p").Get("p")
	p.SetMarkup("<p>a</p>")
	p.SetMarkup("<p>b</p>")

	if p.Version != 2 {
		t.Errorf("Version = %d, want 2", p.Version)
	}
	if p.Markup != "<p>b</p>" {
		t.Errorf("Markup = %q", p.Markup)
	}
}

func TestTakeScroll(t *testing.T) {
	p := &panel.Panel{Scroll: panel.ScrollBottom}

	if got := p.TakeScroll(); got != panel.ScrollBottom {
		t.Errorf("TakeScroll = %v, want bottom", got)
	}
	if got := p.TakeScroll(); got != panel.ScrollNone {
		t.Errorf("second TakeScroll = %v, want none", got)
	}
}
