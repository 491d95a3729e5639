package searchtype

import (
	"errors"
	"testing"
)

func TestStaticRegistry_ResolveKnown(t *testing.T) {
	r := NewStaticRegistry()

	mode, exts, err := r.Resolve("video")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mode != ModeVideo {
		t.Fatalf("expected mode %d, got %d", ModeVideo, mode)
	}
	if len(exts) == 0 {
		t.Fatal("expected non-empty extension list for video")
	}
}

func TestStaticRegistry_ResolveBuiltinsHaveNoExtensions(t *testing.T) {
	r := NewStaticRegistry()

	for _, tag := range []string{"any", "directory", "tth"} {
		_, exts, err := r.Resolve(tag)
		if err != nil {
			t.Fatalf("resolve %q: unexpected error: %v", tag, err)
		}
		if exts != nil {
			t.Fatalf("expected nil extensions for %q, got %v", tag, exts)
		}
	}
}

func TestStaticRegistry_ResolveUnknown(t *testing.T) {
	r := NewStaticRegistry()

	_, _, err := r.Resolve("bogus")
	if !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}
