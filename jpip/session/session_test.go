package session

import (
	"testing"

	"github.com/cocosip/jpeg2000-jpip/jpip/cache"
)

func TestRegistry_CreateAssignsUniqueChannelIDs(t *testing.T) {
	r := NewRegistry()
	s1, err := r.Create("scan1")
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	s2, err := r.Create("scan1")
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if s1.ChannelID == s2.ChannelID {
		t.Fatal("expected distinct channel IDs for separate sessions")
	}
}

func TestRegistry_ResolveUnknownChannelFails(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Resolve("does-not-exist"); err == nil {
		t.Fatal("expected resolving an unknown channel to fail")
	}
}

func TestRegistry_CloseFlushesCachesAndDeregisters(t *testing.T) {
	r := NewRegistry()
	s, _ := r.Create("scan1")
	s.ClientCache.Add(cache.Key{ImageID: "scan1", Class: "TILE", BinID: 0}, []byte("data"), 0, true)

	r.Close(s.ChannelID)

	if _, err := r.Resolve(s.ChannelID); err == nil {
		t.Fatal("expected resolving a closed session's channel to fail")
	}
	if r.Len() != 0 {
		t.Fatalf("expected registry empty after close, got %d", r.Len())
	}
}
