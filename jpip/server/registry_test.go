package server

import "testing"

func TestImageRegistry_RegisterAndLookup(t *testing.T) {
	r := NewImageRegistry()
	r.Register(Image{Name: "scan1", URL: "file:///scan1.jp2", Format: "jp2"})

	img, ok := r.Lookup("scan1")
	if !ok {
		t.Fatal("expected scan1 to be registered")
	}
	if img.Format != "jp2" {
		t.Fatalf("Format = %q, want jp2", img.Format)
	}
}

func TestImageRegistry_LookupMissingReturnsFalse(t *testing.T) {
	r := NewImageRegistry()
	if _, ok := r.Lookup("nope"); ok {
		t.Fatal("expected lookup of unregistered image to fail")
	}
}
