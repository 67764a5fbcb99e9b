// Package server implements the JPIP server core: an image registry
// and a bounded priority request dispatcher that ties the codec,
// session, and delivery-stack packages together (spec.md §4.16).
package server

import "sync"

// Image is a registered source the server can serve JPIP requests
// against.
type Image struct {
	Name      string
	URL       string
	Format    string // e.g. "jp2", "jpx", "mj2"
	HTCapable bool
}

// ImageRegistry maps image names to their Image record.
type ImageRegistry struct {
	mu     sync.RWMutex
	images map[string]Image
}

// NewImageRegistry returns an empty ImageRegistry.
func NewImageRegistry() *ImageRegistry {
	return &ImageRegistry{images: make(map[string]Image)}
}

// Register adds or replaces an image entry.
func (r *ImageRegistry) Register(img Image) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.images[img.Name] = img
}

// Lookup returns the image registered under name.
func (r *ImageRegistry) Lookup(name string) (Image, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	img, ok := r.images[name]
	return img, ok
}
