// Package storage defines read access to the course content root.
package storage

import "github.com/starford/learnclj/internal/models"

// Provider is the interface for content file access. All paths are
// slash-separated and relative to the content root.
type Provider interface {
	// List returns metadata for every content file under the root, in
	// lexical walk order.
	List() ([]models.FileMeta, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Ext returns the content file extension, including the dot.
	Ext() string
}
