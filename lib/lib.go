// Package lib provides archive extraction and creation for the IGA0 format.
// It re-exports the core package with the defaults the command line uses.
package lib

import (
	"igatool/pkg/core"
)

// Format constants re-exported from core
const (
	Magic      = core.Magic
	HeaderSize = core.HeaderSize
)

// Entry re-exported from core
type Entry = core.Entry

// ListItem re-exported from core
type ListItem = core.ListItem

// Error types re-exported from core
type (
	SignatureError = core.SignatureError
	RangeError     = core.RangeError
)

// Sentinel errors re-exported from core
var (
	ErrFormat      = core.ErrFormat
	ErrInvalidName = core.ErrInvalidName
	ErrTooLarge    = core.ErrTooLarge
)

func policy(force bool) core.KeyPolicy {
	if force {
		return core.KeyForced
	}
	return core.KeyByName
}

// Extract writes every member of archive into outputDir, which must exist.
// With force set every member is decoded with the script key.
func Extract(archive, outputDir string, force bool) error {
	return core.Extract(archive, core.ExtractOptions{OutputDir: outputDir, Policy: policy(force)})
}

// Compress writes a new archive holding inputs in order.
func Compress(archive string, inputs []string) error {
	return core.Compress(archive, inputs, core.CompressOptions{})
}

// List returns the members of archive, with SHA-256 digests of the decoded
// payloads when withDigest is set.
func List(archive string, withDigest, force bool) ([]ListItem, error) {
	_, items, err := core.List(archive, core.ListOptions{Policy: policy(force), Digest: withDigest})
	return items, err
}
