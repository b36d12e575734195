package core

import (
	_ "crypto/sha256"
	"fmt"

	"github.com/opencontainers/go-digest"
)

// ListOptions controls List.
type ListOptions struct {
	Policy     KeyPolicy // Key selection used when digesting payloads
	Digest     bool      // Compute a SHA-256 digest of each decoded payload
	LZ4        bool      // The archive file is an LZ4 frame holding the container
	BufferSize int       // Transfer buffer size; zero means DefaultBufferSize
}

// ListItem describes one member.
type ListItem struct {
	Entry
	Start  int64         // Absolute payload offset
	Digest digest.Digest // Empty unless requested
}

// List returns the members of the archive at input in table order, along
// with the parsed header.
func List(input string, opts ListOptions) (Header, []ListItem, error) {
	bufSize := opts.BufferSize
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}
	if err := checkBufferSize(bufSize); err != nil {
		return Header{}, nil, err
	}

	a, err := OpenArchive(input, opts.LZ4)
	if err != nil {
		return Header{}, nil, err
	}
	defer a.Close()

	items := make([]ListItem, len(a.Dir.Entries))
	buf := make([]byte, bufSize)
	for i, e := range a.Dir.Entries {
		items[i] = ListItem{Entry: e, Start: a.Dir.Start(e)}
		if !opts.Digest {
			continue
		}
		d := digest.SHA256.Digester()
		if _, err := copyTransformed(d.Hash(), a.Payload(e), int64(e.Size), DataKey(e.Name, opts.Policy), buf); err != nil {
			return Header{}, nil, fmt.Errorf("digest %s: %w", e.Name, err)
		}
		items[i].Digest = d.Digest()
	}
	return a.Dir.Header, items, nil
}
