// Package track provides the track Request domain value.
package track

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// Request identifies an item within a collection.
// Collections map to directories on the media card and items to files within them.
type Request struct {
	Collection int // Collection (album) index
	Item       int // Item (track) index within the collection
}

// ID returns the item request identifier "<collection>/<item>.<ext>".
func (r Request) ID(ext string) string {
	return fmt.Sprintf("%d/%d.%s", r.Collection, r.Item, strings.TrimPrefix(ext, "."))
}

// String returns "collection/item".
func (r Request) String() string {
	return fmt.Sprintf("%d/%d", r.Collection, r.Item)
}

// ParseID parses an item request identifier produced by ID.
// The extension is returned without the leading dot.
func ParseID(id string) (Request, string, error) {
	dir, file, ok := strings.Cut(id, "/")
	if !ok {
		return Request{}, "", errors.Newf("invalid item id %q: missing collection separator", id)
	}
	dot := strings.IndexByte(file, '.')
	if dot < 0 || dot == len(file)-1 {
		return Request{}, "", errors.Newf("invalid item id %q: missing extension", id)
	}

	collection, ok := ParseIndex(dir)
	if !ok {
		return Request{}, "", errors.Newf("invalid item id %q: bad collection %q", id, dir)
	}
	item, ok := ParseIndex(file[:dot])
	if !ok {
		return Request{}, "", errors.Newf("invalid item id %q: bad item %q", id, file[:dot])
	}
	return Request{Collection: collection, Item: item}, file[dot+1:], nil
}

// ParseIndex accepts non-negative decimal names without sign or leading zeros.
func ParseIndex(name string) (int, bool) {
	if name == "" || (len(name) > 1 && name[0] == '0') {
		return 0, false
	}
	for i := 0; i < len(name); i++ {
		if name[i] < '0' || name[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(name)
	if err != nil {
		return 0, false
	}
	return n, true
}
