// Package playlist provides the Collection domain entity and the media layout scan.
package playlist

import (
	"io/fs"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/osa030/kidbox/internal/domain/track"
)

// Collection represents one collection directory on the media card.
type Collection struct {
	Index int             // Collection index (directory name)
	Items []track.Request // Items found, in item order
}

// ItemIDs returns the request identifiers of all items.
func (c *Collection) ItemIDs(ext string) []string {
	ids := make([]string, len(c.Items))
	for i, r := range c.Items {
		ids[i] = r.ID(ext)
	}
	return ids
}

// Contiguous reports whether items are numbered 0..n-1 without gaps.
// Playback stops advancing at the first gap and restarts the collection.
func (c *Collection) Contiguous() bool {
	for i, r := range c.Items {
		if r.Item != i {
			return false
		}
	}
	return true
}

// Scan lists the collections under the root of fsys.
// Directories and files whose names are not plain indices are ignored.
// The extension must match exactly, as item ids are opened by exact name.
func Scan(fsys fs.FS, ext string) ([]Collection, error) {
	ext = "." + strings.TrimPrefix(ext, ".")

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, errors.Wrap(err, "failed to read media root")
	}

	collections := make([]Collection, 0)
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		idx, ok := track.ParseIndex(e.Name())
		if !ok {
			continue
		}

		files, err := fs.ReadDir(fsys, e.Name())
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read collection %s", e.Name())
		}

		c := Collection{Index: idx, Items: make([]track.Request, 0)}
		for _, f := range files {
			name := f.Name()
			if f.IsDir() || !strings.HasSuffix(name, ext) {
				continue
			}
			item, ok := track.ParseIndex(strings.TrimSuffix(name, ext))
			if !ok {
				continue
			}
			c.Items = append(c.Items, track.Request{Collection: idx, Item: item})
		}
		sort.Slice(c.Items, func(i, j int) bool { return c.Items[i].Item < c.Items[j].Item })
		collections = append(collections, c)
	}

	sort.Slice(collections, func(i, j int) bool { return collections[i].Index < collections[j].Index })
	return collections, nil
}
