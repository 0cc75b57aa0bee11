// Package gitstoretest provides an in-memory gitstore.Store for tests that
// need a Git object store without a real repository on disk.
package gitstoretest

import (
	"fmt"

	"github.com/go-git/go-git/v5/plumbing/filemode"

	"github.com/ksqsf/rockmore-git/internal/coreino"
	"github.com/ksqsf/rockmore-git/internal/gitstore"
)

// Blob is a fake blob object, keyed by oid in a Fake store.
type Blob struct {
	Content []byte
}

// Tree is a fake tree object: an ordered list of named children.
type Tree struct {
	Entries []gitstore.TreeEntry
}

// Fake is an in-memory gitstore.Store built by hand for unit tests.
type Fake struct {
	Root  coreino.Oid
	Trees map[coreino.Oid]Tree
	Blobs map[coreino.Oid]Blob
}

// New returns an empty Fake with the given root tree oid.
func New(root coreino.Oid) *Fake {
	return &Fake{
		Root:  root,
		Trees: make(map[coreino.Oid]Tree),
		Blobs: make(map[coreino.Oid]Blob),
	}
}

// AddTree registers a tree and its entries.
func (f *Fake) AddTree(oid coreino.Oid, entries ...gitstore.TreeEntry) {
	f.Trees[oid] = Tree{Entries: entries}
}

// AddBlob registers a blob's content.
func (f *Fake) AddBlob(oid coreino.Oid, content []byte) {
	f.Blobs[oid] = Blob{Content: content}
}

// BlobEntry is a convenience constructor for a regular-file TreeEntry.
func BlobEntry(name string, oid coreino.Oid) gitstore.TreeEntry {
	return gitstore.TreeEntry{Name: name, Kind: gitstore.KindBlob, Oid: oid, Mode: filemode.Regular}
}

// TreeEntryOf is a convenience constructor for a subdirectory TreeEntry.
func TreeEntryOf(name string, oid coreino.Oid) gitstore.TreeEntry {
	return gitstore.TreeEntry{Name: name, Kind: gitstore.KindTree, Oid: oid, Mode: filemode.Dir}
}

// OtherEntry is a convenience constructor for a non-blob/tree TreeEntry
// (symlink, submodule, ...), which the materializer is expected to skip.
func OtherEntry(name string, oid coreino.Oid) gitstore.TreeEntry {
	return gitstore.TreeEntry{Name: name, Kind: gitstore.KindOther, Oid: oid, Mode: filemode.Symlink}
}

func (f *Fake) RootOid() coreino.Oid {
	return f.Root
}

func (f *Fake) ListTree(oid coreino.Oid) ([]gitstore.TreeEntry, error) {
	t, ok := f.Trees[oid]
	if !ok {
		return nil, fmt.Errorf("gitstoretest: no such tree %s", oid)
	}
	return t.Entries, nil
}

func (f *Fake) BlobSize(oid coreino.Oid) (int64, error) {
	b, ok := f.Blobs[oid]
	if !ok {
		return 0, fmt.Errorf("gitstoretest: no such blob %s", oid)
	}
	return int64(len(b.Content)), nil
}

func (f *Fake) ReadBlob(oid coreino.Oid) ([]byte, error) {
	b, ok := f.Blobs[oid]
	if !ok {
		return nil, fmt.Errorf("gitstoretest: no such blob %s", oid)
	}
	out := make([]byte, len(b.Content))
	copy(out, b.Content)
	return out, nil
}

var _ gitstore.Store = (*Fake)(nil)
