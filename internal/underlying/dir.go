// Package underlying binds the spec's "underlying directory access layer"
// collaborator to the stdlib os.Root API: every method takes a path relative
// to the mounted scratch directory and resolves it through a directory
// handle, the openat-style semantics spec §1 calls for. See DESIGN.md for
// why this is implemented on the standard library rather than a third-party
// package.
package underlying

import (
	"io/fs"
	"os"
)

// Dir is a handle to the host directory backing all dirty state.
type Dir struct {
	root *os.Root
}

// Open opens path as the underlying directory handle for a mount.
func Open(path string) (*Dir, error) {
	root, err := os.OpenRoot(path)
	if err != nil {
		return nil, err
	}
	return &Dir{root: root}, nil
}

// Close releases the directory handle.
func (d *Dir) Close() error {
	return d.root.Close()
}

// List lists the direct children of relpath ("" for the directory root
// itself). It is the underlying-directory half of the directory
// materializer's merged listing (spec §4.3).
func (d *Dir) List(relpath string) ([]fs.DirEntry, error) {
	f, err := d.root.Open(nonEmpty(relpath))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.ReadDir(-1)
}

// Stat stats relpath.
func (d *Dir) Stat(relpath string) (fs.FileInfo, error) {
	return d.root.Stat(relpath)
}

// CreateFile creates (or truncates) a regular file at relpath with the given
// mode, for the blob-to-file promoter (spec §4.4); create() uses
// CreateFileExclusive instead. The returned file is open for reading and
// writing.
func (d *Dir) CreateFile(relpath string, mode os.FileMode) (*os.File, error) {
	return d.root.OpenFile(relpath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, mode)
}

// CreateFileExclusive creates a new regular file at relpath, failing if one
// already exists.
func (d *Dir) CreateFileExclusive(relpath string, mode os.FileMode) (*os.File, error) {
	return d.root.OpenFile(relpath, os.O_RDWR|os.O_CREATE|os.O_EXCL, mode)
}

// OpenFile opens an existing file at relpath for reading and writing, for
// the handle lifecycle (spec §4.5).
func (d *Dir) OpenFile(relpath string) (*os.File, error) {
	return d.root.OpenFile(relpath, os.O_RDWR, 0)
}

// Mkdir creates a directory at relpath.
func (d *Dir) Mkdir(relpath string, mode os.FileMode) error {
	return d.root.Mkdir(relpath, mode)
}

// Remove removes the file or empty directory at relpath.
func (d *Dir) Remove(relpath string) error {
	return d.root.Remove(relpath)
}

// Rename moves oldpath to newpath, both relative to the same directory
// handle.
func (d *Dir) Rename(oldpath, newpath string) error {
	return d.root.Rename(oldpath, newpath)
}

func nonEmpty(relpath string) string {
	if relpath == "" {
		return "."
	}
	return relpath
}
