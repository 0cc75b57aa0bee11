package corefs

import "github.com/ksqsf/rockmore-git/internal/coreino"

// Dirent is one entry returned by ReadDir, addressed by 1-based cookie
// (spec §4.6: "the cookie is the 1-based index, not a byte offset").
type Dirent struct {
	Ino   coreino.Ino
	Name  string
	IsDir bool
}

// OpenDir ensures ino's children are materialized. Fails with
// NotADirectory on file variants.
func (f *FS) OpenDir(ino coreino.Ino) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	e, ok := f.reg.Get(ino)
	if !ok {
		return errNotFound()
	}
	if !e.IsDirectory() {
		return errNotADirectory()
	}
	return f.ensureListed(ino, e)
}

// ReadDir returns the children of ino in stable iteration order, starting
// at the given 1-based offset (0 means "from the start"). It requires
// OpenDir (or an equivalent ensure_listed call) to have already run.
func (f *FS) ReadDir(ino coreino.Ino, offset int) ([]Dirent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	e, ok := f.reg.Get(ino)
	if !ok {
		return nil, errNotFound()
	}
	if !e.IsDirectory() {
		return nil, errNotADirectory()
	}
	if !e.HasChildren() {
		return nil, errIO(nil)
	}

	names := e.Children().Names()
	if offset >= len(names) {
		return nil, nil
	}

	out := make([]Dirent, 0, len(names)-offset)
	for i := offset; i < len(names); i++ {
		name := names[i]
		childIno, _ := e.Children().Get(name)
		child, ok := f.reg.Get(childIno)
		if !ok {
			continue
		}
		out = append(out, Dirent{Ino: childIno, Name: name, IsDir: child.IsDirectory()})
	}
	return out, nil
}

// ReleaseDir is a no-op: the children cache is kept (spec §4.6).
func (f *FS) ReleaseDir(ino coreino.Ino) error {
	return nil
}
