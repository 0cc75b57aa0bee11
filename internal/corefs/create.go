package corefs

import (
	"time"

	"github.com/ksqsf/rockmore-git/internal/coreino"
)

// Create makes a new DirtyFile named name under parent, with the given
// mode, and returns its attributes and inode (spec §4.6). parent must
// already have cached children (the caller is expected to have looked it up
// or opened it first).
func (f *FS) Create(parent coreino.Ino, name string, mode uint32) (Attr, coreino.Ino, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	pe, ok := f.reg.Get(parent)
	if !ok {
		return Attr{}, 0, errNotFound()
	}
	if !pe.IsDirectory() {
		return Attr{}, 0, errNotADirectory()
	}
	if !pe.HasChildren() {
		return Attr{}, 0, errIO(nil)
	}
	if _, exists := pe.Children().Get(name); exists {
		return Attr{}, 0, errExists()
	}

	prefix, ok := f.reg.Prefix(parent)
	if !ok {
		panic("corefs: Create called on a parent missing from the registry")
	}
	childPath := joinPath(prefix, name)

	file, err := f.dir.CreateFileExclusive(childPath, modeToPerm(mode))
	if err != nil {
		return Attr{}, 0, errIO(err)
	}

	now := time.Now()
	e := &coreino.Entry{
		Name:   name,
		Parent: parent,
		Kind:   coreino.KindDirtyFile,
		Perm:   modeToPerm(mode),
		Handle: file,
		Refcnt: 1,
		Ctime:  now,
		Atime:  now,
		Mtime:  now,
	}
	childIno := f.reg.Add(e)
	pe.Children().Add(name, childIno)

	return f.buildAttr(childIno, e), childIno, nil
}

// Mkdir makes a new DirtyDir named name under parent, analogous to Create.
func (f *FS) Mkdir(parent coreino.Ino, name string, mode uint32) (Attr, coreino.Ino, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	pe, ok := f.reg.Get(parent)
	if !ok {
		return Attr{}, 0, errNotFound()
	}
	if !pe.IsDirectory() {
		return Attr{}, 0, errNotADirectory()
	}
	if !pe.HasChildren() {
		return Attr{}, 0, errIO(nil)
	}
	if _, exists := pe.Children().Get(name); exists {
		return Attr{}, 0, errExists()
	}

	prefix, ok := f.reg.Prefix(parent)
	if !ok {
		panic("corefs: Mkdir called on a parent missing from the registry")
	}
	childPath := joinPath(prefix, name)

	if err := f.dir.Mkdir(childPath, modeToPerm(mode)); err != nil {
		return Attr{}, 0, errIO(err)
	}

	now := time.Now()
	e := &coreino.Entry{
		Name:   name,
		Parent: parent,
		Kind:   coreino.KindDirtyDir,
		Perm:   modeToPerm(mode),
		Ctime:  now,
		Atime:  now,
		Mtime:  now,
	}
	childIno := f.reg.Add(e)
	pe.Children().Add(name, childIno)

	return f.buildAttr(childIno, e), childIno, nil
}
