package corefs

import "github.com/ksqsf/rockmore-git/internal/coreino"

// Unlink removes a file child of parent.
func (f *FS) Unlink(parent coreino.Ino, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.doRemove(parent, name, false)
}

// Rmdir removes a directory child of parent.
func (f *FS) Rmdir(parent coreino.Ino, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.doRemove(parent, name, true)
}

// doRemove implements spec §4.7. Callers must hold f.mu.
func (f *FS) doRemove(parent coreino.Ino, name string, wantDir bool) error {
	pe, ok := f.reg.Get(parent)
	if !ok {
		return errNotFound()
	}
	if !pe.IsDirectory() {
		return errNotADirectory()
	}
	if !pe.HasChildren() {
		return errIO(nil)
	}

	childIno, ok := pe.Children().Get(name)
	if !ok {
		return errNotFound()
	}
	e, ok := f.reg.Get(childIno)
	if !ok {
		return errNotFound()
	}

	if e.IsDirectory() != wantDir {
		if wantDir {
			return errNotADirectory()
		}
		return errIsADirectory()
	}

	prefix, _ := f.reg.Prefix(parent)
	childPath := joinPath(prefix, name)

	// Detach first, for the duration of the operation, per spec §4.7 step 2.
	pe.Children().Remove(name)
	f.reg.Remove(childIno)

	switch e.Kind {
	case coreino.KindDirtyFile:
		if err := f.dir.Remove(childPath); err != nil {
			f.reinsert(pe, name, e)
			return errIO(err)
		}
		return nil
	case coreino.KindDirtyDir:
		if err := f.dir.Remove(childPath); err != nil {
			f.reinsert(pe, name, e)
			return errIO(err)
		}
		return nil
	case coreino.KindGitBlob, coreino.KindGitTree:
		// Ghost deletion: we cannot delete from a committed Git tree, so
		// the entry is simply dropped in-memory; it reappears on remount
		// (spec §4.7, §9).
		return nil
	default:
		panic("corefs: doRemove reached an entry of unknown kind")
	}
}

// reinsert re-links e into parent under name at a freshly allocated inode,
// per spec §4.7's acknowledged quirk: "inode number is not preserved across
// failure".
func (f *FS) reinsert(parent *coreino.Entry, name string, e *coreino.Entry) {
	newIno := f.reg.Add(e)
	parent.Children().Add(name, newIno)
}
