package corefs

import "github.com/ksqsf/rockmore-git/internal/coreino"

// openDirtyFile is the handle-lifecycle open transition (C5): it shares a
// single host handle across all kernel opens of a DirtyFile. Callers must
// hold f.mu and must have already checked e.Kind == KindDirtyFile.
func (f *FS) openDirtyFile(ino coreino.Ino, e *coreino.Entry) error {
	if e.Handle != nil {
		e.Refcnt++
		return nil
	}

	prefix, ok := f.reg.Prefix(ino)
	if !ok {
		panic("corefs: openDirtyFile called on an inode missing from the registry")
	}

	file, err := f.dir.OpenFile(prefix)
	if err != nil {
		return errIO(err)
	}
	e.Handle = file
	e.Refcnt = 1
	return nil
}

// releaseDirtyFile is the handle-lifecycle release transition (C5): refcnt
// is clamped at zero, defensive against spurious releases (spec §4.5).
func (f *FS) releaseDirtyFile(e *coreino.Entry) error {
	if e.Refcnt > 0 {
		e.Refcnt--
	}
	if e.Refcnt == 0 && e.Handle != nil {
		err := e.Handle.Close()
		e.Handle = nil
		if err != nil {
			return errIO(err)
		}
	}
	return nil
}
