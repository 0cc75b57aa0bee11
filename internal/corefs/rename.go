package corefs

import "github.com/ksqsf/rockmore-git/internal/coreino"

// Rename moves a child from oldParent/oldName to newParent/newName,
// preserving its inode number. Dirty variants also rename the underlying
// path; Git-backed entries are renamed purely in-memory and the original
// name reappears on remount (spec §4.6, §9).
func (f *FS) Rename(oldParent coreino.Ino, oldName string, newParent coreino.Ino, newName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	oldPe, ok := f.reg.Get(oldParent)
	if !ok {
		return errNotFound()
	}
	if !oldPe.IsDirectory() || !oldPe.HasChildren() {
		return errNotADirectory()
	}
	newPe, ok := f.reg.Get(newParent)
	if !ok {
		return errNotFound()
	}
	if !newPe.IsDirectory() || !newPe.HasChildren() {
		return errNotADirectory()
	}

	childIno, ok := oldPe.Children().Get(oldName)
	if !ok {
		return errNotFound()
	}
	e, ok := f.reg.Get(childIno)
	if !ok {
		return errNotFound()
	}

	if e.Kind == coreino.KindDirtyFile || e.Kind == coreino.KindDirtyDir {
		oldPrefix, _ := f.reg.Prefix(oldParent)
		newPrefix, _ := f.reg.Prefix(newParent)
		oldPath := joinPath(oldPrefix, oldName)
		newPath := joinPath(newPrefix, newName)
		if err := f.dir.Rename(oldPath, newPath); err != nil {
			return errIO(err)
		}
	}

	oldPe.Children().Remove(oldName)
	e.Name = newName
	e.Parent = newParent
	newPe.Children().Add(newName, childIno)

	return nil
}
