package corefs

import (
	"os"
	"time"

	"github.com/ksqsf/rockmore-git/internal/coreino"
	"github.com/ksqsf/rockmore-git/internal/gitstore"
)

// pending is a not-yet-registered child discovered during materialization.
type pending struct {
	name  string
	entry *coreino.Entry
}

// ensureListed is the directory materializer (C3). It is idempotent: once
// e's children are cached, subsequent calls are a no-op. Callers must hold
// f.mu.
func (f *FS) ensureListed(ino coreino.Ino, e *coreino.Entry) error {
	if e.HasChildren() {
		return nil
	}

	var items []pending
	switch e.Kind {
	case coreino.KindGitTree:
		gitItems, err := f.materializeGitTree(ino, e)
		if err != nil {
			return err
		}
		items = gitItems
	case coreino.KindDirtyDir:
		dirItems, err := f.materializeDirtyDir(ino)
		if err != nil {
			return err
		}
		items = dirItems
	default:
		return errNotADirectory()
	}

	f.installChildren(ino, items)
	return nil
}

// materializeGitTree builds the merged listing of a GitTree directory: the
// Git tree's own entries, plus whatever the underlying directory adds that
// Git doesn't already name (spec §4.3).
func (f *FS) materializeGitTree(ino coreino.Ino, e *coreino.Entry) ([]pending, error) {
	treeEntries, err := f.git.ListTree(e.Oid)
	if err != nil {
		return nil, errIO(err)
	}

	seen := make(map[string]bool, len(treeEntries))
	items := make([]pending, 0, len(treeEntries))
	now := time.Now()

	for _, te := range treeEntries {
		switch te.Kind {
		case gitstore.KindBlob:
			size, err := f.git.BlobSize(te.Oid)
			if err != nil {
				return nil, errIO(err)
			}
			perm, err := te.Mode.ToOSFileMode()
			if err != nil {
				perm = 0644
			}
			items = append(items, pending{
				name: te.Name,
				entry: &coreino.Entry{
					Name:   te.Name,
					Parent: ino,
					Kind:   coreino.KindGitBlob,
					Oid:    te.Oid,
					Perm:   perm & os.ModePerm,
					Size:   uint64(size),
				},
			})
		case gitstore.KindTree:
			items = append(items, pending{
				name: te.Name,
				entry: &coreino.Entry{
					Name:   te.Name,
					Parent: ino,
					Kind:   coreino.KindGitTree,
					Oid:    te.Oid,
					Perm:   0755,
					Ctime:  now,
					Atime:  now,
					Mtime:  now,
				},
			})
		default:
			f.logf("skipping unsupported tree entry %q (non-blob, non-tree object)", te.Name)
			continue
		}
		seen[te.Name] = true
	}

	prefix, _ := f.reg.Prefix(ino)
	underlyingItems, err := f.materializeUnderlying(ino, prefix, seen)
	if err != nil {
		// A missing directory on disk is not an error: the directory
		// exists only in Git so far (spec §4.3 step 2).
		if !os.IsNotExist(err) {
			return nil, errIO(err)
		}
	} else {
		items = append(items, underlyingItems...)
	}

	return items, nil
}

// materializeDirtyDir lists a runtime-created directory purely from the
// underlying directory; a listing failure here is IO, since the directory
// is supposed to exist on disk (spec §4.3 step 3).
func (f *FS) materializeDirtyDir(ino coreino.Ino) ([]pending, error) {
	prefix, _ := f.reg.Prefix(ino)
	items, err := f.materializeUnderlying(ino, prefix, nil)
	if err != nil {
		return nil, errIO(err)
	}
	return items, nil
}

// materializeUnderlying lists prefix in the underlying directory, skipping
// any name already present in seen (Git view wins for known names).
func (f *FS) materializeUnderlying(ino coreino.Ino, prefix string, seen map[string]bool) ([]pending, error) {
	ents, err := f.dir.List(prefix)
	if err != nil {
		return nil, err
	}

	var items []pending
	for _, de := range ents {
		name := de.Name()
		if seen != nil && seen[name] {
			continue
		}

		info, err := de.Info()
		if err != nil {
			f.logf("skipping %q: stat failed: %v", name, err)
			continue
		}

		switch {
		case info.IsDir():
			items = append(items, pending{
				name: name,
				entry: &coreino.Entry{
					Name:   name,
					Parent: ino,
					Kind:   coreino.KindDirtyDir,
					Perm:   info.Mode() & os.ModePerm,
					Ctime:  info.ModTime(),
					Atime:  info.ModTime(),
					Mtime:  info.ModTime(),
				},
			})
		case info.Mode().IsRegular():
			items = append(items, pending{
				name: name,
				entry: &coreino.Entry{
					Name:   name,
					Parent: ino,
					Kind:   coreino.KindDirtyFile,
					Perm:   info.Mode() & os.ModePerm,
					Size:   uint64(info.Size()),
					Ctime:  info.ModTime(),
					Atime:  info.ModTime(),
					Mtime:  info.ModTime(),
				},
			})
		default:
			f.logf("skipping %q: unsupported underlying file type", name)
		}
	}
	return items, nil
}

// installChildren registers each pending child with the inode registry and
// installs the resulting name->inode map on the parent. The parent entry is
// re-acquired after registration rather than mutated through the reference
// passed to ensureListed, mirroring the design's explicit release-then-
// reacquire discipline for directory installation (spec §4.3 step 5, §9).
func (f *FS) installChildren(ino coreino.Ino, items []pending) {
	children := coreino.NewChildSet()
	for _, it := range items {
		childIno := f.reg.Add(it.entry)
		children.Add(it.name, childIno)
	}

	parent, ok := f.reg.Get(ino)
	if !ok {
		// The parent cannot have vanished mid-operation: FS is
		// single-threaded and nothing removes an inode being listed.
		panic("corefs: parent inode vanished during directory materialization")
	}
	parent.SetChildren(children)
}

func (f *FS) logf(format string, args ...any) {
	if f.log != nil {
		f.log.Printf(format, args...)
	}
}
