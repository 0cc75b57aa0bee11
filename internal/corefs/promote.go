package corefs

import (
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ksqsf/rockmore-git/internal/coreino"
)

// promote is the blob-to-file promoter (C4): it runs on the first
// write-intent open of a GitBlob, materializing the blob's content into the
// underlying directory and rebinding e to a DirtyFile in place. Callers
// must hold f.mu and must have already checked e.Kind == KindGitBlob.
func (f *FS) promote(ino coreino.Ino, e *coreino.Entry) error {
	prefix, ok := f.reg.Prefix(ino)
	if !ok {
		panic("corefs: promote called on an inode missing from the registry")
	}

	content, err := f.git.ReadBlob(e.Oid)
	if err != nil {
		return errIO(err)
	}

	file, err := f.dir.CreateFile(prefix, e.Perm)
	if err != nil {
		return errIO(err)
	}

	if _, err := file.Write(content); err != nil {
		file.Close()
		return errIO(err)
	}

	f.logf("promoted %q: %s written to underlying directory", prefix, humanize.Bytes(uint64(len(content))))

	now := time.Now()
	e.Kind = coreino.KindDirtyFile
	e.Oid = ""
	e.Handle = file
	e.Refcnt = 1
	e.Size = uint64(len(content))
	e.Mtime = now
	e.Atime = now

	return nil
}
