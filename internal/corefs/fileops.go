package corefs

import (
	"errors"
	"io"

	"github.com/ksqsf/rockmore-git/internal/coreino"
)

// OpenFlags describes the kernel-supplied open intent relevant to this
// facade: whether the open requests anything beyond read-only access.
type OpenFlags struct {
	WriteIntent bool
}

// Open dispatches on ino's kind per spec §4.6/§4.4/§4.5: directories fail
// IsADirectory; a read-only GitBlob open succeeds immediately (reads are
// served from the object store); any other GitBlob open triggers the
// blob-to-file promoter; a DirtyFile open follows the handle lifecycle.
func (f *FS) Open(ino coreino.Ino, flags OpenFlags) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	e, ok := f.reg.Get(ino)
	if !ok {
		return errNotFound()
	}
	if e.IsDirectory() {
		return errIsADirectory()
	}

	switch e.Kind {
	case coreino.KindGitBlob:
		if !flags.WriteIntent {
			return nil
		}
		return f.promote(ino, e)
	case coreino.KindDirtyFile:
		return f.openDirtyFile(ino, e)
	default:
		panic("corefs: Open reached an entry that is neither file variant")
	}
}

// Read returns up to size bytes of ino's content starting at offset. For a
// GitBlob it reads from the object store (out-of-range requests are
// clamped to the blob's length; see spec §9 open question). For a
// DirtyFile it reads through the shared host handle, returning the short
// count actually read.
func (f *FS) Read(ino coreino.Ino, offset int64, size int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	e, ok := f.reg.Get(ino)
	if !ok {
		return nil, errNotFound()
	}
	if e.IsDirectory() {
		return nil, errIsADirectory()
	}

	switch e.Kind {
	case coreino.KindGitBlob:
		return f.readGitBlob(e, offset, size)
	case coreino.KindDirtyFile:
		if e.Handle == nil {
			return nil, errIO(nil)
		}
		buf := make([]byte, size)
		n, err := e.Handle.ReadAt(buf, offset)
		if err != nil && n == 0 {
			if errors.Is(err, io.EOF) {
				return nil, nil
			}
			return nil, errIO(err)
		}
		return buf[:n], nil
	default:
		panic("corefs: Read reached an entry that is neither file variant")
	}
}

// readGitBlob slices a GitBlob's content, clamping the requested window to
// the blob's actual length rather than faulting (the documented resolution
// of spec §9's open question on out-of-range reads).
func (f *FS) readGitBlob(e *coreino.Entry, offset int64, size int) ([]byte, error) {
	content, err := f.git.ReadBlob(e.Oid)
	if err != nil {
		return nil, errIO(err)
	}
	if offset < 0 || offset >= int64(len(content)) {
		return nil, nil
	}
	end := offset + int64(size)
	if end > int64(len(content)) {
		end = int64(len(content))
	}
	return content[offset:end], nil
}

// Write writes data to a DirtyFile at offset, updating size to
// max(size, offset+len(data)). Reaching this on a GitBlob is a programming
// error: the promoter must have already run at open (spec §4.6).
func (f *FS) Write(ino coreino.Ino, offset int64, data []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	e, ok := f.reg.Get(ino)
	if !ok {
		return 0, errNotFound()
	}
	if e.IsDirectory() {
		return 0, errIsADirectory()
	}
	if e.Kind != coreino.KindDirtyFile {
		panic("corefs: Write reached a GitBlob; promoter must run at open")
	}
	if e.Handle == nil {
		return 0, errIO(nil)
	}

	n, err := e.Handle.WriteAt(data, offset)
	if err != nil {
		return n, errIO(err)
	}

	if newSize := uint64(offset) + uint64(n); newSize > e.Size {
		e.Size = newSize
	}
	return n, nil
}

// Flush flushes the underlying handle for a DirtyFile; GitBlob is a no-op
// (spec §4.6: "OK for GitBlob (read-only) and an error is not signalled").
func (f *FS) Flush(ino coreino.Ino) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	e, ok := f.reg.Get(ino)
	if !ok {
		return errNotFound()
	}
	if e.IsDirectory() {
		return errIsADirectory()
	}
	if e.Kind != coreino.KindDirtyFile || e.Handle == nil {
		return nil
	}
	if err := e.Handle.Sync(); err != nil {
		return errIO(err)
	}
	return nil
}

// Release runs the handle-lifecycle release transition for a DirtyFile;
// GitBlob is a no-op.
func (f *FS) Release(ino coreino.Ino) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	e, ok := f.reg.Get(ino)
	if !ok {
		return errNotFound()
	}
	if e.IsDirectory() {
		panic("corefs: Release reached a directory entry")
	}
	if e.Kind != coreino.KindDirtyFile {
		return nil
	}
	return f.releaseDirtyFile(e)
}
