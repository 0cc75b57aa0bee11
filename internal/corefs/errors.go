package corefs

import (
	"errors"
	"os"
	"syscall"
)

// ErrorKind is the error taxonomy of spec §7, each mapping to a standard
// POSIX errno at the kernel reply boundary.
type ErrorKind int

const (
	// KindNotFound: unknown inode, missing child name -> ENOENT.
	KindNotFound ErrorKind = iota
	// KindNotADirectory: operation requires a directory, target is a file -> ENOTDIR.
	KindNotADirectory
	// KindIsADirectory: operation requires a file, target is a directory -> EISDIR.
	KindIsADirectory
	// KindIO: underlying storage error, Git object lookup error -> host errno or EIO.
	KindIO
	// KindUnsupported: operation not implemented -> ENOSYS.
	KindUnsupported
	// KindForbidden: symlink, link -> EPERM.
	KindForbidden
	// KindExists: create() named an entry that already exists -> EEXIST. Not
	// named in spec §7's table, which doesn't claim to be exhaustive; this is
	// the standard create(2) errno for the one case the table is silent on.
	KindExists
)

// Error is the concrete error type every corefs operation returns. The
// internal/fusefs adapter calls Errno at the boundary to produce the
// syscall.Errno every go-fuse callback must reply with.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	switch e.Kind {
	case KindNotFound:
		return "not found"
	case KindNotADirectory:
		return "not a directory"
	case KindIsADirectory:
		return "is a directory"
	case KindIO:
		return "i/o error"
	case KindUnsupported:
		return "not supported"
	case KindForbidden:
		return "operation not permitted"
	case KindExists:
		return "already exists"
	default:
		return "corefs error"
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errno maps e to the POSIX errno a kernel reply should carry.
func (e *Error) Errno() syscall.Errno {
	switch e.Kind {
	case KindNotFound:
		return syscall.ENOENT
	case KindNotADirectory:
		return syscall.ENOTDIR
	case KindIsADirectory:
		return syscall.EISDIR
	case KindIO:
		return ioErrno(e.Err)
	case KindUnsupported:
		return syscall.ENOSYS
	case KindForbidden:
		return syscall.EPERM
	case KindExists:
		return syscall.EEXIST
	default:
		return syscall.EIO
	}
}

// ioErrno recovers a host errno from a wrapped OS error when one is
// available, falling back to EIO (spec §7: "host errno or EIO").
func ioErrno(err error) syscall.Errno {
	if err == nil {
		return syscall.EIO
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno
	}
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		if inner, ok := pathErr.Err.(syscall.Errno); ok {
			return inner
		}
	}
	return syscall.EIO
}

func errNotFound() *Error      { return &Error{Kind: KindNotFound} }
func errNotADirectory() *Error { return &Error{Kind: KindNotADirectory} }
func errIsADirectory() *Error  { return &Error{Kind: KindIsADirectory} }
func errIO(err error) *Error   { return &Error{Kind: KindIO, Err: err} }
func errExists() *Error        { return &Error{Kind: KindExists} }
func errUnsupported() *Error   { return &Error{Kind: KindUnsupported} }
func errForbidden() *Error     { return &Error{Kind: KindForbidden} }
