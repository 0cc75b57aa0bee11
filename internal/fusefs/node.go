// Package fusefs adapts internal/corefs's kernel-agnostic facade to
// github.com/hanwen/go-fuse/v2: one Node type per looked-up path, all of
// them delegating their actual state to a shared *corefs.FS.
package fusefs

import (
	"context"
	"os"
	"syscall"
	"time"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/ksqsf/rockmore-git/internal/coreino"
	"github.com/ksqsf/rockmore-git/internal/corefs"
)

const cacheTimeout = 1 * time.Second

// Node is the go-fuse node for one inode. All of its state lives in fsys;
// Node itself is just a handle plus the kernel-facing operation set.
type Node struct {
	fs.Inode
	fsys *corefs.FS
	ino  coreino.Ino
}

var (
	_ fs.NodeLookuper   = (*Node)(nil)
	_ fs.NodeGetattrer  = (*Node)(nil)
	_ fs.NodeSetattrer  = (*Node)(nil)
	_ fs.NodeReaddirer  = (*Node)(nil)
	_ fs.NodeOpener     = (*Node)(nil)
	_ fs.NodeReader     = (*Node)(nil)
	_ fs.NodeWriter     = (*Node)(nil)
	_ fs.NodeFlusher    = (*Node)(nil)
	_ fs.NodeReleaser   = (*Node)(nil)
	_ fs.NodeCreater    = (*Node)(nil)
	_ fs.NodeMkdirer    = (*Node)(nil)
	_ fs.NodeUnlinker   = (*Node)(nil)
	_ fs.NodeRmdirer    = (*Node)(nil)
	_ fs.NodeRenamer    = (*Node)(nil)
	_ fs.NodeStatfser   = (*Node)(nil)
)

func newChild(fsys *corefs.FS, ino coreino.Ino, attr corefs.Attr) *Node {
	return &Node{fsys: fsys, ino: ino}
}

func stableAttrFor(ino coreino.Ino, attr corefs.Attr) fs.StableAttr {
	mode := uint32(fuse.S_IFREG)
	if attr.Mode.IsDir() {
		mode = fuse.S_IFDIR
	}
	return fs.StableAttr{Ino: uint64(ino), Mode: mode}
}

func errnoOf(err error) syscall.Errno {
	if err == nil {
		return fs.OK
	}
	if cerr, ok := err.(*corefs.Error); ok {
		return cerr.Errno()
	}
	return syscall.EIO
}

// Lookup resolves name within n.
func (n *Node) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	attr, childIno, err := n.fsys.Lookup(n.ino, name)
	if err != nil {
		return nil, errnoOf(err)
	}

	child := newChild(n.fsys, childIno, attr)
	inode := n.NewInode(ctx, child, stableAttrFor(childIno, attr))
	fillEntryOut(out, attr)
	return inode, fs.OK
}

// Getattr builds the attribute record for n.
func (n *Node) Getattr(ctx context.Context, f fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	attr, err := n.fsys.GetAttr(n.ino)
	if err != nil {
		return errnoOf(err)
	}
	fillAttrOut(out, attr)
	return fs.OK
}

// Setattr applies the kernel-supplied fields to n.
func (n *Node) Setattr(ctx context.Context, f fs.FileHandle, in *fuse.SetAttrIn, out *fuse.AttrOut) syscall.Errno {
	var req corefs.SetAttrReq
	if mode, ok := in.GetMode(); ok {
		req.Mode = &mode
	}
	if size, ok := in.GetSize(); ok {
		req.Size = &size
	}
	if atime, ok := in.GetATime(); ok {
		req.Atime = &atime
	}
	if mtime, ok := in.GetMTime(); ok {
		req.Mtime = &mtime
	}

	attr, err := n.fsys.SetAttr(n.ino, req)
	if err != nil {
		return errnoOf(err)
	}
	fillAttrOut(out, attr)
	return fs.OK
}

// Readdir materializes n's children and streams them back.
func (n *Node) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	if err := n.fsys.OpenDir(n.ino); err != nil {
		return nil, errnoOf(err)
	}
	dirents, err := n.fsys.ReadDir(n.ino, 0)
	if err != nil {
		return nil, errnoOf(err)
	}

	out := make([]fuse.DirEntry, 0, len(dirents))
	for _, d := range dirents {
		mode := uint32(fuse.S_IFREG)
		if d.IsDir {
			mode = fuse.S_IFDIR
		}
		out = append(out, fuse.DirEntry{Name: d.Name, Ino: uint64(d.Ino), Mode: mode})
	}
	return fs.NewListDirStream(out), fs.OK
}

// Open dispatches on write intent, per the blob-to-file promoter and the
// dirty-file handle lifecycle.
func (n *Node) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	writeIntent := flags&(syscall.O_WRONLY|syscall.O_RDWR) != 0
	if err := n.fsys.Open(n.ino, corefs.OpenFlags{WriteIntent: writeIntent}); err != nil {
		return nil, 0, errnoOf(err)
	}
	return nil, 0, fs.OK
}

// Read serves a read by offset from whichever store backs n.
func (n *Node) Read(ctx context.Context, f fs.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	data, err := n.fsys.Read(n.ino, off, len(dest))
	if err != nil {
		return nil, errnoOf(err)
	}
	return fuse.ReadResultData(data), fs.OK
}

// Write writes to a dirty file.
func (n *Node) Write(ctx context.Context, f fs.FileHandle, data []byte, off int64) (uint32, syscall.Errno) {
	written, err := n.fsys.Write(n.ino, off, data)
	if err != nil {
		return uint32(written), errnoOf(err)
	}
	return uint32(written), fs.OK
}

// Flush syncs a dirty file's host handle.
func (n *Node) Flush(ctx context.Context, f fs.FileHandle) syscall.Errno {
	return errnoOf(n.fsys.Flush(n.ino))
}

// Release drops a reference to a dirty file's host handle.
func (n *Node) Release(ctx context.Context, f fs.FileHandle) syscall.Errno {
	return errnoOf(n.fsys.Release(n.ino))
}

// Create makes a new dirty file under n.
func (n *Node) Create(ctx context.Context, name string, flags uint32, mode uint32, out *fuse.EntryOut) (*fs.Inode, fs.FileHandle, uint32, syscall.Errno) {
	attr, childIno, err := n.fsys.Create(n.ino, name, mode)
	if err != nil {
		return nil, nil, 0, errnoOf(err)
	}

	child := newChild(n.fsys, childIno, attr)
	inode := n.NewInode(ctx, child, stableAttrFor(childIno, attr))
	fillEntryOut(out, attr)
	return inode, nil, 0, fs.OK
}

// Mkdir makes a new dirty directory under n.
func (n *Node) Mkdir(ctx context.Context, name string, mode uint32, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	attr, childIno, err := n.fsys.Mkdir(n.ino, name, mode)
	if err != nil {
		return nil, errnoOf(err)
	}

	child := newChild(n.fsys, childIno, attr)
	inode := n.NewInode(ctx, child, stableAttrFor(childIno, attr))
	fillEntryOut(out, attr)
	return inode, fs.OK
}

// Unlink removes a file child of n.
func (n *Node) Unlink(ctx context.Context, name string) syscall.Errno {
	return errnoOf(n.fsys.Unlink(n.ino, name))
}

// Rmdir removes a directory child of n.
func (n *Node) Rmdir(ctx context.Context, name string) syscall.Errno {
	return errnoOf(n.fsys.Rmdir(n.ino, name))
}

// Rename moves a child of n to newParent.
func (n *Node) Rename(ctx context.Context, name string, newParent fs.InodeEmbedder, newName string, flags uint32) syscall.Errno {
	dst, ok := newParent.(*Node)
	if !ok {
		return syscall.EXDEV
	}
	return errnoOf(n.fsys.Rename(n.ino, name, dst.ino, newName))
}

// Statfs returns all zeros, block size 512, name length limit 255 (spec
// §4.9).
func (n *Node) Statfs(ctx context.Context, out *fuse.StatfsOut) syscall.Errno {
	*out = fuse.StatfsOut{
		Bsize:   512,
		NameLen: 255,
	}
	return fs.OK
}

func fillEntryOut(out *fuse.EntryOut, attr corefs.Attr) {
	out.NodeId = uint64(attr.Ino)
	out.SetEntryTimeout(cacheTimeout)
	out.SetAttrTimeout(cacheTimeout)
	fillAttr(&out.Attr, attr)
}

func fillAttrOut(out *fuse.AttrOut, attr corefs.Attr) {
	out.SetTimeout(cacheTimeout)
	fillAttr(&out.Attr, attr)
}

// fillAttr converts an Attr into the wire Attr struct. Linux's FUSE
// protocol has no creation-time field, so attr.Crtime (tracked in the
// entry model for parity with spec §3) has nowhere to go here.
func fillAttr(a *fuse.Attr, attr corefs.Attr) {
	a.Ino = uint64(attr.Ino)
	a.Size = attr.Size
	a.Blocks = attr.Blocks
	a.Mode = rawMode(attr.Mode)
	a.Nlink = attr.Nlink
	a.Owner = fuse.Owner{Uid: attr.Uid, Gid: attr.Gid}
	a.Rdev = attr.Rdev
	a.Blksize = attr.BlkSize

	sec, nsec := splitTime(attr.Atime)
	a.Atime, a.Atimensec = sec, nsec
	sec, nsec = splitTime(attr.Mtime)
	a.Mtime, a.Mtimensec = sec, nsec
	sec, nsec = splitTime(attr.Ctime)
	a.Ctime, a.Ctimensec = sec, nsec
}

func splitTime(t time.Time) (uint64, uint32) {
	if t.IsZero() {
		return 0, 0
	}
	return uint64(t.Unix()), uint32(t.Nanosecond())
}

func rawMode(m os.FileMode) uint32 {
	perm := uint32(m.Perm())
	if m.IsDir() {
		return fuse.S_IFDIR | perm
	}
	return fuse.S_IFREG | perm
}
