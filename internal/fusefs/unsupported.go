package fusefs

import (
	"context"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// Unsupported-op stubs (C8, spec §4.9). symlink and link return EPERM;
// go-fuse's bridge already answers every other NodeXxxer interface Node
// doesn't implement with ENOSYS, which covers readlink, mknod, fsync,
// getxattr/setxattr/listxattr/removexattr, getlk/setlk, bmap, ioctl,
// fallocate, lseek, and copy_file_range without a line of code here — only
// symlink/link need an explicit override to change the default errno.

var (
	_ fs.NodeSymlinker = (*Node)(nil)
	_ fs.NodeLinker    = (*Node)(nil)
)

// Symlink always fails with EPERM; symbolic links are a non-goal.
func (n *Node) Symlink(ctx context.Context, target, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	return nil, syscall.EPERM
}

// Link always fails with EPERM; hard links are a non-goal.
func (n *Node) Link(ctx context.Context, target fs.InodeEmbedder, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	return nil, syscall.EPERM
}
