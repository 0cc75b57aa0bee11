// Package corefs implements the kernel-agnostic core of the filesystem: the
// inode-backed facade (C6) that mediates between a Git object store and an
// underlying scratch directory. It knows nothing about FUSE wire types;
// internal/fusefs adapts this facade to github.com/hanwen/go-fuse/v2.
package corefs

import (
	"log"
	"sync"
	"time"

	"github.com/ksqsf/rockmore-git/internal/coreino"
	"github.com/ksqsf/rockmore-git/internal/gitstore"
	"github.com/ksqsf/rockmore-git/internal/underlying"
)

// FS is the filesystem facade. A single mutex serializes every operation,
// the idiomatic rendering of the single-threaded cooperative scheduling
// model: go-fuse dispatches callbacks from a worker pool, but at most one of
// them is ever inside FS's state at a time.
type FS struct {
	mu  sync.Mutex
	reg *coreino.Registry
	git gitstore.Store
	dir *underlying.Dir
	uid uint32
	gid uint32
	log *log.Logger
}

// New builds the root entry from git's HEAD tree and returns a ready FS.
func New(git gitstore.Store, dir *underlying.Dir, uid, gid uint32, logger *log.Logger) (*FS, error) {
	reg := coreino.NewRegistry()
	now := time.Now()
	root := &coreino.Entry{
		Name:  "",
		Kind:  coreino.KindGitTree,
		Oid:   git.RootOid(),
		Perm:  0755,
		Ctime: now,
		Atime: now,
		Mtime: now,
	}
	ino := reg.Add(root)
	root.Parent = ino // root's parent is itself, per spec §3 invariant 1

	return &FS{
		reg: reg,
		git: git,
		dir: dir,
		uid: uid,
		gid: gid,
		log: logger,
	}, nil
}

// Lookup resolves name within parent, materializing parent's children on
// demand.
func (f *FS) Lookup(parent coreino.Ino, name string) (Attr, coreino.Ino, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	pe, ok := f.reg.Get(parent)
	if !ok {
		return Attr{}, 0, errNotFound()
	}
	if !pe.IsDirectory() {
		return Attr{}, 0, errNotADirectory()
	}
	if err := f.ensureListed(parent, pe); err != nil {
		return Attr{}, 0, err
	}

	childIno, ok := pe.Children().Get(name)
	if !ok {
		return Attr{}, 0, errNotFound()
	}
	child, ok := f.reg.Get(childIno)
	if !ok {
		return Attr{}, 0, errNotFound()
	}
	return f.buildAttr(childIno, child), childIno, nil
}

// GetAttr builds the attribute record for ino.
func (f *FS) GetAttr(ino coreino.Ino) (Attr, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	e, ok := f.reg.Get(ino)
	if !ok {
		return Attr{}, errNotFound()
	}
	return f.buildAttr(ino, e), nil
}

// SetAttrReq carries the fields a setattr call may update; a nil field is
// left unchanged. Fields the spec says to accept-and-discard (uid, gid,
// chgtime, bkuptime, flags) simply have no place in this struct.
type SetAttrReq struct {
	Mode   *uint32
	Size   *uint64
	Atime  *time.Time
	Mtime  *time.Time
	Crtime *time.Time
}

// SetAttr applies req to ino and returns the resulting attributes. Setting
// Size never truncates backing storage (spec §4.6): it is a deliberate
// fiction so userland tools that stat-after-truncate see what they expect.
func (f *FS) SetAttr(ino coreino.Ino, req SetAttrReq) (Attr, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	e, ok := f.reg.Get(ino)
	if !ok {
		return Attr{}, errNotFound()
	}

	if req.Mode != nil {
		e.Perm = modeToPerm(*req.Mode)
	}
	if req.Size != nil {
		e.Size = *req.Size
	}
	if req.Atime != nil {
		e.Atime = *req.Atime
	}
	if req.Mtime != nil {
		e.Mtime = *req.Mtime
	}
	if req.Crtime != nil {
		e.Crtime = *req.Crtime
	}

	return f.buildAttr(ino, e), nil
}
