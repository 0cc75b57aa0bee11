// Package gitstore binds the spec's "Git object store" collaborator to
// github.com/go-git/go-git/v5: it resolves HEAD to a tree and serves object
// lookups by identifier, which is all the directory materializer and the
// blob-to-file promoter need.
package gitstore

import (
	"fmt"
	"io"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"

	"github.com/ksqsf/rockmore-git/internal/coreino"
)

// EntryKind classifies a Git tree entry for the directory materializer.
type EntryKind int

const (
	// KindBlob is a regular or executable file.
	KindBlob EntryKind = iota
	// KindTree is a subdirectory.
	KindTree
	// KindOther is any other Git object kind (symlink, submodule, ...); the
	// materializer skips these with a warning, per spec §4.3.
	KindOther
)

// TreeEntry is one child of a Git tree, trimmed to what the materializer
// needs to build a coreino.Entry.
type TreeEntry struct {
	Name string
	Kind EntryKind
	Oid  coreino.Oid
	Mode filemode.FileMode
}

// Store is the interface the core filesystem logic depends on. Production
// code gets it from Open; tests can supply a fake in-memory implementation.
type Store interface {
	// RootOid returns the oid of HEAD's tree, the root of the mount.
	RootOid() coreino.Oid
	// ListTree returns the direct children of the tree identified by oid.
	ListTree(oid coreino.Oid) ([]TreeEntry, error)
	// BlobSize returns the content length of the blob identified by oid,
	// without reading its content.
	BlobSize(oid coreino.Oid) (int64, error)
	// ReadBlob returns the full content of the blob identified by oid.
	ReadBlob(oid coreino.Oid) ([]byte, error)
}

// repoStore is the go-git-backed Store implementation.
type repoStore struct {
	repo    *git.Repository
	rootOid coreino.Oid
}

// Open opens the repository at path and resolves HEAD to a tree. Only the
// HEAD tree is materialized; there is no branch switching during a mount
// (spec §6).
func Open(path string) (Store, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}

	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("load HEAD commit: %w", err)
	}

	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("load HEAD tree: %w", err)
	}

	return &repoStore{
		repo:    repo,
		rootOid: hashToOid(tree.Hash),
	}, nil
}

func (s *repoStore) RootOid() coreino.Oid {
	return s.rootOid
}

func (s *repoStore) ListTree(oid coreino.Oid) ([]TreeEntry, error) {
	tree, err := s.repo.TreeObject(oidToHash(oid))
	if err != nil {
		return nil, fmt.Errorf("load tree %s: %w", oid, err)
	}

	entries := make([]TreeEntry, 0, len(tree.Entries))
	for _, te := range tree.Entries {
		entries = append(entries, TreeEntry{
			Name: te.Name,
			Kind: classify(te.Mode),
			Oid:  hashToOid(te.Hash),
			Mode: te.Mode,
		})
	}
	return entries, nil
}

func (s *repoStore) BlobSize(oid coreino.Oid) (int64, error) {
	blob, err := s.repo.BlobObject(oidToHash(oid))
	if err != nil {
		return 0, fmt.Errorf("load blob %s: %w", oid, err)
	}
	return blob.Size, nil
}

func (s *repoStore) ReadBlob(oid coreino.Oid) ([]byte, error) {
	blob, err := s.repo.BlobObject(oidToHash(oid))
	if err != nil {
		return nil, fmt.Errorf("load blob %s: %w", oid, err)
	}

	r, err := blob.Reader()
	if err != nil {
		return nil, fmt.Errorf("open blob %s: %w", oid, err)
	}
	defer r.Close()

	buf := make([]byte, 0, blob.Size)
	chunk := make([]byte, 32*1024)
	for {
		n, rerr := r.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return nil, fmt.Errorf("read blob %s: %w", oid, rerr)
		}
	}
	return buf, nil
}

func classify(mode filemode.FileMode) EntryKind {
	switch mode {
	case filemode.Regular, filemode.Executable:
		return KindBlob
	case filemode.Dir:
		return KindTree
	default:
		return KindOther
	}
}

func hashToOid(h plumbing.Hash) coreino.Oid {
	return coreino.Oid(h.String())
}

func oidToHash(o coreino.Oid) plumbing.Hash {
	return plumbing.NewHash(string(o))
}
