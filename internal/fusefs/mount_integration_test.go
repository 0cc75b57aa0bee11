package fusefs

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/ksqsf/rockmore-git/internal/corefs"
	"github.com/ksqsf/rockmore-git/internal/gitstore"
	"github.com/ksqsf/rockmore-git/internal/underlying"
)

var (
	mountPoint string
	server     *fuse.Server
)

// TestMain mounts a real gitfs instance over a live FUSE connection and runs
// the whole package's tests against it, mirroring the teacher's single-mount-
// per-package integration style. It is skipped entirely when /dev/fuse is not
// available (containers without --device=/dev/fuse, CI sandboxes, etc.).
func TestMain(m *testing.M) {
	if _, err := os.Stat("/dev/fuse"); err != nil {
		log.Printf("skipping fusefs integration tests: /dev/fuse unavailable: %v", err)
		os.Exit(0)
	}

	code, err := runWithMount(m)
	if err != nil {
		log.Printf("fusefs integration setup failed: %v", err)
		os.Exit(1)
	}
	os.Exit(code)
}

func runWithMount(m *testing.M) (int, error) {
	repoPath, err := seedRepo()
	if err != nil {
		return 0, err
	}
	defer os.RemoveAll(repoPath)

	git, err := gitstore.Open(repoPath)
	if err != nil {
		return 0, err
	}

	mountPoint, err = os.MkdirTemp("", "rockmore-git-mnt-*")
	if err != nil {
		return 0, err
	}
	defer os.RemoveAll(mountPoint)

	dir, err := underlying.Open(mountPoint)
	if err != nil {
		return 0, err
	}
	defer dir.Close()

	logger := log.New(io.Discard, "", 0)
	fsys, err := corefs.New(git, dir, uint32(os.Getuid()), uint32(os.Getgid()), logger)
	if err != nil {
		return 0, err
	}

	server, err = Mount(mountPoint, fsys, false, logger)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err := server.Unmount(); err != nil {
			log.Printf("unmount failed: %v", err)
		}
	}()

	return m.Run(), nil
}

// seedRepo creates a throwaway Git repository with one committed file and
// returns its path.
func seedRepo() (string, error) {
	repoPath, err := os.MkdirTemp("", "rockmore-git-repo-*")
	if err != nil {
		return "", err
	}

	repo, err := git.PlainInit(repoPath, false)
	if err != nil {
		os.RemoveAll(repoPath)
		return "", err
	}

	if err := os.WriteFile(filepath.Join(repoPath, "README"), []byte("hello\n"), 0644); err != nil {
		os.RemoveAll(repoPath)
		return "", err
	}

	wt, err := repo.Worktree()
	if err != nil {
		os.RemoveAll(repoPath)
		return "", err
	}
	if _, err := wt.Add("README"); err != nil {
		os.RemoveAll(repoPath)
		return "", err
	}
	sig := &object.Signature{Name: "rockmore-git tests", Email: "test@example.com", When: time.Now()}
	if _, err := wt.Commit("seed", &git.CommitOptions{Author: sig}); err != nil {
		os.RemoveAll(repoPath)
		return "", err
	}

	return repoPath, nil
}

func TestMountReadCommittedFile(t *testing.T) {
	content, err := os.ReadFile(filepath.Join(mountPoint, "README"))
	if err != nil {
		t.Fatalf("ReadFile(README): %v", err)
	}
	if string(content) != "hello\n" {
		t.Fatalf("README = %q, want %q", content, "hello\n")
	}
}

func TestMountWritePromotesAndPersists(t *testing.T) {
	path := filepath.Join(mountPoint, "README")
	if err := os.WriteFile(path, []byte("world\n"), 0644); err != nil {
		t.Fatalf("WriteFile(README): %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(README) after write: %v", err)
	}
	if string(content) != "world\n" {
		t.Fatalf("README = %q, want %q", content, "world\n")
	}
}

func TestMountCreateAndRemove(t *testing.T) {
	path := filepath.Join(mountPoint, "scratch.txt")
	if err := os.WriteFile(path, []byte("abc"), 0644); err != nil {
		t.Fatalf("WriteFile(scratch.txt): %v", err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatalf("Remove(scratch.txt): %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("Stat(scratch.txt) after remove = %v, want not-exist", err)
	}
}

func TestMountMkdirAndRmdir(t *testing.T) {
	path := filepath.Join(mountPoint, "scratchdir")
	if err := os.Mkdir(path, 0755); err != nil {
		t.Fatalf("Mkdir(scratchdir): %v", err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatalf("Rmdir(scratchdir): %v", err)
	}
}
