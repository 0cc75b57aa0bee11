package corefs

import (
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/ksqsf/rockmore-git/internal/coreino"
	"github.com/ksqsf/rockmore-git/internal/gitstore/gitstoretest"
	"github.com/ksqsf/rockmore-git/internal/underlying"
)

func newTestFS(t *testing.T) (*FS, *gitstoretest.Fake, string) {
	t.Helper()
	fake := gitstoretest.New("root")
	fake.AddTree("root")

	dirPath := t.TempDir()
	dir, err := underlying.Open(dirPath)
	if err != nil {
		t.Fatalf("underlying.Open: %v", err)
	}
	t.Cleanup(func() { dir.Close() })

	fs, err := New(fake, dir, 1000, 1000, log.New(os.Stderr, "test ", 0))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return fs, fake, dirPath
}

func TestLookupReadmeCommittedFile(t *testing.T) {
	t.Parallel()
	fs, fake, _ := newTestFS(t)
	fake.AddBlob("readme-oid", []byte("hello\n"))
	fake.AddTree("root", gitstoretest.BlobEntry("README", "readme-oid"))

	attr, ino, err := fs.Lookup(coreino.RootIno, "README")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if attr.Size != 6 {
		t.Fatalf("attr.Size = %d, want 6", attr.Size)
	}

	if err := fs.Open(ino, OpenFlags{WriteIntent: false}); err != nil {
		t.Fatalf("Open: %v", err)
	}
	data, err := fs.Read(ino, 0, 6)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(data) != "hello\n" {
		t.Fatalf("Read = %q, want %q", data, "hello\n")
	}
	if err := fs.Release(ino); err != nil {
		t.Fatalf("Release: %v", err)
	}
}

func TestWriteToCommittedFilePromotes(t *testing.T) {
	t.Parallel()
	fs, fake, dirPath := newTestFS(t)
	fake.AddBlob("readme-oid", []byte("hello\n"))
	fake.AddTree("root", gitstoretest.BlobEntry("README", "readme-oid"))

	_, ino, err := fs.Lookup(coreino.RootIno, "README")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}

	if err := fs.Open(ino, OpenFlags{WriteIntent: true}); err != nil {
		t.Fatalf("Open (write-intent): %v", err)
	}

	n, err := fs.Write(ino, 0, []byte("world\n"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if n != 6 {
		t.Fatalf("Write n = %d, want 6", n)
	}

	data, err := fs.Read(ino, 0, 6)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(data) != "world\n" {
		t.Fatalf("Read = %q, want %q", data, "world\n")
	}

	if err := fs.Release(ino); err != nil {
		t.Fatalf("Release: %v", err)
	}

	attr, err := fs.GetAttr(ino)
	if err != nil {
		t.Fatalf("GetAttr: %v", err)
	}
	if attr.Size != 6 {
		t.Fatalf("attr.Size = %d, want 6", attr.Size)
	}

	onDisk, err := os.ReadFile(filepath.Join(dirPath, "README"))
	if err != nil {
		t.Fatalf("ReadFile(README): %v", err)
	}
	if string(onDisk) != "world\n" {
		t.Fatalf("on-disk README = %q, want %q", onDisk, "world\n")
	}
}

func TestCreateThenRemove(t *testing.T) {
	t.Parallel()
	fs, _, dirPath := newTestFS(t)

	if err := fs.OpenDir(coreino.RootIno); err != nil {
		t.Fatalf("OpenDir: %v", err)
	}

	_, jno, err := fs.Create(coreino.RootIno, "new.txt", 0644)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	n, err := fs.Write(jno, 0, []byte("abc"))
	if err != nil || n != 3 {
		t.Fatalf("Write = %d, %v; want 3, nil", n, err)
	}
	if err := fs.Release(jno); err != nil {
		t.Fatalf("Release: %v", err)
	}

	onDisk, err := os.ReadFile(filepath.Join(dirPath, "new.txt"))
	if err != nil || string(onDisk) != "abc" {
		t.Fatalf("on-disk new.txt = %q, %v; want abc, nil", onDisk, err)
	}

	if err := fs.Unlink(coreino.RootIno, "new.txt"); err != nil {
		t.Fatalf("Unlink: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dirPath, "new.txt")); !os.IsNotExist(err) {
		t.Fatalf("new.txt still present on disk: %v", err)
	}

	if _, _, err := fs.Lookup(coreino.RootIno, "new.txt"); err == nil {
		t.Fatal("Lookup after Unlink succeeded, want ENOENT")
	} else if cerr, ok := err.(*Error); !ok || cerr.Kind != KindNotFound {
		t.Fatalf("Lookup error = %v, want NotFound", err)
	}
}

func TestMergedListing(t *testing.T) {
	t.Parallel()
	fs, fake, dirPath := newTestFS(t)
	fake.AddBlob("a-oid", []byte("a"))
	fake.AddTree("src-oid", gitstoretest.BlobEntry("a", "a-oid"))
	fake.AddTree("root", gitstoretest.TreeEntryOf("src", "src-oid"))

	_, srcIno, err := fs.Lookup(coreino.RootIno, "src")
	if err != nil {
		t.Fatalf("Lookup(src): %v", err)
	}

	// "src/b" is only present in the underlying directory.
	if err := os.Mkdir(filepath.Join(dirPath, "src"), 0755); err != nil {
		t.Fatalf("Mkdir(src) on disk: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dirPath, "src", "b"), nil, 0644); err != nil {
		t.Fatalf("WriteFile(src/b): %v", err)
	}

	if err := fs.OpenDir(srcIno); err != nil {
		t.Fatalf("OpenDir(src): %v", err)
	}
	ents, err := fs.ReadDir(srcIno, 0)
	if err != nil {
		t.Fatalf("ReadDir(src): %v", err)
	}

	kinds := map[string]bool{}
	for _, e := range ents {
		kinds[e.Name] = e.IsDir
	}
	if len(kinds) != 2 {
		t.Fatalf("ReadDir(src) = %v, want exactly {a, b}", kinds)
	}
	if _, ok := kinds["a"]; !ok {
		t.Fatal("ReadDir(src) missing Git-backed entry a")
	}
	if _, ok := kinds["b"]; !ok {
		t.Fatal("ReadDir(src) missing underlying-only entry b")
	}
}

func TestNameCollisionGitWins(t *testing.T) {
	t.Parallel()
	fs, fake, dirPath := newTestFS(t)
	fake.AddBlob("conf-oid", []byte("git-bytes"))
	fake.AddTree("root", gitstoretest.BlobEntry("conf", "conf-oid"))

	if err := os.WriteFile(filepath.Join(dirPath, "conf"), []byte("disk-bytes"), 0644); err != nil {
		t.Fatalf("WriteFile(conf): %v", err)
	}

	attr, ino, err := fs.Lookup(coreino.RootIno, "conf")
	if err != nil {
		t.Fatalf("Lookup(conf): %v", err)
	}
	if attr.Size != uint64(len("git-bytes")) {
		t.Fatalf("attr.Size = %d, want len(git-bytes)", attr.Size)
	}

	if err := fs.Open(ino, OpenFlags{}); err != nil {
		t.Fatalf("Open: %v", err)
	}
	data, err := fs.Read(ino, 0, 64)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(data) != "git-bytes" {
		t.Fatalf("Read = %q, want git-bytes", data)
	}
}

func TestRenameDirtyFileAcrossDirectories(t *testing.T) {
	t.Parallel()
	fs, _, dirPath := newTestFS(t)

	if err := fs.OpenDir(coreino.RootIno); err != nil {
		t.Fatalf("OpenDir(root): %v", err)
	}
	_, xIno, err := fs.Create(coreino.RootIno, "x", 0644)
	if err != nil {
		t.Fatalf("Create(x): %v", err)
	}
	if err := fs.Release(xIno); err != nil {
		t.Fatalf("Release(x): %v", err)
	}

	_, dIno, err := fs.Mkdir(coreino.RootIno, "d", 0755)
	if err != nil {
		t.Fatalf("Mkdir(d): %v", err)
	}
	if err := fs.OpenDir(dIno); err != nil {
		t.Fatalf("OpenDir(d): %v", err)
	}

	if err := fs.Rename(coreino.RootIno, "x", dIno, "y"); err != nil {
		t.Fatalf("Rename: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dirPath, "d", "y")); err != nil {
		t.Fatalf("d/y missing on disk: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dirPath, "x")); !os.IsNotExist(err) {
		t.Fatalf("x still present on disk: %v", err)
	}

	_, yIno, err := fs.Lookup(dIno, "y")
	if err != nil {
		t.Fatalf("Lookup(d, y): %v", err)
	}
	if yIno != xIno {
		t.Fatalf("Lookup(d, y) ino = %d, want original %d", yIno, xIno)
	}
}
