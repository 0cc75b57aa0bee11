package coreino

import "testing"

func TestRegistryAddAssignsRootFirst(t *testing.T) {
	r := NewRegistry()
	root := &Entry{Kind: KindGitTree}
	ino := r.Add(root)
	if ino != RootIno {
		t.Fatalf("first Add() = %d, want RootIno (%d)", ino, RootIno)
	}
	root.Parent = ino

	child := &Entry{Kind: KindGitBlob, Name: "a", Parent: ino}
	childIno := r.Add(child)
	if childIno != RootIno+1 {
		t.Fatalf("second Add() = %d, want %d", childIno, RootIno+1)
	}
}

func TestRegistryGetRemove(t *testing.T) {
	r := NewRegistry()
	e := &Entry{Kind: KindGitBlob, Name: "f"}
	ino := r.Add(e)

	got, ok := r.Get(ino)
	if !ok || got != e {
		t.Fatalf("Get(%d) = %v, %v; want %v, true", ino, got, ok, e)
	}

	removed, ok := r.Remove(ino)
	if !ok || removed != e {
		t.Fatalf("Remove(%d) = %v, %v; want %v, true", ino, removed, ok, e)
	}

	if _, ok := r.Get(ino); ok {
		t.Fatalf("Get(%d) after Remove still found an entry", ino)
	}

	// A removed inode number is never reused within a session.
	other := &Entry{Kind: KindGitBlob, Name: "g"}
	newIno := r.Add(other)
	if newIno == ino {
		t.Fatalf("Add() reused removed inode %d", ino)
	}
}

func TestRegistryPrefix(t *testing.T) {
	r := NewRegistry()
	root := &Entry{Kind: KindGitTree, Name: ""}
	rootIno := r.Add(root)
	root.Parent = rootIno

	dir := &Entry{Kind: KindGitTree, Name: "src", Parent: rootIno}
	dirIno := r.Add(dir)

	file := &Entry{Kind: KindGitBlob, Name: "main.go", Parent: dirIno}
	fileIno := r.Add(file)

	if p, ok := r.Prefix(rootIno); !ok || p != "" {
		t.Fatalf("Prefix(root) = %q, %v; want \"\", true", p, ok)
	}
	if p, ok := r.Prefix(dirIno); !ok || p != "src" {
		t.Fatalf("Prefix(dir) = %q, %v; want \"src\", true", p, ok)
	}
	if p, ok := r.Prefix(fileIno); !ok || p != "src/main.go" {
		t.Fatalf("Prefix(file) = %q, %v; want \"src/main.go\", true", p, ok)
	}
	if _, ok := r.Prefix(9999); ok {
		t.Fatalf("Prefix(unknown) = ok, want not found")
	}
}

func TestChildSetOrderPreservedAcrossRemoval(t *testing.T) {
	cs := NewChildSet()
	cs.Add("b", 2)
	cs.Add("a", 1)
	cs.Add("c", 3)

	if got := cs.Names(); len(got) != 3 || got[0] != "b" || got[1] != "a" || got[2] != "c" {
		t.Fatalf("Names() = %v, want [b a c]", got)
	}

	cs.Remove("a")
	if got := cs.Names(); len(got) != 2 || got[0] != "b" || got[1] != "c" {
		t.Fatalf("Names() after Remove = %v, want [b c]", got)
	}
	if ino, ok := cs.Get("a"); ok {
		t.Fatalf("Get(a) after Remove = %d, true; want not found", ino)
	}
}

func TestEntryAccessorsPanicOnFileVariant(t *testing.T) {
	e := &Entry{Kind: KindGitBlob}

	assertPanics(t, func() { e.Children() })
	assertPanics(t, func() { e.HasChildren() })
	assertPanics(t, func() { e.SetChildren(NewChildSet()) })
}

func TestEntryDirectoryAccessorsBeforeListing(t *testing.T) {
	e := &Entry{Kind: KindGitTree}
	if e.HasChildren() {
		t.Fatal("HasChildren() = true before any SetChildren call")
	}
	assertPanics(t, func() { e.Children() })
}

func assertPanics(t *testing.T, f func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic, got none")
		}
	}()
	f()
}
