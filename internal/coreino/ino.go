// Package coreino implements the inode registry and entry model that sit at
// the bottom of the dependency graph: every other package addresses the
// filesystem purely in terms of Ino values resolved through a *Registry.
package coreino

// Ino is a 64-bit inode number. Inode 1 is reserved for the mount root.
type Ino uint64

// RootIno is the inode number assigned to the mount root.
const RootIno Ino = 1

// Registry is the sole authoritative Ino -> *Entry store. No other package
// may keep its own long-lived ino-to-entry map; everything addresses entries
// by Ino and looks them up here for the duration of a single operation.
//
// Registry is not safe for concurrent use on its own. The filesystem facade
// (internal/corefs.FS) serializes every operation behind a single mutex, so
// Registry methods never need to take a lock themselves.
type Registry struct {
	next    Ino
	entries map[Ino]*Entry
}

// NewRegistry returns an empty registry. The first entry Add'ed to it
// receives RootIno, matching spec's "inode 1 is reserved for the mount root".
func NewRegistry() *Registry {
	return &Registry{
		next:    RootIno,
		entries: make(map[Ino]*Entry),
	}
}

// Add assigns the current counter value to e and stores it, then increments
// the counter. Once assigned, an inode is never reused within the registry's
// lifetime, even after Remove.
func (r *Registry) Add(e *Entry) Ino {
	ino := r.next
	r.next++
	r.entries[ino] = e
	return ino
}

// Get returns the entry for ino, if any.
func (r *Registry) Get(ino Ino) (*Entry, bool) {
	e, ok := r.entries[ino]
	return e, ok
}

// Remove deletes ino from the registry and returns the entry that was
// stored there, if any. The inode number itself is never handed out again.
func (r *Registry) Remove(ino Ino) (*Entry, bool) {
	e, ok := r.entries[ino]
	if ok {
		delete(r.entries, ino)
	}
	return e, ok
}

// NextIno peeks at the counter value the next Add call would assign.
func (r *Registry) NextIno() Ino {
	return r.next
}

// Prefix reconstructs the filesystem-relative path of ino by walking parent
// links up to the root and collecting name segments. The result addresses
// the underlying directory only; it never leaks to filesystem users.
func (r *Registry) Prefix(ino Ino) (string, bool) {
	var segments []string
	cur := ino
	for {
		e, ok := r.entries[cur]
		if !ok {
			return "", false
		}
		if cur == RootIno {
			break
		}
		segments = append(segments, e.Name)
		cur = e.Parent
	}
	if len(segments) == 0 {
		return "", true
	}
	// segments were collected child-to-root; reverse them.
	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}
	path := segments[0]
	for _, s := range segments[1:] {
		path += "/" + s
	}
	return path, true
}
