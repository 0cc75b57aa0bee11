package corefs

import (
	"os"
	"time"

	"github.com/ksqsf/rockmore-git/internal/coreino"
)

// Attr is the attribute builder's output (spec C7): everything a stat(2)
// reply needs, independent of any FUSE wire type.
type Attr struct {
	Ino     coreino.Ino
	Size    uint64
	Blocks  uint64
	Atime   time.Time
	Mtime   time.Time
	Ctime   time.Time
	Crtime  time.Time
	Mode    os.FileMode
	Nlink   uint32
	Uid     uint32
	Gid     uint32
	Rdev    uint32
	Flags   uint32
	BlkSize uint32
}

const blockSize = 512

// buildAttr assembles the Attr for ino/e using the uid/gid the mount was
// started with; Git and the underlying directory carry no ownership
// information of their own (spec §4.7/C7).
func (f *FS) buildAttr(ino coreino.Ino, e *coreino.Entry) Attr {
	mode := e.Perm
	nlink := uint32(1)
	if e.IsDirectory() {
		mode |= os.ModeDir
		nlink = 2
	}

	size := e.Size
	return Attr{
		Ino:     ino,
		Size:    size,
		Blocks:  (size + blockSize - 1) / blockSize,
		Atime:   e.Atime,
		Mtime:   e.Mtime,
		Ctime:   e.Ctime,
		Crtime:  e.Crtime,
		Mode:    mode,
		Nlink:   nlink,
		Uid:     f.uid,
		Gid:     f.gid,
		BlkSize: blockSize,
	}
}

// modeToPerm masks mode down to the nine rwx permission bits (os.ModePerm)
// the entry model stores; the setuid, setgid and sticky bits are not kept.
func modeToPerm(mode uint32) os.FileMode {
	return os.FileMode(mode) & os.ModePerm
}
