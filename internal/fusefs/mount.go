package fusefs

import (
	"fmt"
	"log"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/ksqsf/rockmore-git/internal/coreino"
	"github.com/ksqsf/rockmore-git/internal/corefs"
)

// Mount mounts fsys at mountpoint and returns the running fuse.Server. Mount
// options follow spec §6: filesystem name "gitfs", auto-unmount on process
// exit, non-empty mount allowed.
func Mount(mountpoint string, fsys *corefs.FS, debug bool, logger *log.Logger) (*fuse.Server, error) {
	root := &Node{fsys: fsys, ino: coreino.RootIno}

	opts := &fs.Options{
		MountOptions: fuse.MountOptions{
			Name:               "rockmore-git",
			FsName:             "gitfs",
			AllowOther:         false,
			Debug:              debug,
			Options:            []string{"auto_unmount"},
			AllowNonEmptyMount: true,
		},
		Logger: logger,
	}

	server, err := fs.Mount(mountpoint, root, opts)
	if err != nil {
		return nil, fmt.Errorf("mount failed: %w", err)
	}

	return server, nil
}
