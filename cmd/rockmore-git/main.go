// Command rockmore-git mounts a Git repository's working tree as a FUSE
// filesystem, overlaying the repository's HEAD commit with an underlying
// scratch directory for writes.
package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ksqsf/rockmore-git/internal/corefs"
	"github.com/ksqsf/rockmore-git/internal/fusefs"
	"github.com/ksqsf/rockmore-git/internal/gitstore"
	"github.com/ksqsf/rockmore-git/internal/underlying"
)

var debug bool

var rootCmd = &cobra.Command{
	Use:   "rockmore-git <repo_path> <mountpoint>",
	Short: "Mount a Git repository's HEAD tree as a writable FUSE filesystem",
	Args:  cobra.ExactArgs(2),
	RunE:  runMount,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runMount(cmd *cobra.Command, args []string) error {
	repoPath, mountpoint := args[0], args[1]

	logger := log.New(os.Stderr, "[rockmore-git] ", log.LstdFlags)

	git, err := gitstore.Open(repoPath)
	if err != nil {
		return fmt.Errorf("open repository: %w", err)
	}

	dir, err := underlying.Open(mountpoint)
	if err != nil {
		return fmt.Errorf("open underlying directory: %w", err)
	}

	uid, gid := os.Getuid(), os.Getgid()
	fsys, err := corefs.New(git, dir, uint32(uid), uint32(gid), logger)
	if err != nil {
		dir.Close()
		return fmt.Errorf("build filesystem: %w", err)
	}

	server, err := fusefs.Mount(mountpoint, fsys, debug, logger)
	if err != nil {
		dir.Close()
		return fmt.Errorf("mount: %w", err)
	}

	logger.Printf("mounted %s at %s", repoPath, mountpoint)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Printf("unmounting...")
		if err := server.Unmount(); err != nil {
			logger.Printf("unmount failed: %v", err)
		}
	}()

	server.Wait()
	dir.Close()
	return nil
}
