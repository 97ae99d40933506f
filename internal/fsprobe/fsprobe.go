// Package fsprobe checks whether fsnotify delivers events for a directory.
// Network and some container filesystems accept a watch but never report
// anything; a real create and rename is the only reliable test.
package fsprobe

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	ModeAuto     = "auto"
	ModeFsnotify = "fsnotify"
	ModePoll     = "poll"
)

// DefaultWait bounds how long Probe waits for the first event.
const DefaultWait = 200 * time.Millisecond

// Result reports whether fsnotify is usable and why not.
type Result struct {
	Supported bool
	Reason    string
}

// Probe creates and renames a hidden file in dir and waits up to wait for
// fsnotify to report it. The probe files are always removed.
func Probe(dir string, wait time.Duration) Result {
	st, err := os.Stat(dir)
	if err != nil {
		return Result{Reason: fmt.Sprintf("stat failed: %v", err)}
	}
	if !st.IsDir() {
		return Result{Reason: "not a directory"}
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return Result{Reason: fmt.Sprintf("fsnotify unavailable: %v", err)}
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return Result{Reason: fmt.Sprintf("cannot watch directory: %v", err)}
	}

	f, err := os.CreateTemp(dir, ".fsprobe-*")
	if err != nil {
		return Result{Reason: fmt.Sprintf("cannot create probe file: %v", err)}
	}
	tmp := f.Name()
	_ = f.Close()

	final := tmp + ".done"
	if err := os.Rename(tmp, final); err != nil {
		_ = os.Remove(tmp)
		return Result{Reason: fmt.Sprintf("rename failed: %v", err)}
	}
	defer os.Remove(final)

	timeout := time.After(wait)
	for {
		select {
		case ev := <-w.Events:
			if filepath.Dir(ev.Name) == filepath.Clean(dir) &&
				ev.Op&(fsnotify.Rename|fsnotify.Create|fsnotify.Write) != 0 {
				return Result{Supported: true}
			}
		case err := <-w.Errors:
			return Result{Reason: fmt.Sprintf("watch error: %v", err)}
		case <-timeout:
			return Result{Reason: "no events received"}
		}
	}
}

// Resolve turns a configured mode into the one to use for dir. Only
// ModeAuto probes; an explicit mode is returned as is.
func Resolve(mode, dir string) (string, Result) {
	if mode != ModeAuto {
		return mode, Result{Supported: mode == ModeFsnotify}
	}
	res := Probe(dir, DefaultWait)
	if res.Supported {
		return ModeFsnotify, res
	}
	return ModePoll, res
}
