//go:build linux

package media

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// fileTime returns the earlier of the modification and status-change times
// in the local zone.
func fileTime(path string, info os.FileInfo) time.Time {
	mtime := info.ModTime().Local()
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return mtime
	}
	if st.Ctim.Sec == 0 {
		return mtime
	}
	ctime := time.Unix(st.Ctim.Unix()).Local()
	if ctime.After(mtime) {
		return mtime
	}
	return ctime
}
