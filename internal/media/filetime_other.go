//go:build !linux

package media

import (
	"os"
	"time"
)

func fileTime(_ string, info os.FileInfo) time.Time {
	return info.ModTime().Local()
}
