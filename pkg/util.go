package pkg

import (
	"errors"
	"io/fs"
	"os"
	"unsafe"
)

// BytesToString converts a byte slice to a string without copying.
// buf must not be modified afterwards.
func BytesToString(buf []byte) string {
	return unsafe.String(unsafe.SliceData(buf), len(buf))
}

// PathExists reports whether path exists and is a directory (isDir) or
// a non-directory (!isDir).
func PathExists(path string, isDir bool) (bool, error) {
	stat, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return stat.IsDir() == isDir, nil
}
