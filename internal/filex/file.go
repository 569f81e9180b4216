// Package filex holds small file-system helpers.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// EnsureDir creates dir and its parents if they are missing.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}

// MoveInto moves src into dir, creating dir if needed, and returns the new
// path. An existing file is never overwritten: "a.jpg" becomes "a-1.jpg",
// "a-2.jpg" and so on.
func MoveInto(src, dir string) (string, error) {
	if err := EnsureDir(dir); err != nil {
		return "", err
	}

	base := filepath.Base(src)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	dst := filepath.Join(dir, base)
	for i := 1; ; i++ {
		if _, err := os.Lstat(dst); os.IsNotExist(err) {
			break
		} else if err != nil {
			return "", fmt.Errorf("stat %s: %w", dst, err)
		}
		dst = filepath.Join(dir, stem+"-"+strconv.Itoa(i)+ext)
	}

	if err := os.Rename(src, dst); err != nil {
		return "", fmt.Errorf("rename %s: %w", src, err)
	}
	return dst, nil
}
