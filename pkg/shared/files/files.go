package files

import (
	"fmt"
	"io"
	"os"
)

// ValidatePath checks that the given path exists and is a regular file or a
// directory.
func ValidatePath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("path stat error: %w", err)
	}
	if !info.IsDir() && info.Mode()&os.ModeType != 0 {
		return fmt.Errorf("path %q is not a regular file or directory", path)
	}
	return nil
}

// CopyFile copies a file from srcFile to destFile, preserving the source
// permissions.
func CopyFile(srcFile, destFile string) error {
	srcInfo, err := os.Stat(srcFile)
	if err != nil {
		return fmt.Errorf("failed to stat source file %q: %w", srcFile, err)
	}

	in, err := os.Open(srcFile)
	if err != nil {
		return fmt.Errorf("failed to open source file %q: %w", srcFile, err)
	}
	defer in.Close()

	out, err := os.OpenFile(destFile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create destination file %q: %w", destFile, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy %q to %q: %w", srcFile, destFile, err)
	}
	return out.Sync()
}
