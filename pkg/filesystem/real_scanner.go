package filesystem

import (
	"fmt"
	"path/filepath"

	kfs "github.com/kr/fs"
)

// newRealFileScanner creates a scanner for a local directory tree, walked in
// lexical order by kr/fs.
func newRealFileScanner(root string) *entryScanner {
	return newEntryScanner(func() ([]FileInfo, error) {
		return collectWalk(kfs.Walk(root), root, filepath.Rel)
	})
}

// collectWalk drains a kr/fs walker into FileInfo values. The local and the
// SFTP scanners share it; rel computes paths relative to the root.
func collectWalk(walker *kfs.Walker, root string, rel func(root, target string) (string, error)) ([]FileInfo, error) {
	files := make([]FileInfo, 0)

	for walker.Step() {
		if err := walker.Err(); err != nil {
			return nil, fmt.Errorf("error scanning %s: %w", walker.Path(), err)
		}

		fullPath := walker.Path()
		if fullPath == root {
			continue
		}

		relPath, err := rel(root, fullPath)
		if err != nil {
			return nil, fmt.Errorf("failed to get relative path for %s: %w", fullPath, err)
		}

		if relPath == "." {
			continue
		}

		stat := walker.Stat()
		files = append(files, FileInfo{
			RelativePath: relPath,
			Size:         stat.Size(),
			ModTime:      stat.ModTime(),
			IsDir:        stat.IsDir(),
		})
	}

	return files, nil
}
