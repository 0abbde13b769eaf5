package filesystem

import (
	"fmt"
	"path"

	"github.com/pkg/sftp"
)

// newSFTPScanner creates a scanner for a remote directory tree.
func newSFTPScanner(client *sftp.Client, root string) *entryScanner {
	return newEntryScanner(func() ([]FileInfo, error) {
		files, err := collectWalk(client.Walk(root), root, relativePath)
		if err != nil {
			return nil, fmt.Errorf("error scanning SFTP directory: %w", err)
		}

		return files, nil
	})
}

// relativePath computes the relative path from root to target.
// Uses path package (not filepath) since SFTP always uses forward slashes.
func relativePath(root, target string) (string, error) {
	root = path.Clean(root)
	target = path.Clean(target)

	if root == "." {
		return target, nil
	}

	if root != "/" {
		root += "/"
	}

	if len(target) < len(root) || target[:len(root)] != root {
		if target+"/" == root {
			return ".", nil
		}

		return "", fmt.Errorf("target %s is not under root %s", target, root) //nolint:err113 // Path validation error with actual paths
	}

	relPath := target[len(root):]
	if relPath == "" {
		return ".", nil
	}

	return relPath, nil
}
