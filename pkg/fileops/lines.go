package fileops

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

// CountLines returns the number of lines in path. A final line without a
// terminator counts. On failure the count read so far is returned.
func (fo *FileOps) CountLines(path string) (int, error) {
	file, err := fo.FS.Open(path)
	if err != nil {
		return 0, fo.handle(err, "failed to count lines in "+path)
	}

	defer func() {
		_ = file.Close()
	}()

	count := 0
	pending := false
	buf := make([]byte, BufferSize)

	for {
		n, err := file.Read(buf) //nolint:varnamelen // n is idiomatic for bytes read
		if n > 0 {
			newlines := bytes.Count(buf[:n], []byte{'\n'})
			count += newlines
			pending = buf[n-1] != '\n'
		}

		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return count, fo.handle(fmt.Errorf("failed to read %s: %w", path, err), "failed to count lines in "+path)
		}
	}

	if pending {
		count++
	}

	return count, nil
}

// EachLine calls fn with the zero-based index and text of every line of
// path, terminators stripped. An error from fn stops the iteration and is
// returned as is; open and read failures follow the policy.
func (fo *FileOps) EachLine(path string, fn func(index int, line string) error) error {
	file, err := fo.FS.Open(path)
	if err != nil {
		return fo.handle(err, "failed to read lines of "+path)
	}

	defer func() {
		_ = file.Close()
	}()

	reader := bufio.NewReader(file)

	for index := 0; ; index++ {
		line, err := reader.ReadString('\n')
		if line != "" {
			line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
			if fnErr := fn(index, line); fnErr != nil {
				return fnErr
			}
		}

		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return fo.handle(fmt.Errorf("failed to read %s: %w", path, err), "failed to read lines of "+path)
		}
	}
}
