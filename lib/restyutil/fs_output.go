package restyutil

import (
	"log/slog"
	"os"
	"path/filepath"
)

type FilesystemOutput struct {
	directory string
}

// NewFilesystemOutput creates dir (if missing) and writes every message into
// it as its own file. Existing files are overwritten as ids repeat per run.
func NewFilesystemOutput(dir string) (FilesystemOutput, error) {
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return FilesystemOutput{}, err
	}
	return FilesystemOutput{directory: dir}, nil
}

func (o FilesystemOutput) Write(id string, contents string) {
	err := os.WriteFile(filepath.Join(o.directory, id), []byte(contents), 0600)
	if err != nil {
		slog.Warn("failed to write message info file", "id", id, "err", err)
	}
}
