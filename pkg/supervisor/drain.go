package supervisor

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// maxDrainBytes bounds how much of a dead child's output is pulled
// into the executor's own log on reap.
const maxDrainBytes = 4096

// drainOutput logs the tail of the dead child's stdout/stderr files,
// so a crashing child's last output lands in the executor's log next
// to the exit record.
func (s *Supervisor) drainOutput(childLog zerolog.Logger, name string) {
	for _, stream := range []string{"stdout", "stderr"} {
		tail, err := tailFile(filepath.Join(s.logDir, name+"."+stream), maxDrainBytes)
		if err != nil || tail == "" {
			continue
		}
		childLog.Info().Str("stream", stream).Msg(tail)
	}
}

// tailFile returns up to the last n bytes of path, trimmed of
// surrounding whitespace.
func tailFile(path string, n int64) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}

	if offset := info.Size() - n; offset > 0 {
		if _, err := f.Seek(offset, io.SeekStart); err != nil {
			return "", err
		}
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
