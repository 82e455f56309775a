package supervisor

import (
	"fmt"
	"os"
	"path/filepath"
)

// chmodCoreDump makes core.<pid> in dir (the working directory, where
// the kernel drops core files) world-readable if present. Missing core
// files are the common case and are silently ignored.
func chmodCoreDump(dir string, pid int) {
	path := filepath.Join(dir, fmt.Sprintf("core.%d", pid))
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	os.Chmod(path, info.Mode()|0o444)
}
