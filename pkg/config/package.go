package config

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ExtractIfTar extracts pkg.ArtifactPath into dir when the topology's
// package kind is tar; jar packages need no extraction step. Failures
// here are a configuration error: nothing can be launched without the
// user code on disk.
func ExtractIfTar(pkg Package, dir string) error {
	if pkg.Kind != PackageTar {
		return nil
	}

	f, err := os.Open(pkg.ArtifactPath)
	if err != nil {
		return configurationError(fmt.Sprintf("open topology package: %v", err))
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return configurationError(fmt.Sprintf("gzip reader: %v", err))
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return configurationError(fmt.Sprintf("tar read: %v", err))
		}

		target := filepath.Join(dir, hdr.Name)
		if !strings.HasPrefix(target, filepath.Clean(dir)+string(os.PathSeparator)) && target != filepath.Clean(dir) {
			return configurationError(fmt.Sprintf("tar entry %q escapes the extraction directory", hdr.Name))
		}
		if err := extractEntry(tr, hdr, target); err != nil {
			return configurationError(fmt.Sprintf("tar extract %s: %v", hdr.Name, err))
		}
	}

	return nil
}

func extractEntry(tr *tar.Reader, hdr *tar.Header, target string) error {
	switch hdr.Typeflag {
	case tar.TypeDir:
		return os.MkdirAll(target, 0o755)
	case tar.TypeReg:
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, os.FileMode(hdr.Mode))
		if err != nil {
			return err
		}
		defer out.Close()
		_, err = io.Copy(out, tr)
		return err
	default:
		return nil
	}
}

// MakeExecutable chmod +x's every path in binaries, skipping empty
// strings (binaries that weren't configured for this deployment).
func MakeExecutable(binaries ...string) error {
	for _, b := range binaries {
		if b == "" {
			continue
		}
		info, err := os.Stat(b)
		if err != nil {
			continue
		}
		if err := os.Chmod(b, info.Mode()|0o111); err != nil {
			return fmt.Errorf("chmod +x %s: %w", b, err)
		}
	}
	return nil
}
