package compiler

import (
	"os"
	"path/filepath"
)

// DefaultSubdir is the fixed subdirectory relative output paths land in.
const DefaultSubdir = "midi-files"

// OutputConfig tells the output resolver where relative paths land. Both
// fields are explicit so the pipeline itself never consults process-wide
// environment state.
type OutputConfig struct {
	BaseDir string
	Subdir  string
}

// DefaultOutputConfig resolves the ambient defaults once, at the edge: the
// user's home directory, or the platform temp directory when no home
// directory is available.
func DefaultOutputConfig() OutputConfig {
	base, err := os.UserHomeDir()
	if err != nil || base == "" {
		base = os.TempDir()
	}
	return OutputConfig{BaseDir: base, Subdir: DefaultSubdir}
}

// ResolveOutputPath decides the final location for an encoded file.
// Absolute paths are used verbatim. A relative path keeps only its base
// name and lands under BaseDir/Subdir, creating that directory if needed;
// any directory component of a relative path is discarded, not appended,
// so output stays contained under the configured base.
func ResolveOutputPath(cfg OutputConfig, requested string) (string, error) {
	if requested == "" {
		return "", &MalformedInputError{Field: "output", Reason: "empty output path"}
	}
	if filepath.IsAbs(requested) {
		return requested, nil
	}

	dir := filepath.Join(cfg.BaseDir, cfg.Subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &IOError{Path: dir, Err: err}
	}
	path, err := filepath.Abs(filepath.Join(dir, filepath.Base(requested)))
	if err != nil {
		return "", &IOError{Path: dir, Err: err}
	}
	return path, nil
}

// writeFileAtomic writes data through a temporary file in the target
// directory and renames it into place, so a failed write never leaves a
// truncated file that could be mistaken for valid output.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return &IOError{Path: path, Err: err}
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return &IOError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return &IOError{Path: path, Err: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return &IOError{Path: path, Err: err}
	}
	return nil
}
