package compiler

import (
	"github.com/tubone24/midi-mcp-server/pkg/smf"
)

// ProgressFunc observes compilation progress. done counts notes sequenced
// so far across the whole composition, total the overall note count.
// Reporting is cosmetic instrumentation: it never changes the produced
// bytes, and compilation is identical when no callback is set.
type ProgressFunc func(done, total int)

// progressBatch is how many notes are sequenced between progress reports.
const progressBatch = 10

// Option configures a Compiler.
type Option func(*Compiler)

// WithOutputConfig overrides where relative output paths resolve.
func WithOutputConfig(cfg OutputConfig) Option {
	return func(c *Compiler) {
		c.out = cfg
	}
}

// WithProgress installs a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(c *Compiler) {
		c.progress = fn
	}
}

// Compiler runs the composition-to-SMF pipeline: normalize, convert timing,
// sequence events, encode, write. One compilation is a single synchronous
// pass; a Compiler holds no state across invocations and may be reused.
type Compiler struct {
	out      OutputConfig
	progress ProgressFunc
}

// New creates a Compiler. Without options, relative output paths resolve
// under the default base directory (home, or temp when unavailable).
func New(opts ...Option) *Compiler {
	c := &Compiler{out: DefaultOutputConfig()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CompileBytes normalizes the composition in place and encodes it into SMF
// bytes without touching the filesystem.
func (c *Compiler) CompileBytes(comp *Composition) ([]byte, error) {
	if comp == nil {
		return nil, &MalformedInputError{Reason: "nil composition"}
	}
	if err := comp.Normalize(); err != nil {
		return nil, err
	}

	total := 0
	for i := range comp.Tracks {
		total += len(comp.Tracks[i].Notes)
	}

	done := 0
	onNote := func() {
		done++
		if c.progress != nil && (done%progressBatch == 0 || done == total) {
			c.progress(done, total)
		}
	}

	file := &smf.File{TicksPerQuarter: PPQN}
	for i := range comp.Tracks {
		file.Tracks = append(file.Tracks, sequenceTrack(comp, i, onNote))
	}

	return file.Encode()
}

// Compile runs the full pipeline and writes the result, returning the
// absolute path written. outPath goes through the output resolver: absolute
// paths are honored verbatim, relative paths land under the configured base
// directory.
func (c *Compiler) Compile(comp *Composition, outPath string) (string, error) {
	data, err := c.CompileBytes(comp)
	if err != nil {
		return "", err
	}

	path, err := ResolveOutputPath(c.out, outPath)
	if err != nil {
		return "", err
	}
	if err := writeFileAtomic(path, data); err != nil {
		return "", err
	}
	return path, nil
}
