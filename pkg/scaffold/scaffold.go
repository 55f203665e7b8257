// Package scaffold writes a batch of directories and files with synthfs.
// Every target must live under the batch root.
package scaffold

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/arthur-debert/synthfs/pkg/synthfs"
	"github.com/arthur-debert/synthfs/pkg/synthfs/core"
	"github.com/arthur-debert/synthfs/pkg/synthfs/filesystem"
	"github.com/arthur-debert/synthfs/pkg/synthfs/operations"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/rla/pkg/errors"
	"github.com/arthur-debert/rla/pkg/logging"
)

// Batch collects filesystem operations and applies them in order
type Batch struct {
	root       string
	logger     zerolog.Logger
	filesystem synthfs.FileSystem
	ops        []synthfs.Operation
	err        error
}

// New creates a batch confined to root
func New(root string) *Batch {
	return &Batch{
		root:       filepath.Clean(root),
		logger:     logging.GetLogger("scaffold"),
		filesystem: filesystem.NewOSFileSystem("/"),
	}
}

// Dir queues a directory creation
func (b *Batch) Dir(path string, mode fs.FileMode) *Batch {
	rel, ok := b.rel(path)
	if !ok {
		return b
	}
	op := operations.NewCreateDirectoryOperation(core.OperationID("mkdir-"+rel), rel)
	op.SetItem(&directoryItem{path: rel, mode: mode})
	b.ops = append(b.ops, synthfs.NewOperationsPackageAdapter(op))
	return b
}

// File queues writing content to path
func (b *Batch) File(path string, content []byte, mode fs.FileMode) *Batch {
	rel, ok := b.rel(path)
	if !ok {
		return b
	}
	op := operations.NewCreateFileOperation(core.OperationID("write-"+rel), rel)
	op.SetItem(&fileItem{path: rel, content: content, mode: mode})
	b.ops = append(b.ops, synthfs.NewOperationsPackageAdapter(op))
	return b
}

// Len is the number of queued operations
func (b *Batch) Len() int { return len(b.ops) }

// Apply runs the queued operations. The first invalid target queued, if
// any, is reported without touching the filesystem.
func (b *Batch) Apply(ctx context.Context) error {
	if b.err != nil {
		return b.err
	}
	if len(b.ops) == 0 {
		return nil
	}

	pipeline := synthfs.NewMemPipeline()
	for _, op := range b.ops {
		if err := pipeline.Add(op); err != nil {
			return errors.Wrap(err, errors.ErrInternal, "failed to add operation to pipeline")
		}
	}

	b.logger.Debug().Str("root", b.root).Int("operationCount", len(b.ops)).Msg("Applying scaffold")

	result := synthfs.NewExecutor().Run(ctx, pipeline, b.filesystem)
	if err := result.GetError(); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write files under %s", b.root)
	}
	return nil
}

// rel checks that path is under the root and converts it to the
// root-relative form synthfs expects for an OS filesystem at "/".
func (b *Batch) rel(path string) (string, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		b.fail(errors.Wrapf(err, errors.ErrInvalidInput, "bad path %s", path))
		return "", false
	}
	if !isPathWithin(abs, b.root) {
		b.fail(errors.Newf(errors.ErrInvalidInput, "%s is outside %s", path, b.root))
		return "", false
	}
	rel, _ := filepath.Rel("/", abs)
	return rel, true
}

func (b *Batch) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func isPathWithin(path, parent string) bool {
	rel, err := filepath.Rel(filepath.Clean(parent), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// fileItem implements the interface needed for file operations
type fileItem struct {
	path    string
	content []byte
	mode    fs.FileMode
}

func (f *fileItem) Path() string       { return f.path }
func (f *fileItem) Type() string       { return "file" }
func (f *fileItem) Content() []byte    { return f.content }
func (f *fileItem) Mode() fs.FileMode  { return f.mode }
func (f *fileItem) IsDir() bool        { return false }
func (f *fileItem) ModTime() time.Time { return time.Now() }
func (f *fileItem) Size() int64        { return int64(len(f.content)) }

// directoryItem implements the interface needed for directory operations
type directoryItem struct {
	path string
	mode fs.FileMode
}

func (d *directoryItem) Path() string       { return d.path }
func (d *directoryItem) Type() string       { return "directory" }
func (d *directoryItem) Mode() fs.FileMode  { return d.mode }
func (d *directoryItem) IsDir() bool        { return true }
func (d *directoryItem) ModTime() time.Time { return time.Now() }
func (d *directoryItem) Size() int64        { return 0 }
