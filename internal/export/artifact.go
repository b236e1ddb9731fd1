// Package export writes the results of a run to disk and to the terminal.
package export

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/raysh454/web2api/internal/logging"
	"github.com/raysh454/web2api/internal/utils"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// WriteResult describes a completed artifact write.
type WriteResult struct {
	Path  string
	Bytes int

	// Replaced is set when a previous file was overwritten; Inserted and
	// Deleted then count the changed characters.
	Replaced  bool
	Unchanged bool
	Inserted  int
	Deleted   int
}

// WriteArtifact writes text to path atomically, replacing any existing file.
func WriteArtifact(path, text string, logger logging.Logger) (*WriteResult, error) {
	logger = logging.OrNop(logger)
	if path == "" {
		return nil, errors.New("export: empty output path")
	}

	res := &WriteResult{Path: path, Bytes: len(text)}

	previous, err := os.ReadFile(path)
	switch {
	case err == nil:
		res.Replaced = true
		res.Inserted, res.Deleted = diffStats(string(previous), text)
		res.Unchanged = res.Inserted == 0 && res.Deleted == 0
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("read previous artifact: %w", err)
	}

	if err := utils.AtomicWriteFile(path, []byte(text), 0o644); err != nil {
		return nil, fmt.Errorf("write artifact: %w", err)
	}

	fields := []logging.Field{
		{Key: "path", Value: path},
		{Key: "size", Value: humanize.Bytes(uint64(len(text)))},
	}
	if res.Replaced {
		fields = append(fields,
			logging.Field{Key: "inserted_chars", Value: res.Inserted},
			logging.Field{Key: "deleted_chars", Value: res.Deleted},
			logging.Field{Key: "unchanged", Value: res.Unchanged})
	}
	logger.Info("artifact written", fields...)
	return res, nil
}

func diffStats(before, after string) (inserted, deleted int) {
	if before == after {
		return 0, 0
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(before, after, false)
	diffs = dmp.DiffCleanupSemantic(diffs)
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			inserted += len([]rune(d.Text))
		case diffmatchpatch.DiffDelete:
			deleted += len([]rune(d.Text))
		}
	}
	return inserted, deleted
}
