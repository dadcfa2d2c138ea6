package tsv

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/pgnc/pgnc-upload/internal/checksum"
	"github.com/pgnc/pgnc-upload/internal/files/filesystem"
	"github.com/pgnc/pgnc-upload/pkg/pgnc"
)

// ContextCheckInterval is how often (in lines) the reader checks for cancellation.
var ContextCheckInterval = 500

// MaxLineBytes caps a single line. Gene names are short; anything longer is a broken file.
const MaxLineBytes = 1 << 20

const utf8BOM = "\ufeff"

// HeaderIndex maps a column name to its position in a data line.
type HeaderIndex map[string]int

// Position returns the field index for column and whether it is known.
func (h HeaderIndex) Position(column string) (int, bool) {
	pos, ok := h[column]
	return pos, ok
}

// File is a parsed upload file.
type File struct {
	Path   string
	Header HeaderIndex
	Rows   []pgnc.RawRow

	// Checksum is the hex SHA-256 of every byte read.
	Checksum string
	// Size is the number of bytes read.
	Size int64
}

// Reader parses upload files from a filesystem provider.
type Reader struct {
	fs filesystem.FileSystemProvider
}

// NewReader creates a Reader. Panics if fs is nil.
func NewReader(fs filesystem.FileSystemProvider) *Reader {
	if fs == nil {
		panic("filesystem provider cannot be nil")
	}
	return &Reader{fs: fs}
}

// ReadFile opens path, checks the header, and returns every non-blank data line.
// All failures wrap pgnc.ErrFileInvalid.
func (r *Reader) ReadFile(ctx context.Context, path string) (*File, error) {
	if path == "" {
		return nil, fmt.Errorf("no input file given: %w", pgnc.ErrFileInvalid)
	}

	info, err := r.fs.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %v: %w", path, err, pgnc.ErrFileInvalid)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory: %w", path, pgnc.ErrFileInvalid)
	}

	rc, err := r.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %v: %w", path, err, pgnc.ErrFileInvalid)
	}
	defer rc.Close()

	hashed := checksum.NewReader(rc)
	sc := bufio.NewScanner(hashed)
	sc.Buffer(make([]byte, 64*1024), MaxLineBytes)

	file := &File{Path: path}
	lineNum := 0
	dataRow := 0

	for sc.Scan() {
		lineNum++
		if lineNum%ContextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("reading %s: %w", path, pgnc.Interrupted(err))
			}
		}

		line := strings.TrimRight(sc.Text(), "\r")
		if lineNum == 1 {
			line = strings.TrimPrefix(line, utf8BOM)
			header, err := ParseHeader(line)
			if err != nil {
				return nil, fmt.Errorf("%s:1: %w", path, err)
			}
			file.Header = header
			continue
		}

		// A line holding a tab is a row with empty fields, not a blank line.
		if strings.Trim(line, " ") == "" {
			continue
		}

		dataRow++
		file.Rows = append(file.Rows, pgnc.RawRow{
			Line:     dataRow,
			FileLine: lineNum,
			Fields:   strings.Split(line, "\t"),
		})
	}

	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("cannot read %s: %v: %w", path, err, pgnc.ErrFileInvalid)
	}
	if file.Header == nil {
		return nil, fmt.Errorf("%s is empty, expected a header line: %w", path, pgnc.ErrFileInvalid)
	}
	file.Checksum = hashed.Sum()
	file.Size = hashed.Size()

	return file, nil
}

// ParseHeader checks a header line against pgnc.Columns. Names are matched
// exactly and in order.
func ParseHeader(line string) (HeaderIndex, error) {
	got := strings.Split(line, "\t")
	if len(got) != len(pgnc.Columns) {
		return nil, fmt.Errorf("header has %d columns, expected %d (%s): %w",
			len(got), len(pgnc.Columns), strings.Join(pgnc.Columns, ", "), pgnc.ErrFileInvalid)
	}

	idx := make(HeaderIndex, len(got))
	for i, want := range pgnc.Columns {
		if got[i] != want {
			return nil, fmt.Errorf("header column %d is %q, expected %q: %w",
				i+1, got[i], want, pgnc.ErrFileInvalid)
		}
		idx[want] = i
	}
	return idx, nil
}
