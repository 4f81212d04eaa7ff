package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Columns is the fixed header of the result TSV.
var Columns = []string{
	"smallvariantqueryresultset_id",
	"sodar_uuid",
	"release",
	"chromosome",
	"chromosome_no",
	"start",
	"end",
	"bin",
	"reference",
	"alternative",
	"payload",
}

// Writer writes result rows in tab-delimited format. The payload column
// carries raw JSON, so fields are joined manually instead of going through
// a quoting csv writer.
type Writer struct {
	w *bufio.Writer
}

// NewWriter creates a Writer on w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// WriteHeader writes the header line.
func (w *Writer) WriteHeader() error {
	_, err := w.w.WriteString(strings.Join(Columns, "\t") + "\n")
	return err
}

// WriteRow writes a single result row.
func (w *Writer) WriteRow(row *Row) error {
	fields := []string{
		row.ResultSetID,
		row.SodarUUID,
		row.Release,
		row.Chromosome,
		strconv.Itoa(row.ChromosomeNo),
		strconv.FormatInt(row.Start, 10),
		strconv.FormatInt(row.End, 10),
		strconv.Itoa(row.Bin),
		row.Reference,
		row.Alternative,
		row.Payload,
	}
	_, err := w.w.WriteString(strings.Join(fields, "\t") + "\n")
	return err
}

// Flush flushes buffered output.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

// FileWriter writes the result TSV to a temporary file next to the target
// path and renames it into place on Commit, so an aborted run never leaves
// a file that looks like a valid result. Paths ending in ".gz" are
// gzip-compressed transparently.
type FileWriter struct {
	*Writer
	f         *os.File
	gz        *gzip.Writer
	path      string
	tmpPath   string
	committed bool
}

// CreateFile creates a FileWriter targeting path.
func CreateFile(path string) (*FileWriter, error) {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("create output file %s: %w", tmpPath, err)
	}

	fw := &FileWriter{f: f, path: path, tmpPath: tmpPath}
	if strings.HasSuffix(path, ".gz") {
		fw.gz = gzip.NewWriter(f)
		fw.Writer = NewWriter(fw.gz)
	} else {
		fw.Writer = NewWriter(f)
	}
	return fw, nil
}

// Commit flushes, syncs, and renames the temporary file to the target
// path. After Commit, Close is a no-op.
func (fw *FileWriter) Commit() error {
	if err := fw.Flush(); err != nil {
		return fmt.Errorf("flush output %s: %w", fw.tmpPath, err)
	}
	if fw.gz != nil {
		if err := fw.gz.Close(); err != nil {
			return fmt.Errorf("close gzip stream %s: %w", fw.tmpPath, err)
		}
	}
	if err := fw.f.Sync(); err != nil {
		return fmt.Errorf("sync output %s: %w", fw.tmpPath, err)
	}
	if err := fw.f.Close(); err != nil {
		return fmt.Errorf("close output %s: %w", fw.tmpPath, err)
	}
	if err := os.Rename(fw.tmpPath, fw.path); err != nil {
		return fmt.Errorf("rename output %s: %w", fw.path, err)
	}
	fw.committed = true
	return nil
}

// Close removes the temporary file unless Commit succeeded.
func (fw *FileWriter) Close() error {
	if fw.committed {
		return nil
	}
	fw.f.Close()
	return os.Remove(fw.tmpPath)
}
