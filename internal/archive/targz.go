package archive

import (
	"archive/tar"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/gzip"
)

const entryMode = 0o644

// TarGzWriter appends entries to a gzip compressed tar stream.
//
// Every Add flushes the compressor so the entry reaches dst before the next one is fetched.
// Close writes the trailers; a stream that is never closed reads as truncated.
type TarGzWriter struct {
	gz      *gzip.Writer
	tw      *tar.Writer
	entries int
	written int64
	closed  bool
}

func NewTarGzWriter(dst io.Writer) *TarGzWriter {
	gz := gzip.NewWriter(dst)
	return &TarGzWriter{
		gz: gz,
		tw: tar.NewWriter(gz),
	}
}

// Add writes one regular file entry of exactly size bytes read from r.
func (w *TarGzWriter) Add(name string, size int64, r io.Reader) error {
	if w.closed {
		return fmt.Errorf("archive is closed")
	}

	hdr := &tar.Header{
		Typeflag: tar.TypeReg,
		Name:     name,
		Size:     size,
		Mode:     entryMode,
		ModTime:  time.Now().Truncate(time.Second),
	}
	if err := w.tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("failed to write header of %q: %w", name, err)
	}

	n, err := io.Copy(w.tw, r)
	if err != nil {
		return fmt.Errorf("failed to write %q: %w", name, err)
	}
	if n != size {
		return fmt.Errorf("failed to write %q: expected %d bytes, read %d", name, size, n)
	}

	if err := w.tw.Flush(); err != nil {
		return err
	}
	if err := w.gz.Flush(); err != nil {
		return err
	}

	w.entries++
	w.written += n
	return nil
}

// Entries returns the number of entries added so far.
func (w *TarGzWriter) Entries() int {
	return w.entries
}

// Written returns the payload bytes added so far, headers excluded.
func (w *TarGzWriter) Written() int64 {
	return w.written
}

func (w *TarGzWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.tw.Close(); err != nil {
		return err
	}
	return w.gz.Close()
}

type walkBreak struct {
	error string
}

func (w walkBreak) Error() string {
	return w.error
}

func WalkBreak() walkBreak {
	return walkBreak{}
}

// TarWalker handles one tar entry. err is the error reading the entry and is never io.EOF.
// Return WalkBreak() to stop early.
type TarWalker func(header *tar.Header, payload io.Reader, err error) error

// TarGzWalk calls walker for each entry of the tar.gz stream. It does not close from.
//
// A stream without trailers surfaces as io.ErrUnexpectedEOF, passed to walker.
func TarGzWalk(from io.Reader, walker TarWalker) error {
	gzin, err := gzip.NewReader(from)
	if err != nil {
		return err
	}
	defer gzin.Close()

	tarin := tar.NewReader(gzin)
	for {
		header, err := tarin.Next()
		if err == io.EOF {
			return nil
		}
		err = walker(header, tarin, err)
		if err == nil {
			continue
		}
		switch err.(type) {
		case walkBreak:
			return nil
		default:
			return err
		}
	}
}
