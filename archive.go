package epub

import (
	"archive/zip"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
)

// Archive provides byte access to the entries of the EPUB zip container.
// Lookups are matched after normalizing separators to forward slashes,
// with percent-decoded and case-insensitive fallbacks.
type Archive struct {
	zr     *zip.Reader
	closer io.Closer // non-nil only when created via OpenArchive

	files map[string]*zip.File // normalized path -> entry
	lower map[string]*zip.File // lowercase path -> entry
}

// OpenArchive opens the EPUB container at path.
// The caller must call Close when done.
func OpenArchive(path string) (*Archive, error) {
	zrc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrCorruptArchive, path, err)
	}
	a := newArchive(&zrc.Reader)
	a.closer = zrc
	return a, nil
}

// NewArchive opens the EPUB container contained in r.
// The caller is responsible for the lifetime of r.
func NewArchive(r io.ReaderAt, size int64) (*Archive, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}
	return newArchive(zr), nil
}

func newArchive(zr *zip.Reader) *Archive {
	a := &Archive{
		zr:    zr,
		files: make(map[string]*zip.File, len(zr.File)),
		lower: make(map[string]*zip.File, len(zr.File)),
	}
	for _, f := range zr.File {
		name := normalizePath(f.Name)
		if _, exists := a.files[name]; !exists {
			a.files[name] = f
		}
		low := strings.ToLower(name)
		if _, exists := a.lower[low]; !exists {
			a.lower[low] = f
		}
	}
	return a
}

// Close releases the underlying file when the Archive was created via
// OpenArchive. Close is idempotent.
func (a *Archive) Close() error {
	if a.closer != nil {
		err := a.closer.Close()
		a.closer = nil
		return err
	}
	return nil
}

// Read returns the full decompressed content of the entry at path.
// Repeated reads of the same path return byte-identical content.
// Returns ErrResourceNotFound when no entry matches.
func (a *Archive) Read(path string) ([]byte, error) {
	f := a.find(path)
	if f == nil {
		return nil, fmt.Errorf("%w: %s", ErrResourceNotFound, path)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("epub: open entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("epub: read entry %s: %w", f.Name, err)
	}
	return data, nil
}

// Exists reports whether an entry matches path after normalization.
func (a *Archive) Exists(path string) bool {
	return a.find(path) != nil
}

// Names returns the normalized paths of all entries, sorted.
func (a *Archive) Names() []string {
	names := make([]string, 0, len(a.files))
	for name := range a.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// find looks up an entry by path: exact normalized match first, then a
// percent-decoded retry, then a case-insensitive fallback.
func (a *Archive) find(path string) *zip.File {
	name := normalizePath(path)
	if f, ok := a.files[name]; ok {
		return f
	}
	if decoded, err := url.PathUnescape(name); err == nil && decoded != name {
		if f, ok := a.files[decoded]; ok {
			return f
		}
		name = decoded
	}
	if f, ok := a.lower[strings.ToLower(name)]; ok {
		return f
	}
	return nil
}

// normalizePath converts separators to forward slashes and strips any
// "./" prefix so archive lookups are keyed consistently.
func normalizePath(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	path = strings.TrimPrefix(path, "./")
	return path
}
