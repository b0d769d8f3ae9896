package epub

import (
	"fmt"
	"io"
	"path"
)

// Document is the handle to an opened EPUB publication. It owns the
// archive and the parsed package structures, which are immutable after
// Open; the spine cursor is the only mutable state.
//
// A Document is not safe for concurrent use by multiple goroutines.
type Document struct {
	archive  *Archive
	rootfile string
	opf      *OPF
	toc      []NavPoint

	// current is the spine cursor, clamped to [0, len(spine)).
	current int
}

// Open opens the EPUB file at path.
// The caller must call Close when done.
func Open(path string) (*Document, error) {
	a, err := OpenArchive(path)
	if err != nil {
		return nil, err
	}
	doc, err := newDocument(a)
	if err != nil {
		a.Close()
		return nil, err
	}
	return doc, nil
}

// NewReader opens the EPUB contained in r with the given size.
// The caller is responsible for the lifetime of r.
func NewReader(r io.ReaderAt, size int64) (*Document, error) {
	a, err := NewArchive(r, size)
	if err != nil {
		return nil, err
	}
	return newDocument(a)
}

// newDocument runs the parse pipeline: locate the package document,
// parse it, and build the table of contents. Every structural defect
// surfaces here; nothing is deferred to later calls.
func newDocument(a *Archive) (*Document, error) {
	rootfile, err := locateRootfile(a)
	if err != nil {
		return nil, err
	}

	data, err := a.Read(rootfile)
	if err != nil {
		return nil, fmt.Errorf("epub: package document: %w", err)
	}

	opf, err := ParseOPF(data, path.Dir(rootfile))
	if err != nil {
		return nil, err
	}

	toc, err := buildTOC(a, opf)
	if err != nil {
		return nil, err
	}

	return &Document{
		archive:  a,
		rootfile: rootfile,
		opf:      opf,
		toc:      toc,
	}, nil
}

// Close releases the underlying file when the Document was created via
// Open. Close is idempotent.
func (d *Document) Close() error {
	return d.archive.Close()
}

// PackagePath returns the archive path of the package document.
func (d *Document) PackagePath() string {
	return d.rootfile
}

// BaseDir returns the package document's directory inside the archive.
func (d *Document) BaseDir() string {
	return d.opf.BaseDir
}

// Version returns the package version attribute (e.g. "2.0", "3.0").
func (d *Document) Version() string {
	return d.opf.Version
}

// Metadata returns the package metadata. The returned value is a
// read-only view; accessors copy on read.
func (d *Document) Metadata() Metadata {
	return d.opf.Metadata
}

// MetadataValue returns the first metadata value recorded for key.
func (d *Document) MetadataValue(key string) (string, bool) {
	return d.opf.Metadata.First(key)
}

// Manifest returns the manifest items in document order.
func (d *Document) Manifest() []ManifestItem {
	items := make([]ManifestItem, 0, len(d.opf.ManifestOrder))
	for _, id := range d.opf.ManifestOrder {
		items = append(items, d.opf.Manifest[id])
	}
	return items
}

// ItemByID returns the manifest item with the given id.
func (d *Document) ItemByID(id string) (ManifestItem, bool) {
	item, ok := d.opf.Manifest[id]
	return item, ok
}

// ItemByHref returns the manifest item whose resolved href matches path.
func (d *Document) ItemByHref(path string) (ManifestItem, bool) {
	return d.opf.ItemByHref(path)
}

// Spine returns the spine items in reading order.
func (d *Document) Spine() []SpineItem {
	return append([]SpineItem(nil), d.opf.Spine...)
}

// SpineLen returns the number of spine items.
func (d *Document) SpineLen() int {
	return len(d.opf.Spine)
}

// TOC returns the table of contents as a tree of NavPoint. The slice is
// empty, not nil, when the publication declares no navigation resource.
func (d *Document) TOC() []NavPoint {
	return copyNavPoints(d.toc)
}

// ResourceByID returns the content and media type of the manifest item
// with the given id. Returns ErrResourceNotFound when the id is unknown
// or the archive holds no entry at the item's href.
func (d *Document) ResourceByID(id string) ([]byte, string, error) {
	item, ok := d.opf.Manifest[id]
	if !ok {
		return nil, "", fmt.Errorf("%w: manifest id %q", ErrResourceNotFound, id)
	}
	data, err := d.archive.Read(item.Href)
	if err != nil {
		return nil, "", err
	}
	return data, item.MediaType, nil
}

// ResourceByPath returns the content of the archive entry at path.
// The path addresses the archive root directly, not the package base.
func (d *Document) ResourceByPath(path string) ([]byte, error) {
	return d.archive.Read(path)
}

// CurrentResource returns the manifest item and content at the spine
// cursor.
func (d *Document) CurrentResource() (ManifestItem, []byte, error) {
	if d.current >= len(d.opf.Spine) {
		return ManifestItem{}, nil, ErrOutOfBounds
	}
	item := d.opf.Manifest[d.opf.Spine[d.current].IDRef]
	data, err := d.archive.Read(item.Href)
	if err != nil {
		return ManifestItem{}, nil, err
	}
	return item, data, nil
}

// Position returns the current spine cursor, 0-based.
func (d *Document) Position() int {
	return d.current
}

// SetPosition jumps the cursor directly to position i.
// Returns ErrOutOfBounds for i < 0 or i >= SpineLen without moving.
func (d *Document) SetPosition(i int) error {
	if i < 0 || i >= len(d.opf.Spine) {
		return fmt.Errorf("%w: %d", ErrOutOfBounds, i)
	}
	d.current = i
	return nil
}

// Next moves the cursor to the next spine item.
// Returns ErrOutOfBounds at the last position without moving.
func (d *Document) Next() error {
	if d.current+1 >= len(d.opf.Spine) {
		return ErrOutOfBounds
	}
	d.current++
	return nil
}

// Prev moves the cursor to the previous spine item.
// Returns ErrOutOfBounds at position 0 without moving.
func (d *Document) Prev() error {
	if d.current < 1 {
		return ErrOutOfBounds
	}
	d.current--
	return nil
}

// PositionByID returns the spine position of the manifest id.
func (d *Document) PositionByID(id string) (int, bool) {
	for i, si := range d.opf.Spine {
		if si.IDRef == id {
			return i, true
		}
	}
	return 0, false
}

// PositionByPath returns the spine position of the resource at the
// given archive path.
func (d *Document) PositionByPath(path string) (int, bool) {
	item, ok := d.opf.ItemByHref(path)
	if !ok {
		return 0, false
	}
	return d.PositionByID(item.ID)
}

// UniqueIdentifier returns the value of the dc:identifier element
// referenced by the package unique-identifier attribute, or "".
func (d *Document) UniqueIdentifier() string {
	return d.opf.UniqueIdentifier
}

// ReleaseIdentifier returns the EPUB3 release identifier, the unique
// identifier joined with the dcterms:modified timestamp. Returns false
// when either part is missing.
func (d *Document) ReleaseIdentifier() (string, bool) {
	modified, ok := d.opf.Metadata.First("dcterms:modified")
	if !ok || d.opf.UniqueIdentifier == "" {
		return "", false
	}
	return d.opf.UniqueIdentifier + "@" + modified, true
}

// PageProgressionDirection returns the spine's page-progression-direction
// attribute, or "" when absent.
func (d *Document) PageProgressionDirection() string {
	return d.opf.PageProgressionDirection
}

// Cover detects and reads the cover image.
// Returns ErrNoCover when no detection strategy matches.
func (d *Document) Cover() (*CoverImage, error) {
	item, ok := detectCover(d.opf)
	if !ok {
		return nil, ErrNoCover
	}
	data, err := d.archive.Read(item.Href)
	if err != nil {
		return nil, err
	}
	return &CoverImage{
		ID:        item.ID,
		Path:      item.Href,
		MediaType: item.MediaType,
		Data:      data,
	}, nil
}

// copyNavPoints deep-copies a NavPoint tree so callers cannot mutate
// the parsed structures.
func copyNavPoints(in []NavPoint) []NavPoint {
	if in == nil {
		return nil
	}
	out := make([]NavPoint, len(in))
	for i := range in {
		out[i] = in[i]
		out[i].Children = copyNavPoints(in[i].Children)
	}
	return out
}
