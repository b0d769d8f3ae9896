package epub

import "errors"

// Errors returned by this package. Use errors.Is to test for them;
// most are returned wrapped with additional context.
var (
	// ErrCorruptArchive indicates the container's central directory
	// cannot be read at all. Fatal: Open fails.
	ErrCorruptArchive = errors.New("epub: corrupt zip archive")

	// ErrResourceNotFound indicates the requested path or manifest id
	// has no matching archive entry. Recoverable per call.
	ErrResourceNotFound = errors.New("epub: resource not found")

	// ErrMissingContainer indicates META-INF/container.xml is absent.
	ErrMissingContainer = errors.New("epub: META-INF/container.xml not found")

	// ErrNoRootfile indicates container.xml has no rootfile element
	// with the OEBPS package media type.
	ErrNoRootfile = errors.New("epub: no package rootfile in container.xml")

	// ErrMalformedXML indicates an XML resource could not be decoded.
	ErrMalformedXML = errors.New("epub: malformed XML")

	// ErrDuplicateID indicates two manifest items share the same id.
	ErrDuplicateID = errors.New("epub: duplicate manifest item id")

	// ErrDanglingReference indicates a spine idref that does not
	// resolve to any manifest item.
	ErrDanglingReference = errors.New("epub: spine idref not in manifest")

	// ErrInvalidPath indicates an href whose resolution escapes the
	// archive root. Recoverable per call.
	ErrInvalidPath = errors.New("epub: path escapes archive root")

	// ErrOutOfBounds indicates a spine cursor movement or jump past
	// either end of the spine. Recoverable per call.
	ErrOutOfBounds = errors.New("epub: spine position out of bounds")

	// ErrNoCover indicates no cover image could be detected with any
	// of the supported strategies.
	ErrNoCover = errors.New("epub: no cover image found")
)
