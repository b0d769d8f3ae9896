package epub

import (
	"path"
	"strings"
)

// CoverImage holds the detected cover image.
type CoverImage struct {
	// ID is the manifest id of the cover item.
	ID string

	// Path is the archive path of the cover image file.
	Path string

	// MediaType is the MIME type of the cover image.
	MediaType string

	// Data is the raw image bytes.
	Data []byte
}

// detectCover finds the cover image manifest item. Methods are tried in
// priority order:
//  1. properties="cover-image" (EPUB 3)
//  2. <meta name="cover"> manifest id (EPUB 2)
//  3. guide reference type="cover" matched to an image item
//  4. filename pattern: image item whose basename contains "cover"
//
// SVG is excluded from the media-type based methods. Returns false when
// no method matches.
func detectCover(opf *OPF) (ManifestItem, bool) {
	for _, id := range opf.ManifestOrder {
		if item := opf.Manifest[id]; item.HasProperty("cover-image") {
			return item, true
		}
	}

	if opf.CoverID != "" {
		if item, ok := opf.Manifest[opf.CoverID]; ok {
			return item, true
		}
	}

	for _, ref := range opf.Guide {
		if ref.Type != "cover" {
			continue
		}
		guideHref, _ := SplitFragment(ref.Href)
		for _, id := range opf.ManifestOrder {
			item := opf.Manifest[id]
			if isImageMediaType(item.MediaType) && item.Href == guideHref {
				return item, true
			}
		}
	}

	for _, id := range opf.ManifestOrder {
		item := opf.Manifest[id]
		if !isImageMediaType(item.MediaType) {
			continue
		}
		if strings.Contains(strings.ToLower(path.Base(item.Href)), "cover") {
			return item, true
		}
	}

	return ManifestItem{}, false
}

// isImageMediaType reports whether mediaType is a raster image type.
func isImageMediaType(mediaType string) bool {
	if mediaType == "image/svg+xml" {
		return false
	}
	return strings.HasPrefix(mediaType, "image/")
}
