package epub

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ncxMediaType identifies the legacy EPUB2 navigation control file.
const ncxMediaType = "application/x-dtbncx+xml"

// navProperty is the manifest property marking the EPUB3 nav document.
const navProperty = "nav"

// NavPoint represents a single entry in the table of contents.
// Entries form a tree; each node owns its children outright.
type NavPoint struct {
	// Label is the visible text of the entry, whitespace-collapsed.
	Label string

	// ContentPath is the archive path of the target resource,
	// fragment-free and resolved against the navigation resource's
	// own directory.
	ContentPath string

	// Fragment is the fragment identifier of the target, without '#'.
	Fragment string

	// PlayOrder is the entry's position in the table of contents. For
	// NCX sources it is the playOrder attribute when present; otherwise
	// entries are numbered sequentially in document order.
	PlayOrder int

	// Children contains nested entries in document order.
	Children []NavPoint
}

// Href returns the entry target as a single href, including the
// fragment when present.
func (n NavPoint) Href() string {
	if n.Fragment == "" {
		return n.ContentPath
	}
	return n.ContentPath + "#" + n.Fragment
}

// buildTOC locates the navigation resource declared by the manifest and
// parses it into a NavPoint tree.
//
// The EPUB3 nav document (manifest property "nav") is preferred; the
// EPUB2 NCX (spine toc reference, or NCX media type) is the fallback.
// A publication declaring no navigation resource yields an empty table
// of contents, not an error.
func buildTOC(a *Archive, opf *OPF) ([]NavPoint, error) {
	if item, ok := findNavItem(opf); ok {
		data, err := a.Read(item.Href)
		if err != nil {
			return nil, fmt.Errorf("epub: nav document: %w", err)
		}
		return parseNavDoc(data, path.Dir(item.Href))
	}

	if item, ok := findNCXItem(opf); ok {
		data, err := a.Read(item.Href)
		if err != nil {
			return nil, fmt.Errorf("epub: ncx: %w", err)
		}
		return parseNCX(data, path.Dir(item.Href))
	}

	return []NavPoint{}, nil
}

// findNavItem returns the first manifest item carrying the nav property,
// in manifest document order.
func findNavItem(opf *OPF) (ManifestItem, bool) {
	for _, id := range opf.ManifestOrder {
		if item := opf.Manifest[id]; item.HasProperty(navProperty) {
			return item, true
		}
	}
	return ManifestItem{}, false
}

// findNCXItem returns the NCX manifest item, located through the spine's
// legacy toc reference or, failing that, by media type.
func findNCXItem(opf *OPF) (ManifestItem, bool) {
	if opf.TocID != "" {
		if item, ok := opf.Manifest[opf.TocID]; ok {
			return item, true
		}
	}
	for _, id := range opf.ManifestOrder {
		if item := opf.Manifest[id]; item.MediaType == ncxMediaType {
			return item, true
		}
	}
	return ManifestItem{}, false
}

// --- EPUB3 nav document ---

// parseNavDoc parses an XHTML nav document into a NavPoint tree.
// navDir is the nav document's own directory; relative hrefs resolve
// against it, which may differ from the package base directory.
func parseNavDoc(data []byte, navDir string) ([]NavPoint, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: nav document: %v", ErrMalformedXML, err)
	}

	var toc *goquery.Selection
	doc.Find("nav").EachWithBreak(func(_ int, nav *goquery.Selection) bool {
		if hasEpubType(nav, "toc") {
			toc = nav
			return false
		}
		return true
	})
	if toc == nil {
		return []NavPoint{}, nil
	}

	list := toc.Find("ol").First()
	if list.Length() == 0 {
		return []NavPoint{}, nil
	}

	order := 0
	points, err := parseNavList(list, navDir, &order)
	if err != nil {
		return nil, err
	}
	if points == nil {
		points = []NavPoint{}
	}
	return points, nil
}

// parseNavList converts an <ol> element into NavPoints, recursing into
// nested lists. Depth is unbounded.
func parseNavList(list *goquery.Selection, navDir string, order *int) ([]NavPoint, error) {
	var points []NavPoint
	var walkErr error

	list.ChildrenFiltered("li").EachWithBreak(func(_ int, li *goquery.Selection) bool {
		*order++
		np := NavPoint{PlayOrder: *order}

		if a := li.ChildrenFiltered("a").First(); a.Length() > 0 {
			np.Label = collapseWhitespace(a.Text())
			href := a.AttrOr("href", "")
			_, np.Fragment = SplitFragment(href)
			resolved, err := ResolveHref(navDir, href)
			if err != nil {
				walkErr = fmt.Errorf("epub: nav entry %q: %w", np.Label, err)
				return false
			}
			np.ContentPath = resolved
		} else if span := li.ChildrenFiltered("span").First(); span.Length() > 0 {
			// Headings without a target are allowed to group children.
			np.Label = collapseWhitespace(span.Text())
		}

		if sub := li.ChildrenFiltered("ol").First(); sub.Length() > 0 {
			children, err := parseNavList(sub, navDir, order)
			if err != nil {
				walkErr = err
				return false
			}
			np.Children = children
		}

		points = append(points, np)
		return true
	})

	if walkErr != nil {
		return nil, walkErr
	}
	return points, nil
}

// hasEpubType reports whether the selection's epub:type attribute
// contains the given token (space-separated matching).
func hasEpubType(s *goquery.Selection, typeName string) bool {
	for _, t := range strings.Fields(s.AttrOr("epub:type", "")) {
		if t == typeName {
			return true
		}
	}
	return false
}

// --- EPUB2 NCX ---

type ncxDocument struct {
	XMLName xml.Name      `xml:"ncx"`
	NavMap  []ncxNavPoint `xml:"navMap>navPoint"`
}

type ncxNavPoint struct {
	PlayOrder string        `xml:"playOrder,attr"`
	Label     string        `xml:"navLabel>text"`
	Content   ncxContent    `xml:"content"`
	Children  []ncxNavPoint `xml:"navPoint"`
}

type ncxContent struct {
	Src string `xml:"src,attr"`
}

// parseNCX parses an NCX navigation control file into a NavPoint tree.
// ncxDir is the NCX file's own directory, used to resolve content srcs.
func parseNCX(data []byte, ncxDir string) ([]NavPoint, error) {
	var doc ncxDocument
	if err := xml.Unmarshal(stripBOM(data), &doc); err != nil {
		return nil, fmt.Errorf("%w: ncx: %v", ErrMalformedXML, err)
	}

	order := 0
	points, err := convertNavPoints(doc.NavMap, ncxDir, &order)
	if err != nil {
		return nil, err
	}
	if points == nil {
		points = []NavPoint{}
	}
	return points, nil
}

// convertNavPoints recursively maps navPoint elements to NavPoints in
// document order.
func convertNavPoints(raw []ncxNavPoint, ncxDir string, order *int) ([]NavPoint, error) {
	var points []NavPoint
	for _, p := range raw {
		*order++
		np := NavPoint{
			Label:     collapseWhitespace(p.Label),
			PlayOrder: *order,
		}
		if po, err := strconv.Atoi(strings.TrimSpace(p.PlayOrder)); err == nil {
			np.PlayOrder = po
		}

		src := strings.TrimSpace(p.Content.Src)
		if src != "" {
			_, np.Fragment = SplitFragment(src)
			resolved, err := ResolveHref(ncxDir, src)
			if err != nil {
				return nil, fmt.Errorf("epub: ncx entry %q: %w", np.Label, err)
			}
			np.ContentPath = resolved
		}

		children, err := convertNavPoints(p.Children, ncxDir, order)
		if err != nil {
			return nil, err
		}
		np.Children = children

		points = append(points, np)
	}
	return points, nil
}

// collapseWhitespace trims s and collapses internal whitespace runs to
// single spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
