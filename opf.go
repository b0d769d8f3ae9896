package epub

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// dcNamespace is the Dublin Core namespace used by OPF metadata elements.
const dcNamespace = "http://purl.org/dc/elements/1.1/"

// ManifestItem represents an item in the package manifest. Href is
// resolved against the package document's directory, so it addresses the
// archive root directly.
type ManifestItem struct {
	ID         string
	Href       string
	MediaType  string
	Properties []string
}

// HasProperty reports whether the item declares the given property
// (space-separated token matching, e.g. "nav" or "cover-image").
func (m ManifestItem) HasProperty(prop string) bool {
	for _, p := range m.Properties {
		if p == prop {
			return true
		}
	}
	return false
}

// SpineItem represents an itemref in the spine.
type SpineItem struct {
	IDRef  string
	Linear bool
}

// GuideReference represents a reference in the legacy EPUB2 guide.
type GuideReference struct {
	Type  string
	Title string
	Href  string
}

// OPF represents the parsed package document: metadata, manifest, spine
// and guide, plus the attributes needed to interpret them. Read-only
// after parse.
type OPF struct {
	Version string

	// BaseDir is the package document's directory inside the archive.
	// All relative hrefs in the package resolve against it.
	BaseDir string

	Metadata      Metadata
	Manifest      map[string]ManifestItem
	ManifestOrder []string
	Spine         []SpineItem
	Guide         []GuideReference

	// TocID is the spine's legacy toc attribute referencing the NCX.
	TocID string

	// PageProgressionDirection is the spine's page-progression-direction
	// attribute ("ltr", "rtl"), empty when absent.
	PageProgressionDirection string

	// UniqueIdentifier is the value of the dc:identifier element
	// referenced by the package unique-identifier attribute.
	UniqueIdentifier string

	// CoverID is the manifest id named by <meta name="cover">, if any.
	CoverID string
}

// --- OPF XML decoding structs ---

type opfPackage struct {
	XMLName  xml.Name    `xml:"package"`
	Version  string      `xml:"version,attr"`
	UniqueID string      `xml:"unique-identifier,attr"`
	Metadata opfMetadata `xml:"metadata"`
	Manifest opfManifest `xml:"manifest"`
	Spine    opfSpine    `xml:"spine"`
	Guide    opfGuide    `xml:"guide"`
}

// opfMetadata captures every child of <metadata> in document order, so
// repeated and unrecognized elements are preserved.
type opfMetadata struct {
	Elements []opfMetaElement `xml:",any"`
}

type opfMetaElement struct {
	XMLName  xml.Name
	Value    string `xml:",chardata"`
	ID       string `xml:"id,attr"`
	Name     string `xml:"name,attr"`
	Content  string `xml:"content,attr"`
	Property string `xml:"property,attr"`
}

type opfManifest struct {
	Items []opfManifestItem `xml:"item"`
}

type opfManifestItem struct {
	ID         string `xml:"id,attr"`
	Href       string `xml:"href,attr"`
	MediaType  string `xml:"media-type,attr"`
	Properties string `xml:"properties,attr"`
}

type opfSpine struct {
	Toc                      string       `xml:"toc,attr"`
	PageProgressionDirection string       `xml:"page-progression-direction,attr"`
	ItemRefs                 []opfItemRef `xml:"itemref"`
}

type opfItemRef struct {
	IDRef  string `xml:"idref,attr"`
	Linear string `xml:"linear,attr"`
}

type opfGuide struct {
	References []opfGuideReference `xml:"reference"`
}

type opfGuideReference struct {
	Type  string `xml:"type,attr"`
	Title string `xml:"title,attr"`
	Href  string `xml:"href,attr"`
}

// ParseOPF parses a package document and returns the OPF structure.
// opfDir is the directory containing the package document (e.g. "OEBPS");
// manifest and guide hrefs are resolved against it.
//
// Malformed XML, duplicate manifest ids, unresolvable manifest hrefs and
// spine idrefs that do not resolve in the manifest all abort the parse:
// an inconsistent package is unusable rather than partially usable.
func ParseOPF(content []byte, opfDir string) (*OPF, error) {
	var pkg opfPackage
	if err := xml.Unmarshal(stripBOM(content), &pkg); err != nil {
		return nil, fmt.Errorf("%w: package document: %v", ErrMalformedXML, err)
	}

	opf := &OPF{
		Version:                  pkg.Version,
		BaseDir:                  opfDir,
		Manifest:                 make(map[string]ManifestItem, len(pkg.Manifest.Items)),
		TocID:                    pkg.Spine.Toc,
		PageProgressionDirection: pkg.Spine.PageProgressionDirection,
	}

	opf.parseMetadata(&pkg.Metadata, pkg.UniqueID)

	for _, item := range pkg.Manifest.Items {
		if _, exists := opf.Manifest[item.ID]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, item.ID)
		}
		href, err := ResolveHref(opfDir, item.Href)
		if err != nil {
			return nil, fmt.Errorf("epub: manifest item %q: %w", item.ID, err)
		}
		opf.Manifest[item.ID] = ManifestItem{
			ID:         item.ID,
			Href:       href,
			MediaType:  item.MediaType,
			Properties: strings.Fields(item.Properties),
		}
		opf.ManifestOrder = append(opf.ManifestOrder, item.ID)
	}

	for _, ref := range pkg.Spine.ItemRefs {
		if _, ok := opf.Manifest[ref.IDRef]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrDanglingReference, ref.IDRef)
		}
		opf.Spine = append(opf.Spine, SpineItem{
			IDRef:  ref.IDRef,
			Linear: ref.Linear == "" || ref.Linear == "yes",
		})
	}

	for _, ref := range pkg.Guide.References {
		href, err := ResolveHref(opfDir, ref.Href)
		if err != nil {
			continue // guide is auxiliary; drop unresolvable references
		}
		opf.Guide = append(opf.Guide, GuideReference{
			Type:  ref.Type,
			Title: ref.Title,
			Href:  href,
		})
	}

	return opf, nil
}

// parseMetadata fills the metadata bag from the <metadata> children.
//
// Dublin Core elements are keyed by local name. <meta> elements come in
// two shapes: the EPUB2 name/content attribute pair and the EPUB3
// property element with text content. Anything else is preserved under
// its own local name so no metadata is silently lost.
func (opf *OPF) parseMetadata(meta *opfMetadata, uniqueID string) {
	for _, el := range meta.Elements {
		switch {
		case el.XMLName.Local == "meta":
			if el.Name != "" && el.Content != "" {
				if el.Name == "cover" {
					opf.CoverID = el.Content
				}
				opf.Metadata.add(el.Name, el.Content)
			} else if el.Property != "" {
				opf.Metadata.add(el.Property, strings.TrimSpace(el.Value))
			}
		default:
			value := strings.TrimSpace(el.Value)
			if el.XMLName.Space == dcNamespace && el.XMLName.Local == "identifier" &&
				uniqueID != "" && el.ID == uniqueID {
				opf.UniqueIdentifier = value
			}
			opf.Metadata.add(el.XMLName.Local, value)
		}
	}
}

// ItemByHref returns the manifest item whose resolved href matches path.
func (opf *OPF) ItemByHref(path string) (ManifestItem, bool) {
	path = normalizePath(path)
	for _, id := range opf.ManifestOrder {
		if item := opf.Manifest[id]; item.Href == path {
			return item, true
		}
	}
	return ManifestItem{}, false
}
