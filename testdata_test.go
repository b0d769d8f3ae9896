package epub

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// buildZipBytes creates an in-memory zip archive from the files map
// (path -> content).
func buildZipBytes(t *testing.T, files map[string]string) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	for name, content := range files {
		fw, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip writer: %v", err)
	}
	return buf.Bytes()
}

// buildArchive returns an Archive over an in-memory zip built from files.
func buildArchive(t *testing.T, files map[string]string) *Archive {
	t.Helper()
	data := buildZipBytes(t, files)
	a, err := NewArchive(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("NewArchive() error = %v", err)
	}
	return a
}

// buildDocument opens a Document over an in-memory zip built from files.
func buildDocument(t *testing.T, files map[string]string) *Document {
	t.Helper()
	doc, err := tryBuildDocument(t, files)
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	return doc
}

// tryBuildDocument is the error-returning variant for tests that expect
// Open to fail.
func tryBuildDocument(t *testing.T, files map[string]string) (*Document, error) {
	t.Helper()
	data := buildZipBytes(t, files)
	return NewReader(bytes.NewReader(data), int64(len(data)))
}

// writeEPUBFile writes the files map as a zip archive into a temp file
// and returns its path, for tests that exercise Open.
func writeEPUBFile(t *testing.T, files map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.epub")
	if err := os.WriteFile(path, buildZipBytes(t, files), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

const testContainerXML = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

const testChapterXHTML = `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml">
<head><title>Chapter</title></head>
<body><p>Hello, World!</p></body>
</html>`

// minimalEPUB returns the files of the smallest valid publication: one
// XHTML chapter, no navigation resource.
func minimalEPUB() map[string]string {
	return map[string]string{
		"mimetype":               "application/epub+zip",
		"META-INF/container.xml": testContainerXML,
		"OEBPS/content.opf": `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0" unique-identifier="uid">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>Test Book</dc:title>
    <dc:identifier id="uid">urn:uuid:1234</dc:identifier>
    <dc:language>en</dc:language>
  </metadata>
  <manifest>
    <item id="c1" href="chapter1.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine>
    <itemref idref="c1"/>
  </spine>
</package>`,
		"OEBPS/chapter1.xhtml": testChapterXHTML,
	}
}

// threeChapterEPUB returns a publication with three spine items and an
// EPUB2 NCX table of contents.
func threeChapterEPUB() map[string]string {
	return map[string]string{
		"mimetype":               "application/epub+zip",
		"META-INF/container.xml": testContainerXML,
		"OEBPS/content.opf": `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0" unique-identifier="uid">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>Three Chapters</dc:title>
    <dc:identifier id="uid">urn:isbn:000</dc:identifier>
    <dc:language>en</dc:language>
  </metadata>
  <manifest>
    <item id="ncx" href="toc.ncx" media-type="application/x-dtbncx+xml"/>
    <item id="c1" href="text/ch1.xhtml" media-type="application/xhtml+xml"/>
    <item id="c2" href="text/ch2.xhtml" media-type="application/xhtml+xml"/>
    <item id="c3" href="text/ch3.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine toc="ncx">
    <itemref idref="c1"/>
    <itemref idref="c2"/>
    <itemref idref="c3"/>
  </spine>
</package>`,
		"OEBPS/toc.ncx": `<?xml version="1.0" encoding="UTF-8"?>
<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/" version="2005-1">
  <navMap>
    <navPoint id="np1" playOrder="1">
      <navLabel><text>Chapter 1</text></navLabel>
      <content src="text/ch1.xhtml"/>
    </navPoint>
    <navPoint id="np2" playOrder="2">
      <navLabel><text>Chapter 2</text></navLabel>
      <content src="text/ch2.xhtml"/>
    </navPoint>
    <navPoint id="np3" playOrder="3">
      <navLabel><text>Chapter 3</text></navLabel>
      <content src="text/ch3.xhtml"/>
    </navPoint>
  </navMap>
</ncx>`,
		"OEBPS/text/ch1.xhtml": testChapterXHTML,
		"OEBPS/text/ch2.xhtml": testChapterXHTML,
		"OEBPS/text/ch3.xhtml": testChapterXHTML,
	}
}
