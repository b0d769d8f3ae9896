// Package epub provides read access to EPUB 2 and EPUB 3 publications.
//
// Opening an archive runs the whole parse pipeline up front: the
// package document is located through META-INF/container.xml, its
// metadata, manifest and spine are parsed, and the table of contents is
// built from the EPUB3 nav document or the EPUB2 NCX. A structurally
// inconsistent publication is rejected at Open; it never produces a
// partially usable Document.
//
//	doc, err := epub.Open("book.epub")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer doc.Close()
//
//	title, _ := doc.MetadataValue("title")
//	for {
//	    item, data, err := doc.CurrentResource()
//	    ...
//	    if err := doc.Next(); err != nil {
//	        break
//	    }
//	}
//
// The spine cursor (Next, Prev, SetPosition) is the only mutable state
// on a Document; cursor errors and missing-resource errors leave the
// Document fully usable.
package epub
