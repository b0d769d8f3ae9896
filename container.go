package epub

import (
	"encoding/xml"
	"errors"
	"fmt"
)

// containerPath is the well-known location of the container descriptor.
const containerPath = "META-INF/container.xml"

// packageMediaType marks a rootfile as the OEBPS package document.
const packageMediaType = "application/oebps-package+xml"

// containerXML models META-INF/container.xml.
type containerXML struct {
	XMLName   xml.Name `xml:"container"`
	Rootfiles []struct {
		FullPath  string `xml:"full-path,attr"`
		MediaType string `xml:"media-type,attr"`
	} `xml:"rootfiles>rootfile"`
}

// locateRootfile parses META-INF/container.xml and returns the full-path
// of the first rootfile declaring the OEBPS package media type.
//
// There is no fallback heuristic: a missing descriptor returns
// ErrMissingContainer and a descriptor without a qualifying rootfile
// returns ErrNoRootfile.
func locateRootfile(a *Archive) (string, error) {
	data, err := a.Read(containerPath)
	if err != nil {
		if errors.Is(err, ErrResourceNotFound) {
			return "", ErrMissingContainer
		}
		return "", err
	}

	var c containerXML
	if err := xml.Unmarshal(stripBOM(data), &c); err != nil {
		return "", fmt.Errorf("%w: container.xml: %v", ErrMalformedXML, err)
	}

	for _, rf := range c.Rootfiles {
		if rf.MediaType == packageMediaType && rf.FullPath != "" {
			return normalizePath(rf.FullPath), nil
		}
	}

	return "", ErrNoRootfile
}

// stripBOM removes a leading UTF-8 byte order mark, if present.
func stripBOM(data []byte) []byte {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return data[3:]
	}
	return data
}
