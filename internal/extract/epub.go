package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"
)

// container mirrors META-INF/container.xml, which points at the OPF package.
type container struct {
	Rootfiles []struct {
		FullPath string `xml:"full-path,attr"`
	} `xml:"rootfiles>rootfile"`
}

// opfPackage mirrors the OPF manifest and spine. The spine gives reading
// order; the manifest maps spine idrefs to archive paths.
type opfPackage struct {
	Manifest []struct {
		ID   string `xml:"id,attr"`
		Href string `xml:"href,attr"`
	} `xml:"manifest>item"`
	Spine []struct {
		IDRef string `xml:"idref,attr"`
	} `xml:"spine>itemref"`
}

// extractEPUB reads an EPUB archive: container.xml → OPF spine → XHTML
// chapters in reading order, tags stripped.
func extractEPUB(fileBytes []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(fileBytes), int64(len(fileBytes)))
	if err != nil {
		return "", fmt.Errorf("open zip: %w", err)
	}

	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	opfPath, err := readContainer(files)
	if err != nil {
		return "", err
	}

	pkg, err := readOPF(files, opfPath)
	if err != nil {
		return "", err
	}

	hrefByID := make(map[string]string, len(pkg.Manifest))
	for _, item := range pkg.Manifest {
		hrefByID[item.ID] = item.Href
	}

	opfDir := path.Dir(opfPath)
	var chapters []string
	for _, itemref := range pkg.Spine {
		href, ok := hrefByID[itemref.IDRef]
		if !ok {
			continue
		}
		chapterPath := href
		if opfDir != "." {
			chapterPath = path.Join(opfDir, href)
		}
		f, ok := files[chapterPath]
		if !ok {
			continue
		}
		text, err := readXHTMLText(f)
		if err != nil {
			continue
		}
		if text != "" {
			chapters = append(chapters, text)
		}
	}

	if len(chapters) == 0 {
		return "", fmt.Errorf("no readable chapters in spine")
	}

	return strings.Join(chapters, "\n\n"), nil
}

func readContainer(files map[string]*zip.File) (string, error) {
	f, ok := files["META-INF/container.xml"]
	if !ok {
		return "", fmt.Errorf("META-INF/container.xml not found")
	}
	data, err := readZipFile(f)
	if err != nil {
		return "", fmt.Errorf("read container.xml: %w", err)
	}
	var c container
	if err := xml.Unmarshal(data, &c); err != nil {
		return "", fmt.Errorf("parse container.xml: %w", err)
	}
	if len(c.Rootfiles) == 0 || c.Rootfiles[0].FullPath == "" {
		return "", fmt.Errorf("container.xml has no rootfile")
	}
	return c.Rootfiles[0].FullPath, nil
}

func readOPF(files map[string]*zip.File, opfPath string) (*opfPackage, error) {
	f, ok := files[opfPath]
	if !ok {
		return nil, fmt.Errorf("opf package %s not found", opfPath)
	}
	data, err := readZipFile(f)
	if err != nil {
		return nil, fmt.Errorf("read opf: %w", err)
	}
	var pkg opfPackage
	if err := xml.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("parse opf: %w", err)
	}
	if len(pkg.Spine) == 0 {
		return nil, fmt.Errorf("opf spine is empty")
	}
	return &pkg, nil
}

// readXHTMLText tokenizes an XHTML chapter and collects character data,
// skipping script and style bodies. Block-level elements break paragraphs.
func readXHTMLText(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)
	decoder.Strict = false
	decoder.AutoClose = xml.HTMLAutoClose
	decoder.Entity = xml.HTMLEntity

	var sb strings.Builder
	skipDepth := 0

	for {
		tok, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			// Tolerate malformed markup mid-chapter; keep what we have.
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "script", "style":
				skipDepth++
			case "p", "div", "h1", "h2", "h3", "h4", "h5", "h6", "li", "br", "tr":
				if sb.Len() > 0 {
					sb.WriteByte('\n')
				}
			}
		case xml.EndElement:
			if t.Name.Local == "script" || t.Name.Local == "style" {
				if skipDepth > 0 {
					skipDepth--
				}
			}
		case xml.CharData:
			if skipDepth == 0 {
				sb.Write(t)
			}
		}
	}

	return normalizeWhitespace(sb.String()), nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
