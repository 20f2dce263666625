package extract

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

const wordNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

func readDOCX(r io.ReaderAt, size int64) (string, error) {
	doc, err := docx.ReadDocxFromMemory(r, size)
	if err != nil {
		return "", err
	}
	defer doc.Close()

	return paragraphText(doc.Editable().GetContent())
}

// paragraphText walks word/document.xml and returns one line per w:p, in
// document order. Only text inside runs counts, so tab stop definitions in
// paragraph properties do not leak into the output.
func paragraphText(documentXML string) (string, error) {
	dec := xml.NewDecoder(strings.NewReader(documentXML))

	var (
		paragraphs []string
		current    strings.Builder
		runDepth   int
		inText     bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordNamespace {
				continue
			}
			switch t.Name.Local {
			case "r":
				runDepth++
			case "t":
				inText = runDepth > 0
			case "tab":
				if runDepth > 0 {
					current.WriteByte('\t')
				}
			case "br", "cr":
				if runDepth > 0 {
					current.WriteByte('\n')
				}
			}
		case xml.EndElement:
			if t.Name.Space != wordNamespace {
				continue
			}
			switch t.Name.Local {
			case "r":
				if runDepth > 0 {
					runDepth--
				}
			case "t":
				inText = false
			case "p":
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}
	return strings.Join(paragraphs, "\n"), nil
}
