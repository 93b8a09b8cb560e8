package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/cognicore/shiver/pkg/shiver/internalerr"
)

const docxBody = "word/document.xml"

// maxDocxBody caps the uncompressed size of word/document.xml.
var maxDocxBody int64 = 64 << 20

// Docx reads paragraph text out of word/document.xml, including
// paragraphs nested in tables.
type Docx struct{}

func (Docx) Extract(_ context.Context, up Upload) (Result, error) {
	reader, err := zip.NewReader(bytes.NewReader(up.Data), int64(len(up.Data)))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s: not a docx archive: %v", internalerr.ErrExtraction, up.FileName, err)
	}

	for _, file := range reader.File {
		if file.Name != docxBody {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return Result{}, fmt.Errorf("%w: %s: %v", internalerr.ErrExtraction, up.FileName, err)
		}
		body, err := io.ReadAll(io.LimitReader(rc, maxDocxBody+1))
		rc.Close()
		if err != nil {
			return Result{}, fmt.Errorf("%w: %s: %v", internalerr.ErrExtraction, up.FileName, err)
		}
		if int64(len(body)) > maxDocxBody {
			return Result{}, fmt.Errorf("%w: %s: document body exceeds %d bytes", internalerr.ErrExtraction, up.FileName, maxDocxBody)
		}
		text, err := documentText(body)
		if err != nil {
			return Result{}, fmt.Errorf("%w: %s: %v", internalerr.ErrExtraction, up.FileName, err)
		}
		return Result{Text: text, ContentType: MIMEDocx}, nil
	}
	return Result{}, fmt.Errorf("%w: %s: missing %s", internalerr.ErrExtraction, up.FileName, docxBody)
}

const wordNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// documentText walks the XML tokens so paragraphs are found at any depth
// (body, table cells, text boxes). Each w:p becomes one line.
func documentText(body []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))

	var (
		lines  []string
		para   strings.Builder
		inText bool
		inBody bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if !isWord(t.Name) {
				continue
			}
			switch t.Name.Local {
			case "body":
				inBody = true
			case "p":
				para.Reset()
			case "t":
				inText = true
			case "tab":
				para.WriteString("\t")
			}
		case xml.EndElement:
			if !isWord(t.Name) {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				lines = append(lines, para.String())
			}
		case xml.CharData:
			if inText {
				para.Write(t)
			}
		}
	}
	if !inBody {
		return "", fmt.Errorf("no document body")
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}

func isWord(n xml.Name) bool {
	return n.Space == wordNS || n.Space == ""
}
