package extract

import (
	"context"
	"fmt"
)

// Binary stands in for files with no text extractor.
type Binary struct{}

func (Binary) Extract(_ context.Context, up Upload) (Result, error) {
	ct := up.ContentType
	if ct == "" {
		ct = ContentTypeFor(up.FileName)
	}
	return Result{Text: Placeholder(up.FileName), ContentType: ct, Binary: true}, nil
}

// Placeholder is the raw content recorded for binary uploads.
func Placeholder(name string) string {
	return fmt.Sprintf("[Binary file: %s]", name)
}
