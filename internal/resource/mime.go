package resource

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DetectType sniffs the content of the file at path and returns its MIME
// type, without parameters, and the usual file extension for it, without
// the leading dot. The extension is empty when none is known.
func DetectType(path string) (mime, ext string, err error) {
	m, err := mimetype.DetectFile(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to get content type: %w", err)
	}

	mime, _, _ = strings.Cut(m.String(), ";")
	return strings.TrimSpace(mime), strings.TrimPrefix(m.Extension(), "."), nil
}
