package models

import (
	"io"
	"strings"
)

// FileUpload is one evidence file selected by the user.
type FileUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Ext returns the text after the last dot of the filename, or the whole
// name when it has no dot.
func (f FileUpload) Ext() string {
	if i := strings.LastIndex(f.Filename, "."); i >= 0 {
		return f.Filename[i+1:]
	}
	return f.Filename
}
