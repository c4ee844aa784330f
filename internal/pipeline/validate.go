package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// FileInfo is what validation learns about an input file.
type FileInfo struct {
	Path      string
	Name      string
	SizeBytes int64
	PageCount int
}

// Validator checks an input file before any provider runs. Injectable so
// pipeline tests run without real PDF fixtures.
type Validator func(path string) (FileInfo, error)

// ValidatePDF is the production validator: the file must exist, carry a
// .pdf extension and contain at least one readable page.
func ValidatePDF(path string) (FileInfo, error) {
	st, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, &InvalidInputError{Path: path, Reason: "file not found"}
	}
	if st.IsDir() {
		return FileInfo{}, &InvalidInputError{Path: path, Reason: "is a directory"}
	}
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return FileInfo{}, &InvalidInputError{Path: path, Reason: "not a .pdf file"}
	}

	pageCount, err := api.PageCountFile(path)
	if err != nil {
		// pdfcpu refuses encrypted and structurally broken files here.
		return FileInfo{}, &InvalidInputError{Path: path, Reason: fmt.Sprintf("unreadable pdf: %v", err)}
	}
	if pageCount < 1 {
		return FileInfo{}, &InvalidInputError{Path: path, Reason: "pdf has no pages"}
	}

	return FileInfo{
		Path:      path,
		Name:      filepath.Base(path),
		SizeBytes: st.Size(),
		PageCount: pageCount,
	}, nil
}
