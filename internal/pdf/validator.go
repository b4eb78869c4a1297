package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/pitchcheck/internal/model"
)

// ValidatePath checks that path names a readable .pdf file
func ValidatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return model.NewError(model.KindValidation, "file path cannot be empty", nil)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.NewError(model.KindValidation, fmt.Sprintf("file does not exist: %s", path), err)
		}
		return model.NewError(model.KindValidation, fmt.Sprintf("cannot access file: %s", path), err)
	}

	if info.IsDir() {
		return model.NewError(model.KindValidation, fmt.Sprintf("path is a directory, not a file: %s", path), nil)
	}

	if !IsPDFName(path) {
		return model.NewError(model.KindValidation,
			fmt.Sprintf("file is not a PDF (has extension %q)", filepath.Ext(path)), nil)
	}

	f, err := os.Open(path)
	if err != nil {
		return model.NewError(model.KindValidation, fmt.Sprintf("cannot open file: %s", path), err)
	}
	_ = f.Close()

	return nil
}

// IsPDFName reports whether name ends in .pdf, ignoring case
func IsPDFName(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

// ValidateQuality checks a JPEG quality setting
func ValidateQuality(quality int) error {
	if quality < 1 || quality > 100 {
		return model.NewError(model.KindValidation, fmt.Sprintf("quality must be between 1 and 100, got %d", quality), nil)
	}
	return nil
}
