package storage

import (
	"fmt"
	"mime/multipart"
)

// Codes carried by FileValidationError.
const (
	ErrCodeFileTooLarge = "file_too_large"
	ErrCodeFileTooSmall = "file_too_small"
	ErrCodeInvalidMIME  = "invalid_mime"
	ErrCodeEmptyFile    = "empty_file"
)

// FileValidationError reports an upload that broke a rule. Field names the
// form input so handlers can attach it to form errors.
type FileValidationError struct {
	Details map[string]any
	Field   string
	Code    string
	Message string
}

func (e *FileValidationError) Error() string { return e.Message }

// ValidationRule checks an upload's size and sniffed MIME type.
type ValidationRule interface {
	Check(size int64, mimeType string) error
}

// RuleFunc adapts a function to ValidationRule.
type RuleFunc func(size int64, mimeType string) error

func (f RuleFunc) Check(size int64, mimeType string) error { return f(size, mimeType) }

// ValidateFile runs rules against a multipart upload.
func ValidateFile(fh *multipart.FileHeader, mimeType string, rules ...ValidationRule) error {
	var size int64
	if fh != nil {
		size = fh.Size
	}
	return ValidateReader(size, mimeType, rules...)
}

// ValidateReader runs rules and returns the first failure.
func ValidateReader(size int64, mimeType string, rules ...ValidationRule) error {
	for _, r := range rules {
		if err := r.Check(size, mimeType); err != nil {
			return err
		}
	}
	return nil
}

func invalid(code, msg string, details map[string]any) *FileValidationError {
	return &FileValidationError{Field: "file", Code: code, Message: msg, Details: details}
}

// MaxSize rejects files larger than limit bytes.
func MaxSize(limit int64) ValidationRule {
	return RuleFunc(func(size int64, _ string) error {
		if size > limit {
			return invalid(ErrCodeFileTooLarge,
				fmt.Sprintf("file size %d exceeds limit of %d bytes", size, limit),
				map[string]any{"limit": limit, "got": size})
		}
		return nil
	})
}

// MinSize rejects files smaller than limit bytes.
func MinSize(limit int64) ValidationRule {
	return RuleFunc(func(size int64, _ string) error {
		if size < limit {
			return invalid(ErrCodeFileTooSmall,
				fmt.Sprintf("file size %d is below minimum of %d bytes", size, limit),
				map[string]any{"minimum": limit, "got": size})
		}
		return nil
	})
}

// NotEmpty rejects zero-length files.
func NotEmpty() ValidationRule {
	return RuleFunc(func(size int64, _ string) error {
		if size <= 0 {
			return invalid(ErrCodeEmptyFile, "file is empty", nil)
		}
		return nil
	})
}

// AllowedTypes accepts only MIME types matching a pattern such as "image/*".
func AllowedTypes(patterns ...string) ValidationRule {
	return RuleFunc(func(_ int64, mimeType string) error {
		if !matchesMIME(mimeType, patterns) {
			return invalid(ErrCodeInvalidMIME,
				fmt.Sprintf("file type %q is not allowed", mimeType),
				map[string]any{"type": mimeType, "allowed": patterns})
		}
		return nil
	})
}

// ImageOnly accepts the raster formats pkg/imaging can decode.
func ImageOnly() ValidationRule {
	return AllowedTypes("image/jpeg", "image/png", "image/gif", "image/webp", "image/bmp")
}
