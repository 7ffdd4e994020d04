package storage

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

// MIMEOctetStream is reported when content cannot be identified.
const MIMEOctetStream = "application/octet-stream"

// sniffLen is the prefix http.DetectContentType looks at.
const sniffLen = 512

var extensions = map[string]string{
	"image/jpeg":       ".jpg",
	"image/png":        ".png",
	"image/gif":        ".gif",
	"image/webp":       ".webp",
	"image/bmp":        ".bmp",
	"image/svg+xml":    ".svg",
	"image/x-icon":     ".ico",
	"application/pdf":  ".pdf",
	"application/zip":  ".zip",
	"application/json": ".json",
	"text/plain":       ".txt",
	"text/csv":         ".csv",
	"text/html":        ".html",
	"text/calendar":    ".ics",
	"audio/mpeg":       ".mp3",
	"video/mp4":        ".mp4",
	"video/webm":       ".webm",
}

// ExtFromMIME returns the usual extension for a MIME type, or "".
func ExtFromMIME(mimeType string) string {
	return extensions[normalizeMIME(mimeType)]
}

// DetectMIME sniffs an uploaded file.
func DetectMIME(fh *multipart.FileHeader) string {
	if fh == nil {
		return MIMEOctetStream
	}
	f, err := fh.Open()
	if err != nil {
		return MIMEOctetStream
	}
	defer f.Close()

	buf := make([]byte, sniffLen)
	n, _ := io.ReadFull(f, buf)
	if n == 0 {
		return MIMEOctetStream
	}
	return http.DetectContentType(buf[:n])
}

// IsImage reports whether an uploaded file sniffs as an image.
func IsImage(fh *multipart.FileHeader) bool {
	return strings.HasPrefix(DetectMIME(fh), "image/")
}

// sniff detects the content type of r and returns a reader positioned at the
// start. The S3 client needs a seeker to hash the payload, so anything else
// is buffered.
func sniff(r io.Reader) (string, io.ReadSeeker, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return "", nil, err
		}
		rs = bytes.NewReader(data)
	}

	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(rs, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", nil, err
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return "", nil, err
	}
	if n == 0 {
		return MIMEOctetStream, rs, nil
	}
	return http.DetectContentType(buf[:n]), rs, nil
}

func normalizeMIME(mimeType string) string {
	mimeType, _, _ = strings.Cut(mimeType, ";")
	return strings.ToLower(strings.TrimSpace(mimeType))
}

// matchesMIME reports whether mimeType matches a pattern; "image/*" matches
// any image type.
func matchesMIME(mimeType string, patterns []string) bool {
	mimeType = normalizeMIME(mimeType)
	for _, p := range patterns {
		p = normalizeMIME(p)
		if p == mimeType {
			return true
		}
		if prefix, ok := strings.CutSuffix(p, "*"); ok && strings.HasSuffix(prefix, "/") && strings.HasPrefix(mimeType, prefix) {
			return true
		}
	}
	return false
}
