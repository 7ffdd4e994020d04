package view

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

var delimiter = []byte("---")

// splitFrontmatter separates an optional leading YAML block fenced by ---
// lines from the template body.
func splitFrontmatter(content []byte) (map[string]any, []byte, error) {
	if !bytes.HasPrefix(content, delimiter) {
		return nil, content, nil
	}

	rest := bytes.TrimLeft(content[len(delimiter):], "\r\n")
	end := bytes.Index(rest, delimiter)
	if end < 0 {
		return nil, nil, fmt.Errorf("%w: unterminated front matter", ErrSyntax)
	}

	head, body := rest[:end], rest[end+len(delimiter):]
	switch {
	case bytes.HasPrefix(body, []byte("\r\n")):
		body = body[2:]
	case bytes.HasPrefix(body, []byte("\n")):
		body = body[1:]
	}

	var meta map[string]any
	if len(bytes.TrimSpace(head)) > 0 {
		if err := yaml.Unmarshal(head, &meta); err != nil {
			return nil, nil, fmt.Errorf("%w: front matter: %v", ErrSyntax, err)
		}
	}
	return meta, body, nil
}
