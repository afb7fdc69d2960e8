package vault

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Frontmatter holds the YAML metadata block at the head of a note file.
// All fields are optional; an absent block parses as the zero value.
type Frontmatter struct {
	Type   string   `yaml:"type"`
	Status string   `yaml:"status"`
	Area   string   `yaml:"area"`
	Gist   string   `yaml:"gist"`
	Tags   []string `yaml:"tags"`
}

var (
	frontmatterOpen  = []byte("---\n")
	frontmatterClose = []byte("\n---")
)

// ParseFrontmatter splits a note file into its frontmatter block and body.
// The block must start on the first line, delimited by "---" lines. Content
// without a block returns a zero Frontmatter and the full content as body.
// A block that is present but not valid YAML is an error.
func ParseFrontmatter(content []byte) (Frontmatter, string, error) {
	var fm Frontmatter

	normalized := bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(normalized, frontmatterOpen) {
		return fm, string(normalized), nil
	}

	rest := normalized[len(frontmatterOpen):]
	end := bytes.Index(rest, frontmatterClose)
	if end < 0 {
		return fm, string(normalized), nil
	}

	block := rest[:end]
	body := rest[end+len(frontmatterClose):]
	body = bytes.TrimPrefix(body, []byte("\n"))

	if err := yaml.Unmarshal(block, &fm); err != nil {
		return Frontmatter{}, "", fmt.Errorf("%w: %v", ErrMalformedFrontmatter, err)
	}

	return fm, string(body), nil
}
