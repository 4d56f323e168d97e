// Package frontmatter splits, parses, and re-serializes the YAML metadata
// block at the top of a content document.
package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document started with a front
// matter delimiter but never closed it.
var ErrMissingClosingDelimiter = errors.New("front matter opening delimiter found but closing delimiter is missing")

// ErrNoFrontMatter indicates a document without a front matter block.
var ErrNoFrontMatter = errors.New("document has no front matter block")

const delimiter = "---"

// Style captures the newline shape of the source document so rewrites stay
// byte-stable. It does not attempt to preserve YAML formatting.
type Style struct {
	Newline string
}

// Split separates the `---` delimited YAML front matter from the Markdown
// body.
//
// If the document does not start with a delimiter line, has is false and
// body is the full input. A present opening delimiter with no closing
// delimiter is an error.
func Split(content []byte) (fm, body []byte, has bool, style Style, err error) {
	style = detectStyle(content)
	nl := style.Newline

	open := []byte(delimiter + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, style, nil
	}

	rest := content[len(open):]

	// Empty block: the closing delimiter immediately follows the opening one.
	if bytes.HasPrefix(rest, open) {
		return []byte{}, rest[len(open):], true, style, nil
	}

	closeSeq := []byte(nl + delimiter + nl)
	idx := bytes.Index(rest, closeSeq)
	if idx < 0 {
		// A final line `---` without trailing newline still closes the block.
		tail := []byte(nl + delimiter)
		if bytes.HasSuffix(rest, tail) {
			return rest[:len(rest)-len(tail)+len(nl)], []byte{}, true, style, nil
		}
		return nil, nil, false, style, ErrMissingClosingDelimiter
	}

	return rest[:idx+len(nl)], rest[idx+len(closeSeq):], true, style, nil
}

// Join reassembles a document from raw front matter and body. When has is
// false the body is returned unchanged.
func Join(fm, body []byte, has bool, style Style) []byte {
	if !has {
		return body
	}

	nl := style.Newline
	if nl == "" {
		nl = "\n"
	}
	open := []byte(delimiter + nl)

	out := make([]byte, 0, 2*len(open)+len(fm)+len(body))
	out = append(out, open...)
	out = append(out, fm...)
	out = append(out, open...)
	out = append(out, body...)
	return out
}

// ParseYAML parses a raw front matter block (without delimiters) into a map.
func ParseYAML(fm []byte) (map[string]any, error) {
	if len(fm) == 0 {
		return map[string]any{}, nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal(fm, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

func detectStyle(content []byte) Style {
	nl := "\n"
	for i := 0; i < len(content); i++ {
		if content[i] != '\n' {
			continue
		}
		if i > 0 && content[i-1] == '\r' {
			nl = "\r\n"
		}
		break
	}
	return Style{Newline: nl}
}
