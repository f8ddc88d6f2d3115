// Package yamlutil holds small helpers for multi-document YAML streams.
package yamlutil

import (
	"regexp"
	"strings"
)

// docSeparator matches YAML document separators: a line containing only "---"
// optionally followed by whitespace.
var docSeparator = regexp.MustCompile(`(?m)^---\s*$`)

// SplitDocuments splits a multi-document YAML stream into its documents
// without the "---" separators. Documents that are empty or contain only
// comments are dropped.
func SplitDocuments(data []byte) [][]byte {
	var docs [][]byte

	for _, part := range docSeparator.Split(string(data), -1) {
		if hasContent(part) {
			docs = append(docs, []byte(part))
		}
	}

	return docs
}

// hasContent reports whether doc has a line that is neither blank nor a
// comment.
func hasContent(doc string) bool {
	for _, line := range strings.Split(doc, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			return true
		}
	}

	return false
}
