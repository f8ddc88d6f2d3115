package yamlutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitDocuments(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"single document", "apiVersion: v1\nkind: Service", 1},
		{"two documents", "kind: Service\n---\nkind: Deployment", 2},
		{"leading separator", "---\nkind: Service", 1},
		{"trailing separator", "kind: Service\n---", 1},
		{"separator with trailing space", "kind: Service\n---   \nkind: ConfigMap", 2},
		{"whitespace only doc", "---\n   \n---\nkind: Service", 1},
		{"comment only doc", "---\n# Source: platform/templates/empty.yaml\n---\nkind: Service", 1},
		{"empty input", "", 0},
		{"only separators", "---\n---\n---", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, SplitDocuments([]byte(tt.input)), tt.want)
		})
	}
}

func TestSplitDocuments_PreservesContent(t *testing.T) {
	docs := SplitDocuments([]byte("# Source: a.yaml\nkind: Service\n---\nkind: Deployment\nmetadata:\n  name: bar"))
	require.Len(t, docs, 2)
	assert.Contains(t, string(docs[0]), "# Source: a.yaml")
	assert.Contains(t, string(docs[1]), "name: bar")
}

func TestSplitDocuments_InlineDashesAreNotSeparators(t *testing.T) {
	docs := SplitDocuments([]byte("data:\n  banner: \"--- hello ---\"\n"))
	assert.Len(t, docs, 1)
}
