package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStrip(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"{{ .Release.Namespace }}", ".Release.Namespace"},
		{"  {{.Values.namespace}}  ", ".Values.namespace"},
		{"{{- .Values.x -}}", ".Values.x"},
		{".Values.bare", ".Values.bare"},
		{"{{ unterminated", "{{ unterminated"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Strip(tt.in))
		})
	}
}

func TestValuesRef(t *testing.T) {
	assert.Equal(t, "{{ .Values.image.tag }}", ValuesRef("image.tag"))
}

func TestDefault(t *testing.T) {
	got := Default("{{ .Release.Namespace }}", "{{ .Values.namespace }}")
	assert.Equal(t, "{{ default .Release.Namespace .Values.namespace }}", got)
}

func TestValuesRefOr(t *testing.T) {
	assert.Equal(t, `{{ default "nginx:1.27.0" .Values.image }}`, ValuesRefOr("image", "nginx:1.27.0"))
	assert.Equal(t, "{{ default 2 .Values.replicas }}", ValuesRefOr("replicas", 2))
}

func TestNamespace(t *testing.T) {
	assert.Equal(t, "{{ default .Release.Namespace .Values.namespace }}", Namespace())
}

func TestIfValue(t *testing.T) {
	open, end := IfValue("createNamespace")
	assert.Equal(t, "{{- if .Values.createNamespace }}", open)
	assert.Equal(t, "{{- end }}", end)
}
