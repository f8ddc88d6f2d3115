// Package expr builds Helm template expressions as plain strings so chart
// builders can embed them in manifests and values.
package expr

import (
	"fmt"
	"strings"
)

// ReleaseNamespace is the namespace Helm installs the release into.
const ReleaseNamespace = "{{ .Release.Namespace }}"

// ValuesRef returns an expression reading path from the chart values,
// e.g. ValuesRef("image.tag") is "{{ .Values.image.tag }}".
func ValuesRef(path string) string {
	return Wrap(".Values." + path)
}

// Strip removes the surrounding delimiters, trim markers, and whitespace
// from e, leaving the bare pipeline. Input without delimiters is only
// trimmed.
func Strip(e string) string {
	s := strings.TrimSpace(e)

	if strings.HasPrefix(s, "{{") && strings.HasSuffix(s, "}}") {
		s = strings.TrimSuffix(strings.TrimPrefix(s, "{{"), "}}")
		s = strings.TrimPrefix(s, "-")
		s = strings.TrimSuffix(s, "-")
	}

	return strings.TrimSpace(s)
}

// Wrap puts delimiters around a bare pipeline.
func Wrap(pipeline string) string {
	return "{{ " + strings.TrimSpace(pipeline) + " }}"
}

// Default composes "use value if set, else fallback" from two expressions.
func Default(fallback, value string) string {
	return Wrap("default " + Strip(fallback) + " " + Strip(value))
}

// Literal renders v as a template literal: strings are double-quoted,
// other values use their default format.
func Literal(v interface{}) string {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}

	return fmt.Sprint(v)
}

// ValuesRefOr reads path from the chart values and falls back to the
// literal fallback when the value is unset or empty.
func ValuesRefOr(path string, fallback interface{}) string {
	return Default(Literal(fallback), ValuesRef(path))
}

// Namespace is the target namespace of the umbrella: the namespace value
// when set, otherwise the release namespace.
func Namespace() string {
	return Default(ReleaseNamespace, ValuesRef("namespace"))
}

// IfValue returns the opening and closing actions of a block that renders
// only when the value at path is truthy.
func IfValue(path string) (open, end string) {
	return "{{- if " + Strip(ValuesRef(path)) + " }}", "{{- end }}"
}
