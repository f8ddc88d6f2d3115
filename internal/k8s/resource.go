// Package k8s parses rendered umbrella manifests into Kubernetes resources
// and attributes each one to the sub-chart that produced it.
package k8s

import (
	"strings"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

// Resource is one parsed Kubernetes object.
type Resource struct {
	GVK schema.GroupVersionKind

	Name string

	// Namespace is metadata.namespace (may be empty for cluster-scoped).
	Namespace string

	// SourcePath is the Helm template path that produced this resource,
	// e.g. "platform/charts/cache/templates/service.yaml". Empty when the
	// source is unknown.
	SourcePath string

	Object *unstructured.Unstructured
}

// APIVersion returns the apiVersion string (e.g. "apps/v1").
func (r *Resource) APIVersion() string {
	if r.Object != nil {
		return r.Object.GetAPIVersion()
	}

	return r.GVK.GroupVersion().String()
}

// Kind returns the resource kind (e.g. "Deployment").
func (r *Resource) Kind() string {
	return r.GVK.Kind
}

// QualifiedName returns "kind/name" for display purposes.
func (r *Resource) QualifiedName() string {
	return r.GVK.Kind + "/" + r.Name
}

// Key identifies the object in a cluster: group, kind, namespace, and name.
func (r *Resource) Key() string {
	return r.GVK.Group + "/" + r.GVK.Kind + "/" + r.Namespace + "/" + r.Name
}

// SourceChart returns the sub-chart that produced the resource, or "" for
// the umbrella's own templates.
func (r *Resource) SourceChart() string {
	return SubChart(r.SourcePath)
}

// SubChart extracts the sub-chart name from a rendered template path. Both
// composition modes are recognized:
//
//	platform/charts/cache/templates/service.yaml  (dependencies)
//	platform/templates/cache/service.yaml         (inline)
//	platform/templates/namespace.yaml             (umbrella, "")
func SubChart(templatePath string) string {
	parts := strings.Split(templatePath, "/")

	for i := 1; i+1 < len(parts); i++ {
		switch parts[i] {
		case "charts":
			return parts[i+1]
		case "templates":
			if i+2 < len(parts) {
				return parts[i+1]
			}

			return ""
		}
	}

	return ""
}
