package k8s

import "strings"

// HookAnnotation is the Helm hook annotation key.
const HookAnnotation = "helm.sh/hook"

// HookType is a Helm lifecycle hook.
type HookType string

// Hook types that change how a resource is treated.
const (
	HookTest        HookType = "test"
	HookTestSuccess HookType = "test-success"
)

// IsTestHook reports whether h marks a helm test resource.
func (h HookType) IsTestHook() bool {
	return h == HookTest || h == HookTestSuccess
}

// Hooks returns the lifecycle hooks listed in the resource's helm.sh/hook
// annotation, in annotation order.
func (r *Resource) Hooks() []HookType {
	if r.Object == nil {
		return nil
	}

	value := r.Object.GetAnnotations()[HookAnnotation]
	if value == "" {
		return nil
	}

	var hooks []HookType

	for _, h := range strings.Split(value, ",") {
		if h = strings.TrimSpace(h); h != "" {
			hooks = append(hooks, HookType(h))
		}
	}

	return hooks
}

// IsHook reports whether the resource is a Helm hook.
func (r *Resource) IsHook() bool {
	return len(r.Hooks()) > 0
}

// IsTest reports whether the resource only runs under helm test.
func (r *Resource) IsTest() bool {
	for _, h := range r.Hooks() {
		if h.IsTestHook() {
			return true
		}
	}

	return false
}

// WithoutTests returns resources minus helm test hooks.
func WithoutTests(resources []*Resource) []*Resource {
	out := make([]*Resource, 0, len(resources))

	for _, r := range resources {
		if !r.IsTest() {
			out = append(out, r)
		}
	}

	return out
}
