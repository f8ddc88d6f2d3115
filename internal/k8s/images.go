package k8s

import (
	"strings"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// podSpecPath returns the path of the pod spec inside a workload kind, or
// nil for kinds without one.
func podSpecPath(kind string) []string {
	switch kind {
	case "Pod":
		return []string{"spec"}
	case "Deployment", "StatefulSet", "DaemonSet", "ReplicaSet", "Job":
		return []string{"spec", "template", "spec"}
	case "CronJob":
		return []string{"spec", "jobTemplate", "spec", "template", "spec"}
	}

	return nil
}

// Container is one container of a pod template.
type Container struct {
	Name  string
	Image string
	Init  bool
}

// Containers returns the containers of the resource's pod template, init
// containers first, in declaration order.
func (r *Resource) Containers() []Container {
	path := podSpecPath(r.Kind())
	if path == nil || r.Object == nil {
		return nil
	}

	var out []Container

	for _, field := range []string{"initContainers", "containers"} {
		items, _, _ := unstructured.NestedSlice(r.Object.Object, append(path, field)...)

		for _, item := range items {
			m, ok := item.(map[string]interface{})
			if !ok {
				continue
			}

			name, _ := m["name"].(string)
			image, _ := m["image"].(string)

			out = append(out, Container{Name: name, Image: image, Init: field == "initContainers"})
		}
	}

	return out
}

// Images returns the non-empty container images referenced by r, in
// Containers order.
func (r *Resource) Images() []string {
	var images []string

	for _, c := range r.Containers() {
		if c.Image != "" {
			images = append(images, c.Image)
		}
	}

	return images
}

// IsImageDigest reports whether the image reference is pinned by digest.
func IsImageDigest(image string) bool {
	return strings.Contains(image, "@sha256:")
}

// HasLatestTag reports whether the image uses :latest or has no tag.
// Digest-pinned images are never "latest".
func HasLatestTag(image string) bool {
	if image == "" || IsImageDigest(image) {
		return false
	}

	// Only the last path element can carry the tag; a registry host may
	// have a port ("registry.io:5000/app").
	ref := image[strings.LastIndex(image, "/")+1:]

	if i := strings.LastIndex(ref, ":"); i >= 0 {
		return ref[i+1:] == "latest"
	}

	return true
}
