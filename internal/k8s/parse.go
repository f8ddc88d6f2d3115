package k8s

import (
	"fmt"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	sigsyaml "sigs.k8s.io/yaml"

	"github.com/KenkoGeek/timonel-examples/internal/yamlutil"
)

// Parse splits the rendered output of one template into documents and
// parses each into a Resource attributed to sourcePath. Documents without
// apiVersion or kind are skipped.
func Parse(sourcePath string, manifest []byte) ([]*Resource, error) {
	var resources []*Resource

	for i, doc := range yamlutil.SplitDocuments(manifest) {
		r, err := parseDocument(doc)
		if err != nil {
			return nil, fmt.Errorf("%s: document %d: %w", sourcePath, i+1, err)
		}

		if r != nil {
			r.SourcePath = sourcePath
			resources = append(resources, r)
		}
	}

	return resources, nil
}

func parseDocument(doc []byte) (*Resource, error) {
	var obj map[string]interface{}
	if err := sigsyaml.Unmarshal(doc, &obj); err != nil {
		return nil, fmt.Errorf("unmarshaling YAML: %w", err)
	}

	apiVersion, _ := obj["apiVersion"].(string)
	kind, _ := obj["kind"].(string)

	if apiVersion == "" || kind == "" {
		return nil, nil
	}

	u := &unstructured.Unstructured{Object: obj}

	return &Resource{
		GVK:       schema.FromAPIVersionAndKind(apiVersion, kind),
		Name:      u.GetName(),
		Namespace: u.GetNamespace(),
		Object:    u,
	}, nil
}
