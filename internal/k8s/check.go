package k8s

import (
	"fmt"
	"sort"
	"strings"
)

// Check returns one line per problem found across resources: objects
// without a name, objects rendered more than once, containers without an
// image, and images without a pinned tag.
func Check(resources []*Resource) []string {
	var problems []string

	seen := make(map[string][]string, len(resources))

	for _, r := range resources {
		if r.Name == "" {
			problems = append(problems, fmt.Sprintf("%s in %s has no metadata.name", r.Kind(), r.SourcePath))
			continue
		}

		seen[r.Key()] = append(seen[r.Key()], r.SourcePath)

		for _, c := range r.Containers() {
			switch {
			case strings.TrimSpace(c.Image) == "":
				problems = append(problems, fmt.Sprintf("%s container %q has no image", r.QualifiedName(), c.Name))
			case HasLatestTag(c.Image):
				problems = append(problems, fmt.Sprintf("%s uses unpinned image %q", r.QualifiedName(), c.Image))
			}
		}
	}

	keys := make([]string, 0, len(seen))
	for k, sources := range seen {
		if len(sources) > 1 {
			keys = append(keys, k)
		}
	}

	sort.Strings(keys)

	for _, k := range keys {
		problems = append(problems, fmt.Sprintf("%s is rendered by %d templates: %v", k, len(seen[k]), seen[k]))
	}

	return problems
}
