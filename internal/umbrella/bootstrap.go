package umbrella

import (
	"helm.sh/helm/v3/pkg/chart"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/KenkoGeek/timonel-examples/internal/helm/chartbuilder"
	"github.com/KenkoGeek/timonel-examples/internal/helm/expr"
)

// Umbrella chart identity.
const (
	ChartName        = "platform"
	ChartVersion     = "0.1.0"
	ChartAppVersion  = "1.0.0"
	ChartDescription = "Umbrella chart composing the platform workloads"
)

// Umbrella-level values keys.
const (
	NamespaceKey       = "namespace"
	CreateNamespaceKey = "createNamespace"
)

// NewChart builds the umbrella's own chart: metadata, default values, and a
// Namespace rendered only when createNamespace is true.
func NewChart() *chartbuilder.Chart {
	c := chartbuilder.New(&chart.Metadata{
		APIVersion:  chart.APIVersionV2,
		Name:        ChartName,
		Version:     ChartVersion,
		Description: ChartDescription,
		AppVersion:  ChartAppVersion,
		Type:        "application",
	}, map[string]interface{}{
		NamespaceKey:       "default",
		CreateNamespaceKey: false,
	})

	ns := &corev1.Namespace{
		TypeMeta:   metav1.TypeMeta{APIVersion: "v1", Kind: "Namespace"},
		ObjectMeta: metav1.ObjectMeta{Name: expr.Namespace()},
	}

	return c.MustAddManifest("namespace", ns, chartbuilder.WithCondition(CreateNamespaceKey))
}
