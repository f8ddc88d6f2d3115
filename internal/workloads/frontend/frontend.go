// Package frontend defines the web frontend sub-chart: an nginx Deployment
// and a ClusterIP Service.
package frontend

import (
	"helm.sh/helm/v3/pkg/chart"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"

	"github.com/KenkoGeek/timonel-examples/internal/helm/chartbuilder"
	"github.com/KenkoGeek/timonel-examples/internal/helm/expr"
)

// Name is the chart name.
const Name = "frontend"

// Default values, also used as template fallbacks.
const (
	defaultImage    = "nginx:1.27.0"
	defaultReplicas = 2
)

// New builds the chart.
func New() *chartbuilder.Chart {
	c := chartbuilder.New(&chart.Metadata{
		Name:        Name,
		Version:     "0.2.0",
		Description: "Static web frontend served by nginx",
		AppVersion:  "1.27.0",
		Type:        "application",
	}, map[string]interface{}{
		"replicas": defaultReplicas,
		"image":    defaultImage,
	})

	labels := map[string]string{"app.kubernetes.io/name": Name}

	deployment := &appsv1.Deployment{
		TypeMeta:   metav1.TypeMeta{APIVersion: "apps/v1", Kind: "Deployment"},
		ObjectMeta: metav1.ObjectMeta{Name: Name, Labels: labels},
		Spec: appsv1.DeploymentSpec{
			Selector: &metav1.LabelSelector{MatchLabels: labels},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: labels},
				Spec: corev1.PodSpec{
					Containers: []corev1.Container{{
						Name:  "nginx",
						Image: expr.ValuesRefOr("image", defaultImage),
						Ports: []corev1.ContainerPort{{Name: "http", ContainerPort: 80}},
					}},
				},
			},
		},
	}

	service := &corev1.Service{
		TypeMeta:   metav1.TypeMeta{APIVersion: "v1", Kind: "Service"},
		ObjectMeta: metav1.ObjectMeta{Name: Name, Labels: labels},
		Spec: corev1.ServiceSpec{
			Selector: labels,
			Ports: []corev1.ServicePort{{
				Name:       "http",
				Port:       80,
				TargetPort: intstr.FromString("http"),
			}},
		},
	}

	c.MustAddManifest("deployment", deployment,
		chartbuilder.WithField(expr.ValuesRefOr("replicas", defaultReplicas), "spec", "replicas"),
	)
	c.MustAddManifest("service", service)

	return c
}
