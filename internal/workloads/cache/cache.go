// Package cache defines the Redis cache sub-chart.
package cache

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
const Name = "cache"

const configName = Name + "-config"

// Default values. Templates fall back to them so an inlined copy, which
// reads the umbrella's root values, still renders.
const (
	defaultImage     = "redis:7.2.5"
	defaultMaxMemory = "128mb"
)

// New builds the chart. The chart carries no version, so it is written as
// 0.1.0.
func New() *chartbuilder.Chart {
	c := chartbuilder.New(&chart.Metadata{
		Name:        Name,
		Description: "Single-node Redis cache",
		AppVersion:  "7.2.5",
		Type:        "application",
	}, map[string]interface{}{
		"image":     defaultImage,
		"maxMemory": defaultMaxMemory,
	})

	labels := map[string]string{"app.kubernetes.io/name": Name}

	config := &corev1.ConfigMap{
		TypeMeta:   metav1.TypeMeta{APIVersion: "v1", Kind: "ConfigMap"},
		ObjectMeta: metav1.ObjectMeta{Name: configName, Labels: labels},
		Data: map[string]string{
			"redis.conf": "maxmemory " + expr.ValuesRefOr("maxMemory", defaultMaxMemory) + "\nmaxmemory-policy allkeys-lru\n",
		},
	}

	deployment := &appsv1.Deployment{
		TypeMeta:   metav1.TypeMeta{APIVersion: "apps/v1", Kind: "Deployment"},
		ObjectMeta: metav1.ObjectMeta{Name: Name, Labels: labels},
		Spec: appsv1.DeploymentSpec{
			Selector: &metav1.LabelSelector{MatchLabels: labels},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: labels},
				Spec: corev1.PodSpec{
					Containers: []corev1.Container{{
						Name:    "redis",
						Image:   expr.ValuesRefOr("image", defaultImage),
						Command: []string{"redis-server", "/etc/redis/redis.conf"},
						Ports:   []corev1.ContainerPort{{Name: "redis", ContainerPort: 6379}},
						VolumeMounts: []corev1.VolumeMount{{
							Name:      "config",
							MountPath: "/etc/redis",
						}},
					}},
					Volumes: []corev1.Volume{{
						Name: "config",
						VolumeSource: corev1.VolumeSource{
							ConfigMap: &corev1.ConfigMapVolumeSource{
								LocalObjectReference: corev1.LocalObjectReference{Name: configName},
							},
						},
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
				Name:       "redis",
				Port:       6379,
				TargetPort: intstr.FromString("redis"),
			}},
		},
	}

	c.MustAddManifest("configmap", config)
	c.MustAddManifest("deployment", deployment)
	c.MustAddManifest("service", service)

	return c
}
