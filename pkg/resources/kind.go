package resources

import (
	corev1 "k8s.io/api/core/v1"
	storagev1 "k8s.io/api/storage/v1"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

// Kind describes one resource collection exposed by the simulator API.
type Kind struct {
	// Name is the Kubernetes kind, e.g. "PersistentVolumeClaim".
	Name string
	// Short is the label used for selections and tabs, e.g. "PVC".
	Short string
	// Resource is the plural REST path segment, e.g. "persistentvolumeclaims".
	Resource string
	GVK      schema.GroupVersionKind
	// SimulatorScoped is false for kinds served outside /simulators/{id}.
	SimulatorScoped bool
	Aliases         []string
}

// APIVersion returns the apiVersion string objects of this kind carry.
func (k Kind) APIVersion() string { return k.GVK.GroupVersion().String() }

func (k Kind) String() string { return k.Name }

var (
	Node = Kind{
		Name:            "Node",
		Short:           "Node",
		Resource:        "nodes",
		GVK:             corev1.SchemeGroupVersion.WithKind("Node"),
		SimulatorScoped: true,
		Aliases:         []string{"node", "no"},
	}
	Pod = Kind{
		Name:            "Pod",
		Short:           "Pod",
		Resource:        "pods",
		GVK:             corev1.SchemeGroupVersion.WithKind("Pod"),
		SimulatorScoped: true,
		Aliases:         []string{"pod", "po"},
	}
	PersistentVolume = Kind{
		Name:            "PersistentVolume",
		Short:           "PV",
		Resource:        "persistentvolumes",
		GVK:             corev1.SchemeGroupVersion.WithKind("PersistentVolume"),
		SimulatorScoped: true,
		Aliases:         []string{"persistentvolume", "pv"},
	}
	PersistentVolumeClaim = Kind{
		Name:            "PersistentVolumeClaim",
		Short:           "PVC",
		Resource:        "persistentvolumeclaims",
		GVK:             corev1.SchemeGroupVersion.WithKind("PersistentVolumeClaim"),
		SimulatorScoped: true,
		Aliases:         []string{"persistentvolumeclaim", "pvc"},
	}
	StorageClass = Kind{
		Name:            "StorageClass",
		Short:           "SC",
		Resource:        "storageclasses",
		GVK:             storagev1.SchemeGroupVersion.WithKind("StorageClass"),
		SimulatorScoped: true,
		Aliases:         []string{"storageclass", "sc"},
	}
	Namespace = Kind{
		Name:     "Namespace",
		Short:    "NS",
		Resource: "namespaces",
		GVK:      corev1.SchemeGroupVersion.WithKind("Namespace"),
		Aliases:  []string{"namespace", "ns"},
	}
)

// SimulatorKinds lists the simulator-scoped kinds in console tab order.
func SimulatorKinds() []Kind {
	return []Kind{Node, Pod, PersistentVolume, PersistentVolumeClaim, StorageClass}
}
