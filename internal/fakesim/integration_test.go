package fakesim_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-logr/logr"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/sttts/simconsole/internal/fakesim"
	simtesting "github.com/sttts/simconsole/internal/testing"
	"github.com/sttts/simconsole/pkg/resources"
	"github.com/sttts/simconsole/pkg/simclient"
	"github.com/sttts/simconsole/pkg/store"
)

func newSet(t *testing.T) (*store.Set, *fakesim.Server, *simclient.Client) {
	t.Helper()
	sim := fakesim.New(logr.Discard())
	srv := httptest.NewServer(sim)
	t.Cleanup(srv.Close)

	c, err := simclient.New(simclient.Config{Server: srv.URL})
	if err != nil {
		t.Fatalf("simclient.New: %v", err)
	}
	set := store.NewSet(logr.Discard(), func(k resources.Kind) store.Client[store.Object] {
		return c.Resource(k)
	})
	return set, sim, c
}

func object(name string, fields map[string]interface{}) *unstructured.Unstructured {
	obj := &unstructured.Unstructured{Object: map[string]interface{}{}}
	for k, v := range fields {
		obj.Object[k] = v
	}
	obj.SetName(name)
	return obj
}

func TestStoreShowsNormalizedBackendState(t *testing.T) {
	set, _, _ := newSet(t)
	ctx := context.Background()

	if err := set.Nodes.Apply(ctx, object("n1", nil), "sim1"); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	nodes := set.Nodes.Items()
	if len(nodes) != 1 || nodes[0].GetName() != "n1-sim1" {
		t.Fatalf("store must reflect the backend's name, got %v", nodes)
	}
	if nodes[0].GetKind() != "Node" || nodes[0].GetUID() == "" {
		t.Fatalf("unexpected node %v", nodes[0].Object)
	}
}

func TestPodIndexFromBackend(t *testing.T) {
	set, _, _ := newSet(t)
	ctx := context.Background()

	for _, p := range []struct{ name, node string }{{"a", "n1"}, {"b", ""}, {"c", "n1"}, {"d", ""}} {
		spec := map[string]interface{}{}
		if p.node != "" {
			spec["nodeName"] = p.node
		}
		if err := set.Pods.Apply(ctx, object(p.name, map[string]interface{}{"spec": spec}), "sim1"); err != nil {
			t.Fatalf("Apply %s: %v", p.name, err)
		}
	}
	got := set.Pods.Index().Map()
	if len(got[store.Unscheduled]) != 2 || len(got["n1"]) != 2 {
		t.Fatalf("unexpected index %v", got)
	}
	if set.Pods.Count() != 4 {
		t.Fatalf("count = %d", set.Pods.Count())
	}
}

func TestFailedApplyDoesNotRelist(t *testing.T) {
	set, sim, _ := newSet(t)
	ctx := context.Background()
	if err := set.PersistentVolumes.List(ctx, "sim1"); err != nil {
		t.Fatalf("List: %v", err)
	}
	simtesting.ExpectSignal(t, set.PersistentVolumes.Changed(), time.Second, "list")
	sim.Fail(http.MethodPost, "persistentvolumes", http.StatusInternalServerError)

	if err := set.PersistentVolumes.Apply(ctx, object("pv1", nil), "sim1"); err == nil {
		t.Fatalf("expected apply error")
	}
	simtesting.ExpectNoSignal(t, set.PersistentVolumes.Changed(), "failed apply")
	if n := sim.Requests(http.MethodGet, "persistentvolumes"); n != 1 {
		t.Fatalf("failed apply must not relist, saw %d lists", n)
	}
}

func TestDeleteNotFoundSurfaces(t *testing.T) {
	set, _, _ := newSet(t)
	err := set.StorageClasses.Delete(context.Background(), "missing", "sim1")
	if !apierrors.IsNotFound(err) {
		t.Fatalf("expected not found through store, got %v", err)
	}
}

func TestRefreshSelectedFromBackend(t *testing.T) {
	set, sim, _ := newSet(t)
	ctx := context.Background()
	if err := set.PersistentVolumeClaims.Apply(ctx, object("claim", nil), "sim1"); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	items := set.PersistentVolumeClaims.Items()
	set.PersistentVolumeClaims.Select(items[0], false)

	updated := sim.Object("sim1", "persistentvolumeclaims", "claim")
	updated.SetLabels(map[string]string{"changed": "yes"})
	sim.Put("sim1", "persistentvolumeclaims", updated)

	if err := set.PersistentVolumeClaims.RefreshSelected(ctx, "sim1"); err != nil {
		t.Fatalf("RefreshSelected: %v", err)
	}
	sel := set.PersistentVolumeClaims.Selected()
	if sel == nil || sel.Item.GetLabels()["changed"] != "yes" {
		t.Fatalf("selection not refreshed: %+v", sel)
	}
}

func TestNamespaceCreatesSimulator(t *testing.T) {
	set, _, c := newSet(t)
	ctx := context.Background()

	ns, err := c.Namespaces().Apply(ctx, simclient.NewNamespace("ignored"))
	if err != nil {
		t.Fatalf("Apply namespace: %v", err)
	}
	id := ns.GetName()
	if id == "" || id == "ignored" {
		t.Fatalf("backend must mint the simulator id, got %q", id)
	}
	if _, err := c.Namespaces().Get(ctx, id); err != nil {
		t.Fatalf("Get namespace: %v", err)
	}
	if err := set.ListAll(ctx, id); err != nil {
		t.Fatalf("ListAll on fresh simulator: %v", err)
	}
}
