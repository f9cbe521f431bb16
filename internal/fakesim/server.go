// Package fakesim is an in-memory stand-in for the simulator's REST API.
// It keeps objects per simulator, normalizes applied objects the way the
// real backend does and can inject failures. Requests are counted per route
// in prometheus metrics served on /metrics.
package fakesim

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/types"

	"github.com/sttts/simconsole/pkg/resources"
)

// SimulatorIDLabel marks cluster-scoped objects with their simulator.
const SimulatorIDLabel = "simulatorID"

// Server implements http.Handler.
type Server struct {
	e   *echo.Echo
	log logr.Logger

	mu       sync.Mutex
	objects  map[string]map[string]map[string]*unstructured.Unstructured // simulator, resource, name
	configs  map[string]map[string]interface{}
	spaces   map[string]*unstructured.Unstructured
	failures map[string]int
	version  int64

	registry *prometheus.Registry
	requests *prometheus.CounterVec
}

// New builds a server with all routes registered.
func New(log logr.Logger) *Server {
	s := &Server{
		log:      log,
		objects:  map[string]map[string]map[string]*unstructured.Unstructured{},
		configs:  map[string]map[string]interface{}{},
		spaces:   map[string]*unstructured.Unstructured{},
		failures: map[string]int{},
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fakesim_requests_total",
			Help: "Requests served, by method and resource.",
		}, []string{"method", "resource"}),
	}
	s.registry.MustRegister(s.requests)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(s.logRequests)
	e.Use(s.countAndFail)

	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	v1 := e.Group("/api/v1")
	v1.POST("/namespaces", s.createNamespace)
	v1.GET("/namespaces/:name", s.getNamespace)

	sim := v1.Group("/simulators/:simulatorID")
	sim.GET("/schedulerconfiguration", s.getSchedulerConfig)
	sim.POST("/schedulerconfiguration", s.putSchedulerConfig)
	sim.GET("/:resource", s.list)
	sim.POST("/:resource", s.apply)
	sim.GET("/:resource/:name", s.get)
	sim.DELETE("/:resource/:name", s.delete)

	s.e = e
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.e.ServeHTTP(w, r)
}

// Start serves on addr until the listener fails.
func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

// Fail makes every following request to method and resource answer with
// status. A zero status clears the failure.
func (s *Server) Fail(method, resource string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failures, method+" "+resource)
		return
	}
	s.failures[method+" "+resource] = status
}

// Requests returns how many requests hit method and resource.
func (s *Server) Requests(method, resource string) int {
	var m dto.Metric
	if err := s.requests.WithLabelValues(method, resource).Write(&m); err != nil {
		return 0
	}
	return int(m.GetCounter().GetValue())
}

// Put stores obj as-is, bypassing normalization.
func (s *Server) Put(simulatorID, resource string, obj *unstructured.Unstructured) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bucket(simulatorID, resource)[obj.GetName()] = obj.DeepCopy()
}

// Object returns a copy of the stored object, or nil.
func (s *Server) Object(simulatorID, resource, name string) *unstructured.Unstructured {
	s.mu.Lock()
	defer s.mu.Unlock()
	if obj, ok := s.bucket(simulatorID, resource)[name]; ok {
		return obj.DeepCopy()
	}
	return nil
}

func (s *Server) logRequests(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		begin := time.Now()
		err := next(c)
		s.log.V(1).Info("request", "method", c.Request().Method, "path", c.Request().URL.Path,
			"status", c.Response().Status, "duration", time.Since(begin), "error", err)
		return err
	}
}

func (s *Server) countAndFail(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if c.Path() == "/metrics" {
			return next(c)
		}
		method, resource := c.Request().Method, routeResource(c)
		s.requests.WithLabelValues(method, resource).Inc()
		s.mu.Lock()
		status, fail := s.failures[method+" "+resource]
		s.mu.Unlock()
		if fail {
			return echo.NewHTTPError(status, "injected failure")
		}
		return next(c)
	}
}

func routeResource(c echo.Context) string {
	if r := c.Param("resource"); r != "" {
		return r
	}
	switch {
	case strings.HasSuffix(c.Path(), "/schedulerconfiguration"):
		return "schedulerconfiguration"
	case strings.HasPrefix(c.Path(), "/api/v1/namespaces"):
		return resources.Namespace.Resource
	}
	return c.Path()
}

func kindFor(c echo.Context) (resources.Kind, error) {
	k, err := resources.Lookup(c.Param("resource"))
	if err != nil || !k.SimulatorScoped || k.Resource != c.Param("resource") {
		return resources.Kind{}, echo.NewHTTPError(http.StatusNotFound, "unknown resource "+c.Param("resource"))
	}
	return k, nil
}

func (s *Server) bucket(simulatorID, resource string) map[string]*unstructured.Unstructured {
	bySim, ok := s.objects[simulatorID]
	if !ok {
		bySim = map[string]map[string]*unstructured.Unstructured{}
		s.objects[simulatorID] = bySim
	}
	b, ok := bySim[resource]
	if !ok {
		b = map[string]*unstructured.Unstructured{}
		bySim[resource] = b
	}
	return b
}

func (s *Server) list(c echo.Context) error {
	k, err := kindFor(c)
	if err != nil {
		return err
	}
	s.mu.Lock()
	b := s.bucket(c.Param("simulatorID"), k.Resource)
	names := make([]string, 0, len(b))
	for name := range b {
		names = append(names, name)
	}
	sort.Strings(names)
	items := make([]interface{}, 0, len(names))
	for _, name := range names {
		obj := b[name].DeepCopy()
		// typed list items carry no type meta
		delete(obj.Object, "kind")
		delete(obj.Object, "apiVersion")
		items = append(items, obj.Object)
	}
	s.mu.Unlock()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"kind":       k.Name + "List",
		"apiVersion": k.APIVersion(),
		"items":      items,
	})
}

func (s *Server) get(c echo.Context) error {
	k, err := kindFor(c)
	if err != nil {
		return err
	}
	s.mu.Lock()
	obj, ok := s.bucket(c.Param("simulatorID"), k.Resource)[c.Param("name")]
	if ok {
		obj = obj.DeepCopy()
	}
	s.mu.Unlock()
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, k.Resource+" "+c.Param("name")+" not found")
	}
	return c.JSON(http.StatusOK, obj.Object)
}

func (s *Server) apply(c echo.Context) error {
	k, err := kindFor(c)
	if err != nil {
		return err
	}
	id := c.Param("simulatorID")
	obj := &unstructured.Unstructured{Object: map[string]interface{}{}}
	if err := c.Echo().JSONSerializer.Deserialize(c, &obj.Object); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body").SetInternal(err)
	}
	if obj.Object == nil || obj.GetName() == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "metadata.name is required")
	}

	obj.SetAPIVersion(k.APIVersion())
	obj.SetKind(k.Name)
	switch k.Name {
	case resources.Pod.Name, resources.PersistentVolumeClaim.Name:
		obj.SetNamespace(id)
	default:
		labels := obj.GetLabels()
		if labels == nil {
			labels = map[string]string{}
		}
		labels[SimulatorIDLabel] = id
		obj.SetLabels(labels)
		if !strings.HasSuffix(obj.GetName(), id) {
			obj.SetName(obj.GetName() + "-" + id)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.bucket(id, k.Resource)
	if old, ok := b[obj.GetName()]; ok {
		obj.SetUID(old.GetUID())
		obj.SetCreationTimestamp(old.GetCreationTimestamp())
	} else {
		obj.SetUID(types.UID(uuid.NewString()))
		obj.SetCreationTimestamp(metav1.Now())
	}
	s.version++
	obj.SetResourceVersion(strconv.FormatInt(s.version, 10))
	b[obj.GetName()] = obj
	return c.NoContent(http.StatusOK)
}

func (s *Server) delete(c echo.Context) error {
	k, err := kindFor(c)
	if err != nil {
		return err
	}
	id, name := c.Param("simulatorID"), c.Param("name")
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.bucket(id, k.Resource)
	if _, ok := b[name]; !ok {
		return echo.NewHTTPError(http.StatusNotFound, k.Resource+" "+name+" not found")
	}
	delete(b, name)
	if k.Name == resources.Node.Name {
		pods := s.bucket(id, resources.Pod.Resource)
		for podName, pod := range pods {
			if nodeName, _, _ := unstructured.NestedString(pod.Object, "spec", "nodeName"); nodeName == name {
				delete(pods, podName)
			}
		}
	}
	return c.NoContent(http.StatusOK)
}

func (s *Server) createNamespace(c echo.Context) error {
	ns := &unstructured.Unstructured{Object: map[string]interface{}{}}
	ns.SetAPIVersion(resources.Namespace.APIVersion())
	ns.SetKind(resources.Namespace.Name)
	ns.SetName(uuid.NewString())
	ns.SetUID(types.UID(uuid.NewString()))
	ns.SetCreationTimestamp(metav1.Now())
	if err := unstructured.SetNestedField(ns.Object, "Active", "status", "phase"); err != nil {
		return err
	}
	s.mu.Lock()
	s.spaces[ns.GetName()] = ns
	s.mu.Unlock()
	return c.JSON(http.StatusOK, ns.Object)
}

func (s *Server) getNamespace(c echo.Context) error {
	s.mu.Lock()
	ns, ok := s.spaces[c.Param("name")]
	if ok {
		ns = ns.DeepCopy()
	}
	s.mu.Unlock()
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "namespace "+c.Param("name")+" not found")
	}
	return c.JSON(http.StatusOK, ns.Object)
}

// DefaultSchedulerConfig is served until a configuration is applied.
func DefaultSchedulerConfig() map[string]interface{} {
	return map[string]interface{}{
		"kind":       "KubeSchedulerConfiguration",
		"apiVersion": "kubescheduler.config.k8s.io/v1beta2",
		"profiles": []interface{}{
			map[string]interface{}{"schedulerName": "default-scheduler"},
		},
	}
}

func (s *Server) getSchedulerConfig(c echo.Context) error {
	s.mu.Lock()
	cfg, ok := s.configs[c.Param("simulatorID")]
	s.mu.Unlock()
	if !ok {
		cfg = DefaultSchedulerConfig()
	}
	return c.JSON(http.StatusOK, cfg)
}

func (s *Server) putSchedulerConfig(c echo.Context) error {
	cfg := map[string]interface{}{}
	if err := c.Echo().JSONSerializer.Deserialize(c, &cfg); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body").SetInternal(err)
	}
	s.mu.Lock()
	s.configs[c.Param("simulatorID")] = cfg
	s.mu.Unlock()
	return c.NoContent(http.StatusOK)
}
