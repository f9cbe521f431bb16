// Package simclient talks to the simulator's REST API. It is stateless; the
// stores in pkg/store own all caching and consistency.
package simclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	utiljson "k8s.io/apimachinery/pkg/util/json"
	"k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/rest"

	"github.com/sttts/simconsole/pkg/resources"
)

// APIPrefix is the path every simulator endpoint lives under.
const APIPrefix = "/api/v1"

// Config describes how to reach the simulator.
type Config struct {
	// Server is the base URL, e.g. http://localhost:1212.
	Server string
	QPS    float32
	Burst  int
	// Transport overrides the HTTP transport, mostly for tests.
	Transport http.RoundTripper
	UserAgent string
}

// Client is the entry point to the per-kind API clients.
type Client struct {
	rest rest.Interface
}

// New builds a REST client for the simulator at cfg.Server.
func New(cfg Config) (*Client, error) {
	if cfg.Server == "" {
		return nil, fmt.Errorf("simulator server URL is empty")
	}
	rc := &rest.Config{
		Host:      strings.TrimSuffix(cfg.Server, "/"),
		APIPath:   "/api",
		QPS:       cfg.QPS,
		Burst:     cfg.Burst,
		Transport: cfg.Transport,
		UserAgent: cfg.UserAgent,
	}
	if rc.UserAgent == "" {
		rc.UserAgent = "simconsole"
	}
	rc.GroupVersion = &corev1.SchemeGroupVersion
	rc.NegotiatedSerializer = scheme.Codecs.WithoutConversion()
	restClient, err := rest.RESTClientFor(rc)
	if err != nil {
		return nil, fmt.Errorf("rest client: %w", err)
	}
	return &Client{rest: restClient}, nil
}

// Resource returns the client for a simulator-scoped kind.
func (c *Client) Resource(k resources.Kind) *ResourceClient {
	return &ResourceClient{rest: c.rest, kind: k}
}

// Namespaces returns the client for the global namespace endpoints.
func (c *Client) Namespaces() *NamespaceClient {
	return &NamespaceClient{rest: c.rest}
}

// SchedulerConfiguration returns the client for a simulator's scheduler
// configuration.
func (c *Client) SchedulerConfiguration() *SchedulerConfigClient {
	return &SchedulerConfigClient{rest: c.rest}
}

// validName rejects names that would change the request path.
func validName(name string) error {
	if name == "" {
		return fmt.Errorf("name must not be empty")
	}
	if strings.ContainsAny(name, "/?#") {
		return fmt.Errorf("invalid name %q", name)
	}
	return nil
}

func post(ctx context.Context, r rest.Interface, obj *unstructured.Unstructured, segments ...string) ([]byte, error) {
	body, err := obj.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", obj.GetName(), err)
	}
	return r.Post().
		AbsPath(append([]string{APIPrefix}, segments...)...).
		SetHeader("Content-Type", "application/json").
		Body(body).
		DoRaw(ctx)
}

func get(ctx context.Context, r rest.Interface, segments ...string) ([]byte, error) {
	return r.Get().AbsPath(append([]string{APIPrefix}, segments...)...).DoRaw(ctx)
}

// decodeObject decodes a single object. An empty body decodes to nil; the
// simulator answers applies with no content.
func decodeObject(data []byte, k resources.Kind) (*unstructured.Unstructured, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}
	var obj map[string]interface{}
	if err := utiljson.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("decode %s: %w", k.Name, err)
	}
	return withTypeMeta(obj, k), nil
}

// decodeList decodes a {"items": [...]} list body.
func decodeList(data []byte, k resources.Kind) ([]*unstructured.Unstructured, error) {
	var list struct {
		Items []map[string]interface{} `json:"items"`
	}
	if err := utiljson.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("decode %s list: %w", k.Name, err)
	}
	out := make([]*unstructured.Unstructured, 0, len(list.Items))
	for _, it := range list.Items {
		out = append(out, withTypeMeta(it, k))
	}
	return out, nil
}

// withTypeMeta fills apiVersion and kind, which typed list items served by
// the simulator leave empty.
func withTypeMeta(obj map[string]interface{}, k resources.Kind) *unstructured.Unstructured {
	u := &unstructured.Unstructured{Object: obj}
	if u.GetAPIVersion() == "" {
		u.SetAPIVersion(k.APIVersion())
	}
	if u.GetKind() == "" {
		u.SetKind(k.Name)
	}
	return u
}
