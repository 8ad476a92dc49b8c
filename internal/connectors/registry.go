package connectors

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
)

type Registry struct {
	mu         sync.RWMutex
	connectors map[string]Connector
	order      []string
}

type Descriptor struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Kind string `json:"kind"`
}

type HealthStatus struct {
	Key     string `json:"key"`
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

func NewRegistry() *Registry {
	return &Registry{connectors: map[string]Connector{}}
}

func (r *Registry) Register(connector Connector) error {
	if connector == nil {
		return fmt.Errorf("connector is nil")
	}

	key := normalizeKey(connector.Key())
	if key == "" {
		return fmt.Errorf("connector key is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.connectors[key]; exists {
		return fmt.Errorf("connector %q already registered", key)
	}

	r.connectors[key] = connector
	r.order = append(r.order, key)
	return nil
}

// Get accepts a bare key, a site host ("www.bigfinish.com") or a full page URL.
func (r *Registry) Get(key string) (Connector, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	connector, ok := r.connectors[normalizeKey(key)]
	return connector, ok
}

// Default returns the first registered connector.
func (r *Registry) Default() (Connector, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.order) == 0 {
		return nil, false
	}
	return r.connectors[r.order[0]], true
}

func (r *Registry) List() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]Descriptor, 0, len(r.connectors))
	for _, connector := range r.connectors {
		items = append(items, Descriptor{
			Key:  connector.Key(),
			Name: connector.Name(),
			Kind: connector.Kind(),
		})
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].Key < items[j].Key
	})

	return items
}

func (r *Registry) Health(ctx context.Context) []HealthStatus {
	r.mu.RLock()
	list := make([]Connector, 0, len(r.connectors))
	for _, connector := range r.connectors {
		list = append(list, connector)
	}
	r.mu.RUnlock()

	statuses := make([]HealthStatus, 0, len(list))
	for _, connector := range list {
		err := connector.HealthCheck(ctx)
		status := HealthStatus{
			Key:     connector.Key(),
			Name:    connector.Name(),
			Kind:    connector.Kind(),
			Healthy: err == nil,
		}
		if err != nil {
			status.Error = err.Error()
		}
		statuses = append(statuses, status)
	}

	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Key < statuses[j].Key
	})

	return statuses
}

func normalizeKey(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return ""
	}

	host := key
	if strings.Contains(key, "://") {
		parsed, err := url.Parse(key)
		if err != nil || parsed.Hostname() == "" {
			return key
		}
		host = parsed.Hostname()
	}
	host = strings.TrimPrefix(host, "www.")
	if label, _, found := strings.Cut(host, "."); found && label != "" {
		return label
	}
	return host
}
