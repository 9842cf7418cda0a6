package provider

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/truemediaorg/mediaresolver/model"
	"golang.org/x/exp/maps"
)

// Registry is the priority-ordered master list of providers.
// It is never modified after NewRegistry returns, so concurrent reads need no locking.
type Registry struct {
	specs []Spec
}

func NewRegistry(specs []Spec) (*Registry, error) {
	normalized := make([]Spec, 0, len(specs))
	seen := map[string]bool{}
	for i, spec := range specs {
		n, err := spec.normalize()
		if err != nil {
			return nil, fmt.Errorf("provider %d: %w", i, err)
		}
		if seen[n.Name] {
			return nil, fmt.Errorf("duplicate provider name: %s", n.Name)
		}
		seen[n.Name] = true
		normalized = append(normalized, n)
	}
	return &Registry{specs: normalized}, nil
}

// Select returns the providers eligible for a platform, in master list order.
func (r *Registry) Select(p model.Platform) []Spec {
	var selected []Spec
	if p == model.PlatformUnsupported {
		return selected
	}
	for _, spec := range r.specs {
		if spec.Supports(p) {
			selected = append(selected, spec)
		}
	}
	return selected
}

func (r *Registry) Len() int {
	return len(r.specs)
}

func (r *Registry) Names() []string {
	names := make([]string, len(r.specs))
	for i, spec := range r.specs {
		names[i] = spec.Name
	}
	return names
}

// Platforms lists every concrete platform at least one provider can serve, sorted by name.
// A universal provider serves all of them.
func (r *Registry) Platforms() []model.Platform {
	served := map[model.Platform]bool{}
	for _, spec := range r.specs {
		for _, p := range spec.Platforms {
			if p == model.PlatformUniversal {
				for _, specific := range model.SpecificPlatforms() {
					served[specific] = true
				}
				continue
			}
			served[p] = true
		}
	}
	platforms := maps.Keys(served)
	sort.Slice(platforms, func(i, j int) bool {
		return platforms[i] < platforms[j]
	})
	return platforms
}

// WithCredentials returns a copy of specs with the per-provider headers from creds layered on top,
// keyed by provider name. Credentials win over the headers already in the spec.
func WithCredentials(specs []Spec, creds map[string]map[string]string) []Spec {
	out := make([]Spec, len(specs))
	for i, spec := range specs {
		extra, ok := creds[spec.Name]
		if ok && len(extra) > 0 {
			headers := make(map[string]string, len(spec.Headers)+len(extra))
			for k, v := range spec.Headers {
				headers[http.CanonicalHeaderKey(k)] = v
			}
			for k, v := range extra {
				headers[http.CanonicalHeaderKey(k)] = v
			}
			spec.Headers = headers
		}
		out[i] = spec
	}
	return out
}
