package provider

import "fmt"

// Registry manages registered Source implementations and resolves
// repository references to one of them.
type Registry struct {
	sources []Source
}

// NewRegistry creates an empty source registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a Source implementation to the registry. The first
// registered source is the default for bare "owner/name" input.
func (r *Registry) Register(s Source) {
	r.sources = append(r.sources, s)
}

// Detect iterates registered sources and returns the first one whose
// MatchesURL method returns true for the given URL.
func (r *Registry) Detect(url string) (Source, error) {
	for _, s := range r.sources {
		if s.MatchesURL(url) {
			return s, nil
		}
	}
	return nil, fmt.Errorf("no registered source matches URL: %s", url)
}

// Resolve returns the source for a repository reference: the detected
// source for URLs, otherwise the default source.
func (r *Registry) Resolve(input string) (Source, error) {
	if s, err := r.Detect(input); err == nil {
		return s, nil
	}
	if len(r.sources) == 0 {
		return nil, fmt.Errorf("no sources registered")
	}
	return r.sources[0], nil
}
