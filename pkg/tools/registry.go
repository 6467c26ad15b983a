// Package tools holds the catalog of callable capabilities: immutable
// tool descriptors, the closed category set, and the registry that maps
// tool names to metadata and handlers.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// Handler executes a tool call. Handlers are optional: a descriptor may
// be registered for documentation and discovery only.
type Handler func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error)

// Descriptor describes a callable capability. Descriptors are immutable
// after registration.
type Descriptor struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    Category        `json:"category"`
	Keywords    []string        `json:"keywords,omitempty"`
	UseCases    []string        `json:"use_cases,omitempty"`
	InputSchema json.RawMessage `json:"input_schema,omitempty"`
}

// Stats summarizes the registry contents.
type Stats struct {
	Total       int              `json:"total"`
	PerCategory map[Category]int `json:"per_category"`
}

// Registry manages tool descriptors, handlers and the category index.
// Registration happens during single-threaded startup; the read-write
// lock keeps hot-registration safe as well.
type Registry struct {
	mu       sync.RWMutex
	tools    map[string]Descriptor
	handlers map[string]Handler
	schemas  map[string]*gojsonschema.Schema
	byCat    map[Category][]string
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools:    make(map[string]Descriptor),
		handlers: make(map[string]Handler),
		schemas:  make(map[string]*gojsonschema.Schema),
		byCat:    make(map[Category][]string),
	}
}

// Register adds a tool to the registry. Registration is idempotent by
// name: the last write wins. The handler may be nil for metadata-only
// registrations.
func (r *Registry) Register(desc Descriptor, handler Handler) error {
	if desc.Name == "" {
		return fmt.Errorf("tool name is required")
	}
	if desc.Category == "" {
		desc.Category = CategorySystem
	}
	if !IsValidCategory(string(desc.Category)) {
		return fmt.Errorf("invalid category %q for tool %q", desc.Category, desc.Name)
	}

	var schema *gojsonschema.Schema
	if len(desc.InputSchema) > 0 {
		compiled, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(desc.InputSchema))
		if err != nil {
			return fmt.Errorf("invalid input schema for tool %q: %w", desc.Name, err)
		}
		schema = compiled
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, exists := r.tools[desc.Name]; exists && prev.Category != desc.Category {
		r.removeFromCategory(prev.Category, desc.Name)
	}
	if !r.inCategory(desc.Category, desc.Name) {
		r.byCat[desc.Category] = append(r.byCat[desc.Category], desc.Name)
	}

	r.tools[desc.Name] = desc
	if handler != nil {
		r.handlers[desc.Name] = handler
	} else {
		delete(r.handlers, desc.Name)
	}
	if schema != nil {
		r.schemas[desc.Name] = schema
	} else {
		delete(r.schemas, desc.Name)
	}
	return nil
}

func (r *Registry) inCategory(category Category, name string) bool {
	for _, n := range r.byCat[category] {
		if n == name {
			return true
		}
	}
	return false
}

func (r *Registry) removeFromCategory(category Category, name string) {
	names := r.byCat[category]
	for i, n := range names {
		if n == name {
			r.byCat[category] = append(names[:i], names[i+1:]...)
			return
		}
	}
}

// Get returns the descriptor for a tool name.
func (r *Registry) Get(name string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	desc, ok := r.tools[name]
	return desc, ok
}

// GetHandler returns the handler for a tool name, if one was registered.
func (r *Registry) GetHandler(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handler, ok := r.handlers[name]
	return handler, ok
}

// ByCategory returns descriptors in the given category in registration
// order. Unknown categories yield an empty slice.
func (r *Registry) ByCategory(category Category) []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := r.byCat[category]
	descs := make([]Descriptor, 0, len(names))
	for _, name := range names {
		if desc, ok := r.tools[name]; ok {
			descs = append(descs, desc)
		}
	}
	return descs
}

// All returns every registered descriptor. No ordering guarantee.
func (r *Registry) All() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	descs := make([]Descriptor, 0, len(r.tools))
	for _, desc := range r.tools {
		descs = append(descs, desc)
	}
	return descs
}

// Stats returns the total tool count and the count per category.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := Stats{
		Total:       len(r.tools),
		PerCategory: make(map[Category]int, len(r.byCat)),
	}
	for category, names := range r.byCat {
		stats.PerCategory[category] = len(names)
	}
	return stats
}

// ValidateInput validates a tool call payload against the tool's input
// schema. Tools without a schema accept any payload.
func (r *Registry) ValidateInput(name string, payload map[string]interface{}) error {
	r.mu.RLock()
	schema, ok := r.schemas[name]
	r.mu.RUnlock()

	if !ok {
		return nil
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(payload))
	if err != nil {
		return fmt.Errorf("schema validation failed for tool %q: %w", name, err)
	}
	if !result.Valid() {
		messages := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			messages = append(messages, desc.String())
		}
		return fmt.Errorf("invalid input for tool %q: %v", name, messages)
	}
	return nil
}
