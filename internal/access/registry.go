package access

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Reference is a typed delegation descriptor: it names a relation whose
// target resource's grants are consulted when the declaring resource has no
// direct grant. A reference is either fixed (a foreign-key column pointing at
// a known table) or dynamic (a type/id column pair read from the row itself).
type Reference struct {
	Name string

	// Fixed relation
	Table    string
	IDColumn string

	// Dynamic relation: the row names its own target table.
	TypeColumn string
}

// ReferenceTo declares a fixed parent relation resolved through a foreign-key
// column.
func ReferenceTo(name, table, idColumn string) Reference {
	return Reference{Name: name, Table: table, IDColumn: idColumn}
}

// DynamicReference declares a relation whose target table and id are read
// from the row's own columns.
func DynamicReference(name, typeColumn, idColumn string) Reference {
	return Reference{Name: name, TypeColumn: typeColumn, IDColumn: idColumn}
}

// ResourceType describes how the engine treats one resource table: optional
// per-type special rules and the ordered delegation references.
type ResourceType struct {
	Table      string
	Rules      SpecialRules
	References []Reference
}

var (
	errNilResourceType       = errors.New("access: nil resource type")
	errEmptyTable            = errors.New("access: resource type table is required")
	errDuplicateResourceType = errors.New("access: resource type already registered")
	errInvalidReference      = errors.New("access: reference must declare a fixed table or a type column")
)

// TypeRegistry maps resource type strings (table names) to their descriptors.
type TypeRegistry struct {
	mu    sync.RWMutex
	types map[string]*ResourceType
}

// NewTypeRegistry constructs an empty registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{types: make(map[string]*ResourceType)}
}

// Register adds a resource type descriptor to the registry.
func (r *TypeRegistry) Register(rt *ResourceType) error {
	if rt == nil {
		return errNilResourceType
	}

	table := strings.TrimSpace(rt.Table)
	if table == "" {
		return errEmptyTable
	}

	for _, ref := range rt.References {
		if strings.TrimSpace(ref.IDColumn) == "" {
			return fmt.Errorf("%w: %s reference %q has no id column", errInvalidReference, table, ref.Name)
		}
		if strings.TrimSpace(ref.Table) == "" && strings.TrimSpace(ref.TypeColumn) == "" {
			return fmt.Errorf("%w: %s reference %q", errInvalidReference, table, ref.Name)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.types[table]; exists {
		return fmt.Errorf("%w: %s", errDuplicateResourceType, table)
	}

	cp := *rt
	cp.Table = table
	cp.References = append([]Reference(nil), rt.References...)
	r.types[table] = &cp
	return nil
}

// Lookup returns the descriptor for a resource type string.
func (r *TypeRegistry) Lookup(table string) (*ResourceType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rt, ok := r.types[table]
	return rt, ok
}

// DefaultRegistry builds the registry for the built-in resource types. Users
// and teams carry special visibility rules; permission grant rows delegate to
// the resource they target; rotation join rows delegate to their parents in
// declaration order.
func DefaultRegistry() *TypeRegistry {
	reg := NewTypeRegistry()

	mustRegister(reg, &ResourceType{Table: "users", Rules: userRules{}})
	mustRegister(reg, &ResourceType{Table: "teams", Rules: teamRules{}})
	mustRegister(reg, &ResourceType{Table: "roles"})
	mustRegister(reg, &ResourceType{Table: "invitations"})
	mustRegister(reg, &ResourceType{Table: "rotations"})
	mustRegister(reg, &ResourceType{Table: "provider_instances"})
	mustRegister(reg, &ResourceType{
		Table: "rotation_providers",
		References: []Reference{
			ReferenceTo("rotation", "rotations", "rotation_id"),
			ReferenceTo("provider_instance", "provider_instances", "provider_instance_id"),
		},
	})
	mustRegister(reg, &ResourceType{
		Table: "permission_grants",
		References: []Reference{
			DynamicReference("resource", "resource_type", "resource_id"),
		},
	})

	return reg
}

func mustRegister(reg *TypeRegistry, rt *ResourceType) {
	if err := reg.Register(rt); err != nil {
		panic(err)
	}
}
