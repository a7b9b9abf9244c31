package interpreter

import "fmt"

// FirstInstanceID is the id given to the first instance of a registry
const FirstInstanceID = 1000000

// Registry maps instance ids to the state holding each instance's fields.
// Instances live until Reset. A Registry is not safe for concurrent use.
type Registry struct {
	instances map[int64]*State
	next      int64
}

func NewRegistry() *Registry {
	return &Registry{instances: make(map[int64]*State), next: FirstInstanceID}
}

// Create registers a new instance with x, y, object_id and id seeded in its outermost scope
func (r *Registry) Create(x, y, objectID Number) int64 {
	id := r.next
	r.next++

	inst := newState(nil)
	fields := inst.current().vars
	fields["x"] = x
	fields["y"] = y
	fields["object_id"] = objectID
	fields["id"] = Number(id)

	r.instances[id] = inst
	return id
}

// Lookup returns the state of instance id
func (r *Registry) Lookup(id int64) (*State, bool) {
	inst, ok := r.instances[id]
	return inst, ok
}

// Field reads a field of instance id through the instance's own scopes
func (r *Registry) Field(id int64, name string) (Value, error) {
	inst, ok := r.instances[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNoInstance, id)
	}

	v, ok := inst.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %d.%s", ErrNoField, id, name)
	}
	return v, nil
}

// Len returns the number of live instances
func (r *Registry) Len() int {
	return len(r.instances)
}

// Reset drops every instance and restarts numbering at FirstInstanceID
func (r *Registry) Reset() {
	r.instances = make(map[int64]*State)
	r.next = FirstInstanceID
}
