package jsonvalue

// Object is a JSON object that remembers the order members were first set.
type Object struct {
	keys   []string
	values map[string]Value
}

// NewObject creates an empty object.
func NewObject() *Object {
	return &Object{values: make(map[string]Value)}
}

// Set stores val under key. Re-setting a key keeps its original position.
func (o *Object) Set(key string, val Value) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = val
}

// Get returns the member stored under key.
func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return Value{}, false
	}
	v, ok := o.values[key]
	return v, ok
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Keys returns the member names in insertion order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Len returns the number of members.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Range calls fn for each member in order until fn returns false.
func (o *Object) Range(fn func(key string, val Value) bool) {
	if o == nil {
		return
	}
	for _, k := range o.keys {
		if !fn(k, o.values[k]) {
			return
		}
	}
}

func (o *Object) equal(other *Object) bool {
	if o.Len() != other.Len() {
		return false
	}
	eq := true
	o.Range(func(key string, val Value) bool {
		ov, ok := other.Get(key)
		if !ok || !val.Equal(ov) {
			eq = false
		}
		return eq
	})
	return eq
}
