// Package jsonvalue provides an explicit tagged-union JSON value.
//
// Values are Null, Bool, Int, Double, String, Array or Object. Objects keep
// member insertion order so that documents decoded from JSON or YAML, and
// responses synthesized from schemas, serialize in declaration order.
//
//	v, err := jsonvalue.Parse([]byte(`{"b":1,"a":[true,null]}`))
//	fmt.Println(v) // {"b":1,"a":[true,null]}
package jsonvalue
