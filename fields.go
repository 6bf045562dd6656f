package cdconfig

import (
	"reflect"
	"strings"
)

// field is one decodable struct field, carrying the config key it answers
// to and the index path for reflect.Value.FieldByIndex.
type field struct {
	Name  string
	Type  reflect.Type
	Index []int
}

// fieldsOf resolves the decodable fields of a struct type, flattening
// embedded structs the way encoding/json does: fields of an embedded struct
// are promoted unless shadowed by a field closer to the root. When fields
// at the same depth collide on a name, a single tag-renamed field wins over
// plain ones; any other collision drops the name without an error.
func fieldsOf(ty reflect.Type, structTag string) []field {
	if ty.Kind() != reflect.Struct {
		panic("not a struct")
	}

	type candidate struct {
		field    field
		depth    int
		explicit bool
	}

	type level struct {
		ty     reflect.Type
		prefix []int
	}

	candidates := map[string][]candidate{}
	var order []string

	// breadth first over the embedding tree, so shallower fields are
	// always collected before the fields they shadow
	depth := 0
	levels := []level{{ty: ty}}

	for len(levels) > 0 {
		var next []level

		for _, lvl := range levels {
			for idx := range lvl.ty.NumField() {
				fi := lvl.ty.Field(idx)
				if !fi.IsExported() {
					continue
				}

				name, explicit := nameOf(fi, structTag)
				if name == "" {
					// tagged with "-"
					continue
				}

				// full index path, copied so appends below never share
				prefix := lvl.prefix
				index := append(prefix[:len(prefix):len(prefix)], fi.Index...)

				if fi.Anonymous && !explicit {
					if fi.Type.Kind() != reflect.Struct {
						continue
					}

					next = append(next, level{ty: fi.Type, prefix: index})
					continue
				}

				if len(candidates[name]) == 0 {
					order = append(order, name)
				}

				candidates[name] = append(candidates[name], candidate{
					depth:    depth,
					explicit: explicit,
					field: field{
						Name:  name,
						Type:  fi.Type,
						Index: index,
					},
				})
			}
		}

		levels = next
		depth++
	}

	var fields []field

	for _, name := range order {
		all := candidates[name]

		// only the shallowest depth is visible, everything below is
		// shadowed. candidates are collected breadth first, so the
		// shallowest ones form a prefix.
		visible := all
		for idx, c := range all {
			if c.depth != all[0].depth {
				visible = all[:idx]
				break
			}
		}

		if len(visible) == 1 {
			fields = append(fields, visible[0].field)
			continue
		}

		// tie at the same depth: a single explicitly tagged field wins
		var explicit []candidate
		for _, c := range visible {
			if c.explicit {
				explicit = append(explicit, c)
			}
		}

		if len(explicit) == 1 {
			fields = append(fields, explicit[0].field)
			continue
		}

		// still ambiguous, the name is dropped without an error
	}

	return fields
}

func nameOf(fi reflect.StructField, structTag string) (name string, explicit bool) {
	tag := fi.Tag.Get(structTag)

	if tag == "" {
		// no tag, take the original name
		return fi.Name, false
	}

	if tag == "-" {
		// empty name indicates: skip this field
		return "", true
	}

	idx := strings.IndexByte(tag, ',')
	switch {
	case idx == -1:
		// no comma, take the full tag as explicit name
		return tag, true

	case idx > 0:
		// non empty alias, take up to comma
		return tag[:idx], true

	default:
		// no alias before the comma, keep field name
		return fi.Name, false
	}
}
