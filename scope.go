package cdconfig

// element is one decodable unit within a key's occurrence list: either a
// scalar value or a nested block, already grouped into its own scope.
type element struct {
	scalar ConfigValue
	block  scope
}

func (e *element) isBlock() bool {
	return e.block != nil
}

// kindLabel names the element's shape for error messages.
func (e *element) kindLabel() string {
	if e.isBlock() {
		return "block"
	}

	return e.scalar.Kind().String()
}

// scopeEntry holds every element contributed by one key within a scope, in
// document order.
type scopeEntry struct {
	key   string
	elems []element
}

// scope is the key-grouped view of one nesting level. Keys appear in
// first-seen order; repeated keys are never merged, their occurrences just
// extend the entry's element list.
type scope []scopeEntry

// scopeOf groups the ordered items of one block. A scalar occurrence
// contributes one element per value, a children-bearing occurrence
// contributes a single block element holding the recursively grouped
// children. An occurrence carrying both contributes its scalars followed by
// its block; the shape mismatch then surfaces during the typed decode.
func scopeOf(items []ConfigItem) scope {
	var s scope

	index := make(map[string]int, len(items))
	for _, item := range items {
		at, ok := index[item.Key]
		if !ok {
			at = len(s)
			index[item.Key] = at
			s = append(s, scopeEntry{key: item.Key})
		}

		entry := &s[at]
		for _, value := range item.Values {
			entry.elems = append(entry.elems, element{scalar: value})
		}

		if len(item.Children) > 0 {
			entry.elems = append(entry.elems, element{block: scopeOf(item.Children)})
		}
	}

	return s
}
