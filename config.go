package cdconfig

// ValueKind identifies the scalar variant stored in a [ConfigValue].
type ValueKind int

const (
	KindString ValueKind = iota
	KindNumber
	KindBoolean
)

func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	default:
		return "unknown"
	}
}

// ConfigValue is one scalar taken from a collectd configuration file: a
// string, a number (collectd represents all numbers as float64), or a
// boolean. Construct values with [String], [Number] and [Bool].
type ConfigValue struct {
	kind    ValueKind
	str     string
	num     float64
	boolean bool
}

// String returns a ConfigValue holding a string scalar.
func String(s string) ConfigValue {
	return ConfigValue{kind: KindString, str: s}
}

// Number returns a ConfigValue holding a numeric scalar.
func Number(n float64) ConfigValue {
	return ConfigValue{kind: KindNumber, num: n}
}

// Bool returns a ConfigValue holding a boolean scalar.
func Bool(b bool) ConfigValue {
	return ConfigValue{kind: KindBoolean, boolean: b}
}

// Kind returns the scalar variant stored in the value.
func (v ConfigValue) Kind() ValueKind {
	return v.kind
}

// ConfigItem is one entry of a collectd configuration block. Keys may repeat
// within a block, and an item may carry scalar values, nested children, or
// both. The decoder only reads items; they stay owned by the caller and may
// be shared across concurrent [Unmarshal] calls.
type ConfigItem struct {
	Key      string
	Values   []ConfigValue
	Children []ConfigItem
}

// Char decodes from a string value containing exactly one character.
//
// Go reflection cannot tell a rune field from an int32 field, so the
// one-character contract is attached to this named type instead.
type Char rune
