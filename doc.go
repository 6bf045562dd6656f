// Package cdconfig decodes collectd plugin configuration blocks onto Go
// types (structs, slices, scalars) similar to [json.Unmarshal].
//
// Collectd hands a plugin its configuration as an ordered tree of
// [ConfigItem] values in which keys may repeat and every item may carry
// scalar values, nested children, or both. [Unmarshal] walks the target type
// and pulls data out of that tree through a [Deserializer], resolving
// repeated keys into slices and nested blocks into struct values without
// building an intermediate generic representation.
package cdconfig
