package cdconfig

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/exp/constraints"
)

// Unmarshal decodes a collectd configuration block into target, which must
// be a non-nil pointer to a struct. Keys the target does not declare are
// skipped; keys the document does not present leave their field at the zero
// value.
func Unmarshal(items []ConfigItem, target any) error {
	return dec.Unmarshal(items, target)
}

// UnmarshalNew decodes a collectd configuration block into a fresh value of
// type T.
func UnmarshalNew[T any](items []ConfigItem) (T, error) {
	return UnmarshalNewWith[T](&dec, items)
}

func UnmarshalNewWith[T any](dec *Decoder, items []ConfigItem) (T, error) {
	var target T
	err := dec.Unmarshal(items, &target)
	return target, err
}

// A setter fills the reflect.Value with data pulled from the Deserializer.
type setter func(*Deserializer, reflect.Value) error

// A set of types that are currently in construction
type typeSet map[reflect.Type]struct{}

var tyTextUnmarshaler = reflect.TypeFor[encoding.TextUnmarshaler]()
var tyUnmarshaler = reflect.TypeFor[Unmarshaler]()
var tyChar = reflect.TypeFor[Char]()

// The default Decoder instance.
var dec Decoder

// Unmarshaler is implemented by types that decode themselves from their
// config representation; it is the hand-written counterpart of the
// reflection-driven decode. The implementation must leave the Deserializer
// balanced: every sequence or field iteration it starts has to run to
// exhaustion before it returns.
type Unmarshaler interface {
	UnmarshalConfig(de *Deserializer) error
}

// Decoder can be used to customize unmarshalling. This type is typesafe.
type Decoder struct {
	// the struct tag that is used
	structTag string

	// Cache for setters, indexed by reflect.Type
	setterCache sync.Map

	// Require values for fields. Set to true to fail with ErrNoValue
	// if the document never presents a field's key.
	requireValues bool
}

func NewDecoder() *Decoder {
	return &Decoder{
		structTag: "config",
	}
}

func (d *Decoder) WithTag(structTag string) *Decoder {
	if d.structTag == structTag {
		return d
	}

	return &Decoder{
		structTag:     structTag,
		requireValues: d.requireValues,
	}
}

func (d *Decoder) RequireValues() *Decoder {
	if d.requireValues {
		return d
	}

	return &Decoder{
		structTag:     d.structTag,
		requireValues: true,
	}
}

func (d *Decoder) Unmarshal(items []ConfigItem, target any) error {
	targetValue := reflect.ValueOf(target).Elem()

	// build the setter for the targets type
	setter, err := d.setterOf(typeSet{}, targetValue.Type())
	if err != nil {
		return err
	}

	return setter(newDeserializer(items), targetValue)
}

func (d *Decoder) setterOf(inConstruction typeSet, ty reflect.Type) (setter, error) {
	if cached, ok := d.setterCache.Load(ty); ok {
		return cached.(setter), nil
	}

	if _, ok := inConstruction[ty]; ok {
		// detected a cycle. return a setter that does a cache lookup when executed.
		// we assume that the actual setter will be in the cache once this setter is executed.
		lazySetter := func(de *Deserializer, target reflect.Value) error {
			cached, _ := d.setterCache.Load(ty)
			return cached.(setter)(de, target)
		}

		return lazySetter, nil
	}

	inConstruction[ty] = struct{}{}

	setter, err := d.makeSetterOf(inConstruction, ty)
	if err != nil {
		return nil, err
	}

	d.setterCache.Store(ty, setter)

	return setter, nil
}

func (d *Decoder) makeSetterOf(inConstruction typeSet, ty reflect.Type) (setter, error) {
	if reflect.PointerTo(ty).Implements(tyUnmarshaler) {
		return setUnmarshaler, nil
	}

	if reflect.PointerTo(ty).Implements(tyTextUnmarshaler) {
		return setTextUnmarshaler, nil
	}

	if ty == tyChar {
		return setChar, nil
	}

	switch ty.Kind() {
	case reflect.Bool:
		return setBool, nil

	case reflect.Int:
		if strconv.IntSize == 32 {
			return makeSetInt((*Deserializer).Int32), nil
		}
		return makeSetInt((*Deserializer).Int64), nil

	case reflect.Int8:
		return makeSetInt((*Deserializer).Int8), nil

	case reflect.Int16:
		return makeSetInt((*Deserializer).Int16), nil

	case reflect.Int32:
		return makeSetInt((*Deserializer).Int32), nil

	case reflect.Int64:
		return makeSetInt((*Deserializer).Int64), nil

	case reflect.Uint:
		if strconv.IntSize == 32 {
			return makeSetUint((*Deserializer).Uint32), nil
		}
		return makeSetUint((*Deserializer).Uint64), nil

	case reflect.Uint8:
		return makeSetUint((*Deserializer).Uint8), nil

	case reflect.Uint16:
		return makeSetUint((*Deserializer).Uint16), nil

	case reflect.Uint32:
		return makeSetUint((*Deserializer).Uint32), nil

	case reflect.Uint64:
		return makeSetUint((*Deserializer).Uint64), nil

	case reflect.Float32, reflect.Float64:
		return setFloat, nil

	case reflect.String:
		return setString, nil

	case reflect.Pointer:
		return d.makeSetPointer(inConstruction, ty)

	case reflect.Struct:
		return d.makeSetStruct(inConstruction, ty)

	case reflect.Slice:
		return d.makeSetSlice(inConstruction, ty)

	default:
		// Maps, arrays, interfaces and the rest have no representation
		// in a collectd config document.
		return nil, NotSupportedError{Type: ty}
	}
}

func (d *Decoder) makeSetStruct(inConstruction typeSet, ty reflect.Type) (setter, error) {
	structTag := d.structTag
	if structTag == "" {
		structTag = "config"
	}

	fields := fieldsOf(ty, structTag)

	setters := make([]setter, len(fields))
	for idx, field := range fields {
		fieldSetter, err := d.setterOf(inConstruction, field.Type)
		if err != nil {
			return nil, fmt.Errorf("setter for field %q: %w", field.Name, err)
		}

		setters[idx] = fieldSetter
	}

	// exact name first, folded name as tie break, like encoding/json
	byName := make(map[string]int, len(fields))
	byFold := make(map[string]int, len(fields))
	for idx, field := range fields {
		byName[field.Name] = idx

		folded := strings.ToLower(field.Name)
		if _, ok := byFold[folded]; !ok {
			byFold[folded] = idx
		}
	}

	requireValues := d.requireValues

	decodeFields := func(de *Deserializer, target reflect.Value, it *FieldIter) error {
		var seen []bool
		if requireValues {
			seen = make([]bool, len(fields))
		}

		for {
			key, ok, err := it.Next()
			if err != nil {
				return err
			}

			if !ok {
				break
			}

			idx, found := byName[key]
			if !found {
				idx, found = byFold[strings.ToLower(key)]
			}

			if !found {
				// Unknown keys are fine, blocks are shared with the daemon.
				if err := de.Skip(); err != nil {
					return err
				}

				continue
			}

			fieldValue := target.FieldByIndex(fields[idx].Index)
			if err := setters[idx](de, fieldValue); err != nil {
				return fmt.Errorf("set field %q on %q: %w", key, target.Type(), err)
			}

			if seen != nil {
				seen[idx] = true
			}
		}

		for idx := range seen {
			if !seen[idx] {
				return fmt.Errorf("field %q: %w", fields[idx].Name, ErrNoValue)
			}
		}

		return nil
	}

	setter := func(de *Deserializer, target reflect.Value) error {
		f, err := de.cur.current()
		if err != nil {
			return err
		}

		// A struct bound to a key decodes as the key's single block
		// occurrence. Descend through a one element sequence so the same
		// frames are entered as for a slice of structs.
		if f.kind == frameItem {
			seq, err := de.Seq()
			if err != nil {
				return err
			}

			if seq.Len() != 1 {
				return fmt.Errorf("key %q carries %d occurrences: %w", f.key, seq.Len(), ErrExpectSingleValue)
			}

			if _, err := seq.Next(); err != nil {
				return err
			}

			it, err := de.Struct()
			if err != nil {
				return err
			}

			if err := decodeFields(de, target, it); err != nil {
				return err
			}

			// exhaust the sequence to ascend back out
			_, err = seq.Next()
			return err
		}

		it, err := de.Struct()
		if err != nil {
			return err
		}

		return decodeFields(de, target, it)
	}

	return setter, nil
}

func (d *Decoder) makeSetSlice(inConstruction typeSet, ty reflect.Type) (setter, error) {
	elementSetter, err := d.setterOf(inConstruction, ty.Elem())
	if err != nil {
		return nil, fmt.Errorf("setter for element type %q: %w", ty, err)
	}

	// a empty element
	placeholderValue := reflect.New(ty.Elem()).Elem()

	setter := func(de *Deserializer, target reflect.Value) error {
		it, err := de.Seq()
		if err != nil {
			return fmt.Errorf("as sequence: %w", err)
		}

		for {
			ok, err := it.Next()
			if err != nil {
				return err
			}

			if !ok {
				break
			}

			// add an empty element to grow the list
			target.Set(reflect.Append(target, placeholderValue))

			idx := target.Len() - 1
			elementValue := target.Index(idx)
			if err := elementSetter(de, elementValue); err != nil {
				return fmt.Errorf("set element idx=%d: %w", idx, err)
			}
		}

		return nil
	}

	return setter, nil
}

func (d *Decoder) makeSetPointer(inConstruction typeSet, ty reflect.Type) (setter, error) {
	pointeeType := ty.Elem()

	pointeeSetter, err := d.setterOf(inConstruction, pointeeType)
	if err != nil {
		return nil, err
	}

	// A pointer field is the optional field: the document presenting the
	// key at all is what makes the value non-nil.
	setter := func(de *Deserializer, target reflect.Value) error {
		// newValue is now a pointer to an instance of the pointeeType
		newValue := reflect.New(pointeeType)
		if err := pointeeSetter(de, newValue.Elem()); err != nil {
			return err
		}

		// set pointer to the new value
		target.Set(newValue)

		return nil
	}

	return setter, err
}

func setBool(de *Deserializer, target reflect.Value) error {
	boolValue, err := de.Bool()
	if err != nil {
		return fmt.Errorf("get bool value: %w", err)
	}

	target.SetBool(boolValue)
	return nil
}

func makeSetInt[T constraints.Signed](read func(*Deserializer) (T, error)) setter {
	return func(de *Deserializer, target reflect.Value) error {
		value, err := read(de)
		if err != nil {
			return fmt.Errorf("get %T value: %w", value, err)
		}

		target.SetInt(int64(value))
		return nil
	}
}

func makeSetUint[T constraints.Unsigned](read func(*Deserializer) (T, error)) setter {
	return func(de *Deserializer, target reflect.Value) error {
		value, err := read(de)
		if err != nil {
			return fmt.Errorf("get %T value: %w", value, err)
		}

		target.SetUint(uint64(value))
		return nil
	}
}

func setFloat(de *Deserializer, target reflect.Value) error {
	floatValue, err := de.Float64()
	if err != nil {
		return fmt.Errorf("get float value: %w", err)
	}

	target.SetFloat(floatValue)
	return nil
}

func setString(de *Deserializer, target reflect.Value) error {
	stringValue, err := de.String()
	if err != nil {
		return fmt.Errorf("get string value: %w", err)
	}

	target.SetString(stringValue)

	return nil
}

func setChar(de *Deserializer, target reflect.Value) error {
	charValue, err := de.Char()
	if err != nil {
		return fmt.Errorf("get char value: %w", err)
	}

	target.SetInt(int64(charValue))
	return nil
}

func setTextUnmarshaler(de *Deserializer, target reflect.Value) error {
	text, err := de.String()
	if err != nil {
		return fmt.Errorf("get string value: %w", err)
	}

	m := target.Addr().Interface().(encoding.TextUnmarshaler)
	return m.UnmarshalText([]byte(text))
}

func setUnmarshaler(de *Deserializer, target reflect.Value) error {
	return target.Addr().Interface().(Unmarshaler).UnmarshalConfig(de)
}
