package cdconfig

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Deserializer answers the typed requests of one decode call against a
// grouped config document. The [Decoder] drives it while walking the target
// type: it asks for a bool, a sequence, the fields of a struct, and the
// Deserializer serves each request from its current traversal position,
// descending into and ascending out of nesting levels as the requested
// types imply.
//
// A Deserializer belongs to exactly one decode call and must not be shared.
// The underlying document is never written to.
type Deserializer struct {
	cur cursor
}

func newDeserializer(items []ConfigItem) *Deserializer {
	return &Deserializer{cur: newCursor(scopeOf(items))}
}

// value resolves the element a scalar request refers to: the single element
// of the currently bound key, or the current element of a sequence.
func (d *Deserializer) value() (*element, error) {
	f, err := d.cur.current()
	if err != nil {
		return nil, err
	}

	switch f.kind {
	case frameItem:
		if len(f.elems) != 1 {
			return nil, fmt.Errorf("key %q carries %d values: %w", f.key, len(f.elems), ErrExpectSingleValue)
		}
		return &f.elems[0], nil

	case frameSeq:
		return &f.elems[f.index], nil

	default:
		return nil, ErrExpectSingleValue
	}
}

func (d *Deserializer) scalar(want ValueKind) (ConfigValue, error) {
	el, err := d.value()
	if err != nil {
		return ConfigValue{}, err
	}

	if el.isBlock() || el.scalar.Kind() != want {
		return ConfigValue{}, wrongKindError(want, el.kindLabel())
	}

	return el.scalar, nil
}

// Bool returns the current value as a bool.
func (d *Deserializer) Bool() (bool, error) {
	v, err := d.scalar(KindBoolean)
	return v.boolean, err
}

// Float64 returns the current numeric value. Collectd stores every number
// as a float64, so this is the lossless accessor.
func (d *Deserializer) Float64() (float64, error) {
	v, err := d.scalar(KindNumber)
	return v.num, err
}

// Float32 returns the current numeric value narrowed to float32.
func (d *Deserializer) Float32() (float32, error) {
	v, err := d.scalar(KindNumber)
	return float32(v.num), err
}

// String returns the current string value as it appears in the document,
// sharing the document's backing memory. Use [Deserializer.StringCopy] if
// the result must outlive the document.
func (d *Deserializer) String() (string, error) {
	v, err := d.scalar(KindString)
	return v.str, err
}

// StringCopy returns a detached copy of the current string value.
func (d *Deserializer) StringCopy() (string, error) {
	s, err := d.String()
	return strings.Clone(s), err
}

// Char returns the current string value's only character. Strings of any
// other length fail with [ErrCharLength].
func (d *Deserializer) Char() (rune, error) {
	s, err := d.String()
	if err != nil {
		return 0, err
	}

	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("got %q: %w", s, ErrCharLength)
	}

	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

// narrowInt converts the current numeric value to a signed integer of the
// given bit width. The fractional part truncates toward zero; values out of
// range (and NaN) fail wrapping [strconv.ErrRange].
func (d *Deserializer) narrowInt(bits int) (int64, error) {
	v, err := d.scalar(KindNumber)
	if err != nil {
		return 0, err
	}

	t := math.Trunc(v.num)
	limit := math.Ldexp(1, bits-1)
	if math.IsNaN(t) || t < -limit || t >= limit {
		return 0, fmt.Errorf("number %v overflows int%d: %w", v.num, bits, strconv.ErrRange)
	}

	return int64(t), nil
}

// narrowUint is narrowInt for unsigned widths.
func (d *Deserializer) narrowUint(bits int) (uint64, error) {
	v, err := d.scalar(KindNumber)
	if err != nil {
		return 0, err
	}

	t := math.Trunc(v.num)
	limit := math.Ldexp(1, bits)
	if math.IsNaN(t) || t < 0 || t >= limit {
		return 0, fmt.Errorf("number %v overflows uint%d: %w", v.num, bits, strconv.ErrRange)
	}

	return uint64(t), nil
}

func (d *Deserializer) Int8() (int8, error) {
	n, err := d.narrowInt(8)
	return int8(n), err
}

func (d *Deserializer) Int16() (int16, error) {
	n, err := d.narrowInt(16)
	return int16(n), err
}

func (d *Deserializer) Int32() (int32, error) {
	n, err := d.narrowInt(32)
	return int32(n), err
}

func (d *Deserializer) Int64() (int64, error) {
	return d.narrowInt(64)
}

func (d *Deserializer) Uint8() (uint8, error) {
	n, err := d.narrowUint(8)
	return uint8(n), err
}

func (d *Deserializer) Uint16() (uint16, error) {
	n, err := d.narrowUint(16)
	return uint16(n), err
}

func (d *Deserializer) Uint32() (uint32, error) {
	n, err := d.narrowUint(32)
	return uint32(n), err
}

func (d *Deserializer) Uint64() (uint64, error) {
	return d.narrowUint(64)
}

// Identifier returns the key the Deserializer is currently bound to, i.e.
// the key [FieldIter.Next] last presented.
func (d *Deserializer) Identifier() (string, error) {
	f, err := d.cur.current()
	if err != nil {
		return "", err
	}

	if f.kind != frameItem {
		return "", ErrExpectKey
	}

	return f.key, nil
}

// Skip discards the value of the key the Deserializer is currently bound
// to. It consumes nothing, so it can never fail on the document's shape;
// unknown keys are skipped this way.
func (d *Deserializer) Skip() error {
	return nil
}

// Seq views the currently bound key's occurrences as a sequence. One
// element is one scalar value or one child-bearing occurrence, in document
// order across repeated keys.
func (d *Deserializer) Seq() (*SeqIter, error) {
	f, err := d.cur.current()
	if err != nil {
		return nil, err
	}

	if f.kind != frameItem {
		return nil, ErrExpectStruct
	}

	return &SeqIter{de: d, count: len(f.elems)}, nil
}

// Struct starts iterating the fields of the current position. Two positions
// can serve a struct: the current scope itself (the document root), and a
// sequence element that carries a child block. A scalar sequence element
// fails with [ErrExpectChildren]; a plain bound key fails with
// [ErrExpectStruct].
func (d *Deserializer) Struct() (*FieldIter, error) {
	f, err := d.cur.current()
	if err != nil {
		return nil, err
	}

	switch f.kind {
	case frameStruct:
		return &FieldIter{de: d, count: len(f.scope)}, nil

	case frameSeq:
		el := &f.elems[f.index]
		if !el.isBlock() {
			return nil, fmt.Errorf("sequence element is a %s: %w", el.kindLabel(), ErrExpectChildren)
		}

		d.cur.push(frame{kind: frameStruct, scope: el.block})
		return &FieldIter{de: d, count: len(el.block), popScope: true}, nil

	default:
		return nil, ErrExpectStruct
	}
}

// FieldIter presents the keys of one scope in document order. It is the
// struct-decoding half of the pull protocol: each Next binds one key, the
// caller decodes that key's value through the Deserializer, then asks for
// the next key.
type FieldIter struct {
	de    *Deserializer
	count int
	pos   int

	// popScope marks that Struct pushed an extra scope frame for a
	// sequence element, to be ascended out of on exhaustion.
	popScope bool
}

// Len returns the number of keys the scope presents.
func (it *FieldIter) Len() int {
	return it.count
}

// Next binds the scope's next key and returns it. Once the scope is
// exhausted it reports ok = false and ascends out of every frame this
// iteration pushed; it must not be called again after that.
func (it *FieldIter) Next() (key string, ok bool, err error) {
	if it.pos == it.count {
		if it.count != 0 {
			it.de.cur.pop()
		}
		if it.popScope {
			it.de.cur.pop()
		}
		return "", false, nil
	}

	if err := it.de.cur.bindField(it.pos); err != nil {
		return "", false, err
	}
	it.pos++

	key, err = it.de.Identifier()
	if err != nil {
		return "", false, err
	}

	return key, true, nil
}

// SeqIter presents the elements of one bound key as a sequence. Each Next
// positions the Deserializer on the next element; the caller decodes it,
// then advances.
type SeqIter struct {
	de    *Deserializer
	count int
	pos   int
}

// Len returns the number of elements in the sequence.
func (it *SeqIter) Len() int {
	return it.count
}

// Next advances to the next element. Once the sequence is exhausted it
// reports false and ascends out of the frame the first element pushed; it
// must not be called again after that.
func (it *SeqIter) Next() (bool, error) {
	if it.pos == it.count {
		if it.count != 0 {
			it.de.cur.pop()
		}
		return false, nil
	}

	if err := it.de.cur.bindElement(it.pos); err != nil {
		return false, err
	}
	it.pos++

	return true, nil
}
