// Package codec flattens heap elements into the bytes a storage cell holds
// and rebuilds them on load.
package codec

import (
	"cmp"
	"encoding"
	"encoding/binary"
	"encoding/json"
	"math"
	"reflect"

	"github.com/pkg/errors"
)

var ErrShortCell = errors.New("cell is shorter than the encoded width")
var ErrUnsupportedKind = errors.New("unsupported kind for ordered codec")

// Codec encodes one element per storage cell.
type Codec[T any] interface {
	Encode(v T) ([]byte, error)
	Decode(data []byte) (T, error)
}

type ordered[T cmp.Ordered] struct {
	typ reflect.Type
}

// Ordered handles every cmp.Ordered type, named types included: integers and
// floats as 8 big-endian bytes, strings as their raw bytes.
func Ordered[T cmp.Ordered]() Codec[T] {
	var zero T
	return ordered[T]{typ: reflect.TypeOf(zero)}
}

func (c ordered[T]) Encode(v T) ([]byte, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return binary.BigEndian.AppendUint64(nil, uint64(rv.Int())), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return binary.BigEndian.AppendUint64(nil, rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return binary.BigEndian.AppendUint64(nil, math.Float64bits(rv.Float())), nil
	case reflect.String:
		return []byte(rv.String()), nil
	}
	return nil, errors.Wrapf(ErrUnsupportedKind, "encode %s", c.typ)
}

func (c ordered[T]) Decode(data []byte) (T, error) {
	var zero T
	out := reflect.New(c.typ).Elem()

	kind := c.typ.Kind()
	if kind == reflect.String {
		out.SetString(string(data))
		return out.Interface().(T), nil
	}

	if len(data) < 8 {
		return zero, errors.Wrapf(ErrShortCell, "decode %s from %d bytes", c.typ, len(data))
	}
	bits := binary.BigEndian.Uint64(data)

	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		out.SetInt(int64(bits))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		out.SetUint(bits)
	case reflect.Float32, reflect.Float64:
		out.SetFloat(math.Float64frombits(bits))
	default:
		return zero, errors.Wrapf(ErrUnsupportedKind, "decode %s", c.typ)
	}
	return out.Interface().(T), nil
}

// BinaryMarshaler is satisfied by a *T that can marshal and unmarshal itself.
type BinaryMarshaler[T any] interface {
	*T
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
}

type binaryCodec[T any, PT BinaryMarshaler[T]] struct{}

// Binary delegates to the element's own MarshalBinary/UnmarshalBinary.
func Binary[T any, PT BinaryMarshaler[T]]() Codec[T] {
	return binaryCodec[T, PT]{}
}

func (binaryCodec[T, PT]) Encode(v T) ([]byte, error) {
	data, err := PT(&v).MarshalBinary()
	if err != nil {
		return nil, errors.Wrapf(err, "encode %T", v)
	}
	return data, nil
}

func (binaryCodec[T, PT]) Decode(data []byte) (T, error) {
	var v T
	if err := PT(&v).UnmarshalBinary(data); err != nil {
		return v, errors.Wrapf(err, "decode %T", v)
	}
	return v, nil
}

type jsonCodec[T any] struct{}

// JSON encodes structured elements that have no binary form of their own.
func JSON[T any]() Codec[T] {
	return jsonCodec[T]{}
}

func (jsonCodec[T]) Encode(v T) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrapf(err, "encode %T", v)
	}
	return data, nil
}

func (jsonCodec[T]) Decode(data []byte) (T, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return v, errors.Wrapf(err, "decode %T", v)
	}
	return v, nil
}
