package engine

import (
	"sort"
	"strconv"
	"unicode/utf8"

	"github.com/wippyai/engine-bridge/errors"
)

// propertyKey normalizes a value used as a property key. Numbers use their
// canonical decimal form, matching how the engine folds index-like keys.
func propertyKey(key Value) (string, error) {
	switch key.Kind() {
	case KindString:
		return key.rec.str, nil
	case KindNumber:
		return formatNumber(key.rec.num), nil
	case KindBoolean:
		if key.rec.b {
			return "true", nil
		}
		return "false", nil
	case KindUndefined:
		return "undefined", nil
	case KindNull:
		return "null", nil
	}
	return "", errors.TypeMismatch(errors.PhaseConvert, "primitive key", key.Kind().String())
}

func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func objectRecord(obj Value, phase errors.Phase) (*record, error) {
	if !obj.IsObject() {
		return nil, errors.TypeMismatch(phase, "object", obj.Kind().String())
	}
	if obj.rec.props == nil {
		obj.rec.props = make(map[string]*record)
	}
	return obj.rec, nil
}

// Get reads a property by value key.
func Get(r *Region, obj, key Value) (Value, error) {
	k, err := propertyKey(key)
	if err != nil {
		return Value{}, err
	}
	return getProp(r, obj, k)
}

// GetString reads a property named by a byte-delimited UTF-8 key.
func GetString(r *Region, obj Value, key []byte) (Value, error) {
	if !utf8.Valid(key) {
		return Value{}, errors.InvalidUTF8(errors.PhaseConvert, key)
	}
	return getProp(r, obj, string(key))
}

// GetIndex reads an indexed element. Arrays use element storage; other
// objects fall back to the canonical string key.
func GetIndex(r *Region, obj Value, index uint32) (Value, error) {
	if obj.Kind() == KindArray {
		if int(index) >= len(obj.rec.elems) {
			return r.Undefined(), nil
		}
		return Value{rec: obj.rec.elems[index], region: r}, nil
	}
	return getProp(r, obj, strconv.FormatUint(uint64(index), 10))
}

func getProp(r *Region, obj Value, key string) (Value, error) {
	rec, err := objectRecord(obj, errors.PhaseConvert)
	if err != nil {
		return Value{}, err
	}
	for cur := rec; cur != nil; cur = cur.proto {
		if p, ok := cur.props[key]; ok {
			return Value{rec: p, region: r}, nil
		}
	}
	return r.Undefined(), nil
}

// Set writes a property by value key. The boolean mirrors the engine's own
// "write succeeded" result.
func Set(r *Region, obj, key, val Value) (bool, error) {
	k, err := propertyKey(key)
	if err != nil {
		return false, err
	}
	return setProp(obj, k, val)
}

// SetString writes a property named by a byte-delimited UTF-8 key.
func SetString(r *Region, obj Value, key []byte, val Value) (bool, error) {
	if !utf8.Valid(key) {
		return false, errors.InvalidUTF8(errors.PhaseConvert, key)
	}
	return setProp(obj, string(key), val)
}

// SetIndex writes an indexed element, growing arrays as needed.
func SetIndex(r *Region, obj Value, index uint32, val Value) (bool, error) {
	if val.rec == nil {
		return false, errors.InvalidInput(errors.PhaseConvert, "cannot store an empty handle")
	}
	if obj.Kind() == KindArray {
		for int(index) >= len(obj.rec.elems) {
			obj.rec.elems = append(obj.rec.elems, r.inst.undefinedRec)
		}
		obj.rec.elems[index] = val.rec
		return true, nil
	}
	return setProp(obj, strconv.FormatUint(uint64(index), 10), val)
}

func setProp(obj Value, key string, val Value) (bool, error) {
	if val.rec == nil {
		return false, errors.InvalidInput(errors.PhaseConvert, "cannot store an empty handle")
	}
	rec, err := objectRecord(obj, errors.PhaseConvert)
	if err != nil {
		return false, err
	}
	rec.props[key] = val.rec
	return true, nil
}

// OwnPropertyNames returns an array of the object's own property names in
// deterministic (sorted) order. Array element indices are included first.
func OwnPropertyNames(r *Region, obj Value) (Value, error) {
	rec, err := objectRecord(obj, errors.PhaseConvert)
	if err != nil {
		return Value{}, err
	}

	var names []string
	if rec.kind == KindArray {
		for i := range rec.elems {
			names = append(names, strconv.Itoa(i))
		}
	}
	keys := make([]string, 0, len(rec.props))
	for k := range rec.props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	names = append(names, keys...)

	out := r.Array(uint32(len(names)))
	for i, n := range names {
		out.rec.elems[i] = &record{kind: KindString, str: n}
	}
	return out, nil
}

// ToString coerces a value to its string representation.
func ToString(r *Region, v Value) (Value, error) {
	r.use()
	var s string
	switch v.Kind() {
	case KindUndefined:
		s = "undefined"
	case KindNull:
		s = "null"
	case KindBoolean:
		if v.rec.b {
			s = "true"
		} else {
			s = "false"
		}
	case KindNumber:
		s = formatNumber(v.rec.num)
	case KindString:
		return Value{rec: v.rec, region: r}, nil
	case KindFunction:
		s = "function " + v.rec.fnName + "() { [native code] }"
	case KindError:
		s = v.rec.str
	default:
		s = "[object Object]"
	}
	return Value{rec: &record{kind: KindString, str: s}, region: r}, nil
}

// ToObject coerces a value to an object. Coercing undefined or null is a
// conversion failure; object-like values pass through.
func ToObject(r *Region, v Value) (Value, error) {
	if v.IsObject() {
		return Value{rec: v.rec, region: r}, nil
	}
	return Value{}, errors.TypeMismatch(errors.PhaseConvert, "object", v.Kind().String())
}
