package decode

import (
	"encoding/json"
	"math/big"
	"reflect"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// UnknownName labels anything the resolver could not map to a signature.
const UnknownName = "unknown"

// Result is either Decoded or Unresolved.
type Result interface {
	// Label is the function or event name, or UnknownName.
	Label() string
	// Hex is the selector or topic hash the result was resolved from.
	Hex() string
	isResult()
}

// Arg is one decoded argument with a JSON-friendly value.
type Arg struct {
	Name    string      `json:"name"`
	Type    string      `json:"type"`
	Value   interface{} `json:"value"`
	Indexed bool        `json:"indexed,omitempty"`
}

// Decoded is a resolved signature. Args is nil when the signature matched but
// the payload did not unpack against it.
type Decoded struct {
	Name      string
	Selector  string
	Signature string
	Args      []Arg
}

// Unresolved carries only the selector or topic hash.
type Unresolved struct {
	Selector string
}

func (d Decoded) Label() string { return d.Name }
func (d Decoded) Hex() string   { return d.Selector }
func (Decoded) isResult()       {}

func (u Unresolved) Label() string { return UnknownName }
func (u Unresolved) Hex() string   { return u.Selector }
func (Unresolved) isResult()       {}

// Arg returns the named argument's value.
func (d Decoded) Arg(name string) (interface{}, bool) {
	for _, a := range d.Args {
		if a.Name == name {
			return a.Value, true
		}
	}
	return nil, false
}

// ArgString returns the named argument formatted as a string.
func (d Decoded) ArgString(name string) (string, bool) {
	v, ok := d.Arg(name)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// ArgsJSON encodes the decoded arguments as a name->value object. It returns
// nil for unresolved results and for resolved results whose arguments did
// not decode.
func ArgsJSON(r Result) json.RawMessage {
	d, ok := r.(Decoded)
	if !ok || d.Args == nil {
		return nil
	}
	obj := make(map[string]interface{}, len(d.Args))
	for _, a := range d.Args {
		obj[a.Name] = a.Value
	}
	raw, err := json.Marshal(obj)
	if err != nil {
		return nil
	}
	return raw
}

// normalizeValue converts an ABI-unpacked value into something that
// round-trips through JSON without losing precision.
func normalizeValue(v interface{}) interface{} {
	switch t := v.(type) {
	case nil:
		return nil
	case *big.Int:
		if t == nil {
			return nil
		}
		return t.String()
	case common.Address:
		return strings.ToLower(t.Hex())
	case common.Hash:
		return t.Hex()
	case []byte:
		return hexutil.Encode(t)
	case string, bool:
		return t
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint()
	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(b), rv)
			return hexutil.Encode(b)
		}
		return normalizeList(rv)
	case reflect.Slice:
		return normalizeList(rv)
	case reflect.Struct:
		out := make(map[string]interface{}, rv.NumField())
		for i := 0; i < rv.NumField(); i++ {
			f := rv.Type().Field(i)
			name := f.Tag.Get("json")
			if name == "" {
				name = f.Name
			}
			out[name] = normalizeValue(rv.Field(i).Interface())
		}
		return out
	case reflect.Ptr:
		if rv.IsNil() {
			return nil
		}
		return normalizeValue(rv.Elem().Interface())
	}
	return v
}

func normalizeList(rv reflect.Value) []interface{} {
	out := make([]interface{}, rv.Len())
	for i := range out {
		out[i] = normalizeValue(rv.Index(i).Interface())
	}
	return out
}
