package host

import (
	"reflect"

	"github.com/modern-go/reflect2"
)

type Kind byte

const (
	KIND_INVALID Kind = 0
	KIND_BOOL    Kind = 'Z'
	KIND_BYTE    Kind = 'B'
	KIND_CHAR    Kind = 'C'
	KIND_SHORT   Kind = 'S'
	KIND_INT     Kind = 'I'
	KIND_LONG    Kind = 'J'
	KIND_FLOAT   Kind = 'F'
	KIND_DOUBLE  Kind = 'D'
	KIND_OBJECT  Kind = 'L'
)

var kindNames = map[Kind]string{
	KIND_BOOL:   "boolean",
	KIND_BYTE:   "byte",
	KIND_CHAR:   "char",
	KIND_SHORT:  "short",
	KIND_INT:    "int",
	KIND_LONG:   "long",
	KIND_FLOAT:  "float",
	KIND_DOUBLE: "double",
	KIND_OBJECT: "object",
}

// KindOf classifies a Go value. Untyped nil and every reference or composite
// value is KIND_OBJECT.
func KindOf(v any) Kind {
	typ := reflect2.TypeOf(v)
	if typ == nil {
		return KIND_OBJECT
	}
	switch typ.Kind() {
	case reflect.Bool:
		return KIND_BOOL
	case reflect.Int8, reflect.Uint8:
		return KIND_BYTE
	case reflect.Uint16:
		return KIND_CHAR
	case reflect.Int16:
		return KIND_SHORT
	case reflect.Int, reflect.Int32, reflect.Uint32:
		return KIND_INT
	case reflect.Int64, reflect.Uint64, reflect.Uint:
		return KIND_LONG
	case reflect.Float32:
		return KIND_FLOAT
	case reflect.Float64:
		return KIND_DOUBLE
	}
	return KIND_OBJECT
}

func ParseKind(s string) (Kind, bool) {
	if len(s) == 1 {
		k := Kind(s[0])
		_, ok := kindNames[k]
		return k, ok
	}
	for k, name := range kindNames {
		if name == s {
			return k, true
		}
	}
	switch s {
	case "bool":
		return KIND_BOOL, true
	case "int32":
		return KIND_INT, true
	case "int64":
		return KIND_LONG, true
	}
	return KIND_INVALID, false
}

func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// Accepts reports whether an argument of kind arg may be passed to a parameter of kind k.
func (k Kind) Accepts(arg Kind) bool {
	return k == KIND_OBJECT || k == arg
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "invalid"
}
