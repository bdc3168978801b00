package repository

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ValueType is the declared type of a stored value.
type ValueType string

const (
	TypeString        ValueType = "string"
	TypeLong          ValueType = "long"
	TypeDouble        ValueType = "double"
	TypeDecimal       ValueType = "decimal"
	TypeBoolean       ValueType = "boolean"
	TypeDate          ValueType = "date"
	TypeName          ValueType = "name"
	TypePath          ValueType = "path"
	TypeReference     ValueType = "reference"
	TypeWeakReference ValueType = "weakreference"
	TypeURI           ValueType = "uri"
	TypeBinary        ValueType = "binary"
)

var valueTypes = map[ValueType]bool{
	TypeString: true, TypeLong: true, TypeDouble: true, TypeDecimal: true,
	TypeBoolean: true, TypeDate: true, TypeName: true, TypePath: true,
	TypeReference: true, TypeWeakReference: true, TypeURI: true, TypeBinary: true,
}

// ParseValueType parses a type name, case-insensitively.
func ParseValueType(s string) (ValueType, error) {
	t := ValueType(strings.ToLower(strings.TrimSpace(s)))
	if t == "" {
		return TypeString, nil
	}
	if !valueTypes[t] {
		return "", fmt.Errorf("unknown value type: %s", s)
	}
	return t, nil
}

// IsReference reports whether values of this type point at another node.
func (t ValueType) IsReference() bool {
	return t == TypeReference || t == TypeWeakReference
}

// Value is one stored value. The lexical form is kept as stored; typed
// accessors parse it on demand.
type Value struct {
	Type    ValueType `json:"type"`
	Lexical string    `json:"value"`
	Lang    string    `json:"lang,omitempty"`
}

// StringValue returns a string value.
func StringValue(s string) Value {
	return Value{Type: TypeString, Lexical: s}
}

// LangStringValue returns a string value with a language tag.
func LangStringValue(s, lang string) Value {
	return Value{Type: TypeString, Lexical: s, Lang: lang}
}

// LongValue returns an integer value.
func LongValue(n int64) Value {
	return Value{Type: TypeLong, Lexical: strconv.FormatInt(n, 10)}
}

// DoubleValue returns a floating point value.
func DoubleValue(f float64) Value {
	return Value{Type: TypeDouble, Lexical: strconv.FormatFloat(f, 'g', -1, 64)}
}

// BooleanValue returns a boolean value.
func BooleanValue(b bool) Value {
	return Value{Type: TypeBoolean, Lexical: strconv.FormatBool(b)}
}

// DateValue returns a date value in RFC 3339 form.
func DateValue(t time.Time) Value {
	return Value{Type: TypeDate, Lexical: t.UTC().Format(time.RFC3339Nano)}
}

// ReferenceValue returns a reference to the node with the given identifier.
func ReferenceValue(id NodeID) Value {
	return Value{Type: TypeReference, Lexical: string(id)}
}

// URIValue returns a URI value.
func URIValue(uri string) Value {
	return Value{Type: TypeURI, Lexical: uri}
}

// PathValue returns a repository path value.
func PathValue(p string) Value {
	return Value{Type: TypePath, Lexical: p}
}

// BinaryValue returns a binary value stored base64 encoded.
func BinaryValue(b []byte) Value {
	return Value{Type: TypeBinary, Lexical: base64.StdEncoding.EncodeToString(b)}
}

// Int64 parses the value as an integer.
func (v Value) Int64() (int64, error) {
	n, err := strconv.ParseInt(v.Lexical, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q as long", ErrValueFormat, v.Lexical)
	}
	return n, nil
}

// Float64 parses the value as a floating point number.
func (v Value) Float64() (float64, error) {
	f, err := strconv.ParseFloat(v.Lexical, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q as double", ErrValueFormat, v.Lexical)
	}
	return f, nil
}

// Bool parses the value as a boolean.
func (v Value) Bool() (bool, error) {
	b, err := strconv.ParseBool(v.Lexical)
	if err != nil {
		return false, fmt.Errorf("%w: %q as boolean", ErrValueFormat, v.Lexical)
	}
	return b, nil
}

// Time parses the value as an RFC 3339 date.
func (v Value) Time() (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, v.Lexical)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q as date", ErrValueFormat, v.Lexical)
	}
	return t, nil
}

// Binary decodes a binary value.
func (v Value) Binary() ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(v.Lexical)
	if err != nil {
		return nil, fmt.Errorf("%w: binary is not base64", ErrValueFormat)
	}
	return b, nil
}

// Reference returns the target identifier of a reference value.
func (v Value) Reference() (NodeID, error) {
	if !v.Type.IsReference() {
		return "", fmt.Errorf("%w: %s is not a reference", ErrValueFormat, v.Type)
	}
	if v.Lexical == "" {
		return "", fmt.Errorf("%w: empty reference", ErrValueFormat)
	}
	return NodeID(v.Lexical), nil
}

func (v Value) String() string {
	return fmt.Sprintf("%s(%s)", v.Type, v.Lexical)
}
