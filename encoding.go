package vat

import (
	"database/sql/driver"
	"fmt"
	"math"
	"strconv"
)

// Format implements the [fmt.Formatter] interface.
// The following [format verbs] are available:
//
//	| Verb   | Example | Description                  |
//	| ------ | ------- | ---------------------------- |
//	| %s, %v | 21.0    | Percentage                   |
//	| %q     | "21.0"  | Quoted percentage            |
//	| %k     | 21.0%   | Percentage with percent sign |
//
// The '-' format flag can be used with all verbs.
//
// [format verbs]: https://pkg.go.dev/fmt#hdr-Printing
// [fmt.Formatter]: https://pkg.go.dev/fmt#Formatter
func (p Percentage) Format(state fmt.State, verb rune) {
	text := p.String()

	// Percent sign
	psign := 0
	if verb == 'k' || verb == 'K' {
		psign = 1
	}

	// Opening and closing quotes
	lquote, tquote := 0, 0
	if verb == 'q' || verb == 'Q' {
		lquote, tquote = 1, 1
	}

	// Calculating padding
	width := lquote + len(text) + psign + tquote
	lspaces, tspaces := 0, 0
	if w, ok := state.Width(); ok && w > width {
		if state.Flag('-') {
			tspaces = w - width
		} else {
			lspaces = w - width
		}
		width = w
	}

	buf := make([]byte, 0, width)
	for range lspaces {
		buf = append(buf, ' ')
	}
	if lquote > 0 {
		buf = append(buf, '"')
	}
	buf = append(buf, text...)
	if psign > 0 {
		buf = append(buf, '%')
	}
	if tquote > 0 {
		buf = append(buf, '"')
	}
	for range tspaces {
		buf = append(buf, ' ')
	}

	// Writing result
	//nolint:errcheck
	switch verb {
	case 'q', 'Q', 's', 'S', 'v', 'V', 'k', 'K':
		state.Write(buf)
	default:
		state.Write([]byte("%!"))
		state.Write([]byte{byte(verb)})
		state.Write([]byte("(vat.Percentage="))
		state.Write(buf)
		state.Write([]byte(")"))
	}
}

// UnmarshalJSON implements the [json.Unmarshaler] interface.
// Both JSON strings and JSON numbers are accepted.
// See also constructor [Parse].
//
// [json.Unmarshaler]: https://pkg.go.dev/encoding/json#Unmarshaler
func (p *Percentage) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		data = data[1 : len(data)-1]
	}
	q, err := Parse(string(data))
	if err != nil {
		return fmt.Errorf("unmarshaling %T: %w", Percentage{}, err)
	}
	*p = q
	return nil
}

// MarshalJSON implements the [json.Marshaler] interface.
// MarshalJSON always returns a JSON string holding the canonical representation,
// for example "21.0".
//
// [json.Marshaler]: https://pkg.go.dev/encoding/json#Marshaler
func (p Percentage) MarshalJSON() ([]byte, error) {
	return strconv.AppendQuote(nil, p.String()), nil
}

// UnmarshalText implements the [encoding.TextUnmarshaler] interface.
// See also constructor [Parse].
//
// [encoding.TextUnmarshaler]: https://pkg.go.dev/encoding#TextUnmarshaler
func (p *Percentage) UnmarshalText(text []byte) error {
	q, err := Parse(string(text))
	if err != nil {
		return fmt.Errorf("unmarshaling %T: %w", Percentage{}, err)
	}
	*p = q
	return nil
}

// AppendText implements the [encoding.TextAppender] interface.
//
// [encoding.TextAppender]: https://pkg.go.dev/encoding#TextAppender
func (p Percentage) AppendText(text []byte) ([]byte, error) {
	return append(text, p.String()...), nil
}

// MarshalText implements the [encoding.TextMarshaler] interface.
// See also method [Percentage.String].
//
// [encoding.TextMarshaler]: https://pkg.go.dev/encoding#TextMarshaler
func (p Percentage) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalBinary implements the [encoding.BinaryUnmarshaler] interface.
// The binary form is the canonical text.
//
// [encoding.BinaryUnmarshaler]: https://pkg.go.dev/encoding#BinaryUnmarshaler
func (p *Percentage) UnmarshalBinary(data []byte) error {
	return p.UnmarshalText(data)
}

// MarshalBinary implements the [encoding.BinaryMarshaler] interface.
//
// [encoding.BinaryMarshaler]: https://pkg.go.dev/encoding#BinaryMarshaler
func (p Percentage) MarshalBinary() ([]byte, error) {
	return p.MarshalText()
}

// UnmarshalBSONValue implements the [v2/bson.ValueUnmarshaler] interface.
// BSON strings, doubles, 32-bit and 64-bit integers are accepted.
// BSON null leaves p unchanged.
// See also constructor [Parse].
//
// [v2/bson.ValueUnmarshaler]: https://pkg.go.dev/go.mongodb.org/mongo-driver/v2/bson#ValueUnmarshaler
func (p *Percentage) UnmarshalBSONValue(typ byte, data []byte) error {
	// constants are from https://bsonspec.org/spec.html
	var q Percentage
	var err error
	switch typ {
	case 1:
		q, err = parseBSONDouble(data)
	case 2:
		q, err = parseBSONString(data)
	case 10:
		// null, do nothing
		return nil
	case 16:
		q, err = parseBSONInt32(data)
	case 18:
		q, err = parseBSONInt64(data)
	default:
		err = fmt.Errorf("BSON type %d is not supported", typ)
	}
	if err != nil {
		return fmt.Errorf("converting from BSON type %d to %T: %w", typ, Percentage{}, err)
	}
	*p = q
	return nil
}

// MarshalBSONValue implements the [v2/bson.ValueMarshaler] interface.
// MarshalBSONValue always returns a BSON string holding the canonical
// representation.
// See also method [Percentage.String].
//
// [v2/bson.ValueMarshaler]: https://pkg.go.dev/go.mongodb.org/mongo-driver/v2/bson#ValueMarshaler
func (p Percentage) MarshalBSONValue() (typ byte, data []byte, err error) {
	return 2, p.bsonString(), nil
}

// parseBSONString parses a BSON string to percentage.
// The byte order of the input data must be little-endian.
func parseBSONString(data []byte) (Percentage, error) {
	if len(data) < 4 {
		return Percentage{}, fmt.Errorf("%w: invalid data length %v", ErrInvalidPercentage, len(data))
	}
	u := uint32(data[0])
	u |= uint32(data[1]) << 8
	u |= uint32(data[2]) << 16
	u |= uint32(data[3]) << 24
	l := int(int32(u)) //nolint:gosec
	if l < 1 || len(data) < l+4 {
		return Percentage{}, fmt.Errorf("%w: invalid string length %v", ErrInvalidPercentage, l)
	}
	if data[l+4-1] != 0 {
		return Percentage{}, fmt.Errorf("%w: invalid null terminator %v", ErrInvalidPercentage, data[l+4-1])
	}
	s := string(data[4 : l+4-1])
	return Parse(s)
}

// parseBSONInt32 parses a BSON int32 to percentage.
// The byte order of the input data must be little-endian.
func parseBSONInt32(data []byte) (Percentage, error) {
	if len(data) != 4 {
		return Percentage{}, fmt.Errorf("%w: invalid data length %v", ErrInvalidPercentage, len(data))
	}
	u := uint32(data[0])
	u |= uint32(data[1]) << 8
	u |= uint32(data[2]) << 16
	u |= uint32(data[3]) << 24
	i := int64(int32(u)) //nolint:gosec
	return Parse(strconv.FormatInt(i, 10))
}

// parseBSONInt64 parses a BSON int64 to percentage.
// The byte order of the input data must be little-endian.
func parseBSONInt64(data []byte) (Percentage, error) {
	if len(data) != 8 {
		return Percentage{}, fmt.Errorf("%w: invalid data length %v", ErrInvalidPercentage, len(data))
	}
	u := uint64(data[0])
	u |= uint64(data[1]) << 8
	u |= uint64(data[2]) << 16
	u |= uint64(data[3]) << 24
	u |= uint64(data[4]) << 32
	u |= uint64(data[5]) << 40
	u |= uint64(data[6]) << 48
	u |= uint64(data[7]) << 56
	i := int64(u) //nolint:gosec
	return Parse(strconv.FormatInt(i, 10))
}

// parseBSONDouble parses a BSON double to percentage.
// The byte order of the input data must be little-endian.
func parseBSONDouble(data []byte) (Percentage, error) {
	if len(data) != 8 {
		return Percentage{}, fmt.Errorf("%w: invalid data length %v", ErrInvalidPercentage, len(data))
	}
	u := uint64(data[0])
	u |= uint64(data[1]) << 8
	u |= uint64(data[2]) << 16
	u |= uint64(data[3]) << 24
	u |= uint64(data[4]) << 32
	u |= uint64(data[5]) << 40
	u |= uint64(data[6]) << 48
	u |= uint64(data[7]) << 56
	f := math.Float64frombits(u)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Percentage{}, fmt.Errorf("%w: special value %v", ErrInvalidPercentage, f)
	}
	return Parse(strconv.FormatFloat(f, 'f', -1, 64))
}

// bsonString returns the BSON string representation of the percentage.
// The byte order of the result is little-endian.
func (p Percentage) bsonString() []byte {
	s := p.String()
	l := len(s) + 1
	data := make([]byte, 4+l)
	data[0] = byte(l)
	data[1] = byte(l >> 8)
	data[2] = byte(l >> 16)
	data[3] = byte(l >> 24)
	copy(data[4:], s)
	data[4+l-1] = 0
	return data
}

// Scan implements the [sql.Scanner] interface.
// Strings, byte slices, integers and floats are accepted.
// If the value cannot be converted, p is left unchanged.
//
// [sql.Scanner]: https://pkg.go.dev/database/sql#Scanner
func (p *Percentage) Scan(value any) error {
	var q Percentage
	var err error
	switch value := value.(type) {
	case string:
		q, err = Parse(value)
	case []byte:
		q, err = Parse(string(value))
	case int64:
		q, err = Parse(strconv.FormatInt(value, 10))
	case float64:
		q, err = Parse(strconv.FormatFloat(value, 'f', -1, 64))
	case nil:
		err = fmt.Errorf("%T does not support null values, use %T or *%T", Percentage{}, NullPercentage{}, Percentage{})
	default:
		err = fmt.Errorf("type %T is not supported", value)
	}
	if err != nil {
		return fmt.Errorf("converting from %T to %T: %w", value, Percentage{}, err)
	}
	*p = q
	return nil
}

// Value implements the [driver.Valuer] interface.
// Value always returns the canonical representation.
//
// [driver.Valuer]: https://pkg.go.dev/database/sql/driver#Valuer
func (p Percentage) Value() (driver.Value, error) {
	return p.String(), nil
}

// NullPercentage represents a percentage that can be null.
// Its zero value is null.
// NullPercentage is not thread-safe.
type NullPercentage struct {
	Percentage Percentage
	Valid      bool
}

// Scan implements the [sql.Scanner] interface.
// See also method [Percentage.Scan].
//
// [sql.Scanner]: https://pkg.go.dev/database/sql#Scanner
func (n *NullPercentage) Scan(value any) error {
	if value == nil {
		n.Percentage = Percentage{}
		n.Valid = false
		return nil
	}
	if err := n.Percentage.Scan(value); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

// Value implements the [driver.Valuer] interface.
// See also method [Percentage.Value].
//
// [driver.Valuer]: https://pkg.go.dev/database/sql/driver#Valuer
func (n NullPercentage) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return n.Percentage.Value()
}

// UnmarshalJSON implements the [json.Unmarshaler] interface.
// See also method [Percentage.UnmarshalJSON].
//
// [json.Unmarshaler]: https://pkg.go.dev/encoding/json#Unmarshaler
func (n *NullPercentage) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		n.Percentage = Percentage{}
		n.Valid = false
		return nil
	}
	if err := n.Percentage.UnmarshalJSON(data); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

// MarshalJSON implements the [json.Marshaler] interface.
// See also method [Percentage.MarshalJSON].
//
// [json.Marshaler]: https://pkg.go.dev/encoding/json#Marshaler
func (n NullPercentage) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return n.Percentage.MarshalJSON()
}

// UnmarshalBSONValue implements the [v2/bson.ValueUnmarshaler] interface.
// See also method [Percentage.UnmarshalBSONValue].
//
// [v2/bson.ValueUnmarshaler]: https://pkg.go.dev/go.mongodb.org/mongo-driver/v2/bson#ValueUnmarshaler
func (n *NullPercentage) UnmarshalBSONValue(typ byte, data []byte) error {
	if typ == 10 {
		n.Percentage = Percentage{}
		n.Valid = false
		return nil
	}
	if err := n.Percentage.UnmarshalBSONValue(typ, data); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

// MarshalBSONValue implements the [v2/bson.ValueMarshaler] interface.
// See also method [Percentage.MarshalBSONValue].
//
// [v2/bson.ValueMarshaler]: https://pkg.go.dev/go.mongodb.org/mongo-driver/v2/bson#ValueMarshaler
func (n NullPercentage) MarshalBSONValue() (typ byte, data []byte, err error) {
	if !n.Valid {
		return 10, nil, nil
	}
	return n.Percentage.MarshalBSONValue()
}
