package mapper

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/ICTylor/json-to-relational/internal/model"
)

type valueKind int

const (
	kindScalar valueKind = iota
	kindNull
	kindList
	kindObject
)

func kindOf(raw json.RawMessage) valueKind {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 {
		return kindNull
	}
	switch trimmed[0] {
	case '[':
		return kindList
	case '{':
		return kindObject
	case 'n':
		return kindNull
	default:
		return kindScalar
	}
}

// setter decodes one JSON value into a field of R. Null leaves the field unset.
type setter[R any] func(rec *R, raw json.RawMessage) error

// fieldTable is the closed list of scalar fields a table accepts, keyed by
// JSON name.
type fieldTable[R any] map[string]setter[R]

func (ft fieldTable[R]) set(rec *R, table, key string, raw json.RawMessage) error {
	fn, ok := ft[key]
	if !ok {
		return &FieldMismatchError{Table: table, Field: key, Reason: "no such column"}
	}
	if kindOf(raw) == kindNull {
		return nil
	}
	if err := fn(rec, raw); err != nil {
		return &FieldMismatchError{Table: table, Field: key, Reason: err.Error()}
	}
	return nil
}

func stringField[R any](field func(*R) **string) setter[R] {
	return func(rec *R, raw json.RawMessage) error {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return eris.New("expected string")
		}
		*field(rec) = &s
		return nil
	}
}

// intField accepts any JSON number with an integral value, so 4 and 4.0
// both decode to 4.
func intField[R any](field func(*R) *int64) setter[R] {
	return func(rec *R, raw json.RawMessage) error {
		// json.Number would also take a quoted number.
		if trimmed := bytes.TrimLeft(raw, " \t\r\n"); len(trimmed) > 0 && trimmed[0] == '"' {
			return eris.New("expected integer")
		}
		var num json.Number
		if err := json.Unmarshal(raw, &num); err != nil {
			return eris.New("expected integer")
		}
		if n, err := num.Int64(); err == nil {
			*field(rec) = n
			return nil
		}
		f, err := num.Float64()
		if err != nil || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return eris.Errorf("expected integer, got %s", num)
		}
		*field(rec) = int64(f)
		return nil
	}
}

// coordField accepts a number or a numeric string.
func coordField[R any](field func(*R) **float64) setter[R] {
	return func(rec *R, raw json.RawMessage) error {
		var f float64
		if err := json.Unmarshal(raw, &f); err == nil {
			*field(rec) = &f
			return nil
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return eris.New("expected number or numeric string")
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return eris.Errorf("%q is not numeric", s)
		}
		*field(rec) = &f
		return nil
	}
}

var userFields = fieldTable[model.User]{
	"id":       intField(func(u *model.User) *int64 { return &u.ID }),
	"username": stringField(func(u *model.User) **string { return &u.Username }),
	"email":    stringField(func(u *model.User) **string { return &u.Email }),
	"phone":    stringField(func(u *model.User) **string { return &u.Phone }),
	"website":  stringField(func(u *model.User) **string { return &u.Website }),
	"name":     stringField(func(u *model.User) **string { return &u.Name }),
}

var addressFields = fieldTable[model.Address]{
	"street":  stringField(func(a *model.Address) **string { return &a.Street }),
	"suite":   stringField(func(a *model.Address) **string { return &a.Suite }),
	"city":    stringField(func(a *model.Address) **string { return &a.City }),
	"zipcode": stringField(func(a *model.Address) **string { return &a.Zipcode }),
}

var geoFields = fieldTable[model.Geo]{
	"lat": coordField(func(g *model.Geo) **float64 { return &g.Lat }),
	"lng": coordField(func(g *model.Geo) **float64 { return &g.Lng }),
}

var companyFields = fieldTable[model.Company]{
	"name":        stringField(func(c *model.Company) **string { return &c.Name }),
	"catchPhrase": stringField(func(c *model.Company) **string { return &c.CatchPhrase }),
	"bs":          stringField(func(c *model.Company) **string { return &c.BS }),
}

func sortedKeys(obj map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func joinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}
