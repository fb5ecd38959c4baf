package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// ID identifies a record. Datasets in the wild mix numeric and string
// identifiers; both decode to the same canonical string form so that
// references compare equal regardless of how they were written.
type ID string

// String returns the identifier as a plain string
func (id ID) String() string {
	return string(id)
}

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or a number, got %s", data)
	}
	*id = ID(canonicalNumber(n))
	return nil
}

// canonicalNumber renders integral numbers without exponent or fraction so
// that 7, 7.0 and 7e0 all become "7".
func canonicalNumber(n json.Number) string {
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10)
	}
	if f, err := n.Float64(); err == nil && f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return strconv.FormatInt(int64(f), 10)
	}
	return n.String()
}

// IDs converts plain strings to identifiers
func IDs(values ...string) []ID {
	ret := make([]ID, len(values))
	for i, v := range values {
		ret[i] = ID(v)
	}
	return ret
}
