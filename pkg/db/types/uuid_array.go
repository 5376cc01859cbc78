package dbtypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// UUIDArray is stored as a JSON array of uuid strings (jsonb on Postgres).
// Scan also accepts the Postgres array literal form {a,b}.
type UUIDArray []uuid.UUID

func (a *UUIDArray) Scan(src any) error {
	if src == nil {
		*a = UUIDArray{}
		return nil
	}

	switch v := src.(type) {
	case string:
		return a.parse(v)
	case []byte:
		return a.parse(string(v))
	default:
		return fmt.Errorf("UUIDArray: unsupported Scan type %T", src)
	}
}

func (a UUIDArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	raw, err := json.Marshal([]uuid.UUID(a))
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Contains reports whether id is already present.
func (a UUIDArray) Contains(id uuid.UUID) bool {
	for _, existing := range a {
		if existing == id {
			return true
		}
	}
	return false
}

// With returns a copy with id appended unless it is already present.
func (a UUIDArray) With(id uuid.UUID) UUIDArray {
	out := make(UUIDArray, 0, len(a)+1)
	out = append(out, a...)
	if !a.Contains(id) {
		out = append(out, id)
	}
	return out
}

func (a *UUIDArray) parse(s string) error {
	s = strings.TrimSpace(s)
	if s == "" || s == "{}" || s == "[]" || s == "null" {
		*a = UUIDArray{}
		return nil
	}
	if strings.HasPrefix(s, "[") {
		var ids []uuid.UUID
		if err := json.Unmarshal([]byte(s), &ids); err != nil {
			return fmt.Errorf("UUIDArray: decode json: %w", err)
		}
		*a = UUIDArray(ids)
		return nil
	}

	s = strings.TrimSuffix(strings.TrimPrefix(s, "{"), "}")
	raw := strings.Split(s, ",")
	out := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		r = strings.TrimSpace(strings.Trim(r, `"`))
		id, err := uuid.Parse(r)
		if err != nil {
			return fmt.Errorf("UUIDArray: parse %q: %w", r, err)
		}
		out = append(out, id)
	}
	*a = UUIDArray(out)
	return nil
}
