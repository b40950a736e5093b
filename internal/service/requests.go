package service

import (
	"encoding/json"
)

// ListTodosParams holds the raw list query. Month and Day are nil when the
// parameter is absent; an empty value is present and must parse.
type ListTodosParams struct {
	Month  *string
	Day    *string
	SortBy string
}

// TodoPayload is the body of a create or partial update. Fields keep their
// raw JSON so an absent field, an explicit null and a value of the wrong type
// can each be reported.
type TodoPayload struct {
	Date      json.RawMessage `json:"date"`
	IsChecked json.RawMessage `json:"is_checked"`
	Review    json.RawMessage `json:"review"`
}

// Decoder fills dst from a request body. Operations that take a body call it
// only once the user and todo have been resolved, so a failed lookup is
// reported before a malformed body.
type Decoder func(dst any) error

// CheckRequest is the body of a check toggle.
type CheckRequest struct {
	IsChecked Truthy `json:"is_checked"`
}

// ReviewRequest is the body of a review update. Review keeps its raw JSON so
// numbers can be stored as their text.
type ReviewRequest struct {
	Review json.RawMessage `json:"review"`
}

// Truthy records whether a JSON value was supplied and how it coerces to a
// boolean. null counts as not supplied. false, 0, "", [] and {} are false;
// every other value is true, including the string "false".
type Truthy struct {
	present bool
	value   bool
}

// NewTruthy returns a supplied value with the given truthiness.
func NewTruthy(v bool) Truthy {
	return Truthy{present: true, value: v}
}

func (t *Truthy) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v == nil {
		*t = Truthy{}
		return nil
	}
	*t = Truthy{present: true, value: truthy(v)}
	return nil
}

func (t Truthy) Present() bool { return t.present }

func (t Truthy) Bool() bool { return t.value }

func truthy(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		return x != ""
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	}
	return true
}

// requireTruthy fails with missing when the value was not supplied and
// otherwise returns its truthiness.
func requireTruthy(t Truthy, missing error) (bool, error) {
	if !t.Present() {
		return false, missing
	}
	return t.Bool(), nil
}

// requirePresent fails with missing only when the value was not supplied or
// is null. An empty string is a valid value.
func requirePresent(raw json.RawMessage, missing error) (json.RawMessage, error) {
	if raw == nil || isNull(raw) {
		return nil, missing
	}
	return raw, nil
}
