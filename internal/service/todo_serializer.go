package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Tomlord1122/user-todo-api/internal/domain"
)

const dateLayout = "2006-01-02"

const (
	msgRequired    = "This field is required."
	msgNull        = "This field may not be null."
	msgDateFormat  = "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."
	msgBoolean     = "Must be a valid boolean."
	msgString      = "Not a valid string."
	msgInvalidData = "Invalid value."
)

// TodoResponse is the wire representation of a todo.
type TodoResponse struct {
	ID        uint   `json:"id"`
	User      uint   `json:"user"`
	Date      string `json:"date"`
	IsChecked bool   `json:"is_checked"`
	Review    string `json:"review"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func newTodoResponse(t *domain.Todo) TodoResponse {
	return TodoResponse{
		ID:        t.ID,
		User:      t.UserID,
		Date:      t.Date.Format(dateLayout),
		IsChecked: t.IsChecked,
		Review:    t.Review,
		CreatedAt: formatTimestamp(t.CreatedAt),
		UpdatedAt: formatTimestamp(t.UpdatedAt),
	}
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Truncate(time.Microsecond).Format(time.RFC3339Nano)
}

// todoInput is a payload after type checks. Nil fields were not supplied.
type todoInput struct {
	Date      *string `json:"date" validate:"required,datetime=2006-01-02"`
	IsChecked *bool   `json:"is_checked"`
	Review    *string `json:"review"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateTodoPayload type checks every supplied field and applies the field
// rules. In partial mode only supplied fields are validated.
func validateTodoPayload(p TodoPayload, partial bool) (todoInput, error) {
	var (
		in      todoInput
		verrs   ValidationError
		present []string
	)

	if raw := p.Date; raw != nil {
		if s, msg := decodeString(raw, false); msg != "" {
			if msg == msgString {
				msg = msgDateFormat
			}
			verrs.add("date", msg)
		} else {
			in.Date = &s
			present = append(present, "Date")
		}
	}
	if raw := p.IsChecked; raw != nil {
		if b, msg := decodeBoolean(raw); msg != "" {
			verrs.add("is_checked", msg)
		} else {
			in.IsChecked = &b
			present = append(present, "IsChecked")
		}
	}
	if raw := p.Review; raw != nil {
		if s, msg := decodeString(raw, true); msg != "" {
			verrs.add("review", msg)
		} else {
			in.Review = &s
			present = append(present, "Review")
		}
	}

	var err error
	if partial {
		err = validate.StructPartial(in, present...)
	} else {
		err = validate.Struct(in)
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			if verrs.has(fe.Field()) {
				continue
			}
			verrs.add(fe.Field(), validationMessage(fe))
		}
	} else if err != nil {
		return todoInput{}, err
	}

	if len(verrs.Fields) > 0 {
		return todoInput{}, &verrs
	}
	return in, nil
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return msgRequired
	case "datetime":
		return msgDateFormat
	}
	return msgInvalidData
}

// applyTodoInput copies the supplied fields onto todo.
func applyTodoInput(todo *domain.Todo, in todoInput) error {
	if in.Date != nil {
		d, err := time.Parse(dateLayout, *in.Date)
		if err != nil {
			return &ValidationError{Fields: map[string][]string{"date": {msgDateFormat}}}
		}
		todo.Date = d
	}
	if in.IsChecked != nil {
		todo.IsChecked = *in.IsChecked
	}
	if in.Review != nil {
		todo.Review = *in.Review
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// decodeString accepts a JSON string. When allowNumbers is set a JSON number
// is accepted as its literal text.
func decodeString(raw json.RawMessage, allowNumbers bool) (string, string) {
	if isNull(raw) {
		return "", msgNull
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, ""
	}
	if allowNumbers {
		var n json.Number
		if err := json.Unmarshal(raw, &n); err == nil {
			return n.String(), ""
		}
	}
	return "", msgString
}

var (
	trueValues  = map[string]bool{"true": true, "True": true, "TRUE": true, "t": true, "T": true, "yes": true, "Yes": true, "YES": true, "y": true, "Y": true, "on": true, "On": true, "ON": true, "1": true}
	falseValues = map[string]bool{"false": true, "False": true, "FALSE": true, "f": true, "F": true, "no": true, "No": true, "NO": true, "n": true, "N": true, "off": true, "Off": true, "OFF": true, "0": true}
)

// decodeBoolean parses a strict boolean: JSON booleans, the numbers 0 and 1
// and the usual textual spellings.
func decodeBoolean(raw json.RawMessage) (bool, string) {
	if isNull(raw) {
		return false, msgNull
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false, msgBoolean
	}
	switch x := v.(type) {
	case bool:
		return x, ""
	case float64:
		switch x {
		case 1:
			return true, ""
		case 0:
			return false, ""
		}
	case string:
		switch {
		case trueValues[x]:
			return true, ""
		case falseValues[x]:
			return false, ""
		}
	}
	return false, msgBoolean
}
