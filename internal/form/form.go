// Package form validates decoded JSON submissions against a field list and
// describes that list for the meta endpoints.
package form

import (
	"encoding/json"
	"fmt"
	"math"
	"net/mail"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// FieldType selects how a submitted value is coerced.
type FieldType string

const (
	TypeString   FieldType = "text"
	TypeInteger  FieldType = "integer"
	TypeEmail    FieldType = "email"
	TypeCurrency FieldType = "currency"
	TypeChoice   FieldType = "choice"
	TypeMap      FieldType = "collection"
	TypeBool     FieldType = "checkbox"
)

const (
	msgRequired   = "This value should not be blank."
	msgExtra      = "This form should not contain extra fields."
	msgInvalid    = "This value is not valid."
	msgNotInteger = "This value should be of type integer."
	msgNotEmail   = "This value is not a valid email address."
	msgCurrency   = "This value is not a valid currency."
	msgNotMap     = "This value should be of type object."
	msgNotBool    = "This value should be of type boolean."
	msgNotObject  = "The submitted content must be a JSON object."
)

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// Field describes one form input.
type Field struct {
	Name     string
	Label    string
	Type     FieldType
	Required bool
	Default  any
	Choices  []string
	Pattern  *regexp.Regexp
	Help     string
}

// Form is an ordered list of fields.
type Form struct {
	Name   string
	Fields []Field
}

// Values holds coerced submission values keyed by field name.
type Values map[string]any

// String returns the named value as a string.
func (v Values) String(name string) string {
	s, _ := v[name].(string)
	return s
}

// Int returns the named value as an int64.
func (v Values) Int(name string) int64 {
	n, _ := v[name].(int64)
	return n
}

// Map returns the named value as an object.
func (v Values) Map(name string) map[string]any {
	m, _ := v[name].(map[string]any)
	return m
}

// Has reports whether the submission set name.
func (v Values) Has(name string) bool {
	_, ok := v[name]
	return ok
}

// Errors maps field names to violation messages. The empty name holds
// form level violations.
type Errors map[string][]string

func (e Errors) add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Error implements error.
func (e Errors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		name := k
		if name == "" {
			name = "form"
		}
		parts = append(parts, fmt.Sprintf("%s: %s", name, strings.Join(e[k], " ")))
	}
	return "invalid submission: " + strings.Join(parts, "; ")
}

// Prefix returns the violations with every field name nested under name,
// as in config.apiKey.
func (e Errors) Prefix(name string) Errors {
	out := make(Errors, len(e))
	for field, msgs := range e {
		key := name
		if field != "" {
			key = name + "." + field
		}
		out[key] = append(out[key], msgs...)
	}
	return out
}

// Render answers the request with the violations as a 400 JSON document.
// Form level violations are listed under "form".
func Render(c *fiber.Ctx, errs Errors) error {
	doc := make(map[string][]string, len(errs))
	for field, msgs := range errs {
		if field == "" {
			field = "form"
		}
		doc[field] = msgs
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": doc})
}

// Submit validates content against the form. With partial set, missing
// required fields are not reported and defaults are not applied, which is
// how updates are submitted.
func (f Form) Submit(content any, partial bool) (Values, Errors) {
	errs := Errors{}
	data, ok := content.(map[string]any)
	if !ok {
		errs.add("", msgNotObject)
		return nil, errs
	}

	values := Values{}
	known := make(map[string]bool, len(f.Fields))
	for _, field := range f.Fields {
		known[field.Name] = true
		raw, present := data[field.Name]
		if !present || raw == nil || raw == "" {
			switch {
			case partial:
			case field.Required:
				errs.add(field.Name, msgRequired)
			case field.Default != nil:
				values[field.Name] = field.Default
			}
			continue
		}

		v, msg := field.coerce(raw)
		if msg != "" {
			errs.add(field.Name, msg)
			continue
		}
		values[field.Name] = v
	}

	for name := range data {
		if !known[name] {
			errs.add("", msgExtra)
			break
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return values, nil
}

func (f Field) coerce(raw any) (any, string) {
	switch f.Type {
	case TypeInteger:
		return toInt(raw)
	case TypeEmail:
		s, ok := raw.(string)
		if !ok {
			return nil, msgNotEmail
		}
		if _, err := mail.ParseAddress(s); err != nil || strings.ContainsAny(s, "<> ") {
			return nil, msgNotEmail
		}
		return s, ""
	case TypeCurrency:
		s, ok := raw.(string)
		if !ok || !currencyPattern.MatchString(strings.ToUpper(s)) {
			return nil, msgCurrency
		}
		return strings.ToUpper(s), ""
	case TypeChoice:
		s, ok := scalarString(raw)
		if !ok {
			return nil, msgInvalid
		}
		for _, choice := range f.Choices {
			if choice == s {
				return s, ""
			}
		}
		return nil, msgInvalid
	case TypeMap:
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, msgNotMap
		}
		return m, ""
	case TypeBool:
		b, ok := raw.(bool)
		if !ok {
			return nil, msgNotBool
		}
		return b, ""
	default:
		s, ok := scalarString(raw)
		if !ok || (f.Pattern != nil && !f.Pattern.MatchString(s)) {
			return nil, msgInvalid
		}
		return s, ""
	}
}

func toInt(raw any) (any, string) {
	switch n := raw.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, ""
		}
		if fl, err := n.Float64(); err == nil && fl == math.Trunc(fl) && math.Abs(fl) < math.MaxInt64 {
			return int64(fl), ""
		}
	case float64:
		if n == math.Trunc(n) && math.Abs(n) < math.MaxInt64 {
			return int64(n), ""
		}
	case int64:
		return n, ""
	case int:
		return int64(n), ""
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64); err == nil {
			return i, ""
		}
	}
	return nil, msgNotInteger
}

func scalarString(raw any) (string, bool) {
	switch v := raw.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return "", false
	}
}

// FieldMeta is the JSON description of a field.
type FieldMeta struct {
	Type     FieldType `json:"type"`
	Label    string    `json:"label"`
	Required bool      `json:"required"`
	Default  any       `json:"default,omitempty"`
	Choices  []string  `json:"choices,omitempty"`
	Help     string    `json:"help,omitempty"`
}

// Meta is the JSON description of a form. Fields are listed in form order.
type Meta struct {
	Name   string      `json:"name"`
	Fields []NamedMeta `json:"fields"`
}

// NamedMeta pairs a field name with its description.
type NamedMeta struct {
	Name string `json:"name"`
	FieldMeta
}

// Meta describes the form for clients building their own inputs.
func (f Form) Meta() Meta {
	m := Meta{Name: f.Name, Fields: make([]NamedMeta, 0, len(f.Fields))}
	for _, field := range f.Fields {
		label := field.Label
		if label == "" {
			label = humanize(field.Name)
		}
		m.Fields = append(m.Fields, NamedMeta{
			Name: field.Name,
			FieldMeta: FieldMeta{
				Type:     field.Type,
				Label:    label,
				Required: field.Required,
				Default:  field.Default,
				Choices:  field.Choices,
				Help:     field.Help,
			},
		})
	}
	return m
}

// humanize turns totalAmount or api_key into "Total amount" / "Api key".
func humanize(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case r == '_':
			b.WriteByte(' ')
			continue
		case i > 0 && r >= 'A' && r <= 'Z':
			b.WriteByte(' ')
			r += 'a' - 'A'
		case i == 0 && r >= 'a' && r <= 'z':
			r -= 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
