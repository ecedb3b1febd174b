package main

import (
	"fmt"
	"strconv"
	"strings"
)

// FieldSpec describes one form input.
type FieldSpec struct {
	Name        string
	Label       string
	Placeholder string
}

// FormValues holds the raw text of each form field.
type FormValues map[string]string

// Clone returns an independent copy.
func (v FormValues) Clone() FormValues {
	c := make(FormValues, len(v))
	for k, val := range v {
		c[k] = val
	}
	return c
}

// Blank reports whether every value is empty.
func (v FormValues) Blank() bool {
	for _, val := range v {
		if strings.TrimSpace(val) != "" {
			return false
		}
	}
	return true
}

// Rule is a client-side validation rule. Message is shown to the user and
// Fields names the offending fields when Check fails.
type Rule struct {
	Fields  []string
	Check   func(values FormValues) bool
	Message string
}

// RequireFields builds a rule failing when any of the fields is empty.
func RequireFields(message string, fields ...string) Rule {
	return Rule{
		Fields: fields,
		Check: func(values FormValues) bool {
			for _, f := range fields {
				if strings.TrimSpace(values[f]) == "" {
					return false
				}
			}
			return true
		},
		Message: message,
	}
}

func checkRules(rules []Rule, values FormValues) error {
	for _, r := range rules {
		if !r.Check(values) {
			return &ClientValidationError{Fields: r.Fields, Reason: r.Message}
		}
	}
	return nil
}

// Messages are the notices shown by a page.
type Messages struct {
	Created      string
	Updated      string
	Deleted      string
	CreateFailed string
	UpdateFailed string
	DeleteFailed string
	LoadFailed   string
	// Seeded is formatted with the number of created samples.
	Seeded string
}

// DefaultMessages builds the notices of an entity named singular.
func DefaultMessages(singular, plural string) Messages {
	title := strings.ToUpper(singular[:1]) + singular[1:]
	return Messages{
		Created:      title + " created successfully.",
		Updated:      title + " updated successfully.",
		Deleted:      title + " deleted successfully.",
		CreateFailed: "Failed to create the " + singular + ".",
		UpdateFailed: "Failed to update the " + singular + ".",
		DeleteFailed: "Failed to delete the " + singular + ".",
		LoadFailed:   "Failed to load " + plural + ". Please try again later.",
		Seeded:       "%d sample " + plural + " added.",
	}
}

// Schema is the configuration of a Page for one entity.
type Schema[T Record[T]] struct {
	Resource string
	Title    string
	Fields   []FieldSpec
	Columns  []string
	Row      func(T) []string
	// Values renders a record into form values.
	Values func(T) FormValues
	// Build parses form values on top of base. Base is the zero value when
	// creating and the selected record when editing.
	Build func(base T, values FormValues) (T, error)
	// Clone copies a record deeply. Records without reference fields need none.
	Clone         func(T) T
	CreateRules   []Rule
	UpdateRules   []Rule
	Samples       []T
	Messages      Messages
	ConfirmDelete bool
	// ClearOnCancel empties the new draft when an edit is cancelled.
	ClearOnCancel bool
	// OnCreated runs after a created record was added to the store.
	OnCreated func(T)
}

func (s *Schema[T]) clone(rec T) T {
	if s.Clone == nil {
		return rec
	}
	return s.Clone(rec)
}

func (s *Schema[T]) hasField(name string) bool {
	for _, f := range s.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// parseIntValue parses an optional integer form value.
func parseIntValue(values FormValues, field string) (int, error) {
	raw := strings.TrimSpace(values[field])
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ClientValidationError{Fields: []string{field}, Reason: "must be a whole number"}
	}
	return n, nil
}

// parseIDValue parses an optional record id form value.
func parseIDValue(values FormValues, field string) (int64, error) {
	raw := strings.TrimSpace(values[field])
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, &ClientValidationError{Fields: []string{field}, Reason: "must be a record id"}
	}
	return id, nil
}

// parseIDsValue parses a comma separated list of record ids.
func parseIDsValue(values FormValues, field string) ([]int64, error) {
	ids := []int64{}
	for _, part := range strings.Split(values[field], ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id < 1 {
			return nil, &ClientValidationError{Fields: []string{field}, Reason: "must be a comma separated list of record ids"}
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func formatID(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

func formatIDs(ids []int64) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	return strings.Join(parts, ",")
}

func formatInt(n int) string {
	return strconv.Itoa(n)
}

func formatRefName(ref Ref) string {
	if ref.Name != "" {
		return ref.Name
	}
	if ref.ID == 0 {
		return ""
	}
	return fmt.Sprintf("#%d", ref.ID)
}
