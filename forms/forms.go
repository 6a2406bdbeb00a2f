package forms

import (
	"reflect"
	"strconv"
	"strings"

	"orgconsole/models"

	"github.com/gin-gonic/gin/binding"
)

// Field describes one input of a form. It is derived from the draft
// struct tags so the rules and the rendering never disagree.
type Field struct {
	Name     string
	Label    string
	Input    string // text, email, password, tel, textarea or select
	Required bool
	// Message replaces the generic text for non-required rule failures
	Message string
	numeric bool
}

// Option is one choice of a select input
type Option struct {
	Value string
	Label string
}

type draft interface {
	payload() Payload
}

type schema struct {
	kind       models.Modal
	title      string
	editTitle  string
	submit     string
	editSubmit string
	fields     []Field
	newDraft   func() draft
}

func newSchema(kind models.Modal, title, editTitle, submit, editSubmit string, newDraft func() draft) *schema {
	return &schema{
		kind:       kind,
		title:      title,
		editTitle:  editTitle,
		submit:     submit,
		editSubmit: editSubmit,
		fields:     fieldsOf(reflect.TypeOf(newDraft()).Elem()),
		newDraft:   newDraft,
	}
}

func fieldsOf(t reflect.Type) []Field {
	var fields []Field
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		name := sf.Tag.Get("form")
		if sf.PkgPath != "" || name == "" || name == "-" {
			continue
		}
		rules := sf.Tag.Get("validate")
		input := sf.Tag.Get("input")
		if input == "" {
			input = "text"
		}
		fields = append(fields, Field{
			Name:     name,
			Label:    sf.Tag.Get("label"),
			Input:    input,
			Required: strings.Contains(rules, "required") || strings.Contains(rules, "notblank") || strings.Contains(rules, "gt=0"),
			Message:  sf.Tag.Get("message"),
			numeric:  sf.Type.Kind() == reflect.Int64,
		})
	}
	return fields
}

// Form is the local draft of one modal form: field values, per-field
// errors and the rules that turn a valid draft into a typed Payload.
// Validation runs only on Submit and is all-or-nothing.
type Form struct {
	schema  *schema
	editing bool
	initial map[string]string
	values  map[string]string
	errors  map[string]string
	options []Option
}

func newForm(s *schema, editing bool, initial map[string]string) *Form {
	f := &Form{
		schema:  s,
		editing: editing,
		initial: make(map[string]string, len(s.fields)),
	}
	for _, field := range s.fields {
		f.initial[field.Name] = initial[field.Name]
	}
	f.Reset()
	return f
}

// Kind returns the modal this form belongs to
func (f *Form) Kind() models.Modal {
	return f.schema.kind
}

// Editing reports whether the form was pre-filled from an existing entity
func (f *Form) Editing() bool {
	return f.editing
}

func (f *Form) Title() string {
	if f.editing {
		return f.schema.editTitle
	}
	return f.schema.title
}

func (f *Form) SubmitLabel() string {
	if f.editing {
		return f.schema.editSubmit
	}
	return f.schema.submit
}

func (f *Form) Fields() []Field {
	return f.schema.fields
}

// Options returns the choices for the form's select input
func (f *Form) Options() []Option {
	return f.options
}

// SetOptions replaces the select choices
func (f *Form) SetOptions(options []Option) {
	f.options = options
}

func (f *Form) Value(name string) string {
	return f.values[name]
}

// Error returns the current error of one field, "" when valid
func (f *Form) Error(name string) string {
	return f.errors[name]
}

// Errors returns a copy of the current per-field errors
func (f *Form) Errors() map[string]string {
	out := make(map[string]string, len(f.errors))
	for k, v := range f.errors {
		out[k] = v
	}
	return out
}

// HasErrors reports whether the last submit left any field error
func (f *Form) HasErrors() bool {
	return len(f.errors) > 0
}

// Set updates one field and clears only that field's error. Unknown
// field names are ignored.
func (f *Form) Set(name, value string) bool {
	if _, ok := f.initial[name]; !ok {
		return false
	}
	f.values[name] = value
	delete(f.errors, name)
	return true
}

// Apply sets every known field present in values whose value changed
func (f *Form) Apply(values map[string]string) {
	for _, field := range f.schema.fields {
		if v, ok := values[field.Name]; ok && v != f.values[field.Name] {
			f.Set(field.Name, v)
		}
	}
}

// Reset restores the initial values and clears all errors
func (f *Form) Reset() {
	f.values = make(map[string]string, len(f.initial))
	for k, v := range f.initial {
		f.values[k] = v
	}
	f.errors = make(map[string]string)
}

// Submit validates the whole draft. On failure it records one error per
// invalid field and returns false; on success it returns the typed payload
// with confirmation fields stripped.
func (f *Form) Submit() (Payload, bool) {
	form := make(map[string][]string, len(f.schema.fields))
	for _, field := range f.schema.fields {
		v := f.values[field.Name]
		if field.numeric {
			v = strings.TrimSpace(v)
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				v = "0"
			}
		}
		form[field.Name] = []string{v}
	}

	d := f.schema.newDraft()
	if err := binding.MapFormWithTag(d, form, "form"); err != nil {
		f.errors = map[string]string{f.schema.fields[0].Name: "Invalid form data"}
		return nil, false
	}
	if err := Validator().Struct(d); err != nil {
		f.errors = formatValidationErrors(err, f.schema.fields)
		return nil, false
	}

	f.errors = make(map[string]string)
	return d.payload(), true
}

func formatID(id int64) string {
	if id <= 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

// Clone returns an independent copy, safe to render while the original changes
func (f *Form) Clone() *Form {
	if f == nil {
		return nil
	}
	c := &Form{
		schema:  f.schema,
		editing: f.editing,
		initial: f.initial,
		values:  make(map[string]string, len(f.values)),
		errors:  f.Errors(),
		options: append([]Option(nil), f.options...),
	}
	for k, v := range f.values {
		c.values[k] = v
	}
	return c
}
