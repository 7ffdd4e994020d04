package form

import (
	"fmt"
	"strconv"
	"strings"
)

// FieldType selects the renderer used for a field.
type FieldType string

const (
	Text     FieldType = "text"
	Email    FieldType = "email"
	Password FieldType = "password"
	Number   FieldType = "number"
	Textarea FieldType = "textarea"
	Select   FieldType = "select"
	Checkbox FieldType = "checkbox"
	Radio    FieldType = "radio"
	Hidden   FieldType = "hidden"
	Date     FieldType = "date"
	DateTime FieldType = "datetime-local"
	File     FieldType = "file"
	Submit   FieldType = "submit"
)

// Choice is one entry of a select or radio group.
type Choice struct {
	Value string
	Label string
}

// Field describes one form control.
type Field struct {
	Attrs       map[string]string
	Name        string
	Label       string
	Value       string
	Placeholder string
	Help        string
	Class       string
	Type        FieldType
	Choices     []Choice
	Rows        int
	Required    bool
	Checked     bool
}

// ID returns the element id used to link the label and the control.
func (f Field) ID() string {
	return "f-" + strings.ReplaceAll(f.Name, "_", "-")
}

// Choices parses "a|b|c" or "a=Label A|b=Label B".
func Choices(spec string) []Choice {
	var out []Choice
	for part := range strings.SplitSeq(spec, "|") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		value, label, ok := strings.Cut(part, "=")
		if !ok {
			label = value
		}
		out = append(out, Choice{Value: strings.TrimSpace(value), Label: strings.TrimSpace(label)})
	}
	return out
}

// tagSpec is the parsed `form` struct tag.
type tagSpec struct {
	typ         FieldType
	label       string
	placeholder string
	help        string
	class       string
	choices     []Choice
	rows        int
	skip        bool
}

func parseTag(tag string) (tagSpec, error) {
	var spec tagSpec
	if strings.TrimSpace(tag) == "-" {
		spec.skip = true
		return spec, nil
	}
	for part := range strings.SplitSeq(tag, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, val, _ := strings.Cut(part, ":")
		val = strings.TrimSpace(val)
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "type":
			spec.typ = FieldType(strings.ToLower(val))
		case "label":
			spec.label = val
		case "placeholder":
			spec.placeholder = val
		case "help":
			spec.help = val
		case "class":
			spec.class = val
		case "options":
			spec.choices = Choices(val)
		case "rows":
			n, err := strconv.Atoi(val)
			if err != nil || n <= 0 {
				return spec, fmt.Errorf("%w: rows %q", ErrInvalidTag, val)
			}
			spec.rows = n
		default:
			return spec, fmt.Errorf("%w: unknown key %q", ErrInvalidTag, key)
		}
	}
	if spec.typ == "" && len(spec.choices) > 0 {
		spec.typ = Select
	}
	return spec, nil
}
