package schema

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Render prints s as SDL. Types and directives are sorted by name; fields keep
// declaration order. Built-in and introspection definitions are omitted, so
// the output loads back through BuildFromSDL.
func Render(s *Schema) string {
	if s == nil {
		return ""
	}
	var b strings.Builder
	for _, t := range sortedTypes(s) {
		switch t.Kind {
		case TypeKindScalar:
			writeDescription(&b, t.Description, "")
			fmt.Fprintf(&b, "scalar %s\n\n", t.Name)
		case TypeKindEnum:
			writeBlock(&b, t, "enum", func() {
				for _, v := range t.EnumValues {
					writeDescription(&b, v.Description, "  ")
					b.WriteString("  " + v.Name)
					writeDeprecated(&b, v.IsDeprecated, v.DeprecationReason)
					b.WriteString("\n")
				}
			})
		case TypeKindInputObject:
			writeBlock(&b, t, "input", func() {
				for _, f := range t.InputFields {
					writeDescription(&b, f.Description, "  ")
					b.WriteString("  " + inputValue(f))
					writeDeprecated(&b, f.IsDeprecated, f.DeprecationReason)
					b.WriteString("\n")
				}
			})
		case TypeKindObject:
			writeBlock(&b, t, "type", func() {
				for _, f := range t.Fields {
					if strings.HasPrefix(f.Name, "__") {
						continue
					}
					writeDescription(&b, f.Description, "  ")
					b.WriteString("  " + f.Name + arguments(f.Arguments) + ": " + f.Type.String())
					writeDeprecated(&b, f.IsDeprecated, f.DeprecationReason)
					b.WriteString("\n")
				}
			})
		}
	}
	for _, d := range sortedDirectives(s) {
		writeDescription(&b, d.Description, "")
		b.WriteString("directive @" + d.Name + arguments(d.Arguments))
		if d.IsRepeatable {
			b.WriteString(" repeatable")
		}
		b.WriteString(" on " + strings.Join(d.Locations, " | ") + "\n\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

// FormatValue prints a Go value as a GraphQL literal. Map keys are sorted.
func FormatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(v)
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = FormatValue(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + FormatValue(v[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	// enum values
	return fmt.Sprint(value)
}

func sortedTypes(s *Schema) []*Type {
	out := make([]*Type, 0, len(s.Types))
	for name, t := range s.Types {
		if t.BuiltIn || strings.HasPrefix(name, "__") {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func sortedDirectives(s *Schema) []*Directive {
	out := make([]*Directive, 0, len(s.Directives))
	for _, d := range s.Directives {
		if !d.BuiltIn {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func writeBlock(b *strings.Builder, t *Type, keyword string, body func()) {
	writeDescription(b, t.Description, "")
	b.WriteString(keyword + " " + t.Name + " {\n")
	body()
	b.WriteString("}\n\n")
}

// writeDescription writes desc as a block string. Only a triple quote needs
// escaping inside one.
func writeDescription(b *strings.Builder, desc, indent string) {
	if desc == "" {
		return
	}
	b.WriteString(indent + `"""` + "\n")
	for _, line := range strings.Split(strings.ReplaceAll(desc, `"""`, `\"""`), "\n") {
		b.WriteString(indent + line + "\n")
	}
	b.WriteString(indent + `"""` + "\n")
}

func writeDeprecated(b *strings.Builder, deprecated bool, reason string) {
	if !deprecated {
		return
	}
	b.WriteString(" @deprecated")
	if reason != "" && reason != DefaultDeprecationReason {
		b.WriteString("(reason: " + strconv.Quote(reason) + ")")
	}
}

func arguments(args []*InputValue) string {
	if len(args) == 0 {
		return ""
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = inputValue(a)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func inputValue(v *InputValue) string {
	s := v.Name + ": " + v.Type.String()
	if v.DefaultValue != nil {
		s += " = " + FormatValue(v.DefaultValue)
	}
	return s
}
