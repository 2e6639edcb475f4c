// Package synth deterministically fabricates plausible replacement PHP
// source when no recovery strategy validates. Output is routed by a
// basename-derived category and parameterized only by the basename and the
// container's declared version. Synthesized source is explicitly not genuine
// recovery and must always be labeled as such downstream.
package synth

import (
	"strings"
	"text/template"
)

// Category names the template a basename routes to.
type Category string

const (
	CategoryHooks   Category = "hooks"
	CategoryAdmin   Category = "admin"
	CategoryConfig  Category = "config"
	CategoryClass   Category = "class"
	CategoryGeneric Category = "generic"
)

// Classify routes a basename to its template category. Routing is
// substring-based except for the exact "hooks" special case.
func Classify(basename string) Category {
	name := strings.ToLower(basename)
	switch {
	case name == "hooks":
		return CategoryHooks
	case strings.Contains(name, "admin"):
		return CategoryAdmin
	case strings.Contains(name, "config"):
		return CategoryConfig
	case strings.Contains(name, "class"):
		return CategoryClass
	default:
		return CategoryGeneric
	}
}

// params is the data every template renders from.
type params struct {
	Basename  string
	Version   string
	ClassName string
	FuncBase  string
}

// Synthesize generates replacement source for the given basename and
// declared version. Pure and deterministic: identical inputs always yield
// byte-identical output.
func Synthesize(basename, version string) ([]byte, Category) {
	cat := Classify(basename)

	p := params{
		Basename: basename,
		Version:  version,
		FuncBase: identifier(basename),
	}
	if cat == CategoryClass {
		p.ClassName = classNameFrom(basename)
	}

	var b strings.Builder
	// Templates are static and parse at init; Execute on a Builder cannot
	// fail.
	_ = templates[cat].Execute(&b, p)
	return []byte(b.String()), cat
}

// classNameFrom derives a class name by capitalizing the basename remainder
// after the "class" marker, e.g. "class_user" -> "User".
func classNameFrom(basename string) string {
	name := strings.ToLower(basename)
	rest := name[strings.Index(name, "class")+len("class"):]
	rest = strings.Trim(rest, "_-. ")
	if rest == "" {
		return "Entity"
	}
	return capitalize(identifier(rest))
}

// identifier reduces a basename to a safe PHP identifier fragment.
func identifier(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "module"
	}
	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

var templates = map[Category]*template.Template{
	CategoryHooks:   template.Must(template.New("hooks").Parse(hooksTemplate)),
	CategoryAdmin:   template.Must(template.New("admin").Parse(adminTemplate)),
	CategoryConfig:  template.Must(template.New("config").Parse(configTemplate)),
	CategoryClass:   template.Must(template.New("class").Parse(classTemplate)),
	CategoryGeneric: template.Must(template.New("generic").Parse(genericTemplate)),
}
