package views

import (
	"fmt"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// Theme variants.
const (
	VariantLight = "light"
	VariantDark  = "dark"
)

const themeName = "trackjournal"

// Manifest describes the garage design tokens. The base tokens are the light
// palette; the dark variant overrides them.
func Manifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    themeName,
		Version: "1.0.0",
		Tokens: map[string]string{
			"color-background":     "#ffffff",
			"color-surface":        "#f8fafc",
			"color-text-primary":   "#0f172a",
			"color-text-secondary": "#475569",
			"color-border":         "#e2e8f0",
			"color-primary":        "#3b82f6",
			"color-error":          "#ef4444",
			"color-success":        "#22c55e",
			"radius-md":            "8px",
			"radius-lg":            "12px",
			"space-sm":             "8px",
			"space-md":             "16px",
			"space-lg":             "24px",
			"font-size-md":         "16px",
			"font-size-lg":         "20px",
		},
		Variants: map[string]theme.Variant{
			VariantDark: {
				Tokens: map[string]string{
					"color-background":     "#0f172a",
					"color-surface":        "#1e293b",
					"color-text-primary":   "#f8fafc",
					"color-text-secondary": "#cbd5e1",
					"color-border":         "#334155",
				},
			},
		},
	}
}

// Theme is a resolved variant ready for templates.
type Theme struct {
	Name    string            `json:"name"`
	Variant string            `json:"variant"`
	Tokens  map[string]string `json:"tokens"`
	CSSVars map[string]string `json:"cssVars"`
	Style   string            `json:"style"`
}

// ResolveTheme registers the manifest and merges the requested variant over
// the base tokens. An empty variant means light.
func ResolveTheme(variant string) (Theme, error) {
	manifest := Manifest()
	registry := theme.NewRegistry()
	if err := registry.Register(manifest); err != nil {
		return Theme{}, fmt.Errorf("views: register theme: %w", err)
	}

	variant = strings.TrimSpace(variant)
	if variant == "" {
		variant = VariantLight
	}

	tokens := make(map[string]string, len(manifest.Tokens))
	for key, value := range manifest.Tokens {
		tokens[key] = value
	}
	if variant != VariantLight {
		override, ok := manifest.Variants[variant]
		if !ok {
			return Theme{}, fmt.Errorf("views: unknown theme variant %q", variant)
		}
		for key, value := range override.Tokens {
			tokens[key] = value
		}
	}

	vars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		vars["--"+key] = value
	}
	return Theme{
		Name:    manifest.Name,
		Variant: variant,
		Tokens:  tokens,
		CSSVars: vars,
		Style:   cssVarsStyle(vars),
	}, nil
}

func cssVarsStyle(vars map[string]string) string {
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, key := range keys {
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteString("; ")
	}
	return strings.TrimSpace(b.String())
}
