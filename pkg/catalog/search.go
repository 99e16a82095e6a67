package catalog

import (
	"strings"

	"github.com/goliatone/go-trackjournal/pkg/vehicle"
)

// FilterMakes keeps makes whose name contains term, ignoring case. Order is
// preserved and an empty term returns a copy of makes.
func FilterMakes(makes []vehicle.Make, term string) []vehicle.Make {
	q := normalizeTerm(term)
	out := make([]vehicle.Make, 0, len(makes))
	for _, m := range makes {
		if q == "" || strings.Contains(strings.ToLower(m.Name), q) {
			out = append(out, m)
		}
	}
	return out
}

// FilterModels is FilterMakes for models.
func FilterModels(models []vehicle.Model, term string) []vehicle.Model {
	q := normalizeTerm(term)
	out := make([]vehicle.Model, 0, len(models))
	for _, m := range models {
		if q == "" || strings.Contains(strings.ToLower(m.Name), q) {
			out = append(out, m)
		}
	}
	return out
}

// FindMakeByName returns the make whose name equals name, ignoring case and
// surrounding whitespace.
func FindMakeByName(makes []vehicle.Make, name string) (vehicle.Make, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return vehicle.Make{}, false
	}
	for _, m := range makes {
		if strings.EqualFold(m.Name, name) {
			return m, true
		}
	}
	return vehicle.Make{}, false
}

func normalizeTerm(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}
