// Package directory holds the department directory of the routing bot:
// the ordered list of departments, their routing targets and the
// accent-insensitive matcher used to pick a department from free text.
package directory

import (
	"errors"
	"fmt"
	"strings"

	"github.com/DenisKhanov/RouteBOT/internal/routebot/models"
)

// ErrInvalidDirectory is returned when a directory fails validation.
var ErrInvalidDirectory = errors.New("invalid department directory")

// Directory is an immutable, ordered set of departments.
// Order matters: Match returns the first department whose label is found in the message.
type Directory struct {
	departments []models.Department
	normalized  []string // Normalized labels, same index as departments
}

// New validates departments and builds a Directory.
// Labels must be non-empty and unique after normalization, targets must be non-empty.
func New(departments []models.Department) (*Directory, error) {
	if len(departments) == 0 {
		return nil, fmt.Errorf("%w: no departments", ErrInvalidDirectory)
	}

	d := &Directory{
		departments: make([]models.Department, 0, len(departments)),
		normalized:  make([]string, 0, len(departments)),
	}
	seen := make(map[string]struct{}, len(departments))
	for i, dep := range departments {
		dep.Label = strings.TrimSpace(dep.Label)
		dep.Target = strings.TrimSpace(dep.Target)
		if dep.Label == "" {
			return nil, fmt.Errorf("%w: department #%d has an empty label", ErrInvalidDirectory, i+1)
		}
		if dep.Target == "" {
			return nil, fmt.Errorf("%w: department %q has an empty target", ErrInvalidDirectory, dep.Label)
		}
		key := Normalize(dep.Label)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: duplicate department %q", ErrInvalidDirectory, dep.Label)
		}
		seen[key] = struct{}{}

		d.departments = append(d.departments, dep)
		d.normalized = append(d.normalized, key)
	}
	return d, nil
}

// Default returns the built-in directory.
func Default() *Directory {
	d, err := New([]models.Department{
		{Label: "servicio al cliente", Target: "atención en este chat", HandledHere: true},
		{Label: "soporte", Target: "+573209501615"},
		{Label: "cartera", Target: "+573012932329"},
		{Label: "dirección", Target: "+573103773928"},
	})
	if err != nil {
		panic(err)
	}
	return d
}

// Match returns the first department, in directory order, whose normalized
// label is a substring of the normalized message.
func (d *Directory) Match(message string) (models.Department, bool) {
	input := Normalize(message)
	for i, label := range d.normalized {
		if strings.Contains(input, label) {
			return d.departments[i], true
		}
	}
	return models.Department{}, false
}

// Lookup returns the department with exactly this label.
func (d *Directory) Lookup(label string) (models.Department, bool) {
	key := Normalize(label)
	for i, n := range d.normalized {
		if n == key {
			return d.departments[i], true
		}
	}
	return models.Department{}, false
}

// Labels returns the department labels in directory order.
func (d *Directory) Labels() []string {
	out := make([]string, 0, len(d.departments))
	for _, dep := range d.departments {
		out = append(out, dep.Label)
	}
	return out
}
