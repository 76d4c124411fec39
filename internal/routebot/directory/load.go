package directory

import (
	"bytes"
	"fmt"
	"os"

	"github.com/DenisKhanov/RouteBOT/internal/routebot/models"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// file is the on-disk layout of a directory file:
//
//	departments:
//	  - label: soporte
//	    target: "+573209501615"
type file struct {
	Departments []models.Department `yaml:"departments"`
}

// Parse decodes a YAML directory document.
func Parse(data []byte) (*Directory, error) {
	var f file
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: decode yaml: %v", ErrInvalidDirectory, err)
	}
	return New(f.Departments)
}

// LoadFile reads the directory from path. An empty path yields the built-in default.
func LoadFile(path string) (*Directory, error) {
	if path == "" {
		logrus.Info("No directory file configured, using built-in departments")
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read directory file %s: %w", path, err)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse directory file %s: %w", path, err)
	}
	logrus.Infof("Loaded %d departments from %s", len(d.departments), path)
	return d, nil
}
