package tuning

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader reads the tuning YAML file
type Loader struct {
	filePath string
}

// NewLoader creates a new tuning loader
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Path returns the file the loader reads.
func (l *Loader) Path() string { return l.filePath }

// Load reads and parses the tuning file. Unknown keys are rejected so that
// a misspelled weight name is reported instead of ignored.
func (l *Loader) Load() (File, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return File{}, fmt.Errorf("failed to read tuning file: %w", err)
	}
	return Parse(data)
}

// Parse decodes tuning YAML. An empty document yields a zero File.
func Parse(data []byte) (File, error) {
	var file File
	if len(bytes.TrimSpace(data)) == 0 {
		return file, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return File{}, fmt.Errorf("failed to parse tuning yaml: %w", err)
	}
	return file, nil
}
