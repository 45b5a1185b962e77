package questicle

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

// FormatterConfigName is the per-project formatter config file, looked
// up in the directory being formatted.
const FormatterConfigName = ".qkfmt.yaml"

// LoadFormatterConfig reads dir's formatter config. A missing file is
// not an error: the defaults come back. Out-of-range values are
// clamped to the defaults field by field.
func LoadFormatterConfig(dir string) (FormatterOptions, error) {
	opts := DefaultFormatterOptions()
	data, err := os.ReadFile(filepath.Join(dir, FormatterConfigName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return opts, nil
		}
		return opts, err
	}
	// pointers distinguish "absent" from an explicit zero
	var raw struct {
		Indent        *int `yaml:"indent"`
		MaxBlankLines *int `yaml:"max_blank_lines"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return opts, err
	}
	if raw.Indent != nil && *raw.Indent >= 1 {
		opts.IndentWidth = *raw.Indent
	}
	if raw.MaxBlankLines != nil && *raw.MaxBlankLines >= 0 {
		opts.MaxBlankLines = *raw.MaxBlankLines
	}
	return opts, nil
}
