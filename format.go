package settings

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// decodeFormat parses raw settings bytes according to the file-extension
// hint. Unrecognized extensions fail with *UnsupportedFormatError.
func decodeFormat(data []byte, ext string) (map[string]any, error) {
	switch strings.ToLower(ext) {
	case ".json", ".js":
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber() // Preserve number precision
		values := make(map[string]any)
		if err := decoder.Decode(&values); err != nil {
			return nil, fmt.Errorf("failed to parse JSON settings: %w", err)
		}
		return values, nil

	case ".yaml", ".yml":
		values := make(map[string]any)
		if err := yaml.Unmarshal(data, &values); err != nil {
			return nil, fmt.Errorf("failed to parse YAML settings: %w", err)
		}
		return values, nil

	case ".toml", ".tml":
		values := make(map[string]any)
		if err := toml.Unmarshal(data, &values); err != nil {
			return nil, fmt.Errorf("failed to parse TOML settings: %w", err)
		}
		return values, nil

	case ".ini":
		return decodeINI(data)

	case ".gob":
		values := make(map[string]any)
		if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&values); err != nil {
			return nil, fmt.Errorf("failed to parse gob settings: %w", err)
		}
		return values, nil
	}

	return nil, &UnsupportedFormatError{Ext: ext}
}

// decodeINI flattens every option across every section into one mapping;
// later sections overwrite earlier ones on name collision.
func decodeINI(data []byte) (map[string]any, error) {
	f, err := ini.Load(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse INI settings: %w", err)
	}

	values := make(map[string]any)
	for _, section := range f.Sections() {
		for _, key := range section.Keys() {
			values[key.Name()] = key.Value()
		}
	}
	return values, nil
}
