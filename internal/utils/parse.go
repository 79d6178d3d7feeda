package utils

import (
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// DecodeTOMLFile decodes path into v strictly: any type mismatch fails the
// whole file. Keys v has no field for are logged, not rejected.
func DecodeTOMLFile(path string, v any) error {
	md, err := toml.DecodeFile(path, v)
	if err != nil {
		log.Warnf("TOML error in %s: %v. Attempting partial recovery...", path, err)
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		log.Warnf("Ignoring unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// Doc is a loosely typed TOML document. Lookups report whether the key
// held a value of the asked type, so one bad value costs only that key.
type Doc map[string]any

// ReadDoc parses path without a target struct.
func ReadDoc(path string) (Doc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc := Doc{}
	if _, err := toml.Decode(string(data), &doc); err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v", path, err)
		return nil, err
	}
	return doc, nil
}

// Section returns the [name] table.
func (d Doc) Section(name string) (Doc, bool) {
	section, ok := d[name].(map[string]any)
	return Doc(section), ok
}

// Int returns an integer key; TOML integers decode as int64.
func (d Doc) Int(key string) (int, bool) {
	val, ok := d[key].(int64)
	return int(val), ok
}

// String returns a string key.
func (d Doc) String(key string) (string, bool) {
	val, ok := d[key].(string)
	return val, ok
}

// Bool returns a boolean key.
func (d Doc) Bool(key string) (bool, bool) {
	val, ok := d[key].(bool)
	return val, ok
}
