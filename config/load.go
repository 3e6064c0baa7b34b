package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// Format names a document syntax.
type Format string

// Supported formats.
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: extension %q", ErrUnsupportedFormat, ext)
	}
}

// LoadFile reads and parses the document at path.
func LoadFile(path string) (*Document, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data, format)
}

// Parse decodes a YAML or JSON document. Empty input yields an empty
// document.
func Parse(data []byte, format Format) (*Document, error) {
	var parser koanf.Parser
	switch format {
	case FormatYAML:
		parser = yaml.Parser()
	case FormatJSON:
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	k := koanf.New(".")
	if len(data) > 0 {
		if err := k.Load(rawbytes.Provider(data), parser); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParse, err)
		}
	}

	doc := new(Document)
	if err := k.UnmarshalWithConf("", doc, koanf.UnmarshalConf{
		Tag:           "koanf",
		DecoderConfig: decoderConfig(doc),
	}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return doc, nil
}

// FromMap decodes a document that is already in memory, as produced by
// a YAML or JSON decoder into map[string]any.
func FromMap(m map[string]any) (*Document, error) {
	doc := new(Document)
	if err := decode(m, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func decoderConfig(out any) *mapstructure.DecoderConfig {
	return &mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		TagName:          "koanf",
		Result:           out,
	}
}

func decode(in, out any) error {
	dec, err := mapstructure.NewDecoder(decoderConfig(out))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrParse, err)
	}
	if err := dec.Decode(in); err != nil {
		return fmt.Errorf("%w: %w", ErrParse, err)
	}
	return nil
}
