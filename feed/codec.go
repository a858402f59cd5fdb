package feed

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Codec decodes raw source bytes into a value.
// Implement this interface to use alternative formats like TOML or HCL.
type Codec interface {
	// Unmarshal decodes data into v.
	Unmarshal(data []byte, v any) error

	// ContentType returns the MIME type, for signals and debugging.
	ContentType() string
}

// JSONCodec decodes JSON. With Strict set, unknown object keys are errors.
type JSONCodec struct {
	Strict bool
}

// Unmarshal decodes JSON bytes into v.
func (c JSONCodec) Unmarshal(data []byte, v any) error {
	if !c.Strict {
		return json.Unmarshal(data, v)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// ContentType returns the JSON MIME type.
func (JSONCodec) ContentType() string { return "application/json" }

// YAMLCodec decodes YAML, which includes JSON. With Strict set, keys that
// do not map to a struct field are errors.
type YAMLCodec struct {
	Strict bool
}

// Unmarshal decodes YAML bytes into v. An empty document decodes to nothing
// and leaves v untouched.
func (c YAMLCodec) Unmarshal(data []byte, v any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(c.Strict)
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ContentType returns the YAML MIME type.
func (YAMLCodec) ContentType() string { return "application/x-yaml" }

// CodecFor picks a codec from a file extension: YAML for .yaml and .yml,
// JSON otherwise.
func CodecFor(path string) Codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAMLCodec{}
	default:
		return JSONCodec{}
	}
}

var (
	_ Codec = JSONCodec{}
	_ Codec = YAMLCodec{}
)
