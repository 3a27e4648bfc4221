package collection

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tuanvumaihuynh/quickstore/pkg/validator"
)

// AccessToken is a named bearer token.
type AccessToken struct {
	Name  string `yaml:"name" validate:"required,max=64"`
	Token string `yaml:"token" validate:"required"`
}

// Auth lists, per action, the access token names allowed to perform it.
type Auth struct {
	All     []string `yaml:"all"`
	Create  []string `yaml:"create"`
	Read    []string `yaml:"read"`
	List    []string `yaml:"list"`
	Replace []string `yaml:"replace"`
	Patch   []string `yaml:"patch"`
	Delete  []string `yaml:"delete"`
}

// Definition declares one collection.
type Definition struct {
	Name   string         `yaml:"name" validate:"required,identifier,max=63"`
	Auth   Auth           `yaml:"auth"`
	Schema map[string]any `yaml:"schema" validate:"required"`
}

// File is the decoded collections file.
type File struct {
	// Host, Port and OpenapiHost are accepted for compatibility with older
	// single-file deployments and ignored; HTTP_* variables replace them.
	Host        string `yaml:"host,omitempty"`
	Port        int    `yaml:"port,omitempty"`
	OpenapiHost string `yaml:"openapi_host,omitempty"`

	AccessTokens []AccessToken `yaml:"access_tokens" validate:"unique=Name,unique=Token,dive"`
	Collections  []Definition  `yaml:"collections" validate:"required,min=1,unique=Name,dive"`
}

// LoadFile reads and validates the collections file at path. JSON files are
// accepted as well since JSON is valid YAML.
func LoadFile(path string) (*File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read collections file %q: %w", path, err)
	}

	f, err := ParseFile(content)
	if err != nil {
		return nil, fmt.Errorf("parse collections file %q: %w", path, err)
	}

	return f, nil
}

// ParseFile decodes and validates a collections file.
func ParseFile(content []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("collections file is empty")
		}
		return nil, fmt.Errorf("decode: %w", err)
	}

	v, err := validator.NewDefaultValidator()
	if err != nil {
		return nil, fmt.Errorf("create validator: %w", err)
	}
	if err := v.Validate(f); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}

	return &f, nil
}
