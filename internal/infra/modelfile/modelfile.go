package modelfile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/shapedb/shapedb/internal/domain"
)

var ErrNoModels = errors.New("model file declares no models")

// File is the on-disk layout of a model declaration file.
type File struct {
	Models []Model `yaml:"models"`
}

type Model struct {
	Name       string     `yaml:"name"`
	AllowExtra bool       `yaml:"allowExtra"`
	Collection Collection `yaml:"collection"`
	Properties []Property `yaml:"properties"`
}

type Collection struct {
	Unique       []string `yaml:"unique"`
	TTL          string   `yaml:"ttl"`
	TTLInterval  string   `yaml:"ttlInterval"`
	TrackChanges bool     `yaml:"trackChanges"`
}

type Property struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	NotNull bool   `yaml:"notNull"`
	Default any    `yaml:"default"`
	Unique  bool   `yaml:"unique"`
}

// Compiled pairs a model name with its declaration and options, ready to
// hand to the registry. Declaration-level validation happens when the
// model is declared, not here.
type Compiled struct {
	Name    string
	Decl    domain.Declaration
	Options domain.ModelOptions
}

func Load(path string) ([]Compiled, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model file: %w", err)
	}
	compiled, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse model file %s: %w", path, err)
	}
	return compiled, nil
}

func Parse(data []byte) ([]Compiled, error) {
	var file File
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if len(file.Models) == 0 {
		return nil, ErrNoModels
	}

	compiled := make([]Compiled, 0, len(file.Models))
	for i, model := range file.Models {
		c, err := model.compile()
		if err != nil {
			return nil, fmt.Errorf("model %d: %w", i+1, err)
		}
		compiled = append(compiled, c)
	}
	return compiled, nil
}

func (m Model) compile() (Compiled, error) {
	name := strings.TrimSpace(m.Name)
	if name == "" {
		return Compiled{}, errors.New("name is required")
	}

	decl := make(domain.Declaration, 0, len(m.Properties))
	for _, p := range m.Properties {
		coerce := domain.Any
		if strings.TrimSpace(p.Type) != "" {
			parsed, err := domain.ParseCoercion(p.Type)
			if err != nil {
				return Compiled{}, fmt.Errorf("property %s: %w", p.Name, err)
			}
			coerce = parsed
		}
		decl = append(decl, domain.PropertyDecl{
			Name: p.Name,
			Rule: domain.RuleDecl{
				Type:    coerce,
				NotNull: p.NotNull,
				Default: p.Default,
				Unique:  p.Unique,
			},
		})
	}

	opts := domain.ModelOptions{AllowExtra: m.AllowExtra}
	opts.Collection.Unique = append([]string(nil), m.Collection.Unique...)
	opts.Collection.TrackChanges = m.Collection.TrackChanges

	ttl, err := parseDuration(m.Collection.TTL)
	if err != nil {
		return Compiled{}, fmt.Errorf("ttl: %w", err)
	}
	opts.Collection.TTL = ttl

	interval, err := parseDuration(m.Collection.TTLInterval)
	if err != nil {
		return Compiled{}, fmt.Errorf("ttlInterval: %w", err)
	}
	opts.Collection.TTLInterval = interval

	return Compiled{Name: name, Decl: decl, Options: opts}, nil
}

func parseDuration(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	return time.ParseDuration(value)
}
