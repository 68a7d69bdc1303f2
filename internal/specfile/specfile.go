// Package specfile loads specification documents from TOML, YAML or JSON.
//
// Every format decodes into the same generic tree, which is then mapped onto
// argspec.Document. Native values are accepted wherever the document format
// allows them: booleans become "true"/"false", numbers their decimal text,
// a list of choices is joined with ", " and a list default with " ".
package specfile

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/lhaig/climeta/internal/argspec"
)

// Format is a specification document syntax.
type Format string

const (
	TOML Format = "toml"
	YAML Format = "yaml"
	JSON Format = "json"
)

// ErrFormat is returned for a file extension with no known syntax.
var ErrFormat = errors.New("unsupported specification format")

var (
	programKeys = []string{"name", "description", "epilog"}
	argKeys     = []string{"name", "type", "help", "short", "dest", "multiple", "metavar", "choices", "default", "required"}
)

// FormatOf picks the syntax from the file extension; no extension means TOML.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml", "":
		return TOML, nil
	case ".yaml", ".yml":
		return YAML, nil
	case ".json":
		return JSON, nil
	}
	return "", errors.WithHint(errors.Wrapf(ErrFormat, "%q", filepath.Ext(path)),
		"use .toml, .yaml, .yml or .json")
}

// Load reads and parses the document at path.
func Load(path string) (*argspec.Document, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading specification")
	}
	doc, err := Parse(data, format)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	return doc, nil
}

// Parse decodes data written in format.
func Parse(data []byte, format Format) (*argspec.Document, error) {
	var tree map[string]any
	switch format {
	case TOML:
		if err := toml.Unmarshal(data, &tree); err != nil {
			return nil, err
		}
	case YAML:
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return nil, err
		}
	case JSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&tree); err != nil {
			return nil, err
		}
	default:
		return nil, errors.Wrapf(ErrFormat, "%q", format)
	}
	return fromTree(tree)
}

func fromTree(tree map[string]any) (*argspec.Document, error) {
	doc := &argspec.Document{}
	for _, key := range sortedKeys(tree) {
		if key != "program" && key != "arguments" {
			return nil, errors.WithHint(errors.Newf("unknown top-level key %q", key),
				"a specification has only [program] and [[arguments]]")
		}
	}

	if raw, ok := tree["program"]; ok {
		section, ok := raw.(map[string]any)
		if !ok {
			return nil, errors.Newf("program must be a table, found %T", raw)
		}
		fields, unknown, err := sectionText(section, programKeys, "program")
		if err != nil {
			return nil, err
		}
		doc.Program = argspec.Program{
			Name:        fields["name"],
			Description: fields["description"],
			Epilog:      fields["epilog"],
		}
		for _, k := range unknown {
			doc.Unknown = append(doc.Unknown, argspec.UnknownKey{Arg: 0, Key: k})
		}
	}

	raw, ok := tree["arguments"]
	if !ok {
		return doc, nil
	}
	items, err := tables(raw)
	if err != nil {
		return nil, err
	}
	for i, item := range items {
		where := "arguments[" + strconv.Itoa(i+1) + "]"
		fields, unknown, err := sectionText(item, argKeys, where)
		if err != nil {
			return nil, err
		}
		decl := argspec.Declaration{
			Name:     fields["name"],
			Type:     fields["type"],
			Help:     fields["help"],
			Short:    fields["short"],
			Dest:     fields["dest"],
			Multiple: fields["multiple"],
			Required: fields["required"],
		}
		if _, ok := item["metavar"]; ok {
			decl.Metavar = ptr(fields["metavar"])
		}
		if _, ok := item["choices"]; ok {
			decl.Choices = ptr(fields["choices"])
		}
		if _, ok := item["default"]; ok {
			decl.Default = ptr(fields["default"])
		}
		doc.Arguments = append(doc.Arguments, decl)
		for _, k := range unknown {
			doc.Unknown = append(doc.Unknown, argspec.UnknownKey{Arg: i + 1, Key: k})
		}
	}
	return doc, nil
}

// tables accepts the shapes an array of tables takes in each decoder.
func tables(raw any) ([]map[string]any, error) {
	switch v := raw.(type) {
	case []map[string]any:
		return v, nil
	case []any:
		out := make([]map[string]any, 0, len(v))
		for i, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, errors.Newf("arguments[%d] must be a table, found %T", i+1, item)
			}
			out = append(out, m)
		}
		return out, nil
	}
	return nil, errors.Newf("arguments must be an array of tables, found %T", raw)
}

// sectionText converts the known keys of a section to text and returns the
// unknown keys, sorted.
func sectionText(section map[string]any, known []string, where string) (map[string]string, []string, error) {
	fields := make(map[string]string, len(section))
	var unknown []string
	for _, key := range sortedKeys(section) {
		if !isKnown(key, known) {
			unknown = append(unknown, key)
			continue
		}
		sep := " "
		if key == "choices" {
			sep = ", "
		}
		text, err := toText(section[key], sep)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "%s.%s", where, key)
		}
		fields[key] = text
	}
	return fields, unknown, nil
}

func toText(v any, sep string) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case bool:
		return strconv.FormatBool(x), nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	case float64:
		return argspec.FormatFloat(x), nil
	case json.Number:
		return x.String(), nil
	case []any:
		items := make([]string, len(x))
		for i, item := range x {
			text, err := toText(item, sep)
			if err != nil {
				return "", err
			}
			items[i] = text
		}
		return strings.Join(items, sep), nil
	}
	return "", errors.Newf("unsupported value of type %T", v)
}

func isKnown(key string, known []string) bool {
	for _, k := range known {
		if k == key {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func ptr(s string) *string { return &s }
