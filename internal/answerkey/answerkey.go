// Package answerkey reads answer-key files.
//
// A key file is a JSON or YAML object in one of three shapes:
//
//	{"Set A": {"1": "A", ...}, "Set B": {...}}   // named sets
//	{"answers": {"1": "A", ...}}                 // wrapped
//	{"1": "A", "2": "C", ...}                    // flat
//
// When a set is requested, resolution tries the exact set label first, then an
// "answers" key, then the whole object as a flat mapping. Nested values that
// are not scalars are ignored in the flat case.
package answerkey

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/omr-eval/internal/scoring"
)

// ErrNotMapping is returned when the top level of a key file is not an object.
var ErrNotMapping = errors.New("answer key must be an object")

// AnswersField is the wrapper key of the second file shape.
const AnswersField = "answers"

// Document is a parsed answer-key file.
type Document struct {
	root *yaml.Node
}

// Parse parses JSON or YAML key data.
func Parse(data []byte) (*Document, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse answer key: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, ErrNotMapping
	}
	root := deref(doc.Content[0])
	if root.Kind != yaml.MappingNode {
		return nil, ErrNotMapping
	}
	return &Document{root: root}, nil
}

// LoadFile reads and parses a key file.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read answer key: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// SetLabel turns a short set name into its label: "a" -> "Set A".
// Names already carrying the "Set " prefix are normalized the same way.
func SetLabel(set string) string {
	s := strings.ToUpper(strings.TrimSpace(set))
	s = strings.TrimSpace(strings.TrimPrefix(s, "SET"))
	return "Set " + s
}

// Sets lists, in file order, the top-level keys whose value is an object.
func (d *Document) Sets() []string {
	sets := make([]string, 0)
	for i := 0; i+1 < len(d.root.Content); i += 2 {
		if deref(d.root.Content[i+1]).Kind == yaml.MappingNode {
			sets = append(sets, d.root.Content[i].Value)
		}
	}
	return sets
}

// Resolve returns the answer key for set (e.g. "A"). An empty set skips the
// label lookup.
func (d *Document) Resolve(set string) scoring.AnswerKey {
	if set != "" {
		if n := d.lookup(SetLabel(set)); n != nil && n.Kind == yaml.MappingNode {
			return toKey(n)
		}
	}
	if n := d.lookup(AnswersField); n != nil && n.Kind == yaml.MappingNode {
		return toKey(n)
	}
	return toKey(d.root)
}

// lookup returns the value for an exact top-level key, or nil.
func (d *Document) lookup(key string) *yaml.Node {
	for i := 0; i+1 < len(d.root.Content); i += 2 {
		if d.root.Content[i].Value == key {
			return deref(d.root.Content[i+1])
		}
	}
	return nil
}

// toKey copies the scalar pairs of a mapping node.
func toKey(n *yaml.Node) scoring.AnswerKey {
	key := make(scoring.AnswerKey, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := deref(n.Content[i]), deref(n.Content[i+1])
		if k.Kind != yaml.ScalarNode || v.Kind != yaml.ScalarNode {
			continue
		}
		key[k.Value] = v.Value
	}
	return key
}

func deref(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}
