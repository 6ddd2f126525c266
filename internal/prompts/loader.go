// Package prompts provides externalized oracle prompt templates, stored as
// JSON files and embedded at compile time.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

// Set is one embedded prompt file: a collection of named templates with
// {{.Key}} placeholders.
type Set struct {
	name      string
	templates map[string]string
}

var (
	sets   = make(map[string]*Set)
	setsMu sync.Mutex
)

// LoadSet parses an embedded prompt file. Sets are cached per filename.
func LoadSet(filename string) (*Set, error) {
	setsMu.Lock()
	defer setsMu.Unlock()
	if set, ok := sets[filename]; ok {
		return set, nil
	}

	data, err := promptFiles.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}
	var templates map[string]string
	if err := json.Unmarshal(data, &templates); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
	}

	set := &Set{name: filename, templates: templates}
	sets[filename] = set
	return set, nil
}

// MustSet loads an embedded prompt file, panicking when it is missing or
// malformed. Use for prompt sets required at initialization time.
func MustSet(filename string) *Set {
	set, err := LoadSet(filename)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompts: %v", err))
	}
	return set
}

// Render substitutes {{.Key}} placeholders in the named template with
// values from data.
func (s *Set) Render(key string, data map[string]string) (string, error) {
	template, ok := s.templates[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, s.name)
	}
	result := template
	for k, v := range data {
		result = strings.ReplaceAll(result, fmt.Sprintf("{{.%s}}", k), v)
	}
	return result, nil
}

// MustRender is Render for keys known at compile time; a missing key is a
// programming error.
func (s *Set) MustRender(key string, data map[string]string) string {
	prompt, err := s.Render(key, data)
	if err != nil {
		panic(err.Error())
	}
	return prompt
}

// Keys returns the template names in the set.
func (s *Set) Keys() []string {
	keys := make([]string, 0, len(s.templates))
	for k := range s.templates {
		keys = append(keys, k)
	}
	return keys
}
