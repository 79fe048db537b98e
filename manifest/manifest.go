// Package manifest fetches and parses the release manifest that advertises
// the latest build for each device and release type.
package manifest

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Manifest lists the available builds per release type ("stable",
// "weekly", ...).
type Manifest struct {
	Releases    map[string][]Entry `json:"releases"`
	GeneratedAt string             `json:"generated_at,omitempty"`
}

// Entry describes one downloadable build.
type Entry struct {
	Device       string `json:"device"`
	Filename     string `json:"filename"`
	URL          string `json:"url,omitempty"`
	ChangelogURL string `json:"changelog_url,omitempty"`
	SHA256       string `json:"sha256,omitempty"`
	SizeBytes    int64  `json:"size_bytes,omitempty"`
	ReleasedAt   string `json:"released_at,omitempty"`
}

// Find returns the entry for device in the given release type. Device and
// release type match case-insensitively; the first matching entry wins. A
// release type spelled exactly as requested is searched first, then the
// others in sorted order.
func (m *Manifest) Find(releaseType, device string) (Entry, bool) {
	if m == nil || device == "" {
		return Entry{}, false
	}
	if e, ok := findDevice(m.Releases[releaseType], device); ok {
		return e, true
	}
	for _, name := range m.ReleaseTypes() {
		if name == releaseType || !strings.EqualFold(name, releaseType) {
			continue
		}
		if e, ok := findDevice(m.Releases[name], device); ok {
			return e, true
		}
	}
	return Entry{}, false
}

func findDevice(entries []Entry, device string) (Entry, bool) {
	for _, e := range entries {
		if strings.EqualFold(e.Device, device) {
			return e, true
		}
	}
	return Entry{}, false
}

// ReleaseTypes returns the release types present in the manifest, sorted.
func (m *Manifest) ReleaseTypes() []string {
	types := make([]string, 0, len(m.Releases))
	for name := range m.Releases {
		types = append(types, name)
	}
	sort.Strings(types)
	return types
}

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "https://ota-checker.local/manifest.schema.json"

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
		if err != nil {
			schemaErr = fmt.Errorf("decode manifest schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			schemaErr = fmt.Errorf("add manifest schema: %w", err)
			return
		}
		schema, schemaErr = c.Compile(schemaURL)
	})
	return schema, schemaErr
}

// Parse validates data against the manifest schema and decodes it.
func Parse(data []byte) (*Manifest, error) {
	sch, err := compiledSchema()
	if err != nil {
		return nil, err
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if err := sch.Validate(inst); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &m, nil
}
