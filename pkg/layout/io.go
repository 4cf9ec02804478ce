package layout

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/renameio/v2"

	"github.com/matzehuels/entitymap/pkg/errors"
)

// Marshal serializes a Layout to pretty-printed JSON bytes.
func Marshal(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// Unmarshal deserializes JSON bytes into a Layout.
// Every edge must reference nodes present in the layout.
func Unmarshal(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "unmarshal layout")
	}

	ids := make(map[string]struct{}, len(l.Nodes))
	for _, n := range l.Nodes {
		ids[n.ID] = struct{}{}
	}
	for _, e := range l.Edges {
		if _, ok := ids[e.Source]; !ok {
			return Layout{}, errors.New(errors.ErrCodeInvalidInput, "edge %s: unknown source %s", e.ID, e.Source)
		}
		if _, ok := ids[e.Target]; !ok {
			return Layout{}, errors.New(errors.ErrCodeInvalidInput, "edge %s: unknown target %s", e.ID, e.Target)
		}
	}
	return l, nil
}

// WriteFile atomically writes a Layout to a JSON file.
func WriteFile(l Layout, path string) error {
	data, err := Marshal(l)
	if err != nil {
		return err
	}
	return renameio.WriteFile(path, data, 0o644)
}

// ReadFile reads a Layout from a JSON file.
func ReadFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return Unmarshal(data)
}
