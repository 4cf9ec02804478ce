package foldertree

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/renameio/v2"

	"github.com/matzehuels/entitymap/pkg/errors"
)

// Marshal serializes a tree to pretty-printed JSON bytes.
func Marshal(n *Node) ([]byte, error) {
	return json.MarshalIndent(n, "", "  ")
}

// Unmarshal deserializes JSON bytes into a tree.
// Null children arrays are normalized to empty slices.
func Unmarshal(data []byte) (*Node, error) {
	var n Node
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode folder tree")
	}
	normalize(&n)
	return &n, nil
}

// Read decodes a tree from r.
func Read(r io.Reader) (*Node, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read tree: %w", err)
	}
	return Unmarshal(data)
}

// ReadFile reads a tree from a JSON file.
func ReadFile(path string) (*Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Unmarshal(data)
}

// WriteFile atomically writes a tree to a JSON file.
func WriteFile(n *Node, path string) error {
	data, err := Marshal(n)
	if err != nil {
		return err
	}
	return renameio.WriteFile(path, data, 0o644)
}

func normalize(n *Node) {
	if n.Children == nil {
		n.Children = []*Node{}
	}
	for _, c := range n.Children {
		if c != nil {
			normalize(c)
		}
	}
}
