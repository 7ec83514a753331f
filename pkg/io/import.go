package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/cellmap/pkg/pipeline"
)

// ReadJSON decodes a layout result written by [WriteJSON] and rebuilds its
// clonal tree.
//
// ReadJSON returns an error if the JSON is malformed or if the recorded tree
// edges no longer form a valid tree. It does not close r.
func ReadJSON(r io.Reader) (*pipeline.Result, error) {
	var res pipeline.Result
	if err := json.NewDecoder(r).Decode(&res); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := res.Restore(); err != nil {
		return nil, err
	}
	return &res, nil
}

// ImportJSON reads a layout result from the JSON file at path.
func ImportJSON(path string) (*pipeline.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	res, err := ReadJSON(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return res, nil
}
