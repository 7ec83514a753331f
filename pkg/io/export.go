package io

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/matzehuels/cellmap/pkg/pipeline"
)

// WriteJSON encodes a layout result as indented JSON and writes it to w.
// The output can be re-imported with [ReadJSON].
func WriteJSON(res *pipeline.Result, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a layout result to a JSON file at path.
func ExportJSON(res *pipeline.Result, path string) error {
	return writeFile(path, func(w io.Writer) error { return WriteJSON(res, w) })
}

var csvHeader = []string{"site_id", "x", "y", "real_cell", "genotype", "col"}

// WriteCSV writes one row per vertex of every site in res.
func WriteCSV(res *pipeline.Result, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, l := range res.Sites {
		for _, v := range l.Vertices {
			row := []string{
				l.Site,
				strconv.FormatFloat(v.X, 'f', -1, 64),
				strconv.FormatFloat(v.Y, 'f', -1, 64),
				strconv.FormatBool(v.Real),
				v.Genotype,
				v.Colour,
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("write site %s: %w", l.Site, err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportCSV writes the vertex table of res to a CSV file at path.
func ExportCSV(res *pipeline.Result, path string) error {
	return writeFile(path, func(w io.Writer) error { return WriteCSV(res, w) })
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return write(f)
}
