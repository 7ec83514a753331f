// Package io reads and writes cell-map layout results.
//
// # JSON Format
//
// [WriteJSON] emits the full [pipeline.Result]: the clonal tree edges, its
// relation tables and linear chains, the normalized prevalences per site and
// every laid-out vertex:
//
//	{
//	  "id": "4b0c...",
//	  "root_id": "Root",
//	  "seed": 42,
//	  "geometry": {"grid_cell_width": 400, "grid_cell_height": 400, ...},
//	  "tree_edges": [{"source": "Root", "target": "A"}, ...],
//	  "prevalence": {"S1": {"genotypes_to_plot": ["A", "B"], "adj_cp": {...}}},
//	  "sites": [
//	    {"site_id": "S1", "vertices": [{"x": 181.2, "y": 97.4, "real_cell": true, "genotype": "A", "col": "#1f77b4"}, ...]}
//	  ]
//	}
//
// [ReadJSON] decodes the same document and rebuilds the in-memory tree, so an
// exported result can be re-rendered without re-running the layout.
//
// # CSV Format
//
// [WriteCSV] flattens the vertices of every site into one table with the
// columns site_id, x, y, real_cell, genotype and col. Fake cells have empty
// genotype and col fields.
package io
