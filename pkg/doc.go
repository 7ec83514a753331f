// Package pkg provides the libraries behind cellmap, which lays out tumour
// clonal evolution as per-site cell maps.
//
// # Overview
//
// A run takes a clonal phylogeny (parent/child edges between clone ids) and a
// table of clonal prevalences per anatomic site, and produces for every site a
// circle of sampled cells coloured by genotype in proportion to the clones'
// prevalences. The packages are organized as:
//
//  1. [tree] - clonal tree, relation tables and linear chains
//  2. [prevalence] - prevalence table, visibility threshold and rescaling
//  3. [cellmap] - vertex sampling, ordering and genotype assignment
//  4. [pipeline] - orchestration with caching (config → result → artifacts)
//  5. [render] - SVG, PNG and PDF output for cell maps and the tree
//
// Supporting packages: [config] (TOML/YAML/JSON documents), [palette] (clone
// colours), [cache] (file and Redis caches), [io] (result import/export),
// [api] (HTTP server), [observability] (hooks and Prometheus metrics) and
// [errors] (coded errors).
//
// # Data Flow
//
//	config document
//	       ↓
//	  [tree] Build → NewRelations, LinearChains
//	       ↓
//	  [prevalence] NewTable → Normalize (per site)
//	       ↓
//	  [cellmap] Generate (per site, seeded)
//	       ↓
//	  JSON / SVG / PNG / PDF
//
// # Quick Start
//
//	cfg, err := config.Load("patient.toml")
//	if err != nil {
//	    return err
//	}
//	runner := pipeline.NewRunner(nil, nil, nil)
//	res, err := runner.Execute(ctx, cfg, pipeline.Options{})
//	if err != nil {
//	    return err
//	}
//	artifacts, err := pipeline.Render(res, pipeline.RenderOptions{Legend: true})
package pkg
