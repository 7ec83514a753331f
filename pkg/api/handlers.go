package api

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/matzehuels/cellmap/pkg/config"
	"github.com/matzehuels/cellmap/pkg/errors"
	"github.com/matzehuels/cellmap/pkg/pipeline"
)

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	res, err := s.execute(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	ropts, err := renderOptions(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	res, err := s.execute(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	artifacts, hit, err := s.runner.RenderWithCacheInfo(r.Context(), res, ropts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("X-Cache", cacheHeader(res.CacheInfo.LayoutHit, hit))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[pipeline.FormatSVG])
}

func (s *Server) execute(w http.ResponseWriter, r *http.Request) (*pipeline.Result, error) {
	cfg, err := s.readConfig(w, r)
	if err != nil {
		return nil, err
	}
	opts, err := pipelineOptions(r)
	if err != nil {
		return nil, err
	}
	opts.Workers = s.opts.Workers
	opts.Logger = s.logger
	return s.runner.Execute(r.Context(), cfg, opts)
}

func (s *Server) readConfig(w http.ResponseWriter, r *http.Request) (*config.Config, error) {
	format, err := bodyFormat(r.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body")
	}
	return config.Parse(data, format)
}

func bodyFormat(contentType string) (config.Format, error) {
	if contentType == "" {
		return config.FormatJSON, nil
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidFormat, err, "content type")
	}
	switch mt {
	case "application/json":
		return config.FormatJSON, nil
	case "application/yaml", "application/x-yaml", "text/yaml":
		return config.FormatYAML, nil
	case "application/toml", "text/toml":
		return config.FormatTOML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported content type %q", mt)
}

func pipelineOptions(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	var opts pipeline.Options
	var err error

	if v := q.Get("sites"); v != "" {
		opts.Sites = splitList(v)
	}
	if v := q.Get("seed"); v != "" {
		if opts.Seed, err = strconv.ParseUint(v, 10, 64); err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "invalid seed %q", v)
		}
	}
	if opts.RejectDuplicates, err = boolParam(q.Get("reject_duplicates")); err != nil {
		return opts, err
	}
	if opts.Refresh, err = boolParam(q.Get("refresh")); err != nil {
		return opts, err
	}
	return opts, nil
}

func renderOptions(r *http.Request) (pipeline.RenderOptions, error) {
	q := r.URL.Query()
	opts := pipeline.RenderOptions{
		Kind:    q.Get("kind"),
		Formats: []string{pipeline.FormatSVG},
		Title:   q.Get("title"),
	}
	var err error
	if v := q.Get("columns"); v != "" {
		if opts.Columns, err = strconv.Atoi(v); err != nil || opts.Columns < 0 {
			return opts, errors.New(errors.ErrCodeInvalidInput, "invalid columns %q", v)
		}
	}
	for name, dst := range map[string]*bool{
		"legend":    &opts.Legend,
		"hide_fake": &opts.HideFake,
		"chains":    &opts.Chains,
		"detailed":  &opts.Detailed,
	} {
		if *dst, err = boolParam(q.Get(name)); err != nil {
			return opts, err
		}
	}
	err = opts.Validate()
	return opts, err
}

func boolParam(v string) (bool, error) {
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.New(errors.ErrCodeInvalidInput, "invalid boolean %q", v)
	}
	return b, nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func cacheHeader(layoutHit, renderHit bool) string {
	return fmt.Sprintf("layout=%s, render=%s", hitMiss(layoutHit), hitMiss(renderHit))
}

func hitMiss(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}
