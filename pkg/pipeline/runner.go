package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/cellmap/pkg/cache"
	"github.com/matzehuels/cellmap/pkg/config"
	"github.com/matzehuels/cellmap/pkg/errors"
	"github.com/matzehuels/cellmap/pkg/observability"
)

// Runner executes the pipeline with caching.
//
// The Runner holds no per-run state, so one Runner may serve concurrent
// runs with different configs and options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// selects the default key scheme and a nil logger selects log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs prepare and layout for cfg. cfg must already be validated
// (config.Load and config.Parse do this).
func (r *Runner) Execute(ctx context.Context, cfg *config.Config, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	opts.SetDefaults()

	geom := cfg.Geometry()
	if err := geom.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidGeometry, err, "invalid geometry")
	}
	seed := cfg.Seed
	if opts.Seed != 0 {
		seed = opts.Seed
	}

	var cacheKey string
	configHash, err := cfg.Hash()
	if err != nil {
		r.Logger.Warn("config not cacheable", "error", err)
	} else {
		cacheKey = r.Keyer.LayoutKey(configHash, opts.LayoutKeyOpts(seed))
	}

	if !opts.Refresh && cacheKey != "" {
		if res, ok := r.cachedResult(ctx, cacheKey); ok {
			r.Logger.Info("loaded layout from cache", "sites", len(res.Sites))
			return res, nil
		}
	}

	result := &Result{
		ID:         uuid.NewString(),
		ConfigHash: configHash,
		RootID:     cfg.RootID,
		Seed:       seed,
		Geometry:   geom,
	}

	prepStart := time.Now()
	in, err := Prepare(ctx, cfg, opts)
	if err != nil {
		return nil, err
	}
	result.Tree = in.Tree
	result.Edges = in.Tree.Edges()
	result.Relations = in.Relations
	result.Chains = in.Chains
	result.Clones = in.Clones
	result.Colours = in.Colours
	result.Duplicates = in.Table.Duplicates
	result.Stats.NodeCount = in.Tree.Len()
	result.Stats.PrepareTime = time.Since(prepStart)

	r.Logger.Info("built clonal tree",
		"nodes", in.Tree.Len(),
		"chains", len(in.Chains.Starts),
		"duration", result.Stats.PrepareTime)

	sites, err := selectSites(in.Table, opts.Sites)
	if err != nil {
		return nil, err
	}

	layoutStart := time.Now()
	result.Prevalence, result.Sites, result.SiteErrors, err = LayoutSites(ctx, in, sites, geom, seed, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "layout")
	}
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.SiteCount = len(result.Sites)
	for _, l := range result.Sites {
		result.Stats.RealCells += l.RealCells()
		result.Stats.FakeCells += l.FakeCells()
	}

	r.Logger.Info("laid out sites",
		"sites", len(result.Sites),
		"failed", len(result.SiteErrors),
		"real_cells", result.Stats.RealCells,
		"duration", result.Stats.LayoutTime)

	// Partial results are not cached so a fixed input is picked up next run.
	if len(result.SiteErrors) == 0 && cacheKey != "" {
		result.LayoutKey = cacheKey
		r.store(ctx, "layout", cacheKey, result, cache.TTLLayout)
	}
	return result, nil
}

func (r *Runner) cachedResult(ctx context.Context, key string) (*Result, bool) {
	var res Result
	hit, err := cache.GetJSON(ctx, r.Cache, key, &res)
	if err != nil {
		r.Logger.Warn("cache read failed", "error", err)
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, "layout")
		return nil, false
	}
	if err := res.Restore(); err != nil {
		_ = r.Cache.Delete(ctx, key)
		observability.Cache().OnCacheMiss(ctx, "layout")
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, "layout")
	res.ID = uuid.NewString()
	res.CacheInfo.LayoutHit = true
	return &res, true
}

func (r *Runner) store(ctx context.Context, keyType, key string, v any, ttl time.Duration) {
	var data []byte
	switch b := v.(type) {
	case []byte:
		data = b
	default:
		var err error
		if data, err = json.Marshal(v); err != nil {
			r.Logger.Warn("cache encode failed", "error", err)
			return
		}
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
