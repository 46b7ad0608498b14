package tda

import (
	"context"
	"fmt"
	"time"

	"TopoPull/internal/domain/models"
	domrepo "TopoPull/internal/domain/repository"
	"TopoPull/pkg/pool"
	"TopoPull/pkg/rips"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func init() {
	// The coefficient field modulus must be prime; anything else is a
	// configuration error, never a silent fallback.
	_ = validate.RegisterValidation("prime", func(fl validator.FieldLevel) bool {
		return rips.IsPrime(fl.Field().Uint())
	})
}

// ComputerConfig mirrors the recognized persistence options.
type ComputerConfig struct {
	// MaxComplexDimension is the highest simplex dimension the complex
	// is expanded to.
	MaxComplexDimension int `default:"2" validate:"gte=1"`
	// MaxEdgeLength excludes longer edges from the skeleton; zero means
	// unbounded.
	MaxEdgeLength float64 `validate:"gte=0"`
	// CollapseEdges applies the edge-collapse reduction before
	// expansion. The diagrams are unchanged below MaxComplexDimension;
	// only the construction path differs.
	CollapseEdges bool
	// MaxHomologyDimension is the highest diagram dimension returned.
	// Zero (the default) returns dimension 0 only.
	MaxHomologyDimension int `validate:"gte=0"`
	// OnlyThisDimension, when set, short-circuits to a single diagram
	// per window, overriding MaxHomologyDimension.
	OnlyThisDimension *int
	// CoefficientField is the prime modulus for homology coefficients.
	CoefficientField uint64 `default:"11" validate:"prime"`
	// MinPersistence prunes finite pairs with persistence at or below
	// the threshold; a negative sentinel disables pruning entirely.
	MinPersistence float64
	// Parallelism bounds the worker count; zero lets the runtime pick
	// one worker per core.
	Parallelism int `validate:"gte=0"`
}

func (c *ComputerConfig) validateRange() error {
	if c.MaxHomologyDimension > c.MaxComplexDimension {
		return fmt.Errorf("tda: max_homology_dimension %d exceeds max_complex_dimension %d",
			c.MaxHomologyDimension, c.MaxComplexDimension)
	}
	if d := c.OnlyThisDimension; d != nil {
		if *d < 0 || *d > c.MaxComplexDimension {
			return fmt.Errorf("tda: only_this_dimension %d outside [0, %d]", *d, c.MaxComplexDimension)
		}
	}
	return nil
}

// Computer turns point clouds into per-dimension persistence diagrams.
// Each cloud is independent, so the batch fans out over a worker pool;
// a single failing window fails the whole batch (there is no meaningful
// partial feature vector downstream).
type Computer struct {
	cfg     ComputerConfig
	metrics domrepo.Metrics
}

// NewComputer applies defaults and fails fast on invalid configuration,
// identifying the offending parameter.
func NewComputer(cfg ComputerConfig) (*Computer, error) {
	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("tda: apply defaults: %w", err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("tda: invalid computer config: %w", err)
	}
	if err := cfg.validateRange(); err != nil {
		return nil, err
	}
	return &Computer{cfg: cfg}, nil
}

// SetMetrics injects a metrics recorder.
func (c *Computer) SetMetrics(m domrepo.Metrics) { c.metrics = m }

// Config returns the effective configuration after defaults.
func (c *Computer) Config() ComputerConfig { return c.cfg }

// Dimensions returns how many diagrams Transform emits per window.
func (c *Computer) Dimensions() int {
	if c.cfg.OnlyThisDimension != nil {
		return 1
	}
	return c.cfg.MaxHomologyDimension + 1
}

// DimensionOf maps a diagram slot back to its homology dimension.
func (c *Computer) DimensionOf(slot int) int {
	if c.cfg.OnlyThisDimension != nil {
		return *c.cfg.OnlyThisDimension
	}
	return slot
}

// Fit is a no-op kept for pipeline composition.
func (c *Computer) Fit() *Computer { return c }

// Transform computes one diagram collection per point cloud, in input
// order. The configuration is read-only and shared across workers; each
// worker reads its own cloud and writes its own output slot.
func (c *Computer) Transform(ctx context.Context, clouds []models.PointCloud) ([][]rips.Diagram, error) {
	opts := rips.Options{
		MaxEdgeLength:  c.cfg.MaxEdgeLength,
		MaxDimension:   c.cfg.MaxComplexDimension,
		CollapseEdges:  c.cfg.CollapseEdges,
		Field:          c.cfg.CoefficientField,
		MinPersistence: c.cfg.MinPersistence,
	}

	out, err := pool.Map(ctx, c.cfg.Parallelism, clouds,
		func(ctx context.Context, idx int, cloud models.PointCloud) ([]rips.Diagram, error) {
			start := time.Now()
			diagrams, err := rips.ComputePersistence(cloud, opts)
			if err != nil {
				if c.metrics != nil {
					c.metrics.RecordError("persistence")
				}
				return nil, fmt.Errorf("window %d: %w", idx, err)
			}
			if c.metrics != nil {
				c.metrics.RecordLatency("persistence_window", time.Since(start).Seconds())
			}
			if d := c.cfg.OnlyThisDimension; d != nil {
				return []rips.Diagram{diagrams[*d]}, nil
			}
			return diagrams[:c.cfg.MaxHomologyDimension+1], nil
		})
	if err != nil {
		return nil, err
	}
	if c.metrics != nil {
		c.metrics.RecordWindows(len(out))
	}
	return out, nil
}
