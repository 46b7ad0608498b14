package models

// ComputeRequest is the POST /api/features payload: an inline table plus
// pipeline parameters. Defaults mirror the batch pipeline configuration.
type ComputeRequest struct {
	Table [][]float64 `json:"table" validate:"required,min=1"`

	Start  int `json:"start" validate:"gte=0"`
	End    int `json:"end" validate:"gte=0"`
	Window int `json:"window" default:"80" validate:"gte=1"`

	MaxComplexDimension  int     `json:"max_complex_dimension" default:"2" validate:"gte=1"`
	MaxEdgeLength        float64 `json:"max_edge_length"`
	CollapseEdges        bool    `json:"collapse_edges"`
	MaxHomologyDimension int     `json:"max_homology_dimension" validate:"gte=0"`
	OnlyThisDimension    *int    `json:"only_this_dimension,omitempty"`
	CoefficientField     uint    `json:"coefficient_field" default:"11"`
	MinPersistence       float64 `json:"min_persistence"`

	LandscapeLayers     int `json:"landscape_layers" default:"5" validate:"gte=1"`
	LandscapeResolution int `json:"landscape_resolution" default:"100" validate:"gte=2"`
}

// ComputeResponse carries the feature rows for an inline compute call.
type ComputeResponse struct {
	RunID  string       `json:"run_id"`
	Rows   []FeatureRow `json:"rows"`
	Cached bool         `json:"cached"`
}

// RunRequest queries stored rows for a past run.
type RunRequest struct {
	RunID string `param:"run_id" validate:"required"`
	Limit int    `query:"limit" default:"1000" validate:"gte=1,lte=100000"`
}
