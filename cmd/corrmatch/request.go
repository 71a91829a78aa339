package main

import (
	"fmt"

	"github.com/soocke/corrmatch"
)

// Request is the JSON document the CLI consumes: template, image,
// compile and match sections mirroring CompileConfig/MatchConfig field
// names (spec.md §6: "Consumes JSON with template, image, compile and
// match sections mirroring the config fields").
type Request struct {
	Template TemplateSpec `json:"template"`
	Image    ImageSpec    `json:"image"`
	Compile  CompileSpec  `json:"compile"`
	Match    MatchSpec    `json:"match"`
}

// TemplateSpec names the PNG (or other disintegration/imaging-decodable
// image) to load as the template.
type TemplateSpec struct {
	Path string `json:"path"`
}

// ImageSpec names the PNG to search.
type ImageSpec struct {
	Path string `json:"path"`
}

// CompileSpec mirrors corrmatch.CompileConfig.
type CompileSpec struct {
	MaxLevels     int     `json:"max_levels"`
	CoarseStepDeg float64 `json:"coarse_step_deg"`
	MinStepDeg    float64 `json:"min_step_deg"`
	FillValue     uint8   `json:"fill_value"`
}

func (c CompileSpec) toConfig() corrmatch.CompileConfig {
	return corrmatch.CompileConfig{
		MaxLevels:     c.MaxLevels,
		CoarseStepDeg: c.CoarseStepDeg,
		MinStepDeg:    c.MinStepDeg,
		FillValue:     c.FillValue,
	}
}

// MatchSpec mirrors corrmatch.MatchConfig, with Metric/Rotation spelled
// as the JSON strings spec.md §6 names ("zncc"|"ssd",
// "disabled"|"enabled") instead of Go constants/bools, and an optional
// top_k for MatchImageTopK.
type MatchSpec struct {
	Metric            string  `json:"metric"`
	Rotation          string  `json:"rotation"`
	Parallel          bool    `json:"parallel"`
	BeamWidth         int     `json:"beam_width"`
	PerAngleTopK      int     `json:"per_angle_topk"`
	NMSRadius         int     `json:"nms_radius"`
	ROIRadius         int     `json:"roi_radius"`
	AngleNeighborhood int     `json:"angle_neighborhood"`
	MinVarI           float32 `json:"min_var_i"`
	TopK              int     `json:"top_k"`
}

func (m MatchSpec) toConfig() (corrmatch.MatchConfig, error) {
	var metric corrmatch.Metric
	switch m.Metric {
	case "zncc", "":
		metric = corrmatch.ZNCC
	case "ssd":
		metric = corrmatch.SSD
	default:
		return corrmatch.MatchConfig{}, fmt.Errorf("match.metric: unrecognized value %q (want zncc or ssd)", m.Metric)
	}

	var rotation bool
	switch m.Rotation {
	case "disabled", "":
		rotation = false
	case "enabled":
		rotation = true
	default:
		return corrmatch.MatchConfig{}, fmt.Errorf("match.rotation: unrecognized value %q (want disabled or enabled)", m.Rotation)
	}

	return corrmatch.MatchConfig{
		Metric:            metric,
		Rotation:          rotation,
		Parallel:          m.Parallel,
		BeamWidth:         m.BeamWidth,
		PerAngleTopK:      m.PerAngleTopK,
		NMSRadius:         m.NMSRadius,
		ROIRadius:         m.ROIRadius,
		AngleNeighborhood: m.AngleNeighborhood,
		MinVarI:           m.MinVarI,
	}, nil
}
