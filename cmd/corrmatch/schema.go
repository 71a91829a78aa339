package main

const schemaText = `{
  "template": {"path": "string, PNG path"},
  "image":    {"path": "string, PNG path"},
  "compile": {
    "max_levels":      "int, pyramid depth cap, >= 1",
    "coarse_step_deg": "float, angle step at coarsest level, > 0 (rotation only)",
    "min_step_deg":    "float, minimum angle step, 0 < min <= coarse (rotation only)",
    "fill_value":      "uint8, fill for rotated-out pixels (unmasked variant only)"
  },
  "match": {
    "metric":             "\"zncc\" | \"ssd\"",
    "rotation":           "\"disabled\" | \"enabled\"",
    "parallel":           "bool, request parallel execution",
    "beam_width":         "int, candidates carried between levels, >= 1",
    "per_angle_topk":     "int, candidates per angle at coarse level, >= 1 (rotation only)",
    "nms_radius":         "int, spatial NMS Chebyshev radius at level 0, >= 0",
    "roi_radius":         "int, ROI half-size during refinement, >= 1",
    "angle_neighborhood": "int, +/- steps scanned during refinement, >= 0 (rotation only)",
    "min_var_i":          "float, image-window variance floor for ZNCC (ignored for SSD)",
    "top_k":              "int, optional; 0 or 1 returns the single best match"
  }
}`

const exampleText = `{
  "template": {"path": "template.png"},
  "image":    {"path": "scene.png"},
  "compile": {
    "max_levels":      4,
    "coarse_step_deg": 10,
    "min_step_deg":    1,
    "fill_value":      0
  },
  "match": {
    "metric":             "zncc",
    "rotation":           "enabled",
    "parallel":           true,
    "beam_width":         8,
    "per_angle_topk":      4,
    "nms_radius":         4,
    "roi_radius":         6,
    "angle_neighborhood": 2,
    "min_var_i":          1e-6,
    "top_k":              1
  }
}`
