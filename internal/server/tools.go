package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// perPlaneSchema describes a parameter that takes one value for every plane
// or a single value broadcast to all of them.
func perPlaneSchema(itemType, description string) map[string]interface{} {
	return map[string]interface{}{
		"description": description,
		"oneOf": []interface{}{
			map[string]interface{}{"type": itemType},
			map[string]interface{}{
				"type":  "array",
				"items": map[string]interface{}{"type": itemType},
			},
		},
	}
}

var previewRegions = []string{
	"full", "top-left", "top-right", "bottom-left", "bottom-right",
	"top-half", "bottom-half", "left-half", "right-half", "center",
}

var scalerNames = []string{
	"point", "bilinear", "box", "bicubic", "mitchell", "spline", "gaussian", "hermite", "lanczos",
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, color family, plane layout, bit depth and dynamic range as seen by the guided filter.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_plane_stats",
			Description: "Report mean, minimum and maximum of every plane of an image, either in native code values or at working precision.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"normalized": map[string]interface{}{
						"type":        "boolean",
						"description": "Report statistics at working precision (luma/RGB in [0,1], chroma in [-0.5,0.5]). Default false",
						"default":     false,
					},
					"range": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"limited", "full"},
						"description": "Override the dynamic range used for normalization",
					},
				},
				"required": []string{"path"},
			},
		},

		// Filtering
		{
			Name:        "image_guided_filter",
			Description: "Smooth an image with an edge-preserving guided filter. Flat areas are smoothed (removing banding and noise) while edges present in the guidance image are kept. Returns the resolved parameters and the filtered image as base64 PNG, a saved file, or an enlarged preview region.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image to filter",
					},
					"guidance_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional guidance image with the same dimensions and plane layout. Default: the input itself",
					},
					"radius": perPlaneSchema("integer",
						"Window half-width per plane. Default derives from the frame size (12 at 1280x720)"),
					"threshold": perPlaneSchema("number",
						"Smoothing strength in (0,1] used when regulation is not given. Default 1/3"),
					"regulation": perPlaneSchema("number",
						"Explicit per-plane regulation (epsilon). Overrides threshold"),
					"mode": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"original", "weighted", "gradient"},
						"description": "Slope solver. Default gradient",
					},
					"use_gauss": map[string]interface{}{
						"type":        "boolean",
						"description": "Use Gaussian instead of box windows. Default false",
						"default":     false,
					},
					"planes": perPlaneSchema("integer",
						"Plane indices to filter. Other planes are copied unchanged. Default all"),
					"range": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"limited", "full"},
						"description": "Dynamic range override. Default from the image",
					},
					"down_ratio": map[string]interface{}{
						"type":        "integer",
						"description": "Compute statistics at 1/down_ratio resolution (0 disables, otherwise at least 2). Default 0",
						"default":     0,
					},
					"downscaler": map[string]interface{}{
						"type":        "string",
						"enum":        scalerNames,
						"description": "Kernel used to reduce resolution. Default point",
					},
					"upscaler": map[string]interface{}{
						"type":        "string",
						"enum":        scalerNames,
						"description": "Kernel used to restore coefficient planes. Default bilinear",
					},
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Save the result to this path (format from extension) instead of returning it inline",
					},
					"preview_region": map[string]interface{}{
						"type":        "string",
						"enum":        previewRegions,
						"description": "Return only this region of the result",
					},
					"preview_scale": map[string]interface{}{
						"type":        "number",
						"description": "Scale factor for the preview region (e.g., 2.0 to double size). Default 1.0",
						"default":     1.0,
					},
					"compare": map[string]interface{}{
						"type":        "boolean",
						"description": "Include per-plane differences between the input and the result. Default false",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},

		// Inspection
		{
			Name:        "image_preview",
			Description: "Crop a named or explicit region of an image and return it as base64-encoded PNG, optionally enlarged. Use this to inspect banding before and after filtering.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"region": map[string]interface{}{
						"type":        "string",
						"enum":        previewRegions,
						"description": "Named region. Default full",
					},
					"bounds": map[string]interface{}{
						"type":        "object",
						"description": "Explicit region; overrides region",
						"properties": map[string]interface{}{
							"x1": map[string]interface{}{"type": "integer"},
							"y1": map[string]interface{}{"type": "integer"},
							"x2": map[string]interface{}{"type": "integer"},
							"y2": map[string]interface{}{"type": "integer"},
						},
						"required": []string{"x1", "y1", "x2", "y2"},
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor. Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_compare",
			Description: "Compare two images of the same size and plane layout. Returns per-plane mean and max absolute difference, changed sample count, similarity and PSNR.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path_a": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the first image",
					},
					"path_b": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the second image",
					},
				},
				"required": []string{"path_a", "path_b"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
