package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/ironsheep/guided-filter-mcp/internal/guided"
	"github.com/ironsheep/guided-filter-mcp/internal/imaging"
	"github.com/ironsheep/guided-filter-mcp/internal/planes"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "image_guided_filter").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	start := time.Now()
	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if s.Debug {
		log.Printf("tool %s finished in %s (err=%v)", params.Name, time.Since(start), err)
	}
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Loads frames from cache as needed
//  4. Calls the appropriate imaging/guided function
//  5. Returns the result or error
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_plane_stats":
		return s.handleImagePlaneStats(args)

	// Filtering
	case "image_guided_filter":
		return s.handleImageGuidedFilter(ctx, args)

	// Inspection
	case "image_preview":
		return s.handleImagePreview(args)
	case "image_compare":
		return s.handleImageCompare(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// intList accepts either a single integer or an array of integers. A JSON
// null leaves the parameter unset.
type intList []int

func (l *intList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if len(data) > 0 && data[0] == '[' {
		return json.Unmarshal(data, (*[]int)(l))
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*l = intList{v}
	return nil
}

// floatList accepts either a single number or an array of numbers.
type floatList []float64

func (l *floatList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if len(data) > 0 && data[0] == '[' {
		return json.Unmarshal(data, (*[]float64)(l))
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*l = floatList{v}
	return nil
}

// === Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

type imagePlaneStatsArgs struct {
	Path string `json:"path"`
	// Normalized reports statistics at working precision instead of native
	// code values.
	Normalized bool   `json:"normalized"`
	Range      string `json:"range"`
}

type planeStatsEntry struct {
	Plane  int          `json:"plane"`
	Width  int          `json:"width"`
	Height int          `json:"height"`
	Stats  planes.Stats `json:"stats"`
}

type planeStatsResult struct {
	Path       string            `json:"path"`
	Format     string            `json:"format"`
	Range      string            `json:"range"`
	Normalized bool              `json:"normalized"`
	Planes     []planeStatsEntry `json:"planes"`
}

func (s *Server) handleImagePlaneStats(args json.RawMessage) (interface{}, error) {
	var a imagePlaneStatsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	src, err := s.cache.LoadFrame(a.Path)
	if err != nil {
		return nil, err
	}

	frame := src.Frame
	if a.Range != "" {
		r, err := planes.ParseColorRange(a.Range)
		if err != nil {
			return nil, err
		}
		frame = &planes.Frame{Format: frame.Format, Width: frame.Width, Height: frame.Height, Range: r, Planes: frame.Planes}
	}
	if a.Normalized {
		if frame, err = planes.Promote(frame); err != nil {
			return nil, err
		}
	}

	result := &planeStatsResult{
		Path:       a.Path,
		Format:     frame.Format.String(),
		Range:      frame.Range.String(),
		Normalized: a.Normalized,
		Planes:     make([]planeStatsEntry, len(frame.Planes)),
	}
	for i, p := range frame.Planes {
		result.Planes[i] = planeStatsEntry{
			Plane:  i,
			Width:  p.Width,
			Height: p.Height,
			Stats:  planes.PlaneStats(p),
		}
	}
	return result, nil
}

// === Filter Handlers ===

type imageGuidedFilterArgs struct {
	Path         string    `json:"path"`
	GuidancePath string    `json:"guidance_path"`
	Radius       intList   `json:"radius"`
	Threshold    floatList `json:"threshold"`
	Regulation   floatList `json:"regulation"`
	Mode         string    `json:"mode"`
	UseGauss     bool      `json:"use_gauss"`
	Planes       intList   `json:"planes"`
	Range        string    `json:"range"`
	DownRatio    int       `json:"down_ratio"`
	Downscaler   string    `json:"downscaler"`
	Upscaler     string    `json:"upscaler"`

	OutputPath    string  `json:"output_path"`
	PreviewRegion string  `json:"preview_region"`
	PreviewScale  float64 `json:"preview_scale"`
	Compare       bool    `json:"compare"`
}

// resolvedParams echoes the parameters the filter actually ran with.
type resolvedParams struct {
	Radius     []int     `json:"radius"`
	Regulation []float32 `json:"regulation"`
	Mode       string    `json:"mode"`
	UseGauss   bool      `json:"use_gauss"`
	Planes     []int     `json:"planes"`
	Range      string    `json:"range"`
	DownRatio  int       `json:"down_ratio"`
	Downscaler string    `json:"downscaler"`
	Upscaler   string    `json:"upscaler"`
	Guided     bool      `json:"guided"`
}

type guidedFilterResult struct {
	Width      int                   `json:"width"`
	Height     int                   `json:"height"`
	Format     string                `json:"format"`
	Params     resolvedParams        `json:"params"`
	OutputPath string                `json:"output_path,omitempty"`
	Image      *imaging.EncodedFrame `json:"image,omitempty"`
	Preview    *imaging.EncodedFrame `json:"preview,omitempty"`
	Difference []imaging.PlaneDiff   `json:"difference,omitempty"`
	ElapsedMS  int64                 `json:"elapsed_ms"`
}

// guidedOptions translates tool arguments into filter options. Scaler names
// are returned alongside so the result can echo them.
func guidedOptions(a *imageGuidedFilterArgs) (guided.Options, [2]string, error) {
	opts := guided.Options{
		Radius:     a.Radius,
		Threshold:  a.Threshold,
		Regulation: a.Regulation,
		UseGauss:   a.UseGauss,
		Planes:     a.Planes,
		DownRatio:  a.DownRatio,
	}
	names := [2]string{"point", "bilinear"}

	mode, err := guided.ParseMode(a.Mode)
	if err != nil {
		return opts, names, err
	}
	opts.Mode = mode

	if a.Range != "" {
		r, err := planes.ParseColorRange(a.Range)
		if err != nil {
			return opts, names, err
		}
		opts.Range = r
	}
	if a.Downscaler != "" {
		sc, err := planes.ScalerByName(a.Downscaler)
		if err != nil {
			return opts, names, fmt.Errorf("downscaler: %w", err)
		}
		opts.Downscaler = &sc
		names[0] = a.Downscaler
	}
	if a.Upscaler != "" {
		sc, err := planes.ScalerByName(a.Upscaler)
		if err != nil {
			return opts, names, fmt.Errorf("upscaler: %w", err)
		}
		opts.Upscaler = &sc
		names[1] = a.Upscaler
	}
	return opts, names, nil
}

func (s *Server) handleImageGuidedFilter(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageGuidedFilterArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.PreviewScale == 0 {
		a.PreviewScale = 1.0
	}

	opts, scalerNames, err := guidedOptions(&a)
	if err != nil {
		return nil, err
	}

	src, err := s.cache.LoadFrame(a.Path)
	if err != nil {
		return nil, err
	}
	var guidance *planes.Frame
	if a.GuidancePath != "" {
		g, err := s.cache.LoadFrame(a.GuidancePath)
		if err != nil {
			return nil, fmt.Errorf("guidance: %w", err)
		}
		guidance = g.Frame
		opts.Guidance = guidance
	}

	params, err := guided.Normalize(src.Frame, opts)
	if err != nil {
		return nil, err
	}
	if s.Debug {
		log.Printf("guided filter %s: radius=%v eps=%v mode=%s gauss=%v down=%d",
			a.Path, params.Radius, params.Regulation, params.Mode, params.UseGauss, params.DownRatio)
	}

	start := time.Now()
	out, err := guided.Apply(ctx, src.Frame, guidance, params)
	if err != nil {
		return nil, err
	}

	result := &guidedFilterResult{
		Width:     out.Width,
		Height:    out.Height,
		Format:    out.Format.String(),
		Params:    echoParams(params, scalerNames, guidance != nil),
		ElapsedMS: time.Since(start).Milliseconds(),
	}

	if a.OutputPath != "" {
		if err := imaging.Save(out, a.OutputPath); err != nil {
			return nil, err
		}
		s.cache.Evict(a.OutputPath)
		result.OutputPath = a.OutputPath
	}

	switch {
	case a.PreviewRegion != "":
		r, err := imaging.NamedRegion(a.PreviewRegion, out.Width, out.Height)
		if err != nil {
			return nil, err
		}
		if result.Preview, err = imaging.Preview(out, r, a.PreviewScale); err != nil {
			return nil, err
		}
	case a.OutputPath == "":
		if result.Image, err = imaging.EncodePNG(out); err != nil {
			return nil, err
		}
	}

	if a.Compare {
		if result.Difference, err = imaging.CompareFrames(src.Frame, out); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func echoParams(p *guided.Params, scalerNames [2]string, guidedBy bool) resolvedParams {
	var processed []int
	for i, ok := range p.Process {
		if ok {
			processed = append(processed, i)
		}
	}
	return resolvedParams{
		Radius:     p.Radius,
		Regulation: p.Regulation,
		Mode:       p.Mode.String(),
		UseGauss:   p.UseGauss,
		Planes:     processed,
		Range:      p.Range.String(),
		DownRatio:  p.DownRatio,
		Downscaler: scalerNames[0],
		Upscaler:   scalerNames[1],
		Guided:     guidedBy,
	}
}

// === Inspection Handlers ===

type imagePreviewArgs struct {
	Path   string          `json:"path"`
	Region string          `json:"region"`
	Bounds *imaging.Region `json:"bounds,omitempty"`
	Scale  float64         `json:"scale"`
}

func (s *Server) handleImagePreview(args json.RawMessage) (interface{}, error) {
	var a imagePreviewArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	src, err := s.cache.LoadFrame(a.Path)
	if err != nil {
		return nil, err
	}

	var r imaging.Region
	if a.Bounds != nil {
		r = *a.Bounds
	} else if r, err = imaging.NamedRegion(a.Region, src.Frame.Width, src.Frame.Height); err != nil {
		return nil, err
	}
	return imaging.Preview(src.Frame, r, a.Scale)
}

type imageCompareArgs struct {
	PathA string `json:"path_a"`
	PathB string `json:"path_b"`
}

type compareResult struct {
	PathA  string              `json:"path_a"`
	PathB  string              `json:"path_b"`
	Format string              `json:"format"`
	Planes []imaging.PlaneDiff `json:"planes"`
}

func (s *Server) handleImageCompare(args json.RawMessage) (interface{}, error) {
	var a imageCompareArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	fa, err := s.cache.LoadFrame(a.PathA)
	if err != nil {
		return nil, err
	}
	fb, err := s.cache.LoadFrame(a.PathB)
	if err != nil {
		return nil, err
	}
	diffs, err := imaging.CompareFrames(fa.Frame, fb.Frame)
	if err != nil {
		return nil, err
	}
	return &compareResult{
		PathA:  a.PathA,
		PathB:  a.PathB,
		Format: fa.Frame.Format.String(),
		Planes: diffs,
	}, nil
}
