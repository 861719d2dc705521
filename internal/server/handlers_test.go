package server

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ironsheep/guided-filter-mcp/internal/guided"
)

// createTestImageFile creates a test image file and returns its path
func createTestImageFile(t *testing.T, width, height int, c color.Color) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return writeTestPNG(t, img)
}

// createStepImageFile creates a gray image whose left half is lo and right
// half is hi.
func createStepImageFile(t *testing.T, width, height int, lo, hi uint8) string {
	t.Helper()

	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := lo
			if x >= width/2 {
				v = hi
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return writeTestPNG(t, img)
}

func writeTestPNG(t *testing.T, img image.Image) string {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "handler-test-*.png")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer tmpFile.Close()

	if err := png.Encode(tmpFile, img); err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to encode image: %v", err)
	}

	return tmpFile.Name()
}

// callTool issues a tools/call request and returns the raw response.
func callTool(t *testing.T, s *Server, name string, args map[string]interface{}) *MCPResponse {
	t.Helper()

	params := map[string]interface{}{
		"name":      name,
		"arguments": args,
	}
	paramsJSON, _ := json.Marshal(params)

	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	}

	resp := s.handleRequest(context.Background(), req)
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	return resp
}

// decodeToolResult unmarshals the text content of a successful tool response.
func decodeToolResult(t *testing.T, resp *MCPResponse, v interface{}) {
	t.Helper()

	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v (%v)", resp.Error.Message, resp.Error.Data)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) != 1 {
		t.Fatal("Result should contain one content entry")
	}
	if content[0]["type"] != "text" {
		t.Errorf("content type: got %v, want text", content[0]["type"])
	}
	text, _ := content[0]["text"].(string)
	if err := json.Unmarshal([]byte(text), v); err != nil {
		t.Fatalf("failed to decode tool result: %v\n%s", err, text)
	}
}

func expectToolError(t *testing.T, resp *MCPResponse) {
	t.Helper()

	if resp.Error == nil {
		t.Fatal("Expected error response")
	}
	if resp.Error.Code != -32000 {
		t.Errorf("Error code: got %d, want -32000", resp.Error.Code)
	}
}

func TestHandleToolsCall_ImageLoad(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 100, 80, color.RGBA{255, 0, 0, 255})
	defer os.Remove(imgPath)

	var info struct {
		Width       int    `json:"width"`
		Height      int    `json:"height"`
		ColorFamily string `json:"color_family"`
		Planes      int    `json:"planes"`
		Range       string `json:"range"`
	}
	decodeToolResult(t, callTool(t, s, "image_load", map[string]interface{}{"path": imgPath}), &info)

	if info.Width != 100 || info.Height != 80 {
		t.Errorf("size: got %dx%d, want 100x80", info.Width, info.Height)
	}
	if info.ColorFamily != "rgb" || info.Planes != 3 {
		t.Errorf("layout: got %s/%d, want rgb/3", info.ColorFamily, info.Planes)
	}
	if info.Range != "full" {
		t.Errorf("Range: got %s, want full", info.Range)
	}
}

func TestHandleToolsCall_ImagePlaneStats(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 20, 10, color.RGBA{255, 0, 51, 255})
	defer os.Remove(imgPath)

	var result planeStatsResult
	decodeToolResult(t, callTool(t, s, "image_plane_stats", map[string]interface{}{"path": imgPath}), &result)

	if len(result.Planes) != 3 {
		t.Fatalf("got %d planes, want 3", len(result.Planes))
	}
	if got := result.Planes[0].Stats; got.Mean != 255 || got.Min != 255 || got.Max != 255 {
		t.Errorf("red stats: got %+v, want all 255", got)
	}
	if got := result.Planes[2].Stats.Mean; got != 51 {
		t.Errorf("blue mean: got %v, want 51", got)
	}
	if result.Planes[1].Width != 20 || result.Planes[1].Height != 10 {
		t.Errorf("plane size: got %dx%d, want 20x10", result.Planes[1].Width, result.Planes[1].Height)
	}
}

func TestHandleToolsCall_ImagePlaneStats_Normalized(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 8, 8, color.RGBA{255, 0, 51, 255})
	defer os.Remove(imgPath)

	var result planeStatsResult
	decodeToolResult(t, callTool(t, s, "image_plane_stats", map[string]interface{}{
		"path":       imgPath,
		"normalized": true,
	}), &result)

	if !result.Normalized {
		t.Error("Normalized should be echoed")
	}
	if got := result.Planes[0].Stats.Mean; got != 1 {
		t.Errorf("normalized red mean: got %v, want 1", got)
	}
	if got := result.Planes[1].Stats.Max; got != 0 {
		t.Errorf("normalized green max: got %v, want 0", got)
	}
}

func TestHandleToolsCall_ImagePlaneStats_InvalidRange(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 8, 8, color.RGBA{1, 2, 3, 255})
	defer os.Remove(imgPath)

	expectToolError(t, callTool(t, s, "image_plane_stats", map[string]interface{}{
		"path":  imgPath,
		"range": "studio",
	}))
}

func TestHandleToolsCall_GuidedFilter_Defaults(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 64, 64, color.RGBA{128, 64, 32, 255})
	defer os.Remove(imgPath)

	var result guidedFilterResult
	decodeToolResult(t, callTool(t, s, "image_guided_filter", map[string]interface{}{
		"path":    imgPath,
		"compare": true,
	}), &result)

	if result.Width != 64 || result.Height != 64 {
		t.Errorf("size: got %dx%d, want 64x64", result.Width, result.Height)
	}
	p := result.Params
	if len(p.Radius) != 3 || p.Radius[0] != 12 {
		t.Errorf("default radius: got %v, want [12 12 12]", p.Radius)
	}
	if p.Mode != "gradient" {
		t.Errorf("default mode: got %s, want gradient", p.Mode)
	}
	if p.Range != "full" {
		t.Errorf("range: got %s, want full", p.Range)
	}
	threshold := guided.DefaultThreshold
	if len(p.Regulation) != 3 || p.Regulation[0] != float32(threshold/220) {
		t.Errorf("default regulation: got %v", p.Regulation)
	}
	if len(p.Planes) != 3 {
		t.Errorf("processed planes: got %v, want all three", p.Planes)
	}
	if p.Downscaler != "point" || p.Upscaler != "bilinear" {
		t.Errorf("scalers: got %s/%s, want point/bilinear", p.Downscaler, p.Upscaler)
	}
	if p.Guided {
		t.Error("self-guided call reported a guidance image")
	}
	if result.Image == nil || result.Image.MimeType != "image/png" {
		t.Fatal("inline PNG expected when no output path is given")
	}

	// A constant image stays constant
	if len(result.Difference) != 3 {
		t.Fatalf("difference: got %d planes, want 3", len(result.Difference))
	}
	for _, d := range result.Difference {
		if d.MaxAbsDiff > 1 {
			t.Errorf("plane %d changed by %v on a constant image", d.Plane, d.MaxAbsDiff)
		}
	}
}

func TestHandleToolsCall_GuidedFilter_ScalarAndListParameters(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 32, 32, color.RGBA{10, 20, 30, 255})
	defer os.Remove(imgPath)

	var result guidedFilterResult
	decodeToolResult(t, callTool(t, s, "image_guided_filter", map[string]interface{}{
		"path":       imgPath,
		"radius":     2,
		"regulation": []float64{0.01, 0.02},
		"planes":     0,
		"mode":       "weighted",
		"use_gauss":  true,
		"down_ratio": 2,
		"downscaler": "bilinear",
		"upscaler":   "bicubic",
	}), &result)

	p := result.Params
	if len(p.Radius) != 3 || p.Radius[0] != 2 || p.Radius[2] != 2 {
		t.Errorf("radius: got %v, want [2 2 2]", p.Radius)
	}
	if len(p.Regulation) != 3 || p.Regulation[0] != 0.01 || p.Regulation[2] != 0.02 {
		t.Errorf("regulation: got %v, want [0.01 0.02 0.02]", p.Regulation)
	}
	if len(p.Planes) != 1 || p.Planes[0] != 0 {
		t.Errorf("planes: got %v, want [0]", p.Planes)
	}
	if p.Mode != "weighted" || !p.UseGauss || p.DownRatio != 2 {
		t.Errorf("params not echoed: %+v", p)
	}
	if p.Downscaler != "bilinear" || p.Upscaler != "bicubic" {
		t.Errorf("scalers: got %s/%s", p.Downscaler, p.Upscaler)
	}
}

func TestHandleToolsCall_GuidedFilter_OutputPath(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 40, 30, color.RGBA{200, 100, 50, 255})
	defer os.Remove(imgPath)
	outPath := filepath.Join(t.TempDir(), "filtered.png")

	var result guidedFilterResult
	decodeToolResult(t, callTool(t, s, "image_guided_filter", map[string]interface{}{
		"path":        imgPath,
		"output_path": outPath,
		"mode":        "original",
	}), &result)

	if result.OutputPath != outPath {
		t.Errorf("OutputPath: got %s, want %s", result.OutputPath, outPath)
	}
	if result.Image != nil {
		t.Error("inline image should be omitted when saving to a file")
	}

	var info struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	}
	decodeToolResult(t, callTool(t, s, "image_load", map[string]interface{}{"path": outPath}), &info)
	if info.Width != 40 || info.Height != 30 {
		t.Errorf("saved size: got %dx%d, want 40x30", info.Width, info.Height)
	}
}

func TestHandleToolsCall_GuidedFilter_Preview(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 64, 48, color.RGBA{90, 90, 90, 255})
	defer os.Remove(imgPath)

	var result guidedFilterResult
	decodeToolResult(t, callTool(t, s, "image_guided_filter", map[string]interface{}{
		"path":           imgPath,
		"radius":         3,
		"preview_region": "top-left",
		"preview_scale":  2.0,
	}), &result)

	if result.Preview == nil {
		t.Fatal("preview expected")
	}
	if result.Preview.Width != 64 || result.Preview.Height != 48 {
		t.Errorf("preview size: got %dx%d, want 64x48", result.Preview.Width, result.Preview.Height)
	}
	if result.Image != nil {
		t.Error("full image should be omitted when a preview is requested")
	}
}

func TestHandleToolsCall_GuidedFilter_Guidance(t *testing.T) {
	s := New()
	srcPath := createStepImageFile(t, 32, 16, 100, 100)
	defer os.Remove(srcPath)
	guidePath := createStepImageFile(t, 32, 16, 0, 255)
	defer os.Remove(guidePath)

	var result guidedFilterResult
	decodeToolResult(t, callTool(t, s, "image_guided_filter", map[string]interface{}{
		"path":          srcPath,
		"guidance_path": guidePath,
		"radius":        2,
		"mode":          "original",
		"compare":       true,
	}), &result)

	if !result.Params.Guided {
		t.Error("Guided should be reported")
	}
	// A flat input stays flat whatever the guide looks like
	if result.Difference[0].MaxAbsDiff > 1 {
		t.Errorf("flat input changed by %v", result.Difference[0].MaxAbsDiff)
	}
}

func TestHandleToolsCall_GuidedFilter_Errors(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 16, 16, color.RGBA{1, 2, 3, 255})
	defer os.Remove(imgPath)
	otherPath := createTestImageFile(t, 8, 8, color.RGBA{1, 2, 3, 255})
	defer os.Remove(otherPath)

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"missing file", map[string]interface{}{"path": "/nonexistent/image.png"}},
		{"unknown mode", map[string]interface{}{"path": imgPath, "mode": "sharp"}},
		{"threshold too large", map[string]interface{}{"path": imgPath, "threshold": 2.0}},
		{"negative regulation", map[string]interface{}{"path": imgPath, "regulation": -1}},
		{"negative radius", map[string]interface{}{"path": imgPath, "radius": -1}},
		{"plane out of range", map[string]interface{}{"path": imgPath, "planes": []int{3}}},
		{"down ratio one", map[string]interface{}{"path": imgPath, "down_ratio": 1}},
		{"unknown range", map[string]interface{}{"path": imgPath, "range": "studio"}},
		{"unknown downscaler", map[string]interface{}{"path": imgPath, "downscaler": "sinc"}},
		{"unknown upscaler", map[string]interface{}{"path": imgPath, "upscaler": "sinc"}},
		{"guidance size mismatch", map[string]interface{}{"path": imgPath, "guidance_path": otherPath}},
		{"missing guidance", map[string]interface{}{"path": imgPath, "guidance_path": "/nonexistent/guide.png"}},
		{"unknown preview region", map[string]interface{}{"path": imgPath, "preview_region": "middle"}},
		{"radius wrong type", map[string]interface{}{"path": imgPath, "radius": "big"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectToolError(t, callTool(t, s, "image_guided_filter", tt.args))
		})
	}
}

func TestHandleToolsCall_GuidedFilter_Cancelled(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 32, 32, color.RGBA{1, 2, 3, 255})
	defer os.Remove(imgPath)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	args, _ := json.Marshal(map[string]interface{}{"path": imgPath})
	if _, err := s.executeTool(ctx, "image_guided_filter", args); err == nil {
		t.Error("cancelled filter call should fail")
	}
}

func TestHandleToolsCall_ImagePreview(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 100, 60, color.RGBA{0, 0, 255, 255})
	defer os.Remove(imgPath)

	var preview struct {
		Width    int    `json:"width"`
		Height   int    `json:"height"`
		MimeType string `json:"mime_type"`
	}
	decodeToolResult(t, callTool(t, s, "image_preview", map[string]interface{}{
		"path":   imgPath,
		"region": "right-half",
	}), &preview)
	if preview.Width != 50 || preview.Height != 60 {
		t.Errorf("named region: got %dx%d, want 50x60", preview.Width, preview.Height)
	}

	decodeToolResult(t, callTool(t, s, "image_preview", map[string]interface{}{
		"path":   imgPath,
		"bounds": map[string]interface{}{"x1": 10, "y1": 10, "x2": 30, "y2": 20},
		"scale":  3.0,
	}), &preview)
	if preview.Width != 60 || preview.Height != 30 {
		t.Errorf("explicit bounds: got %dx%d, want 60x30", preview.Width, preview.Height)
	}
	if preview.MimeType != "image/png" {
		t.Errorf("MimeType: got %s, want image/png", preview.MimeType)
	}

	expectToolError(t, callTool(t, s, "image_preview", map[string]interface{}{
		"path":   imgPath,
		"bounds": map[string]interface{}{"x1": 0, "y1": 0, "x2": 200, "y2": 20},
	}))
}

func TestHandleToolsCall_ImageCompare(t *testing.T) {
	s := New()
	aPath := createTestImageFile(t, 10, 10, color.RGBA{100, 100, 100, 255})
	defer os.Remove(aPath)
	bPath := createTestImageFile(t, 10, 10, color.RGBA{100, 104, 100, 255})
	defer os.Remove(bPath)

	var result compareResult
	decodeToolResult(t, callTool(t, s, "image_compare", map[string]interface{}{
		"path_a": aPath,
		"path_b": bPath,
	}), &result)

	if len(result.Planes) != 3 {
		t.Fatalf("got %d planes, want 3", len(result.Planes))
	}
	if result.Planes[0].MaxAbsDiff != 0 || result.Planes[2].MaxAbsDiff != 0 {
		t.Errorf("red/blue should be identical: %+v", result.Planes)
	}
	if g := result.Planes[1]; g.MaxAbsDiff != 4 || g.SamplesChanged != 100 {
		t.Errorf("green: got %+v, want max 4 over 100 changed samples", g)
	}

	smallPath := createTestImageFile(t, 5, 5, color.RGBA{0, 0, 0, 255})
	defer os.Remove(smallPath)
	expectToolError(t, callTool(t, s, "image_compare", map[string]interface{}{
		"path_a": aPath,
		"path_b": smallPath,
	}))
}

func TestHandleToolsCall_UnknownTool(t *testing.T) {
	s := New()
	resp := callTool(t, s, "image_sharpen", map[string]interface{}{})
	expectToolError(t, resp)
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := New()
	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  json.RawMessage(`{"name": 42}`),
	}

	resp := s.handleToolsCall(context.Background(), req)
	if resp.Error == nil {
		t.Fatal("Expected error for invalid params")
	}
	if resp.Error.Code != -32602 {
		t.Errorf("Error code: got %d, want -32602", resp.Error.Code)
	}
}

func TestIntList_Unmarshal(t *testing.T) {
	tests := []struct {
		json string
		want []int
		ok   bool
	}{
		{`5`, []int{5}, true},
		{` [1, 2, 3] `, []int{1, 2, 3}, true},
		{`[]`, []int{}, true},
		{`null`, nil, true},
		{`"x"`, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.json, func(t *testing.T) {
			var l intList
			err := json.Unmarshal([]byte(tt.json), &l)
			if (err == nil) != tt.ok {
				t.Fatalf("error: got %v, want ok=%v", err, tt.ok)
			}
			if !tt.ok {
				return
			}
			if (l == nil) != (tt.want == nil) {
				t.Fatalf("got %#v, want %#v", l, tt.want)
			}
			if len(l) != len(tt.want) {
				t.Fatalf("got %v, want %v", l, tt.want)
			}
			for i := range l {
				if l[i] != tt.want[i] {
					t.Errorf("got %v, want %v", l, tt.want)
				}
			}
		})
	}
}

func TestFloatList_Unmarshal(t *testing.T) {
	var l floatList
	if err := json.Unmarshal([]byte(`0.25`), &l); err != nil {
		t.Fatalf("scalar: %v", err)
	}
	if len(l) != 1 || l[0] != 0.25 {
		t.Errorf("scalar: got %v, want [0.25]", l)
	}

	if err := json.Unmarshal([]byte(`[0.1, 0.2]`), &l); err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(l) != 2 || l[1] != 0.2 {
		t.Errorf("list: got %v, want [0.1 0.2]", l)
	}

	if err := json.Unmarshal([]byte(`true`), &l); err == nil {
		t.Error("boolean should be rejected")
	}

	if err := json.Unmarshal([]byte(`null`), &l); err != nil {
		t.Fatalf("null: %v", err)
	}
	if l != nil {
		t.Errorf("null: got %v, want unset", l)
	}
}

func TestHandleToolsCall_GuidedFilter_NullMeansDefault(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 64, 64, color.RGBA{128, 64, 32, 255})
	defer os.Remove(imgPath)

	var result guidedFilterResult
	decodeToolResult(t, callTool(t, s, "image_guided_filter", map[string]interface{}{
		"path":       imgPath,
		"radius":     nil,
		"threshold":  nil,
		"regulation": nil,
		"planes":     nil,
	}), &result)

	p := result.Params
	if len(p.Radius) != 3 || p.Radius[0] != 12 {
		t.Errorf("radius: got %v, want default [12 12 12]", p.Radius)
	}
	threshold := guided.DefaultThreshold
	if len(p.Regulation) != 3 || p.Regulation[0] != float32(threshold/220) {
		t.Errorf("regulation: got %v, want the default threshold", p.Regulation)
	}
	if len(p.Planes) != 3 {
		t.Errorf("processed planes: got %v, want all three", p.Planes)
	}
}
