package server

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/fashun/virtual-tryon/internal/imaging"
	"github.com/fashun/virtual-tryon/internal/landmarks"
	"github.com/fashun/virtual-tryon/internal/tryon"
)

// DefaultPaletteCount is used when tryon_garment_palette gets no count.
const DefaultPaletteCount = 5

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "tryon_composite").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments jsoniter.RawMessage `json:"arguments"`
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
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.logger.Info("tool call failed", zap.String("tool", params.Name), zap.Error(err))
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

func (s *Server) executeTool(name string, args jsoniter.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = jsoniter.RawMessage("{}")
	}

	switch name {
	case ToolDetectPose:
		return s.handleDetectPose(args)
	case ToolComposite:
		return s.handleComposite(args)
	case ToolAnnotate:
		return s.handleAnnotate(args)
	case ToolGarmentPalette:
		return s.handleGarmentPalette(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

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

func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

var errPathRequired = errors.New("path is required")

// === Pose ===

type pathArgs struct {
	Path string `json:"path"`
}

type detectPoseResult struct {
	Width     int           `json:"width"`
	Height    int           `json:"height"`
	Landmarks landmarks.Set `json:"landmarks"`
}

func (s *Server) handleDetectPose(args jsoniter.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errPathRequired
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	return &detectPoseResult{
		Width:     b.Dx(),
		Height:    b.Dy(),
		Landmarks: s.pipeline.Landmarks(img),
	}, nil
}

// === Composite ===

type compositeArgs struct {
	PersonPath  string `json:"person_path"`
	GarmentPath string `json:"garment_path"`
	GarmentType string `json:"garment_type"`
	OutputPath  string `json:"output_path"`
}

type compositeResult struct {
	Outcome     tryon.Outcome         `json:"outcome"`
	GarmentType tryon.GarmentType     `json:"garment_type"`
	Placement   tryon.Placement       `json:"placement"`
	Landmarks   landmarks.Set         `json:"landmarks"`
	Error       string                `json:"error,omitempty"`
	OutputPath  string                `json:"output_path,omitempty"`
	Image       *imaging.EncodedImage `json:"image,omitempty"`
}

// handleComposite reads both files as raw bytes so a broken garment file
// degrades the same way an upload does over HTTP.
func (s *Server) handleComposite(args jsoniter.RawMessage) (interface{}, error) {
	var a compositeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.PersonPath == "" || a.GarmentPath == "" {
		return nil, errors.New("person_path and garment_path are required")
	}

	person, err := os.ReadFile(a.PersonPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read person image: %w", err)
	}
	garment, err := os.ReadFile(a.GarmentPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read garment image: %w", err)
	}

	out, err := s.pipeline.TryOn(person, garment, a.GarmentType)
	if err != nil {
		return nil, err
	}

	result := &compositeResult{
		Outcome:     out.Outcome,
		GarmentType: out.GarmentType,
		Placement:   out.Placement,
		Landmarks:   out.Landmarks,
	}
	if out.Err != nil {
		result.Error = out.Err.Error()
	}

	if a.OutputPath != "" {
		if err := os.WriteFile(a.OutputPath, out.PNG, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write result: %w", err)
		}
		result.OutputPath = a.OutputPath
		return result, nil
	}

	result.Image = &imaging.EncodedImage{
		Width:       out.Width,
		Height:      out.Height,
		ImageBase64: base64.StdEncoding.EncodeToString(out.PNG),
		MimeType:    imaging.PNGMimeType,
	}
	return result, nil
}

// === Annotate ===

type annotateArgs struct {
	Path        string `json:"path"`
	GarmentType string `json:"garment_type"`
	MarkerColor string `json:"marker_color"`
	BoxColor    string `json:"box_color"`
}

type annotateResult struct {
	*imaging.EncodedImage
	Placement tryon.Placement  `json:"placement"`
	Source    landmarks.Source `json:"source"`
}

func (s *Server) handleAnnotate(args jsoniter.RawMessage) (interface{}, error) {
	var a annotateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errPathRequired
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	set, placement := s.pipeline.Plan(img, a.GarmentType)

	markers := make([]imaging.Marker, 0, len(landmarks.All))
	for _, l := range landmarks.All {
		p := set.Point(l)
		markers = append(markers, imaging.Marker{X: p.X, Y: p.Y, Label: string(l)})
	}

	annotated := imaging.Annotate(img, imaging.Annotation{
		Markers:     markers,
		Box:         placement.Rect(),
		Outline:     set.Region,
		MarkerColor: a.MarkerColor,
		BoxColor:    a.BoxColor,
	})

	encoded, err := imaging.EncodeBase64PNG(annotated)
	if err != nil {
		return nil, err
	}
	return &annotateResult{
		EncodedImage: encoded,
		Placement:    placement,
		Source:       set.Source,
	}, nil
}

// === Palette ===

type paletteArgs struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
}

func (s *Server) handleGarmentPalette(args jsoniter.RawMessage) (interface{}, error) {
	var a paletteArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errPathRequired
	}
	if a.Count <= 0 {
		a.Count = DefaultPaletteCount
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.Palette(img, a.Count), nil
}
