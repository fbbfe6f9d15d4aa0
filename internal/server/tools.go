package server

import (
	"strings"

	"github.com/fashun/virtual-tryon/internal/tryon"
)

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// Tool names as advertised by tools/list.
const (
	ToolDetectPose     = "tryon_detect_pose"
	ToolComposite      = "tryon_composite"
	ToolAnnotate       = "tryon_annotate"
	ToolGarmentPalette = "tryon_garment_palette"
)

func pathProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

func garmentTypeProperty() map[string]interface{} {
	names := make([]string, 0, len(tryon.GarmentTypes))
	for _, t := range tryon.GarmentTypes {
		names = append(names, t.String())
	}
	return map[string]interface{}{
		"type":        "string",
		"enum":        names,
		"default":     tryon.DefaultGarmentType.String(),
		"description": "Garment category (" + strings.Join(names, ", ") + "). Unknown values are treated as " + tryon.DefaultGarmentType.String() + ".",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        ToolDetectPose,
			Description: "Estimate body landmarks (shoulders, hips, knees, ankles, wrists, neck, head) of a person photo. Falls back to fixed proportions when no silhouette is found.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the person image"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        ToolComposite,
			Description: "Blend a garment image onto a person photo. Returns the outcome, the garment placement and the result as base64 PNG, or writes the PNG to output_path.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"person_path":  pathProperty("Absolute path to the person image"),
					"garment_path": pathProperty("Absolute path to the garment image"),
					"garment_type": garmentTypeProperty(),
					"output_path":  pathProperty("Optional path to write the PNG result to instead of returning it inline"),
				},
				"required": []string{"person_path", "garment_path"},
			},
		},
		{
			Name:        ToolAnnotate,
			Description: "Draw the estimated landmarks, silhouette bounds and garment placement on a person photo. Returns base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":         pathProperty("Absolute path to the person image"),
					"garment_type": garmentTypeProperty(),
					"marker_color": map[string]interface{}{
						"type":        "string",
						"description": "Landmark marker color as #RRGGBB (default red)",
					},
					"box_color": map[string]interface{}{
						"type":        "string",
						"description": "Placement box color as #RRGGBB (default green)",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        ToolGarmentPalette,
			Description: "Extract the dominant colors of a garment image with hex, RGB, HSL and percentage.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the garment image"),
					"count": map[string]interface{}{
						"type":        "integer",
						"description": "Number of colors to return (default 5)",
						"default":     5,
					},
				},
				"required": []string{"path"},
			},
		},
	}
}
