package tryon

import "strings"

// GarmentType selects the sizing and positioning rule for a garment.
type GarmentType string

const (
	TShirt GarmentType = "tshirt"
	Hoodie GarmentType = "hoodie"
	Jacket GarmentType = "jacket"
	Dress  GarmentType = "dress"
	Pants  GarmentType = "pants"
)

// DefaultGarmentType is used for empty or unrecognised labels.
const DefaultGarmentType = TShirt

// GarmentTypes lists the recognised garment types.
var GarmentTypes = []GarmentType{TShirt, Hoodie, Jacket, Dress, Pants}

// ParseGarmentType resolves a user supplied label. Matching ignores case and
// surrounding whitespace; anything unrecognised resolves to the default.
func ParseGarmentType(s string) GarmentType {
	t := GarmentType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := rules[t]; ok {
		return t
	}
	return DefaultGarmentType
}

func (t GarmentType) String() string {
	return string(t)
}
