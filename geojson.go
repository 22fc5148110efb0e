package descarteslabs

import "encoding/json"

// Place is one candidate result from Find.
type Place struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Placetype string    `json:"placetype"`
	Slug      string    `json:"slug"`
	BBox      []float64 `json:"bbox,omitempty"`
}

// FeatureProperties describe the place a Feature represents.
type FeatureProperties struct {
	Name      string `json:"name"`
	ParentID  int64  `json:"parent_id"`
	Path      string `json:"path"`
	Placetype string `json:"placetype"`
	Slug      string `json:"slug"`
}

// Feature is a GeoJSON Feature. The geometry is kept raw so callers can
// decode it with their geometry library of choice.
type Feature struct {
	Type       string            `json:"type"`
	ID         int64             `json:"id,omitempty"`
	BBox       []float64         `json:"bbox,omitempty"`
	Geometry   json.RawMessage   `json:"geometry"`
	Properties FeatureProperties `json:"properties"`
}

// FeatureCollection is a GeoJSON or TopoJSON feature collection.
type FeatureCollection struct {
	Type     string    `json:"type"`
	BBox     []float64 `json:"bbox,omitempty"`
	Features []Feature `json:"features"`
}
