// Package marker provides the marker model and JSON persistence, plus the
// realignment step that moves every marker from the old map image onto the
// new one.
//
// Marker positions are always pixel coordinates in the image they belong to.
// Importers working with normalized [0,1] coordinates must multiply by the
// image size before constructing markers; nothing downstream converts.
package marker

import (
	"encoding/json"
	"fmt"
	"os"

	"map-migrate/internal/alignment"
	"map-migrate/pkg/geometry"
)

// Marker is a named point of interest on a map image.
type Marker struct {
	ID       string           `json:"id"`
	Label    string           `json:"label,omitempty"`
	Position geometry.Point2D `json:"position"`
}

// File is the on-disk marker set format.
type File struct {
	Version int      `json:"version"`
	Markers []Marker `json:"markers"`
}

const fileVersion = 1

// Load reads a marker set from a JSON file.
func Load(path string) ([]Marker, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse marker file %s: %w", path, err)
	}
	return f.Markers, nil
}

// Save writes a marker set to a JSON file.
func Save(path string, markers []Marker) error {
	data, err := json.MarshalIndent(File{Version: fileVersion, Markers: markers}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Realign maps every marker position through the transform, returning a new
// slice in the same order. IDs and labels are carried over unchanged.
func Realign(markers []Marker, t geometry.AffineTransform) []Marker {
	positions := make([]geometry.Point2D, len(markers))
	for i, m := range markers {
		positions[i] = m.Position
	}
	moved := alignment.BatchApply(positions, t)

	out := make([]Marker, len(markers))
	for i, m := range markers {
		out[i] = Marker{ID: m.ID, Label: m.Label, Position: moved[i]}
	}
	return out
}

// ClampToBounds clamps marker positions into [0,width]x[0,height] in place
// and returns how many markers were moved. Markers land out of bounds when
// they sit on a part of the old map the new image does not cover.
func ClampToBounds(markers []Marker, bounds geometry.Size) int {
	clamped := 0
	for i := range markers {
		p := markers[i].Position
		q := p
		if q.X < 0 {
			q.X = 0
		} else if q.X > bounds.Width {
			q.X = bounds.Width
		}
		if q.Y < 0 {
			q.Y = 0
		} else if q.Y > bounds.Height {
			q.Y = bounds.Height
		}
		if q != p {
			markers[i].Position = q
			clamped++
		}
	}
	return clamped
}
