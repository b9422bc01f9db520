// Package project provides migration project file handling and persistence.
package project

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"map-migrate/pkg/geometry"
)

// ReferencePair links a point on the old map image to the same physical
// feature on the replacement image. Both sides are pixel coordinates.
type ReferencePair struct {
	Source geometry.Point2D `json:"source"`
	Target geometry.Point2D `json:"target"`
}

// File represents a map migration project file (.mapmig).
type File struct {
	Version     int       `json:"version"`
	Name        string    `json:"name"`
	Created     time.Time `json:"created"`
	Modified    time.Time `json:"modified"`
	Description string    `json:"description,omitempty"`

	// Image extents in pixels
	SourceSize geometry.Size `json:"source_size"`
	TargetSize geometry.Size `json:"target_size"`

	// User-picked correspondences
	Pairs []ReferencePair `json:"pairs,omitempty"`

	// Alignment state from the last estimation
	Aligned        bool                      `json:"aligned"`
	AlignmentError float64                   `json:"alignment_error,omitempty"`
	Transform      *geometry.AffineTransform `json:"transform,omitempty"`

	// Marker file path (relative to project file)
	MarkersPath string `json:"markers,omitempty"`
}

// New creates a new project file.
func New(name string) *File {
	now := time.Now()
	return &File{
		Version:  1,
		Name:     name,
		Created:  now,
		Modified: now,
	}
}

// Load loads a project from a .mapmig file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var proj File
	if err := json.Unmarshal(data, &proj); err != nil {
		return nil, err
	}

	return &proj, nil
}

// Save saves the project to a file.
func (p *File) Save(path string) error {
	p.Modified = time.Now()

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// SourcePoints returns the source side of every pair, in pair order.
func (p *File) SourcePoints() []geometry.Point2D {
	pts := make([]geometry.Point2D, len(p.Pairs))
	for i, pair := range p.Pairs {
		pts[i] = pair.Source
	}
	return pts
}

// TargetPoints returns the target side of every pair, in pair order.
func (p *File) TargetPoints() []geometry.Point2D {
	pts := make([]geometry.Point2D, len(p.Pairs))
	for i, pair := range p.Pairs {
		pts[i] = pair.Target
	}
	return pts
}

// SetMarkersPath sets the marker file path (relative to project).
func (p *File) SetMarkersPath(projectPath, markersPath string) {
	rel, err := filepath.Rel(filepath.Dir(projectPath), markersPath)
	if err != nil {
		p.MarkersPath = markersPath
	} else {
		p.MarkersPath = rel
	}
	p.Modified = time.Now()
}

// GetMarkersPath returns the absolute path to the marker file.
func (p *File) GetMarkersPath(projectPath string) string {
	if p.MarkersPath == "" {
		return ""
	}
	if filepath.IsAbs(p.MarkersPath) {
		return p.MarkersPath
	}
	return filepath.Join(filepath.Dir(projectPath), p.MarkersPath)
}
