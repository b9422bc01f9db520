// Command migrate estimates the transform for a map migration project and
// optionally realigns its marker file onto the new image.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"

	"map-migrate/internal/alignment"
	"map-migrate/internal/marker"
	"map-migrate/internal/project"
	"map-migrate/internal/version"
	"map-migrate/pkg/geometry"
)

func main() {
	projectPath := flag.String("p", "", "Path to .mapmig project file")
	pairsPath := flag.String("pairs", "", "Path to a JSON array of {source,target} point pairs (alternative to -p)")
	markersPath := flag.String("markers", "", "Path to marker file (overrides the project's marker path)")
	outPath := flag.String("o", "", "Path for realigned marker output")
	apply := flag.Bool("apply", false, "Realign the marker file and write the output")
	width := flag.Float64("width", 0, "Target image width in pixels (when using -pairs)")
	height := flag.Float64("height", 0, "Target image height in pixels (when using -pairs)")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("migrate %s (built %s, commit %s)\n", version.Version, version.BuildTime, version.GitCommit)
		return
	}

	if *projectPath == "" && *pairsPath == "" {
		fmt.Println("Usage: migrate -p <project.mapmig> [-apply -o <out.json>]")
		fmt.Println("       migrate -pairs <pairs.json> -width <w> -height <h> [-markers <in.json> -apply -o <out.json>]")
		os.Exit(1)
	}

	var proj *project.File
	var pairs []project.ReferencePair
	targetSize := geometry.Size{Width: *width, Height: *height}

	if *projectPath != "" {
		var err error
		proj, err = project.Load(*projectPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load project: %v\n", err)
			os.Exit(1)
		}
		pairs = proj.Pairs
		targetSize = proj.TargetSize
		fmt.Printf("=== Project: %s (%d reference pairs) ===\n", proj.Name, len(pairs))
	} else {
		data, err := os.ReadFile(*pairsPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read pairs: %v\n", err)
			os.Exit(1)
		}
		if err := json.Unmarshal(data, &pairs); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to parse pairs: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("=== %d reference pairs from %s ===\n", len(pairs), *pairsPath)
	}

	src := make([]geometry.Point2D, len(pairs))
	dst := make([]geometry.Point2D, len(pairs))
	for i, pair := range pairs {
		src[i] = pair.Source
		dst[i] = pair.Target
	}

	// Input quality
	fmt.Printf("\n=== Point distribution ===\n")
	dist := alignment.ValidatePointDistribution(src)
	if dist.Warning != "" {
		fmt.Printf("Warning: %s\n", dist.Warning)
	}
	fmt.Printf("Spread ratio: %.3f (valid=%v)\n", dist.AreaRatio, dist.Valid)

	if targetSize.Width > 0 && targetSize.Height > 0 {
		suggestions := alignment.SuggestAdditionalPoints(dst, targetSize)
		if len(suggestions) > 0 && (dist.Warning != "" || len(pairs) < 4) {
			fmt.Println("Suggested additional points:")
			for _, s := range suggestions {
				fmt.Printf("  (%.0f, %.0f) - %s\n", s.Point.X, s.Point.Y, s.Reason)
			}
		}
	}

	// Estimation
	fmt.Printf("\n=== Transform ===\n")
	result, err := alignment.ComputeAffineTransform(src, dst)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Estimation failed: %v\n", err)
		os.Exit(1)
	}
	if result.Degenerate {
		fmt.Fprintf(os.Stderr, "Reference points are degenerate (determinant %g); add non-collinear points\n", result.Determinant)
		os.Exit(1)
	}

	report := alignment.DetectAnomalies(result.Transform, alignment.DefaultOptions())
	rmse := alignment.RMSE(src, dst, result.Transform)

	fmt.Printf("Rotation: %.4f°\n", report.RotationDeg)
	fmt.Printf("Scale: %.6f x %.6f\n", report.ScaleX, report.ScaleY)
	fmt.Printf("Shear: %.4f\n", report.Shear)
	fmt.Printf("Translation: (%.1f, %.1f)\n", result.Transform.TX, result.Transform.TY)
	fmt.Printf("RMSE: %.2f px\n", rmse)

	if report.Reflected {
		fmt.Println("Warning: transform mirrors the map; a reference point is probably mis-picked")
	}
	if report.ExtremeScale {
		fmt.Printf("Warning: extreme scale change (%.2f x %.2f)\n", report.ScaleX, report.ScaleY)
	}
	if report.ExtremeShear {
		fmt.Printf("Warning: extreme shear (%.2f); the point sets may not match\n", report.Shear)
	}

	printResiduals(src, dst, result.Transform)

	if !*apply {
		return
	}

	// Realignment
	inPath := *markersPath
	if inPath == "" && proj != nil {
		inPath = proj.GetMarkersPath(*projectPath)
	}
	if inPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "Realignment requires a marker file and -o output path")
		os.Exit(1)
	}

	markers, err := marker.Load(inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load markers: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\n=== Realigning %d markers ===\n", len(markers))
	moved := marker.Realign(markers, result.Transform)
	if targetSize.Width > 0 && targetSize.Height > 0 {
		if clamped := marker.ClampToBounds(moved, targetSize); clamped > 0 {
			fmt.Printf("Clamped %d markers to the target image bounds\n", clamped)
		}
	}

	if err := marker.Save(*outPath, moved); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to save markers: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", *outPath)

	if proj != nil {
		proj.Aligned = true
		proj.AlignmentError = rmse
		proj.Transform = &result.Transform
		if err := proj.Save(*projectPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to update project: %v\n", err)
			os.Exit(1)
		}
	}
}

func printResiduals(src, dst []geometry.Point2D, t geometry.AffineTransform) {
	if len(src) == 0 {
		return
	}
	fmt.Printf("\nPer-point residuals:\n")
	for i := range src {
		mapped := t.Apply(src[i])
		dx := dst[i].X - mapped.X
		dy := dst[i].Y - mapped.Y
		fmt.Printf("  #%d (%.0f, %.0f) -> (%.0f, %.0f)  err=%.2f px\n",
			i, src[i].X, src[i].Y, dst[i].X, dst[i].Y, math.Sqrt(dx*dx+dy*dy))
	}
}
