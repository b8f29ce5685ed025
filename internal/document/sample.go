package document

import (
	"math"
	"time"

	"github.com/lumabench/lumabench/backend-go/internal/optics"
	"github.com/lumabench/lumabench/backend-go/internal/typeid"
)

// NewSampleDocument builds the demo bench shown in the playground: a laser
// passes a polarizer into a 50/50 beam splitter; the reflected arm runs down
// through a Faraday rotator onto a detector, the transmitted arm bounces off
// a mirror back into the splitter and up onto a second detector.
func NewSampleDocument(projectID, name string) *BenchDocument {
	now := time.Now().UTC().Format(time.RFC3339)

	laserID := typeid.NewSourceID()
	polarizerID := typeid.NewComponentID()
	splitterID := typeid.NewComponentID()
	rotatorID := typeid.NewComponentID()
	mirrorID := typeid.NewComponentID()
	detectorDownID := typeid.NewComponentID()
	detectorUpID := typeid.NewComponentID()

	horizontal := 0.0

	return &BenchDocument{
		Project: Project{
			ID:        projectID,
			Name:      name,
			Version:   1,
			CreatedAt: now,
			UpdatedAt: now,
		},
		Bench: Bench{
			Width:      1280,
			Height:     720,
			Background: "#10101a",
		},
		Sources: map[string]Source{
			laserID: {
				ID:                laserID,
				Label:             "HeNe laser",
				X:                 160,
				Y:                 360,
				Angle:             0,
				WavelengthNm:      633,
				Intensity:         1.0,
				PolarizationAngle: &horizontal,
			},
		},
		Components: map[string]optics.Blueprint{
			polarizerID: {
				ID: polarizerID, Type: optics.KindPolarizer, Label: "Polarizer",
				X: 320, Y: 360, Angle: math.Pi / 2,
				Params: map[string]float64{"length": 60, "transmissionAxis": 0},
			},
			splitterID: {
				ID: splitterID, Type: optics.KindBeamSplitter, Label: "50/50 splitter",
				X: 560, Y: 360, Angle: math.Pi / 4,
				Params: map[string]float64{"length": 70, "splitRatio": 0.5},
			},
			rotatorID: {
				ID: rotatorID, Type: optics.KindFaradayRotator, Label: "Faraday rotator",
				X: 560, Y: 490, Angle: math.Pi / 2,
				Params: map[string]float64{"width": 70, "height": 36, "rotationAngle": math.Pi / 4},
			},
			mirrorID: {
				ID: mirrorID, Type: optics.KindMirror, Label: "Mirror",
				X: 960, Y: 360, Angle: math.Pi / 2,
				Params: map[string]float64{"length": 60, "reflectivity": 1},
			},
			detectorDownID: {
				ID: detectorDownID, Type: optics.KindDetector, Label: "Detector A",
				X: 560, Y: 640, Angle: 0,
				Params: map[string]float64{"length": 60},
			},
			detectorUpID: {
				ID: detectorUpID, Type: optics.KindDetector, Label: "Detector B",
				X: 560, Y: 120, Angle: 0,
				Params: map[string]float64{"length": 60},
			},
		},
	}
}
