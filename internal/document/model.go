package document

import (
	"github.com/lumabench/lumabench/backend-go/internal/optics"
)

// BenchDocument is the persisted scene format: one optical bench with its
// placed components and light sources. It round-trips losslessly through
// JSON; every physically meaningful parameter lives in the component
// blueprints.
type BenchDocument struct {
	Project    Project                     `json:"project"`
	Bench      Bench                       `json:"bench"`
	Components map[string]optics.Blueprint `json:"components"`
	Sources    map[string]Source           `json:"sources"`
}

type Project struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Version   int    `json:"version"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// Bench is the canvas the components sit on.
type Bench struct {
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Background string `json:"background"`
}

// Source is a light emitter. A nil PolarizationAngle emits unpolarized light;
// splitting components treat the ray accordingly.
type Source struct {
	ID                string   `json:"id"`
	Label             string   `json:"label"`
	X                 float64  `json:"x"`
	Y                 float64  `json:"y"`
	Angle             float64  `json:"angle"` // emission direction, radians
	WavelengthNm      float64  `json:"wavelengthNm"`
	Intensity         float64  `json:"intensity"`
	PolarizationAngle *float64 `json:"polarizationAngle"`
}

// NewEmptyDocument creates an empty bench for a new project.
func NewEmptyDocument(projectID, projectName string) *BenchDocument {
	return &BenchDocument{
		Project: Project{
			ID:      projectID,
			Name:    projectName,
			Version: 1,
		},
		Bench: Bench{
			Width:      1280,
			Height:     720,
			Background: "#10101a",
		},
		Components: map[string]optics.Blueprint{},
		Sources:    map[string]Source{},
	}
}
