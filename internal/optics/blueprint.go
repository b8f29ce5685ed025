package optics

import (
	"fmt"
	"math"

	"github.com/lumabench/lumabench/backend-go/internal/geom"
)

// Blueprint is the serialized form of a component: placement plus the same
// named parameters the property inspector edits. It is the unit stored in
// bench documents and sent over the collaboration protocol.
type Blueprint struct {
	ID     string             `json:"id"`
	Type   Kind               `json:"type"`
	Label  string             `json:"label"`
	X      float64            `json:"x"`
	Y      float64            `json:"y"`
	Angle  float64            `json:"angle"` // radians
	Params map[string]float64 `json:"params"`
}

func (bp Blueprint) param(name string, def float64) float64 {
	if v, ok := bp.Params[name]; ok {
		return v
	}
	return def
}

// FromBlueprint builds a live component. Out-of-range parameters are clamped
// by the constructors; an unknown type is the only error.
func FromBlueprint(bp Blueprint) (Component, error) {
	pos := geom.NewVec2(bp.X, bp.Y)

	switch bp.Type {
	case KindMirror:
		return NewMirror(bp.ID, bp.Label, pos, bp.Angle,
			bp.param("length", 60), bp.param("reflectivity", 1)), nil
	case KindBeamSplitter:
		return NewBeamSplitter(bp.ID, bp.Label, pos, bp.Angle,
			bp.param("length", 60), bp.param("splitRatio", 0.5)), nil
	case KindPBS:
		return NewPolarizingBeamSplitter(bp.ID, bp.Label, pos, bp.Angle,
			bp.param("width", 40), bp.param("height", 40), bp.param("reflectivity", 0.5)), nil
	case KindFaradayRotator:
		return NewFaradayRotator(bp.ID, bp.Label, pos, bp.Angle,
			bp.param("width", 60), bp.param("height", 30), bp.param("rotationAngle", math.Pi/4)), nil
	case KindPolarizer:
		return NewPolarizer(bp.ID, bp.Label, pos, bp.Angle,
			bp.param("length", 60), bp.param("transmissionAxis", 0)), nil
	case KindWaveplate:
		return NewWaveplate(bp.ID, bp.Label, pos, bp.Angle,
			bp.param("length", 60), bp.param("fastAxis", 0), bp.param("retardance", math.Pi)), nil
	case KindLens:
		return NewLens(bp.ID, bp.Label, pos, bp.Angle,
			bp.param("length", 60), bp.param("focalLength", 100)), nil
	case KindAperture:
		return NewAperture(bp.ID, bp.Label, pos, bp.Angle,
			bp.param("length", 60), bp.param("slitWidth", 20)), nil
	case KindDetector:
		return NewDetector(bp.ID, bp.Label, pos, bp.Angle,
			bp.param("length", 60)), nil
	default:
		return nil, fmt.Errorf("unknown component type %q", bp.Type)
	}
}

// ToBlueprint captures a component's current placement and parameters. The
// parameter map is rebuilt from the component's property schema so the two
// never drift apart.
func ToBlueprint(c Component) Blueprint {
	params := make(map[string]float64)
	for _, p := range c.Properties() {
		params[p.Name] = p.Value
	}

	pos := c.Position()
	return Blueprint{
		ID:     c.ID(),
		Type:   c.Kind(),
		Label:  c.Label(),
		X:      pos.X,
		Y:      pos.Y,
		Angle:  c.Angle(),
		Params: params,
	}
}
