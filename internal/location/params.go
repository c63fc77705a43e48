package location

import (
	"fmt"
	"math"
)

// Params are the tunable knobs of the localizer. All distances are in
// pixels and all intensities are on the 0-255 scale.
type Params struct {
	MinLedArea          int `yaml:"minLedArea"`          // minimum area of an LED specular highlight
	MaxLedArea          int `yaml:"maxLedArea"`          // maximum area of an LED specular highlight
	MinLedIntensity     int `yaml:"minLedIntensity"`     // minimum pixel intensity of an LED point
	LedDilation         int `yaml:"ledDilation"`         // kernel size merging neighbouring LED blobs
	MinLedNeighbourhood int `yaml:"minLedNeighbourhood"` // distance from an LED within which boundary points are ignored
	EyelashThickness    int `yaml:"eyelashThickness"`    // width of the horizontal closing that removes eyelashes

	MinPupilRadius        int `yaml:"minPupilRadius"`
	MaxPupilRadius        int `yaml:"maxPupilRadius"`
	MaxPupilIntensity     int `yaml:"maxPupilIntensity"`     // brightest pixel that can be pupil
	MinPupilContourLength int `yaml:"minPupilContourLength"` // shorter edge contours don't vote
	WalkCrossingRadius    int `yaml:"walkCrossingRadius"`    // a vote walk stops at another edge pixel beyond this radius

	MinAnnulusThickness int `yaml:"minAnnulusThickness"` // minimum gap between pupil and limbus
	MinLimbusRadius     int `yaml:"minLimbusRadius"`
	MaxLimbusRadius     int `yaml:"maxLimbusRadius"`

	GradientSigma       float64 `yaml:"gradientSigma"`       // blur applied before computing gradients
	MinBoundaryGradient float64 `yaml:"minBoundaryGradient"` // minimum gradient magnitude of a pupil edge pixel
	AngleTolerance      float64 `yaml:"angleTolerance"`      // cosine of the largest gradient/normal angle at a boundary point
}

// DefaultParams returns parameters tuned for NIR iris images around
// 640x480.
func DefaultParams() Params {
	return Params{
		MinLedArea:          10,
		MaxLedArea:          3000,
		MinLedIntensity:     230,
		LedDilation:         10,
		MinLedNeighbourhood: 20,
		EyelashThickness:    8,

		MinPupilRadius:        11,
		MaxPupilRadius:        100,
		MaxPupilIntensity:     35,
		MinPupilContourLength: 13,
		WalkCrossingRadius:    1,

		MinAnnulusThickness: 36,
		MinLimbusRadius:     86,
		MaxLimbusRadius:     200,

		GradientSigma:       2.4,
		MinBoundaryGradient: 4.1,
		AngleTolerance:      math.Cos(math.Pi / 10),
	}
}

// Validate checks that p describes a usable configuration.
func (p Params) Validate() error {
	positive := []struct {
		name string
		v    int
	}{
		{"ledDilation", p.LedDilation},
		{"minLedNeighbourhood", p.MinLedNeighbourhood},
		{"eyelashThickness", p.EyelashThickness},
		{"minPupilRadius", p.MinPupilRadius},
		{"minLimbusRadius", p.MinLimbusRadius},
	}
	for _, f := range positive {
		if f.v <= 0 {
			return fmt.Errorf("%s must be positive, got %d", f.name, f.v)
		}
	}

	switch {
	case p.MinLedArea < 0 || p.MaxLedArea < p.MinLedArea:
		return fmt.Errorf("bad LED area range [%d, %d]", p.MinLedArea, p.MaxLedArea)
	case p.MaxPupilRadius <= p.MinPupilRadius:
		return fmt.Errorf("bad pupil radius range [%d, %d)", p.MinPupilRadius, p.MaxPupilRadius)
	case p.MaxLimbusRadius < p.MinLimbusRadius:
		return fmt.Errorf("bad limbus radius range [%d, %d]", p.MinLimbusRadius, p.MaxLimbusRadius)
	case p.MinAnnulusThickness < 0:
		return fmt.Errorf("minAnnulusThickness must not be negative, got %d", p.MinAnnulusThickness)
	case p.WalkCrossingRadius < 0:
		return fmt.Errorf("walkCrossingRadius must not be negative, got %d", p.WalkCrossingRadius)
	case p.GradientSigma <= 0:
		return fmt.Errorf("gradientSigma must be positive, got %v", p.GradientSigma)
	case p.AngleTolerance < -1 || p.AngleTolerance > 1:
		return fmt.Errorf("angleTolerance is a cosine, got %v", p.AngleTolerance)
	}
	return nil
}
