package disk

import (
	"errors"
	"fmt"

	"github.com/ojrac/opensimplex-go"
	"github.com/san-kum/wobbles/internal/phasespace"
)

var ErrBadParams = errors.New("disk: invalid model parameters")

// Fields bundles everything the df constructors consume from upstream.
type Fields struct {
	J      phasespace.Field
	Nu     phasespace.Field
	Domain phasespace.Domain
}

type Source interface {
	Fields() (Fields, error)
}

// Harmonic is a disk in the potential Phi(z) = nu² z² / 2, where the
// vertical action is J = E / nu. A perturbation is imposed by evaluating J
// at a displaced, rescaled phase-space point:
//
//	z' = (z - ZShift) * (1 + Breathing),  v' = v - VShift
//
// Noise multiplies J by 1 + Noise * simplex(z/NoiseScale, v/NoiseScale).
type Harmonic struct {
	Nu         float64
	ZShift     float64
	VShift     float64
	Breathing  float64
	Noise      float64
	NoiseScale float64
	Seed       int64
	Grid       phasespace.Grid
}

func NewHarmonic(grid phasespace.Grid) *Harmonic {
	return &Harmonic{
		Nu:         1.0,
		NoiseScale: 0.1,
		Grid:       grid,
	}
}

func (h *Harmonic) Validate() error {
	switch {
	case !(h.Nu > 0):
		return fmt.Errorf("%w: nu must be positive, got %v", ErrBadParams, h.Nu)
	case h.Breathing <= -1:
		return fmt.Errorf("%w: breathing must exceed -1, got %v", ErrBadParams, h.Breathing)
	case h.Noise < 0 || h.Noise >= 1:
		return fmt.Errorf("%w: noise must be in [0, 1), got %v", ErrBadParams, h.Noise)
	case h.Noise > 0 && !(h.NoiseScale > 0):
		return fmt.Errorf("%w: noise scale must be positive, got %v", ErrBadParams, h.NoiseScale)
	}
	return nil
}

// Action is the unperturbed harmonic action at (z, v), J = E / nu.
func (h *Harmonic) Action(z, v float64) float64 {
	return h.Energy(z, v) / h.Nu
}

func (h *Harmonic) Fields() (Fields, error) {
	if err := h.Validate(); err != nil {
		return Fields{}, err
	}
	dom := h.Grid.Domain()
	if err := dom.Validate(); err != nil {
		return Fields{}, err
	}

	var noise opensimplex.Noise
	if h.Noise > 0 {
		noise = opensimplex.New(h.Seed)
	}

	j := phasespace.NewField(len(dom.Z), len(dom.V))
	stretch := 1 + h.Breathing
	phasespace.ParallelRows(len(dom.Z), 16, func(start, end int) {
		for i := start; i < end; i++ {
			z := dom.Z[i]
			zp := (z - h.ZShift) * stretch
			for k, v := range dom.V {
				act := h.Action(zp, v-h.VShift)
				if noise != nil {
					act *= 1 + h.Noise*noise.Eval2(z/h.NoiseScale, v/h.NoiseScale)
				}
				j.Set(i, k, act)
			}
		}
	})

	return Fields{J: j, Nu: phasespace.Uniform(1, 1, h.Nu), Domain: dom}, nil
}

// Energy is the vertical energy of the unperturbed orbit.
func (h *Harmonic) Energy(z, v float64) float64 {
	return (v*v + h.Nu*h.Nu*z*z) / 2
}

func (h *Harmonic) GetParams() map[string]float64 {
	return map[string]float64{
		"nu":          h.Nu,
		"z_shift":     h.ZShift,
		"v_shift":     h.VShift,
		"breathing":   h.Breathing,
		"noise":       h.Noise,
		"noise_scale": h.NoiseScale,
	}
}

func (h *Harmonic) SetParam(name string, value float64) error {
	switch name {
	case "nu":
		h.Nu = value
	case "z_shift":
		h.ZShift = value
	case "v_shift":
		h.VShift = value
	case "breathing":
		h.Breathing = value
	case "noise":
		h.Noise = value
	case "noise_scale":
		h.NoiseScale = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
