// Package sweep provides the reference IV-sweep procedure used in the
// documentation and as an end-to-end fixture for the results pipeline.
package sweep

import (
	"benchcore/pkg/procedure"
)

// Identity is the identifier IVSweep headers are stored under.
var Identity = procedure.Identity{Module: "benchcore.plugins.sweep", Class: "IVSweep"}

// IVSweep ramps a voltage source and records the measured current.
type IVSweep struct {
	procedure.Base

	MaxVoltage *procedure.FloatParameter
	Steps      *procedure.IntegerParameter
	Delay      *procedure.FloatParameter
	Bidirect   *procedure.BoolParameter
	Notes      *procedure.StringParameter
}

// New returns an IVSweep with its defaults applied.
func New() *IVSweep {
	p := &IVSweep{
		Base:       procedure.NewBase(),
		MaxVoltage: procedure.NewFloat("Maximum Voltage", "V", 1.0),
		Steps:      procedure.NewInteger("Voltage Steps", "", 50),
		Delay:      procedure.NewFloat("Delay Time", "s", 0.1),
		Bidirect:   procedure.NewBool("Bidirectional", false),
		Notes:      procedure.NewString("Notes", ""),
	}
	params := p.Parameters()
	params.MustAdd(p.MaxVoltage)
	params.MustAdd(p.Steps)
	params.MustAdd(p.Delay)
	params.MustAdd(p.Bidirect)
	params.MustAdd(p.Notes)
	return p
}

// Identity reports the stable identifier independent of the Go package path.
func (*IVSweep) Identity() procedure.Identity { return Identity }

// DataColumns lists the measurement columns in acquisition order.
func (*IVSweep) DataColumns() []string {
	return []string{"Voltage (V)", "Current (A)"}
}

// Register adds the sweep factory to reg under its stable identity.
func Register(reg *procedure.Registry) error {
	return reg.Register(Identity.String(), func() procedure.Procedure { return New() })
}
