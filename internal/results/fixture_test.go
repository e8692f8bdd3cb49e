package results

import (
	"benchcore/pkg/procedure"
)

// sweepProc is the fixture procedure the persistence tests run against.
type sweepProc struct {
	procedure.Base

	maxV  *procedure.FloatParameter
	iters *procedure.IntegerParameter
}

var sweepIdentity = procedure.Identity{Module: "tests.fixtures", Class: "Sweep"}

func newSweepProc() *sweepProc {
	p := &sweepProc{
		Base:  procedure.NewBase(),
		maxV:  procedure.NewFloat("Maximum Voltage", "V", 1.0),
		iters: procedure.NewInteger("Iterations", "", 10),
	}
	p.Parameters().MustAdd(p.maxV)
	p.Parameters().MustAdd(p.iters)
	return p
}

func (*sweepProc) Identity() procedure.Identity { return sweepIdentity }

func (*sweepProc) DataColumns() []string {
	return []string{"Voltage (V)", "Current (A)"}
}

func newSweepRegistry() *procedure.Registry {
	reg := procedure.NewRegistry()
	reg.MustRegister(sweepIdentity.String(), func() procedure.Procedure { return newSweepProc() })
	return reg
}
