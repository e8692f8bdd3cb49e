package procedure

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"benchcore/pkg/quantity"
)

// Parameter is a single named, typed experiment parameter. String returns
// the serialized form stored in result-file headers and Set parses that
// form back, so Set(String()) must round-trip for every implementation.
type Parameter interface {
	Name() string
	Value() any
	String() string
	Set(raw string) error
}

// FloatParameter holds a floating-point value with an optional unit. Values
// applied as text may carry any compatible unit and are converted.
type FloatParameter struct {
	name  string
	units string
	value float64
}

// NewFloat constructs a float parameter. units may be empty for a bare
// number.
func NewFloat(name, units string, value float64) *FloatParameter {
	return &FloatParameter{name: name, units: units, value: value}
}

func (p *FloatParameter) Name() string   { return p.name }
func (p *FloatParameter) Units() string  { return p.units }
func (p *FloatParameter) Value() any     { return p.value }
func (p *FloatParameter) Float() float64 { return p.value }

func (p *FloatParameter) String() string {
	s := quantity.FormatFloat(p.value)
	if p.units != "" {
		s += " " + p.units
	}
	return s
}

// Set parses raw as a quantity. A dimensionless value is taken at face
// value; a unit-bearing value is converted into the parameter's unit.
func (p *FloatParameter) Set(raw string) error {
	q, err := quantity.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("parameter %s: %w", p.name, err)
	}
	if q.Dimensionless() || p.units == "" {
		p.value = q.Value
		return nil
	}
	target, err := quantity.ParseUnit(p.units)
	if err != nil {
		return fmt.Errorf("parameter %s: %w", p.name, err)
	}
	v, err := q.ConvertTo(target)
	if err != nil {
		return fmt.Errorf("parameter %s: %w", p.name, err)
	}
	p.value = v
	return nil
}

// IntegerParameter holds an integer value with an optional unit suffix.
type IntegerParameter struct {
	name  string
	units string
	value int
}

func NewInteger(name, units string, value int) *IntegerParameter {
	return &IntegerParameter{name: name, units: units, value: value}
}

func (p *IntegerParameter) Name() string { return p.name }
func (p *IntegerParameter) Value() any   { return p.value }
func (p *IntegerParameter) Int() int     { return p.value }

func (p *IntegerParameter) String() string {
	s := strconv.Itoa(p.value)
	if p.units != "" {
		s += " " + p.units
	}
	return s
}

func (p *IntegerParameter) Set(raw string) error {
	raw = strings.TrimSpace(raw)
	if p.units != "" {
		raw = strings.TrimSuffix(raw, " "+p.units)
	}
	if n, err := strconv.Atoi(raw); err == nil {
		p.value = n
		return nil
	}
	q, err := quantity.Parse(raw)
	if err != nil {
		return fmt.Errorf("parameter %s: %w", p.name, err)
	}
	if !q.Dimensionless() {
		return fmt.Errorf("parameter %s: value %q is not an integer", p.name, raw)
	}
	if q.Value != math.Trunc(q.Value) {
		return fmt.Errorf("parameter %s: value %q is not an integer", p.name, raw)
	}
	p.value = int(q.Value)
	return nil
}

// BoolParameter holds a true/false flag.
type BoolParameter struct {
	name  string
	value bool
}

func NewBool(name string, value bool) *BoolParameter {
	return &BoolParameter{name: name, value: value}
}

func (p *BoolParameter) Name() string { return p.name }
func (p *BoolParameter) Value() any   { return p.value }
func (p *BoolParameter) Bool() bool   { return p.value }

func (p *BoolParameter) String() string {
	return strconv.FormatBool(p.value)
}

func (p *BoolParameter) Set(raw string) error {
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("parameter %s: %w", p.name, err)
	}
	p.value = v
	return nil
}

// StringParameter holds free text, stored verbatim.
type StringParameter struct {
	name  string
	value string
}

func NewString(name, value string) *StringParameter {
	return &StringParameter{name: name, value: value}
}

func (p *StringParameter) Name() string   { return p.name }
func (p *StringParameter) Value() any     { return p.value }
func (p *StringParameter) Text() string   { return p.value }
func (p *StringParameter) String() string { return p.value }

func (p *StringParameter) Set(raw string) error {
	p.value = raw
	return nil
}

// UnknownParameterError reports an applied name absent from the declared
// parameter set.
type UnknownParameterError struct {
	Name string
}

func (e *UnknownParameterError) Error() string {
	return fmt.Sprintf("procedure: unknown parameter %q", e.Name)
}

// ParameterSet is a named, ordered collection of parameters. Iteration
// order is declaration order, which fixes the order of header lines.
type ParameterSet struct {
	names  []string
	byName map[string]Parameter
}

// NewParameterSet constructs an empty set.
func NewParameterSet() *ParameterSet {
	return &ParameterSet{byName: make(map[string]Parameter)}
}

// Add appends a parameter; duplicate names are rejected.
func (s *ParameterSet) Add(p Parameter) error {
	if p == nil || p.Name() == "" {
		return fmt.Errorf("procedure: parameter must have a name")
	}
	if _, exists := s.byName[p.Name()]; exists {
		return fmt.Errorf("procedure: parameter %q already declared", p.Name())
	}
	s.names = append(s.names, p.Name())
	s.byName[p.Name()] = p
	return nil
}

// MustAdd is Add for declaration sites where a duplicate is a programming
// error.
func (s *ParameterSet) MustAdd(p Parameter) {
	if err := s.Add(p); err != nil {
		panic(err)
	}
}

// Get returns the parameter with the given display name.
func (s *ParameterSet) Get(name string) (Parameter, bool) {
	p, ok := s.byName[name]
	return p, ok
}

// Names returns the parameter names in declaration order.
func (s *ParameterSet) Names() []string {
	return append([]string(nil), s.names...)
}

// Len returns the number of declared parameters.
func (s *ParameterSet) Len() int { return len(s.names) }

// Apply sets the named parameter from its serialized form. A name outside
// the declared set yields *UnknownParameterError.
func (s *ParameterSet) Apply(name, raw string) error {
	p, ok := s.byName[name]
	if !ok {
		return &UnknownParameterError{Name: name}
	}
	return p.Set(raw)
}

// Each calls fn for every parameter in declaration order.
func (s *ParameterSet) Each(fn func(Parameter)) {
	for _, name := range s.names {
		fn(s.byName[name])
	}
}
