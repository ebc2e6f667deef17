package fault

import (
	"math"
	"strconv"
	"strings"
)

// MachineParameters describes the generator at the instant of the fault.
// Reactances are per-unit on the machine base, time constants in seconds.
type MachineParameters struct {
	ApparentPower float64 `json:"apparent_power_va"`
	Voltage       float64 `json:"voltage_v"`
	VoltageOffset float64 `json:"voltage_offset_pu"`
	Frequency     float64 `json:"frequency_hz"`
	XSubtransient float64 `json:"x_subtransient_pu"`
	XTransient    float64 `json:"x_transient_pu"`
	XSynchronous  float64 `json:"x_synchronous_pu"`
	TSubtransient float64 `json:"t_subtransient_s"`
	TTransient    float64 `json:"t_transient_s"`
	TArmature     float64 `json:"t_armature_s"`
}

// Field identifies one of the ten textual inputs. The value doubles as the
// command line flag name.
type Field string

const (
	FieldApparentPower Field = "apparent-power"
	FieldVoltage       Field = "voltage"
	FieldVoltageOffset Field = "voltage-offset-pct"
	FieldFrequency     Field = "frequency"
	FieldXSubtransient Field = "x-subtransient"
	FieldXTransient    Field = "x-transient"
	FieldXSynchronous  Field = "x-synchronous"
	FieldTSubtransient Field = "t-subtransient"
	FieldTTransient    Field = "t-transient"
	FieldTArmature     Field = "t-armature"
)

type FieldSpec struct {
	Name     Field
	Usage    string
	Prompt   string
	Positive bool
}

// Fields lists the inputs in prompting order.
var Fields = []FieldSpec{
	{FieldApparentPower, "apparent power base S in VA", "Please enter the apparent power S in VA: ", true},
	{FieldVoltage, "rms line voltage Ug in V", "Please enter the rms voltage in volt: ", true},
	{FieldVoltageOffset, "operating voltage offset, 0.05 for 5% above rated", "Please enter the generator operating voltage offset compared to the rated voltage (0.05 = +5%): ", false},
	{FieldFrequency, "frequency in Hz", "Please enter the working frequency in hertz: ", true},
	{FieldXSubtransient, "subtransient reactance X''d in p.u.", "Please enter the subtransient reactance in p.u: ", true},
	{FieldXTransient, "transient reactance X'd in p.u.", "Please enter the transient reactance in p.u: ", true},
	{FieldXSynchronous, "synchronous reactance Xd in p.u.", "Please enter the synchronous reactance in p.u: ", true},
	{FieldTSubtransient, "subtransient time constant T''d in s", "Please enter the subtransient time constant in second: ", true},
	{FieldTTransient, "transient time constant T'd in s", "Please enter the transient time constant in second: ", true},
	{FieldTArmature, "armature time constant Ta in s", "Please enter the armature time constant in second: ", true},
}

// ParseParameters turns raw text into a validated MachineParameters. The
// first failing field is reported and nothing is constructed.
func ParseParameters(raw map[Field]string) (MachineParameters, error) {
	var p MachineParameters
	for _, spec := range Fields {
		text, ok := raw[spec.Name]
		if !ok || strings.TrimSpace(text) == "" {
			return MachineParameters{}, &ValidationError{Field: string(spec.Name), Reason: "value is required"}
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return MachineParameters{}, &ValidationError{Field: string(spec.Name), Value: text, Reason: "not a number"}
		}
		*p.field(spec.Name) = v
	}
	if err := p.Validate(); err != nil {
		return MachineParameters{}, err
	}
	return p, nil
}

func (p *MachineParameters) field(name Field) *float64 {
	switch name {
	case FieldApparentPower:
		return &p.ApparentPower
	case FieldVoltage:
		return &p.Voltage
	case FieldVoltageOffset:
		return &p.VoltageOffset
	case FieldFrequency:
		return &p.Frequency
	case FieldXSubtransient:
		return &p.XSubtransient
	case FieldXTransient:
		return &p.XTransient
	case FieldXSynchronous:
		return &p.XSynchronous
	case FieldTSubtransient:
		return &p.TSubtransient
	case FieldTTransient:
		return &p.TTransient
	case FieldTArmature:
		return &p.TArmature
	}
	return nil
}

// Value returns the parameter stored under name.
func (p MachineParameters) Value(name Field) float64 {
	if f := p.field(name); f != nil {
		return *f
	}
	return math.NaN()
}

// Validate checks finiteness of every input and positivity where the physics
// requires it. It does not check the reactance ordering, see CheckOrdering.
func (p MachineParameters) Validate() error {
	for _, spec := range Fields {
		v := p.Value(spec.Name)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &ValidationError{Field: string(spec.Name), Value: strconv.FormatFloat(v, 'g', -1, 64), Reason: "must be finite"}
		}
		if spec.Positive && v <= 0 {
			return &ValidationError{Field: string(spec.Name), Value: strconv.FormatFloat(v, 'g', -1, 64), Reason: "must be positive"}
		}
	}
	return nil
}

// CheckOrdering enforces X''d < X'd < Xd. Violating it still yields finite
// numbers, just not a physical machine.
func (p MachineParameters) CheckOrdering() error {
	if !(p.XSubtransient < p.XTransient) {
		return &ValidationError{Field: string(FieldXSubtransient), Reason: "subtransient reactance must be below the transient reactance"}
	}
	if !(p.XTransient < p.XSynchronous) {
		return &ValidationError{Field: string(FieldXTransient), Reason: "transient reactance must be below the synchronous reactance"}
	}
	return nil
}
