package fault

import (
	"iter"
	"math"
)

const (
	ComponentInstantaneous = "instantaneous asymmetrical current"
	ComponentRMS           = "rms asymmetrical current"
	ComponentAC            = "rms ac current"
	ComponentDC            = "dc offset current"
)

// Series holds the four fault current components in amperes, index-aligned
// with Time.
type Series struct {
	Time                      []float64 `json:"time_s"`
	InstantaneousAsymmetrical []float64 `json:"instantaneous_asymmetrical_a"`
	RMSAsymmetrical           []float64 `json:"rms_asymmetrical_a"`
	RMSAC                     []float64 `json:"rms_ac_a"`
	DCOffset                  []float64 `json:"dc_offset_a"`
}

func (s Series) Len() int { return len(s.Time) }

type Sample struct {
	Time                      float64 `json:"time_s"`
	InstantaneousAsymmetrical float64 `json:"instantaneous_asymmetrical_a"`
	RMSAsymmetrical           float64 `json:"rms_asymmetrical_a"`
	RMSAC                     float64 `json:"rms_ac_a"`
	DCOffset                  float64 `json:"dc_offset_a"`
}

// model carries the quantities derived once per call.
type model struct {
	p     MachineParameters
	omega float64
	ibase float64
	eg    float64
}

func newModel(p MachineParameters) (model, error) {
	for _, d := range []struct {
		name string
		val  float64
	}{
		{"voltage", p.Voltage},
		{"subtransient reactance", p.XSubtransient},
		{"transient reactance", p.XTransient},
		{"synchronous reactance", p.XSynchronous},
		{"subtransient time constant", p.TSubtransient},
		{"transient time constant", p.TTransient},
		{"armature time constant", p.TArmature},
	} {
		if d.val == 0 {
			return model{}, zeroDivisor(d.name)
		}
	}
	return model{
		p:     p,
		omega: 2 * math.Pi * p.Frequency,
		ibase: p.ApparentPower / (math.Sqrt(3) * p.Voltage),
		eg:    1 + p.VoltageOffset,
	}, nil
}

// envelope is the per-unit admittance seen by the AC component at t.
func (m model) envelope(t float64) float64 {
	p := m.p
	return (1/p.XSubtransient-1/p.XTransient)*math.Exp(-t/p.TSubtransient) +
		(1/p.XTransient-1/p.XSynchronous)*math.Exp(-t/p.TTransient) +
		1/p.XSynchronous
}

func (m model) at(i int, t float64) (Sample, error) {
	env := m.envelope(t)
	decay := math.Exp(-t / m.p.TArmature)
	ac := m.ibase * m.eg * env
	dc := m.ibase * math.Sqrt2 * (m.eg / m.p.XSubtransient) * decay
	s := Sample{
		Time:                      t,
		InstantaneousAsymmetrical: m.ibase * (math.Sqrt2*m.eg*env*math.Cos(m.omega*t) - math.Sqrt2*m.eg*decay),
		RMSAC:                     ac,
		DCOffset:                  dc,
		RMSAsymmetrical:           math.Sqrt(ac*ac + dc*dc),
	}
	for _, c := range []struct {
		name string
		val  float64
	}{
		{ComponentInstantaneous, s.InstantaneousAsymmetrical},
		{ComponentRMS, s.RMSAsymmetrical},
		{ComponentAC, s.RMSAC},
		{ComponentDC, s.DCOffset},
	} {
		if math.IsNaN(c.val) || math.IsInf(c.val, 0) {
			return Sample{}, &DomainError{Index: i, Time: t, Component: c.name}
		}
	}
	return s, nil
}

// Calculate evaluates the bolted three-phase fault current of p on every
// instant of grid. Parameters are used as given: physically meaningless
// inputs produce physically meaningless but finite series. A zero divisor or
// a non-finite sample fails the whole call.
func Calculate(p MachineParameters, grid TimeGrid) (Series, error) {
	if err := grid.Validate(); err != nil {
		return Series{}, err
	}
	m, err := newModel(p)
	if err != nil {
		return Series{}, err
	}
	n := grid.Len()
	s := Series{
		Time:                      make([]float64, n),
		InstantaneousAsymmetrical: make([]float64, n),
		RMSAsymmetrical:           make([]float64, n),
		RMSAC:                     make([]float64, n),
		DCOffset:                  make([]float64, n),
	}
	for i := 0; i < n; i++ {
		smp, err := m.at(i, grid.At(i))
		if err != nil {
			return Series{}, err
		}
		s.Time[i] = smp.Time
		s.InstantaneousAsymmetrical[i] = smp.InstantaneousAsymmetrical
		s.RMSAsymmetrical[i] = smp.RMSAsymmetrical
		s.RMSAC[i] = smp.RMSAC
		s.DCOffset[i] = smp.DCOffset
	}
	return s, nil
}

// Samples yields the same values as Calculate one instant at a time. The
// sequence can be ranged over repeatedly; it stops early at the first
// non-finite sample, which is reported through errp when non-nil.
func Samples(p MachineParameters, grid TimeGrid, errp *error) (iter.Seq2[int, Sample], error) {
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	m, err := newModel(p)
	if err != nil {
		return nil, err
	}
	n := grid.Len()
	return func(yield func(int, Sample) bool) {
		for i := 0; i < n; i++ {
			smp, err := m.at(i, grid.At(i))
			if err != nil {
				if errp != nil {
					*errp = err
				}
				return
			}
			if !yield(i, smp) {
				return
			}
		}
	}, nil
}

// Summary condenses a Series into the figures usually quoted for breaker
// and protection sizing.
type Summary struct {
	BaseCurrent         float64 `json:"base_current_a"`
	EMF                 float64 `json:"emf_pu"`
	InitialSymmetrical  float64 `json:"initial_symmetrical_a"`
	TransientCurrent    float64 `json:"transient_a"`
	SteadyStateCurrent  float64 `json:"steady_state_a"`
	InitialAsymmetrical float64 `json:"initial_asymmetrical_rms_a"`
	PeakInstantaneous   float64 `json:"peak_instantaneous_a"`
	PeakTime            float64 `json:"peak_time_s"`
	Samples             int     `json:"samples"`
}

func Summarize(p MachineParameters, s Series) Summary {
	ibase := p.ApparentPower / (math.Sqrt(3) * p.Voltage)
	eg := 1 + p.VoltageOffset
	sum := Summary{
		BaseCurrent:        ibase,
		EMF:                eg,
		InitialSymmetrical: ibase * eg / p.XSubtransient,
		TransientCurrent:   ibase * eg / p.XTransient,
		SteadyStateCurrent: ibase * eg / p.XSynchronous,
		Samples:            s.Len(),
	}
	if s.Len() == 0 {
		return sum
	}
	sum.InitialAsymmetrical = s.RMSAsymmetrical[0]
	for i, v := range s.InstantaneousAsymmetrical {
		if math.Abs(v) > math.Abs(sum.PeakInstantaneous) {
			sum.PeakInstantaneous = v
			sum.PeakTime = s.Time[i]
		}
	}
	return sum
}
