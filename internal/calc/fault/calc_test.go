package fault

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 500 MVA, 20 kV, 60 Hz machine running 5% above rated voltage.
func exampleMachine() MachineParameters {
	return MachineParameters{
		ApparentPower: 5e8,
		Voltage:       2e4,
		VoltageOffset: 0.05,
		Frequency:     60,
		XSubtransient: 0.15,
		XTransient:    0.24,
		XSynchronous:  1.1,
		TSubtransient: 0.035,
		TTransient:    2,
		TArmature:     0.2,
	}
}

func TestCalculateLengths(t *testing.T) {
	s, err := Calculate(exampleMachine(), DefaultTimeGrid())
	require.NoError(t, err)

	assert.Equal(t, 301, s.Len())
	assert.Len(t, s.InstantaneousAsymmetrical, 301)
	assert.Len(t, s.RMSAsymmetrical, 301)
	assert.Len(t, s.RMSAC, 301)
	assert.Len(t, s.DCOffset, 301)
	assert.InDelta(t, 3.0, s.Time[300], 1e-12)
}

func TestCalculateDeterministic(t *testing.T) {
	a, err := Calculate(exampleMachine(), DefaultTimeGrid())
	require.NoError(t, err)
	b, err := Calculate(exampleMachine(), DefaultTimeGrid())
	require.NoError(t, err)
	assert.Equal(t, a, b)

	// fresh slices every call
	a.RMSAC[0] = -1
	assert.NotEqual(t, a.RMSAC[0], b.RMSAC[0])
}

func TestCalculateWorkedExample(t *testing.T) {
	p := exampleMachine()
	s, err := Calculate(p, DefaultTimeGrid())
	require.NoError(t, err)

	ibase := 5e8 / (math.Sqrt(3) * 2e4)
	assert.InEpsilon(t, 14433.76, ibase, 1e-6)

	assert.InEpsilon(t, ibase*1.05/0.15, s.RMSAC[0], 1e-12)
	assert.InEpsilon(t, ibase*math.Sqrt2*1.05/0.15, s.DCOffset[0], 1e-12)
	assert.InEpsilon(t, ibase*1.05/0.15*math.Sqrt(3), s.RMSAsymmetrical[0], 1e-12)

	assert.InEpsilon(t, 101036.0, s.RMSAC[0], 1e-3)
	assert.InEpsilon(t, 142911.0, s.DCOffset[0], 1e-3)
	assert.InEpsilon(t, 175067.0, s.RMSAsymmetrical[0], 1e-3)

	// cos(0) = 1: the ac peak minus the unscaled dc term
	assert.InEpsilon(t, ibase*math.Sqrt2*1.05*(1/0.15-1), s.InstantaneousAsymmetrical[0], 1e-12)
}

func TestCalculateDecay(t *testing.T) {
	s, err := Calculate(exampleMachine(), DefaultTimeGrid())
	require.NoError(t, err)

	for i := 1; i < s.Len(); i++ {
		assert.LessOrEqual(t, s.RMSAC[i], s.RMSAC[i-1], "ac rms rose at sample %d", i)
		assert.Less(t, s.DCOffset[i], s.DCOffset[i-1], "dc offset did not fall at sample %d", i)
		assert.GreaterOrEqual(t, s.RMSAsymmetrical[i], 0.0)
	}
}

func TestCalculateSteadyState(t *testing.T) {
	p := exampleMachine()
	end := 100 * math.Max(p.TSubtransient, math.Max(p.TTransient, p.TArmature))
	grid, err := NewTimeGrid(end, end, 1)
	require.NoError(t, err)

	s, err := Calculate(p, grid)
	require.NoError(t, err)
	require.Equal(t, 1, s.Len())

	ibase := p.ApparentPower / (math.Sqrt(3) * p.Voltage)
	assert.InEpsilon(t, ibase*1.05/p.XSynchronous, s.RMSAC[0], 1e-9)
	assert.InDelta(t, 0, s.DCOffset[0], 1e-9)
}

func TestCalculateNoOrderingCheck(t *testing.T) {
	p := exampleMachine()
	p.XSubtransient, p.XSynchronous = p.XSynchronous, p.XSubtransient

	s, err := Calculate(p, DefaultTimeGrid())
	require.NoError(t, err)
	assert.Equal(t, 301, s.Len())
}

func TestCalculateDivisionByZero(t *testing.T) {
	cases := map[string]func(*MachineParameters){
		"voltage":        func(p *MachineParameters) { p.Voltage = 0 },
		"subtransient x": func(p *MachineParameters) { p.XSubtransient = 0 },
		"transient x":    func(p *MachineParameters) { p.XTransient = 0 },
		"synchronous x":  func(p *MachineParameters) { p.XSynchronous = 0 },
		"subtransient t": func(p *MachineParameters) { p.TSubtransient = 0 },
		"transient t":    func(p *MachineParameters) { p.TTransient = 0 },
		"armature t":     func(p *MachineParameters) { p.TArmature = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			p := exampleMachine()
			mutate(&p)
			s, err := Calculate(p, DefaultTimeGrid())
			assert.ErrorIs(t, err, ErrDivisionByZero)
			assert.Zero(t, s.Len())
		})
	}
}

func TestCalculateDomainError(t *testing.T) {
	p := exampleMachine()
	p.TArmature = -0.001 // exp(t/0.001) overflows within the first second

	s, err := Calculate(p, DefaultTimeGrid())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDomain)
	assert.Zero(t, s.Len())

	var de *DomainError
	require.True(t, errors.As(err, &de))
	assert.Greater(t, de.Index, 0)
	assert.InDelta(t, DefaultTimeGrid().At(de.Index), de.Time, 1e-12)
}

func TestSamplesMatchCalculate(t *testing.T) {
	p := exampleMachine()
	grid := DefaultTimeGrid()
	s, err := Calculate(p, grid)
	require.NoError(t, err)

	var iterErr error
	seq, err := Samples(p, grid, &iterErr)
	require.NoError(t, err)

	for round := 0; round < 2; round++ {
		n := 0
		for i, smp := range seq {
			assert.Equal(t, s.Time[i], smp.Time)
			assert.Equal(t, s.InstantaneousAsymmetrical[i], smp.InstantaneousAsymmetrical)
			assert.Equal(t, s.RMSAsymmetrical[i], smp.RMSAsymmetrical)
			assert.Equal(t, s.RMSAC[i], smp.RMSAC)
			assert.Equal(t, s.DCOffset[i], smp.DCOffset)
			n++
		}
		assert.Equal(t, grid.Len(), n)
	}
	assert.NoError(t, iterErr)
}

func TestSamplesStopsOnDomainError(t *testing.T) {
	p := exampleMachine()
	p.TArmature = -0.001

	var iterErr error
	seq, err := Samples(p, DefaultTimeGrid(), &iterErr)
	require.NoError(t, err)

	n := 0
	for range seq {
		n++
	}
	assert.Less(t, n, DefaultTimeGrid().Len())
	assert.ErrorIs(t, iterErr, ErrDomain)
}

func TestSamplesDivisionByZero(t *testing.T) {
	p := exampleMachine()
	p.XTransient = 0
	seq, err := Samples(p, DefaultTimeGrid(), nil)
	assert.Nil(t, seq)
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestSummarize(t *testing.T) {
	p := exampleMachine()
	s, err := Calculate(p, DefaultTimeGrid())
	require.NoError(t, err)

	sum := Summarize(p, s)
	ibase := p.ApparentPower / (math.Sqrt(3) * p.Voltage)
	assert.InEpsilon(t, ibase, sum.BaseCurrent, 1e-12)
	assert.InEpsilon(t, 1.05, sum.EMF, 1e-12)
	assert.InEpsilon(t, ibase*1.05/0.15, sum.InitialSymmetrical, 1e-12)
	assert.InEpsilon(t, ibase*1.05/0.24, sum.TransientCurrent, 1e-12)
	assert.InEpsilon(t, ibase*1.05/1.1, sum.SteadyStateCurrent, 1e-12)
	assert.Equal(t, s.RMSAsymmetrical[0], sum.InitialAsymmetrical)
	assert.Equal(t, 301, sum.Samples)

	for _, v := range s.InstantaneousAsymmetrical {
		assert.LessOrEqual(t, math.Abs(v), math.Abs(sum.PeakInstantaneous))
	}
	// the first half cycle carries the full offset
	assert.Less(t, sum.PeakInstantaneous, 0.0)
	assert.Less(t, sum.PeakTime, 0.05)
}
