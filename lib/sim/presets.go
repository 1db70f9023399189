package sim

const (
	voltHeader = "SOURCE:VOLTAGE:LEVEL:IMMEDIATE:AMPLITUDE"
	currHeader = "SOURCE:CURRENT:LEVEL:IMMEDIATE:AMPLITUDE"
)

type output struct {
	name           string
	vMin, vMax     string
	iMin, iMax     string
	vReset, iReset string
}

// E3631A outputs with their programming ranges.
var e3631aOutputs = []output{
	{"P6V", "0", "6.18", "0", "5.15", "0.000", "5.000"},
	{"P25V", "0", "25.75", "0", "1.03", "0.000", "1.000"},
	{"N25V", "-25.75", "0", "0", "1.03", "0.000", "1.000"},
}

// E3631A simulates an E3631A triple output power supply. Output states
// read back as 1 or 0 until set, like the real instrument.
func E3631A(opts ...Option) *Instrument {
	preset := []Option{
		WithResponse("*IDN?", "", "HEWLETT-PACKARD,E3631A,0,2.1-5.0-1.0"),
		WithAlias("MEASURE:VOLTAGE:DC", voltHeader),
		WithAlias("MEASURE:CURRENT:DC", currHeader),
	}
	for _, o := range e3631aOutputs {
		preset = append(preset,
			WithValue("OUTPUT:STATE", o.name, "0"),
			WithValue(voltHeader, o.name, o.vReset),
			WithValue(currHeader, o.name, o.iReset),
			WithResponse(voltHeader+"? MAX", o.name, o.vMax),
			WithResponse(voltHeader+"? MIN", o.name, o.vMin),
			WithResponse(currHeader+"? MAX", o.name, o.iMax),
			WithResponse(currHeader+"? MIN", o.name, o.iMin),
		)
	}
	return New(append(preset, opts...)...)
}

// HP8648 simulates an HP 8648A RF signal generator.
func HP8648(opts ...Option) *Instrument {
	preset := []Option{
		WithResponse("*IDN?", "", "HEWLETT-PACKARD,8648A,3847A00000,A.01.00"),
		WithValue("FREQ", "", "1.000000e+08"),
		WithValue("POW", "", "-1.360000e+02"),
		WithValue("OUTPUT", "", "OFF"),
	}
	return New(append(preset, opts...)...)
}
