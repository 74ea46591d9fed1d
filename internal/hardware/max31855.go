package hardware

// MAX31855 frame layout, MSB first:
//
//	D31..D18  14-bit signed thermocouple temperature, 0.25 °C per LSB
//	D16       fault flag
//	D15..D4   12-bit signed cold-junction temperature, 0.0625 °C per LSB
//	D2..D0    fault detail: short to VCC, short to GND, open circuit

// Reading is one decoded MAX31855 frame.
type Reading struct {
	ThermocoupleC float64
	ColdJunctionC float64
}

// DecodeFrame decodes a raw 32-bit MAX31855 frame. Wiring faults come back
// as a *FaultError.
func DecodeFrame(frame uint32) (Reading, error) {
	if frame&(1<<16) != 0 {
		switch {
		case frame&(1<<0) != 0:
			return Reading{}, &FaultError{Kind: FaultOpenCircuit}
		case frame&(1<<1) != 0:
			return Reading{}, &FaultError{Kind: FaultShortToGround}
		case frame&(1<<2) != 0:
			return Reading{}, &FaultError{Kind: FaultShortToSupply}
		default:
			// fault flag with no detail bit reads as an open circuit
			return Reading{}, &FaultError{Kind: FaultOpenCircuit}
		}
	}
	tc := int32(frame) >> 18 // arithmetic shift keeps the sign
	cj := int32(frame<<16) >> 20
	return Reading{
		ThermocoupleC: float64(tc) * 0.25,
		ColdJunctionC: float64(cj) * 0.0625,
	}, nil
}
