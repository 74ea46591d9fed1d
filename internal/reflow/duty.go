package reflow

// AdvanceCycle computes the heater drive for one duty step and returns the
// step counter for the next call. While inactive every heater is off and the
// counter does not move, so a later run resumes the cycle where it stopped.
func AdvanceCycle(s Schedule, phaseIndex int, active bool, step uint8) (uint8, [HeaterCount]bool) {
	var on [HeaterCount]bool
	if !active {
		return step, on
	}
	if phaseIndex < 0 || phaseIndex >= ScheduleLen {
		phaseIndex = IdleIndex
	}
	phase := s[phaseIndex]
	for h := range on {
		on[h] = phase.HeaterOn(h, step)
	}
	return (step + 1) % DutySteps, on
}
