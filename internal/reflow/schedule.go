package reflow

// Schedule index layout. Index 0 is always Idle, the last index is always
// Cooling and the profile's interior phases sit in between in order.
const (
	IdleIndex    = 0
	ScheduleLen  = PhasesPerProfile + 2
	CoolingIndex = ScheduleLen - 1
)

// Schedule is the runtime phase sequence for one selected profile.
type Schedule [ScheduleLen]Phase

// BuildSchedule brackets the profile's phases with the Idle and Cooling
// sentinels. Idle never exits on its own and drives no heaters. Cooling
// drives no heaters and exits downward through safeTempC, the temperature
// below which the oven is considered safe to open.
func BuildSchedule(p Profile, safeTempC float64) Schedule {
	var s Schedule
	s[IdleIndex] = Phase{
		Name:      "idle",
		Direction: Rising,
	}
	copy(s[1:CoolingIndex], p.Phases[:])
	s[CoolingIndex] = Phase{
		Name:      "cooling",
		ExitTempC: safeTempC,
		Direction: Falling,
	}
	return s
}
