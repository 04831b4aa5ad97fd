package state

import "fmt"

const (
	minutesPerHour = 60
	hoursPerDay    = 24
)

// AdvanceClock moves the in-game clock forward by the given number of minutes,
// carrying minutes into hours and hours into days.
func (s *SimulationState) AdvanceClock(minutes int) {
	if minutes <= 0 {
		return
	}
	s.Day, s.Hour, s.Minute = normalizeClock(s.Day, s.Hour, s.Minute+minutes)
}

// ResetToMorning starts the next day at the default wake-up time.
func (s *SimulationState) ResetToMorning() {
	s.Day++
	s.Hour = DefaultHour
	s.Minute = DefaultMinute
}

// ClockString renders the time of day as HH:MM.
func (s *SimulationState) ClockString() string {
	return fmt.Sprintf("%02d:%02d", s.Hour, s.Minute)
}

func normalizeClock(day, hour, minute int) (int, int, int) {
	if minute < 0 {
		minute = 0
	}
	if hour < 0 {
		hour = 0
	}
	hour += minute / minutesPerHour
	minute %= minutesPerHour
	day += hour / hoursPerDay
	hour %= hoursPerDay
	if day < DefaultDay {
		day = DefaultDay
	}
	return day, hour, minute
}
