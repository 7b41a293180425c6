package focus

import (
	"strconv"
	"strings"
)

// Recognized option names for Config.Set.
const (
	OptionWork               = "work"
	OptionShortBreak         = "shortBreak"
	OptionLongBreak          = "longBreak"
	OptionCyclesPerLongBreak = "cyclesPerLongBreak"
)

// Config holds interval lengths in minutes and the long-break cadence.
type Config struct {
	Work               int `yaml:"work"`
	ShortBreak         int `yaml:"short_break"`
	LongBreak          int `yaml:"long_break"`
	CyclesPerLongBreak int `yaml:"cycles_per_long_break"`
}

// DefaultConfig returns the classic 25/5/15 cadence with a long break every
// fourth cycle.
func DefaultConfig() Config {
	return Config{
		Work:               25,
		ShortBreak:         5,
		LongBreak:          15,
		CyclesPerLongBreak: 4,
	}
}

// Set parses raw as a positive integer and stores it under option. Unknown
// options and invalid values are ignored and the prior value is kept.
func (c *Config) Set(option, raw string) bool {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return c.SetValue(option, n)
}

// SetValue stores n under option when n is positive.
func (c *Config) SetValue(option string, n int) bool {
	if n <= 0 {
		return false
	}
	switch option {
	case OptionWork:
		c.Work = n
	case OptionShortBreak:
		c.ShortBreak = n
	case OptionLongBreak:
		c.LongBreak = n
	case OptionCyclesPerLongBreak:
		c.CyclesPerLongBreak = n
	default:
		return false
	}
	return true
}

// Merge copies every positive field of other into c.
func (c *Config) Merge(other Config) {
	c.SetValue(OptionWork, other.Work)
	c.SetValue(OptionShortBreak, other.ShortBreak)
	c.SetValue(OptionLongBreak, other.LongBreak)
	c.SetValue(OptionCyclesPerLongBreak, other.CyclesPerLongBreak)
}

// Seconds returns the configured length of mode in seconds.
func (c Config) Seconds(mode Mode) int {
	switch mode {
	case ModeShortBreak:
		return c.ShortBreak * 60
	case ModeLongBreak:
		return c.LongBreak * 60
	default:
		return c.Work * 60
	}
}
