package model

import (
	"strings"
)

// Flag accepts true/false, 0/1 or their string forms and stores 0 or 1.
type Flag int

func (f *Flag) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	switch strings.ToLower(s) {
	case "", "null", "0", "false", "off", "no":
		*f = 0
	default:
		*f = 1
	}
	return nil
}

func (f Flag) Int() int {
	if f != 0 {
		return 1
	}
	return 0
}
