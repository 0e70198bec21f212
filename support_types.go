package main

import (
	"fmt"
)

// outputFormat describes varieties of the paths command output.
type outputFormat int

const (
	outputFormatInvalid outputFormat = iota

	// outputFormatText is a human-readable listing.
	outputFormatText

	// outputFormatYAML is a machine-readable document.
	outputFormatYAML
)

var outputFormatValueMap = map[outputFormat]string{
	outputFormatText: "text",
	outputFormatYAML: "yaml",
}

func (s outputFormat) String() string {
	v, ok := outputFormatValueMap[s]
	if !ok {
		return fmt.Sprintf("invalid(%d)", s)
	}

	return v
}

// UnmarshalText for setting values with configs, CLI, etc.
func (s *outputFormat) UnmarshalText(rawtext []byte) error {
	text := string(rawtext)
	for k, v := range outputFormatValueMap {
		if v == text {
			*s = k
			return nil
		}
	}

	return fmt.Errorf("unknown output format %q", text)
}

// Set implements pflag.Value.
func (s *outputFormat) Set(value string) error {
	return s.UnmarshalText([]byte(value))
}

// Type implements pflag.Value.
func (s *outputFormat) Type() string {
	return "format"
}
