package pathtrack

import (
	"encoding"
	"fmt"
)

// Strategy selects how the blocks of interest are collected.
type Strategy int

const (
	strategyInvalid Strategy = iota

	// StrategyPaths enumerates every entry→target path. Does not terminate
	// on graphs with a cycle between the target and the entry.
	StrategyPaths

	// StrategyReachability computes the union of path blocks without
	// materialising paths.
	StrategyReachability
)

var strategyValueMap = map[Strategy]string{
	StrategyPaths:        "paths",
	StrategyReachability: "reachability",
}

func (s Strategy) String() string {
	v, ok := strategyValueMap[s]
	if !ok {
		return fmt.Sprintf("invalid(%d)", s)
	}

	return v
}

var (
	_ encoding.TextUnmarshaler = (*Strategy)(nil)
	_ encoding.TextMarshaler   = Strategy(0)
)

// UnmarshalText for setting values with configs, CLI, etc.
func (s *Strategy) UnmarshalText(rawtext []byte) error {
	text := string(rawtext)
	for k, v := range strategyValueMap {
		if v == text {
			*s = k
			return nil
		}
	}

	return fmt.Errorf("unknown path strategy %q", text)
}

func (s Strategy) MarshalText() ([]byte, error) {
	v, ok := strategyValueMap[s]
	if !ok {
		return nil, fmt.Errorf("cannot marshal invalid Strategy(%d)", s)
	}

	return []byte(v), nil
}

// Set implements pflag.Value.
func (s *Strategy) Set(value string) error {
	return s.UnmarshalText([]byte(value))
}

// Type implements pflag.Value.
func (s *Strategy) Type() string {
	return "strategy"
}

// Valid tells if s is one of the known strategies.
func (s Strategy) Valid() bool {
	_, ok := strategyValueMap[s]
	return ok
}
