// Package config provides configuration loading for trackpaths commands.
//
// Values come from three layers: built-in defaults, an optional YAML file
// and command line flags. Later layers override earlier ones, flags only
// when they were set explicitly.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/sirkon/trackpaths/internal/llvmir"
	"github.com/sirkon/trackpaths/internal/logging"
	"github.com/sirkon/trackpaths/internal/pathtrack"
	"github.com/sirkon/trackpaths/internal/trackpass"
)

// ErrInvalid is returned for configurations the pass cannot run with.
var ErrInvalid = errors.New("invalid configuration")

// Config is the trackpaths configuration.
type Config struct {
	SourceFile string             `yaml:"source_file"`
	TargetLine int                `yaml:"target_line"`
	Recorder   string             `yaml:"recorder"`
	Strategy   pathtrack.Strategy `yaml:"strategy"`
	Annotation string             `yaml:"annotation,omitempty"`
	Report     string             `yaml:"report"`
	Log        LogConfig          `yaml:"log"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Default returns the configuration with every default applied.
func Default() Config {
	log := logging.DefaultConfig()

	return Config{
		Recorder: llvmir.DefaultRecorder,
		Strategy: pathtrack.StrategyPaths,
		Report:   trackpass.DefaultReport,
		Log: LogConfig{
			Level:  log.Level,
			Pretty: log.Pretty,
		},
	}
}

// Load reads the configuration file over the defaults. Unknown keys are
// rejected.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("decode config file %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks the configuration is usable for a pass run.
func (c Config) Validate() error {
	switch {
	case c.SourceFile == "":
		return fmt.Errorf("%w: source file is not set", ErrInvalid)
	case c.TargetLine <= 0:
		return fmt.Errorf("%w: target line must be positive, got %d", ErrInvalid, c.TargetLine)
	case c.Recorder == "":
		return fmt.Errorf("%w: recorder name is empty", ErrInvalid)
	case !c.Strategy.Valid():
		return fmt.Errorf("%w: unknown strategy %s", ErrInvalid, c.Strategy)
	}

	return nil
}

// Pass returns pass options built from the configuration.
func (c Config) Pass() trackpass.Options {
	return trackpass.Options{
		SourceFile: c.SourceFile,
		TargetLine: c.TargetLine,
		Recorder:   c.Recorder,
		Strategy:   c.Strategy,
		Annotation: c.Annotation,
	}
}

// Logging returns logger settings writing into out, the default logging
// output if out is nil.
func (c Config) Logging(out io.Writer) logging.Config {
	res := logging.DefaultConfig()
	res.Level = c.Log.Level
	res.Pretty = c.Log.Pretty
	if out != nil {
		res.Output = out
	}

	return res
}

// Flag names.
const (
	FlagConfig     = "config"
	FlagSourceFile = "source-file"
	FlagLine       = "line"
	FlagRecorder   = "recorder"
	FlagStrategy   = "strategy"
	FlagAnnotation = "annotation"
	FlagReport     = "report"
	FlagLogLevel   = "log-level"
	FlagLogPretty  = "log-pretty"
)

// RegisterFlags adds configuration flags to the set.
func RegisterFlags(fs *pflag.FlagSet) {
	def := Default()
	strategy := def.Strategy

	fs.String(FlagConfig, "", "YAML configuration file")
	fs.String(FlagSourceFile, def.SourceFile, "source file name the module must be compiled from")
	fs.Int(FlagLine, def.TargetLine, "target source line")
	fs.String(FlagRecorder, def.Recorder, "coverage recorder function name")
	fs.Var(&strategy, FlagStrategy, "block collection strategy (paths, reachability)")
	fs.String(FlagAnnotation, def.Annotation, "annotation string of tracked functions, any if empty")
	fs.String(FlagReport, def.Report, "report file path")
	fs.String(FlagLogLevel, def.Log.Level, "log level (trace, debug, info, warn, error)")
	fs.Bool(FlagLogPretty, def.Log.Pretty, "human-readable log output")
}

// FromFlags loads the configuration file named by the config flag, if any,
// and overrides it with explicitly set flags.
func FromFlags(fs *pflag.FlagSet) (Config, error) {
	cfg := Default()

	path, err := fs.GetString(FlagConfig)
	if err != nil {
		return cfg, fmt.Errorf("get config flag: %w", err)
	}
	if path != "" {
		if cfg, err = Load(path); err != nil {
			return cfg, err
		}
	}

	if err := cfg.Apply(fs); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Apply copies explicitly set flags into the configuration.
func (c *Config) Apply(fs *pflag.FlagSet) error {
	var errs []error
	str := func(name string, dst *string) {
		if !fs.Changed(name) {
			return
		}
		v, err := fs.GetString(name)
		if err != nil {
			errs = append(errs, err)
			return
		}
		*dst = v
	}

	str(FlagSourceFile, &c.SourceFile)
	str(FlagRecorder, &c.Recorder)
	str(FlagAnnotation, &c.Annotation)
	str(FlagReport, &c.Report)
	str(FlagLogLevel, &c.Log.Level)

	if fs.Changed(FlagLine) {
		v, err := fs.GetInt(FlagLine)
		if err != nil {
			errs = append(errs, err)
		}
		c.TargetLine = v
	}
	if fs.Changed(FlagLogPretty) {
		v, err := fs.GetBool(FlagLogPretty)
		if err != nil {
			errs = append(errs, err)
		}
		c.Log.Pretty = v
	}
	if fs.Changed(FlagStrategy) {
		if err := c.Strategy.UnmarshalText([]byte(fs.Lookup(FlagStrategy).Value.String())); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("apply flags: %w", err)
	}

	return nil
}
