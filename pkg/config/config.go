package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/getmockd/specmock/pkg/datagen"
)

// Configuration is the full mock server configuration.
type Configuration struct {
	Port           int    `yaml:"port" json:"port"`
	Host           string `yaml:"host,omitempty" json:"host,omitempty"`
	MaxConnections int    `yaml:"maxConnections" json:"maxConnections"`

	// ReadTimeout and WriteTimeout are in seconds; zero disables them.
	ReadTimeout  int `yaml:"readTimeout,omitempty" json:"readTimeout,omitempty"`
	WriteTimeout int `yaml:"writeTimeout,omitempty" json:"writeTimeout,omitempty"`

	// UseServerBasePath prefixes OpenAPI 3 routes with the path of the first
	// server URL.
	UseServerBasePath bool `yaml:"useServerBasePath,omitempty" json:"useServerBasePath,omitempty"`

	Generation GenerationConfig `yaml:"generation" json:"generation"`
	Logging    LoggingConfig    `yaml:"logging" json:"logging"`

	// RulesFile is an optional datasource rules file.
	RulesFile string `yaml:"rulesFile,omitempty" json:"rulesFile,omitempty"`
}

// GenerationConfig controls response synthesis.
type GenerationConfig struct {
	RootArrayCount   int  `yaml:"rootArrayCount" json:"rootArrayCount"`
	ChildArrayCount  int  `yaml:"childArrayCount" json:"childArrayCount"`
	Randomized       bool `yaml:"randomized" json:"randomized"`
	Lazy             bool `yaml:"lazy" json:"lazy"`
	DistinctElements bool `yaml:"distinctElements" json:"distinctElements"`

	// Seed seeds the random provider; zero picks a random seed.
	Seed uint64 `yaml:"seed,omitempty" json:"seed,omitempty"`

	// DateRangeStart and DateRangeEnd (YYYY-MM-DD) bound random dates.
	DateRangeStart string `yaml:"dateRangeStart" json:"dateRangeStart"`
	DateRangeEnd   string `yaml:"dateRangeEnd" json:"dateRangeEnd"`

	// NumberMin and NumberMax bound random numbers without schema limits.
	NumberMin float64 `yaml:"numberMin" json:"numberMin"`
	NumberMax float64 `yaml:"numberMax" json:"numberMax"`

	Defaults datagen.Defaults `yaml:"defaults" json:"defaults"`
}

// LoggingConfig selects the log level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// Default values.
const (
	DefaultPort            = 8080
	DefaultMaxConnections  = 100
	DefaultRootArrayCount  = 2
	DefaultChildArrayCount = 2
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid configuration")

// Default returns a configuration with every field at its default.
func Default() *Configuration {
	ro := datagen.DefaultRandomOptions()
	return &Configuration{
		Port:           DefaultPort,
		MaxConnections: DefaultMaxConnections,
		Generation: GenerationConfig{
			RootArrayCount:  DefaultRootArrayCount,
			ChildArrayCount: DefaultChildArrayCount,
			DateRangeStart:  ro.DateStart.Format(time.DateOnly),
			DateRangeEnd:    ro.DateEnd.Format(time.DateOnly),
			NumberMin:       ro.NumberMin,
			NumberMax:       ro.NumberMax,
			Defaults:        datagen.DefaultValues(),
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// Addr returns the listen address.
func (c *Configuration) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Validate clamps negative array counts to zero and rejects values the
// server cannot run with.
func (c *Configuration) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalid, c.Port)
	}
	if c.MaxConnections < 0 {
		return fmt.Errorf("%w: maxConnections must not be negative", ErrInvalid)
	}
	if c.ReadTimeout < 0 || c.WriteTimeout < 0 {
		return fmt.Errorf("%w: timeouts must not be negative", ErrInvalid)
	}

	g := &c.Generation
	g.RootArrayCount = max(g.RootArrayCount, 0)
	g.ChildArrayCount = max(g.ChildArrayCount, 0)
	if g.NumberMin > g.NumberMax {
		return fmt.Errorf("%w: numberMin %v is greater than numberMax %v", ErrInvalid, g.NumberMin, g.NumberMax)
	}
	start, end, err := g.DateRange()
	if err != nil {
		return err
	}
	if end.Before(start) {
		return fmt.Errorf("%w: dateRangeEnd is before dateRangeStart", ErrInvalid)
	}
	if g.Defaults.UUID != "" {
		if _, err := uuid.Parse(g.Defaults.UUID); err != nil {
			return fmt.Errorf("%w: uuidDefaultValue: %v", ErrInvalid, err)
		}
	}
	return nil
}

// DateRange parses the configured random date bounds.
func (g *GenerationConfig) DateRange() (time.Time, time.Time, error) {
	def := datagen.DefaultRandomOptions()
	start, end := def.DateStart, def.DateEnd
	var err error
	if g.DateRangeStart != "" {
		if start, err = time.Parse(time.DateOnly, g.DateRangeStart); err != nil {
			return start, end, fmt.Errorf("%w: dateRangeStart: %v", ErrInvalid, err)
		}
	}
	if g.DateRangeEnd != "" {
		if end, err = time.Parse(time.DateOnly, g.DateRangeEnd); err != nil {
			return start, end, fmt.Errorf("%w: dateRangeEnd: %v", ErrInvalid, err)
		}
	}
	return start, end, nil
}

// RandomOptions converts the generation settings for datagen.NewRandom.
// Unparseable dates fall back to the built-in range.
func (g *GenerationConfig) RandomOptions() datagen.RandomOptions {
	opts := datagen.DefaultRandomOptions()
	if start, end, err := g.DateRange(); err == nil {
		opts.DateStart, opts.DateEnd = start, end
	}
	opts.NumberMin, opts.NumberMax = g.NumberMin, g.NumberMax
	return opts
}
