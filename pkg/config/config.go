// Package config loads tessellation and evaluation settings from Hjson files.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/hjson/hjson-go/v4"
)

// Resolution is the number of grid intervals along each surface parameter.
type Resolution struct {
	U int `json:"u"`
	V int `json:"v"`
}

// Config holds the settings of a geotrait run.
type Config struct {
	Resolution    Resolution `json:"resolution"`
	CurveSegments int        `json:"curve-segments"`
	// Workers bounds parallel sampling; 0 means runtime.GOMAXPROCS(0).
	Workers     int      `json:"workers"`
	EvalTimeout Duration `json:"eval-timeout"`
	// SampleRange overrides the declared parameter range of every primitive
	// when set, as [min, max] on each axis.
	SampleRange []float64 `json:"sample-range,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Resolution:    Resolution{U: 32, V: 32},
		CurveSegments: 64,
		Workers:       runtime.GOMAXPROCS(0),
		EvalTimeout:   Duration(5 * time.Second),
	}
}

var (
	ErrResolution = errors.New("config: resolution must be positive")
	ErrRange      = errors.New("config: sample-range must be [min, max] with min < max")
)

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Resolution.U <= 0 || c.Resolution.V <= 0 || c.CurveSegments <= 0 {
		return ErrResolution
	}
	if c.Workers < 0 {
		return fmt.Errorf("config: workers must not be negative, got %d", c.Workers)
	}
	if c.EvalTimeout <= 0 {
		return fmt.Errorf("config: eval-timeout must be positive, got %s", c.EvalTimeout)
	}
	if c.SampleRange != nil {
		if len(c.SampleRange) != 2 || !(c.SampleRange[0] < c.SampleRange[1]) {
			return ErrRange
		}
	}
	return nil
}

// Range returns the sample range override, if any.
func (c Config) Range() (*[2]float64, bool) {
	if len(c.SampleRange) != 2 {
		return nil, false
	}
	return &[2]float64{c.SampleRange[0], c.SampleRange[1]}, true
}

// Parse decodes Hjson data over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	conf := Default()

	var mdat map[string]interface{}
	if err := hjson.Unmarshal(data, &mdat); err != nil {
		return conf, fmt.Errorf("config: %w", err)
	}
	bytes, err := json.Marshal(mdat)
	if err != nil {
		return conf, fmt.Errorf("config: %w", err)
	}
	if err := json.Unmarshal(bytes, &conf); err != nil {
		return conf, fmt.Errorf("config: %w", err)
	}
	return conf, conf.Validate()
}

// LoadConfig reads and parses the Hjson file at path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return Parse(data)
}

// Duration is a time.Duration written as a string such as "5s".
type Duration time.Duration

func (d Duration) String() string {
	return time.Duration(d).String()
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}
