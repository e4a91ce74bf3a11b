// Package config loads workout session settings from a yaml file or CLI flags.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Sensor source kinds.
const (
	SensorSimulate = "simulate"
	SensorDevice   = "device"
)

const (
	defaultExercise             = "Bench Press"
	defaultTickInterval         = 1 * time.Second
	defaultReadTimeout          = 2 * time.Second
	defaultSimMin               = "40"
	defaultSimMax               = "60"
	defaultSlightThreshold      = "10"
	defaultSignificantThreshold = "20"
)

// Config holds the parsed settings for one workout session.
type Config struct {
	Exercise             string
	TickInterval         time.Duration
	Duration             time.Duration
	Sensor               string
	SensorSeed           int64
	SimMin               decimal.Decimal
	SimMax               decimal.Decimal
	SlightThreshold      decimal.Decimal
	SignificantThreshold decimal.Decimal
	HistoryCapacity      int
	DemoHistory          bool
	ReadTimeout          time.Duration
	WebAddr              string
}

// ConfigTmp mirrors Config with yaml-friendly string fields for decimal values.
type ConfigTmp struct {
	Exercise                string        `yaml:"exercise"`
	TickInterval            time.Duration `yaml:"tick_interval,omitempty"`
	Duration                time.Duration `yaml:"duration,omitempty"`
	Sensor                  string        `yaml:"sensor,omitempty"`
	SensorSeed              int64         `yaml:"sensor_seed,omitempty"`
	SimMinStr               string        `yaml:"sim_min,omitempty"`
	SimMaxStr               string        `yaml:"sim_max,omitempty"`
	SlightThresholdStr      string        `yaml:"slight_threshold,omitempty"`
	SignificantThresholdStr string        `yaml:"significant_threshold,omitempty"`
	HistoryCapacityStr      string        `yaml:"history_capacity,omitempty"`
	DemoHistory             bool          `yaml:"demo_history,omitempty"`
	ReadTimeout             time.Duration `yaml:"read_timeout,omitempty"`
	WebAddr                 string        `yaml:"web_addr,omitempty"`
}

// Get reads session configs from the yaml file given via --config,
// falling back to CLI flags for a single session.
func Get() ([]Config, error) {
	config := flag.String("config", "", "path to yaml config")
	flag.Parse()
	if *config != "" {
		return getYaml(*config)
	}

	return getFromCLI()
}

func getFromCLI() ([]Config, error) {
	exercise := flag.String("exercise", defaultExercise, "exercise label, example: Bench Press")
	tickInterval := flag.Duration("tickinterval", defaultTickInterval, "interval between balance samples")
	duration := flag.Duration("duration", 0, "session duration, 0 means run until interrupted")
	sensor := flag.String("sensor", SensorSimulate, "sensor source: simulate or device")
	sensorSeed := flag.Int64("sensorseed", 0, "seed for the simulated sensor, 0 derives one from current time")
	simMin := flag.String("simmin", defaultSimMin, "lower bound of simulated readings in percent")
	simMax := flag.String("simmax", defaultSimMax, "upper bound of simulated readings in percent")
	slight := flag.String("slightthreshold", defaultSlightThreshold, "difference that counts as slight imbalance")
	significant := flag.String("significantthreshold", defaultSignificantThreshold, "difference that counts as significant imbalance")
	historyCap := flag.Int("historycap", 0, "max history entries, 0 means unbounded")
	demoHistory := flag.Bool("demohistory", false, "pre-seed the session with synthetic history")
	readTimeout := flag.Duration("readtimeout", defaultReadTimeout, "bounded wait for a device reading")
	webAddr := flag.String("webaddr", "", "address of the live feedback web UI, empty disables it")

	flag.Parse()

	conf, err := fromTmp(ConfigTmp{
		Exercise:                *exercise,
		TickInterval:            *tickInterval,
		Duration:                *duration,
		Sensor:                  *sensor,
		SensorSeed:              *sensorSeed,
		SimMinStr:               *simMin,
		SimMaxStr:               *simMax,
		SlightThresholdStr:      *slight,
		SignificantThresholdStr: *significant,
		HistoryCapacityStr:      strconv.Itoa(*historyCap),
		DemoHistory:             *demoHistory,
		ReadTimeout:             *readTimeout,
		WebAddr:                 *webAddr,
	})
	if err != nil {
		return nil, err
	}

	return []Config{conf}, nil
}

func getYaml(path string) ([]Config, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var configsTmp []ConfigTmp
	if err := yaml.Unmarshal(f, &configsTmp); err != nil {
		return nil, err
	}

	configs := make([]Config, 0, len(configsTmp))
	for _, c := range configsTmp {
		conf, err := fromTmp(c)
		if err != nil {
			return nil, err
		}
		configs = append(configs, conf)
	}

	return configs, nil
}

func fromTmp(c ConfigTmp) (Config, error) {
	conf := Config{
		Exercise:     c.Exercise,
		TickInterval: c.TickInterval,
		Duration:     c.Duration,
		Sensor:       c.Sensor,
		SensorSeed:   c.SensorSeed,
		DemoHistory:  c.DemoHistory,
		ReadTimeout:  c.ReadTimeout,
		WebAddr:      c.WebAddr,
	}

	if conf.Exercise == "" {
		conf.Exercise = defaultExercise
	}
	if conf.TickInterval == 0 {
		conf.TickInterval = defaultTickInterval
	}
	if conf.TickInterval < 0 {
		return Config{}, fmt.Errorf("incorrect 'tick_interval' param: must be positive, got %s", conf.TickInterval)
	}
	if conf.Duration < 0 {
		return Config{}, fmt.Errorf("incorrect 'duration' param: must not be negative, got %s", conf.Duration)
	}

	if conf.Sensor == "" {
		conf.Sensor = SensorSimulate
	}
	if conf.Sensor != SensorSimulate && conf.Sensor != SensorDevice {
		return Config{}, fmt.Errorf("incorrect 'sensor' param: %s, must be %q or %q", conf.Sensor, SensorSimulate, SensorDevice)
	}

	var err error
	conf.SimMin, err = parseDecimal(c.SimMinStr, defaultSimMin, "sim_min")
	if err != nil {
		return Config{}, err
	}
	conf.SimMax, err = parseDecimal(c.SimMaxStr, defaultSimMax, "sim_max")
	if err != nil {
		return Config{}, err
	}
	if conf.SimMin.LessThan(decimal.Zero) || conf.SimMax.GreaterThan(decimal.NewFromInt(100)) || !conf.SimMin.LessThan(conf.SimMax) {
		return Config{}, fmt.Errorf("incorrect simulation range: [%s, %s] must satisfy 0 <= min < max <= 100",
			conf.SimMin.String(), conf.SimMax.String())
	}

	conf.SlightThreshold, err = parseDecimal(c.SlightThresholdStr, defaultSlightThreshold, "slight_threshold")
	if err != nil {
		return Config{}, err
	}
	conf.SignificantThreshold, err = parseDecimal(c.SignificantThresholdStr, defaultSignificantThreshold, "significant_threshold")
	if err != nil {
		return Config{}, err
	}

	if c.HistoryCapacityStr != "" {
		conf.HistoryCapacity, err = strconv.Atoi(c.HistoryCapacityStr)
		if err != nil {
			return Config{}, fmt.Errorf("incorrect 'history_capacity' param (must be an integer): %w", err)
		}
		if conf.HistoryCapacity < 0 {
			return Config{}, fmt.Errorf("incorrect 'history_capacity' param: must be >= 0, got %d", conf.HistoryCapacity)
		}
	}

	if conf.ReadTimeout == 0 {
		conf.ReadTimeout = defaultReadTimeout
	}
	if conf.ReadTimeout < 0 {
		return Config{}, fmt.Errorf("incorrect 'read_timeout' param: must be positive, got %s", conf.ReadTimeout)
	}

	return conf, nil
}

func parseDecimal(value, fallback, name string) (decimal.Decimal, error) {
	if value == "" {
		value = fallback
	}

	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("incorrect '%s' param (must be a decimal): %w", name, err)
	}

	return d, nil
}
