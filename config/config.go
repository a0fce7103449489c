// Package config loads the planner configuration from defaults, an optional YAML file
// and PLANNER_* environment variables, in increasing order of precedence.
package config

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"workforce-planner/models"
	"workforce-planner/parser"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. PLANNER_SOLVER_TIME_LIMIT.
const EnvPrefix = "PLANNER"

// Config is the full planner configuration.
type Config struct {
	Scenario ScenarioConfig `mapstructure:"scenario"`
	Solver   SolverConfig   `mapstructure:"solver"`
	Log      LogConfig      `mapstructure:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Store    StoreConfig    `mapstructure:"store"`
}

// ScenarioConfig holds the scenario parameters. Either matrix may instead be read from
// a CSV file, relative paths being resolved against the config file's directory.
type ScenarioConfig struct {
	models.ScenarioParameters  `mapstructure:",squash"`
	TargetHoursFile            string `mapstructure:"target_hours_file"`
	CumulativeResignationsFile string `mapstructure:"cumulative_resignations_file"`
}

// SolverConfig tunes branch and bound.
type SolverConfig struct {
	TimeLimit            time.Duration `mapstructure:"time_limit"`
	MaxNodes             int           `mapstructure:"max_nodes"`
	IntegralityTolerance float64       `mapstructure:"integrality_tolerance"`
}

// LogConfig selects the zap logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig controls Prometheus exposure.
type MetricsConfig struct {
	Addr    string `mapstructure:"addr"`
	PushURL string `mapstructure:"push_url"`
	Job     string `mapstructure:"job"`
}

// StoreConfig selects where solved runs are recorded. An empty driver disables it.
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

func setDefaults(v *viper.Viper) {
	ref := models.ReferenceScenario()
	v.SetDefault("scenario.departments", ref.Departments)
	v.SetDefault("scenario.months", ref.Months)
	v.SetDefault("scenario.target_hours", ref.TargetHours)
	v.SetDefault("scenario.cumulative_resignations", ref.CumulativeResignations)
	v.SetDefault("scenario.employees_beginning", ref.EmployeesBeginning)
	v.SetDefault("scenario.trainees_beginning", ref.TraineesBeginning)
	v.SetDefault("scenario.training_capacity_per_month", ref.TrainingCapacityPerMonth)
	v.SetDefault("scenario.trainee_cost", ref.TraineeCost)
	v.SetDefault("scenario.understaffing_cost", ref.UnderstaffingCost)
	v.SetDefault("scenario.salary_employee", ref.SalaryEmployee)
	v.SetDefault("scenario.trainee_contribution_hours", ref.TraineeContributionHours)
	v.SetDefault("scenario.employee_contribution_hours", ref.EmployeeContributionHours)
	v.SetDefault("scenario.understaffing_unit_hours", ref.UnderstaffingUnitHours)
	v.SetDefault("scenario.target_hours_file", "")
	v.SetDefault("scenario.cumulative_resignations_file", "")

	v.SetDefault("solver.time_limit", "0s")
	v.SetDefault("solver.max_nodes", 200000)
	v.SetDefault("solver.integrality_tolerance", 1e-6)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("metrics.addr", "")
	v.SetDefault("metrics.push_url", "")
	v.SetDefault("metrics.job", "workforce_planner")

	v.SetDefault("store.driver", "")
	v.SetDefault("store.dsn", "")
}

// Load reads the configuration. With an empty path it looks for planner.yaml in ./config
// and the working directory and falls back to defaults when there is none.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("planner")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	baseDir := ""
	if used := v.ConfigFileUsed(); used != "" {
		baseDir = filepath.Dir(used)
	}
	if err := cfg.Scenario.loadMatrices(baseDir); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *ScenarioConfig) loadMatrices(baseDir string) error {
	files := []struct {
		path   string
		target *[][]float64
	}{
		{s.TargetHoursFile, &s.TargetHours},
		{s.CumulativeResignationsFile, &s.CumulativeResignations},
	}
	for _, f := range files {
		if f.path == "" {
			continue
		}
		path := f.path
		if !filepath.IsAbs(path) && baseDir != "" {
			path = filepath.Join(baseDir, path)
		}
		m, err := parser.ParseMatrixFile(path)
		if err != nil {
			return fmt.Errorf("load scenario matrix: %w", err)
		}
		*f.target = m
	}
	return nil
}

// Validate checks the non-scenario settings. Scenario parameters are validated when the
// model is built.
func (c *Config) Validate() error {
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format must be json or console (got %q)", c.Log.Format)
	}
	if c.Solver.MaxNodes < 0 {
		return fmt.Errorf("config: solver.max_nodes must not be negative (got %d)", c.Solver.MaxNodes)
	}
	if c.Solver.TimeLimit < 0 {
		return fmt.Errorf("config: solver.time_limit must not be negative (got %s)", c.Solver.TimeLimit)
	}
	switch c.Store.Driver {
	case "":
	case "sqlite", "postgres":
		if c.Store.DSN == "" {
			return fmt.Errorf("config: store.dsn is required for driver %q", c.Store.Driver)
		}
	default:
		return fmt.Errorf("config: store.driver must be sqlite or postgres (got %q)", c.Store.Driver)
	}
	return nil
}

// DumpScenario writes p as a config file that Load accepts.
func DumpScenario(w io.Writer, p models.ScenarioParameters) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(map[string]models.ScenarioParameters{"scenario": p}); err != nil {
		return fmt.Errorf("encode scenario: %w", err)
	}
	return enc.Close()
}
