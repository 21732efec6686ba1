// Package automation runs scripted scenarios and Monte Carlo forward-model
// sampling on top of experiment.
package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/wobbles/internal/config"
	"github.com/san-kum/wobbles/internal/experiment"
	"gopkg.in/yaml.v3"
)

var ErrBadScenario = errors.New("automation: invalid scenario")

// Prior is a uniform distribution on [Min, Max].
type Prior struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Scenario defines a scripted sequence of runs and, optionally, a block
// of random realizations.
type Scenario struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Preset      string            `yaml:"preset"`
	Config      string            `yaml:"config"`
	Steps       []ScenarioStep    `yaml:"steps"`
	Sampling    *MonteCarloConfig `yaml:"sampling"`
}

// ScenarioStep is a single run: parameter overrides on the scenario base.
type ScenarioStep struct {
	Name   string             `yaml:"name"`
	Params map[string]float64 `yaml:"params"`
}

// MonteCarloConfig draws Realizations parameter sets from Priors. With
// ReseedNoise each realization also gets a fresh noise seed.
type MonteCarloConfig struct {
	Realizations int              `yaml:"realizations"`
	Seed         int64            `yaml:"seed"`
	Priors       map[string]Prior `yaml:"priors"`
	ReseedNoise  bool             `yaml:"reseed_noise"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if err := scenario.Validate(); err != nil {
		return nil, err
	}

	return &scenario, nil
}

func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: missing name", ErrBadScenario)
	}
	if len(s.Steps) == 0 && s.Sampling == nil {
		return fmt.Errorf("%w: no steps and no sampling", ErrBadScenario)
	}
	if s.Preset != "" && s.Config != "" {
		return fmt.Errorf("%w: preset and config are exclusive", ErrBadScenario)
	}
	if s.Sampling != nil {
		return s.Sampling.Validate()
	}
	return nil
}

func (mc *MonteCarloConfig) Validate() error {
	if mc.Realizations < 1 {
		return fmt.Errorf("%w: realizations must be positive, got %d", ErrBadScenario, mc.Realizations)
	}
	for name, p := range mc.Priors {
		if !(p.Max >= p.Min) {
			return fmt.Errorf("%w: prior %s has max < min", ErrBadScenario, name)
		}
	}
	return nil
}

// Base returns the configuration every step starts from.
func (s *Scenario) Base() (*config.Config, error) {
	var cfg *config.Config
	switch {
	case s.Preset != "":
		cfg = config.GetPreset(s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("%w: unknown preset %s", ErrBadScenario, s.Preset)
		}
	case s.Config != "":
		loaded, err := config.Load(s.Config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	default:
		cfg = config.DefaultConfig()
	}
	cfg.Name = s.Name
	return cfg, nil
}

// StepResult pairs a step with its outcome.
type StepResult struct {
	Index  int
	Step   ScenarioStep
	Result *experiment.Result
}

// RunScenario executes every step in order and hands each result to fn.
// The first failing step aborts the scenario.
func RunScenario(ctx context.Context, scenario *Scenario, fn func(StepResult) error) error {
	base, err := scenario.Base()
	if err != nil {
		return err
	}

	for i, step := range scenario.Steps {
		slog.Info("scenario step", "scenario", scenario.Name, "step", i+1, "of", len(scenario.Steps), "name", step.Name)

		cfg := base.Clone()
		if step.Name != "" {
			cfg.Name = step.Name
		}
		for _, k := range sortedKeys(step.Params) {
			if err := experiment.SetParam(cfg, k, step.Params[k]); err != nil {
				return fmt.Errorf("step %d: %w", i+1, err)
			}
		}

		result, err := experiment.New(cfg).Run(ctx)
		if err != nil {
			return fmt.Errorf("step %d run: %w", i+1, err)
		}

		if err := fn(StepResult{Index: i, Step: step, Result: result}); err != nil {
			return err
		}
	}

	return nil
}

// Trial is one Monte Carlo realization. Err is set when this draw could
// not be evaluated; sampling carries on.
type Trial struct {
	Index  int
	Params map[string]float64
	Result *experiment.Result
	Err    error
}

// RunMonteCarlo evaluates mc.Realizations random draws around base.
// Draws depend only on mc.Seed, so a seed reproduces the whole sequence.
func RunMonteCarlo(ctx context.Context, base *config.Config, mc MonteCarloConfig, fn func(Trial) error) error {
	if err := mc.Validate(); err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(mc.Seed))
	if mc.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	names := sortedKeys(mc.Priors)

	for trial := 0; trial < mc.Realizations; trial++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		params := make(map[string]float64, len(names)+1)
		for _, name := range names {
			p := mc.Priors[name]
			params[name] = p.Min + rng.Float64()*(p.Max-p.Min)
		}
		if mc.ReseedNoise {
			params["seed"] = float64(rng.Int31())
		}

		t := Trial{Index: trial, Params: params}
		cfg := base.Clone()
		for _, name := range sortedKeys(params) {
			if err := experiment.SetParam(cfg, name, params[name]); err != nil {
				t.Err = err
				break
			}
		}
		if t.Err == nil {
			t.Result, t.Err = experiment.New(cfg).Run(ctx)
			if errors.Is(t.Err, context.Canceled) || errors.Is(t.Err, context.DeadlineExceeded) {
				return t.Err
			}
		}

		if err := fn(t); err != nil {
			return err
		}
		slog.Debug("realization done", "trial", trial+1, "of", mc.Realizations, "failed", t.Err != nil)
	}

	return nil
}

// ParsePrior reads "name=lo:hi".
func ParsePrior(spec string) (string, Prior, error) {
	name, rng, ok := strings.Cut(spec, "=")
	lo, hi, ok2 := strings.Cut(rng, ":")
	if !ok || !ok2 || name == "" {
		return "", Prior{}, fmt.Errorf("%w: prior %q", ErrBadScenario, spec)
	}
	minV, err1 := strconv.ParseFloat(lo, 64)
	maxV, err2 := strconv.ParseFloat(hi, 64)
	if errors.Join(err1, err2) != nil || maxV < minV {
		return "", Prior{}, fmt.Errorf("%w: prior %q", ErrBadScenario, spec)
	}
	return name, Prior{Min: minV, Max: maxV}, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
