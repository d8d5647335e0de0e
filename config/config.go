// Package config loads the inputs of the overhead model: cost table, network
// shape, variants and export options.
package config

import (
	"bytes"
	"math"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/sarchlab/hesmodel"
	"github.com/sarchlab/hesmodel/costmodel"
)

// DefaultWorkers is the assumed number of parallel workers.
const DefaultWorkers = 10

// LayerConfig describes one dense layer.
type LayerConfig struct {
	Name    string `yaml:"name"`
	Inputs  int    `yaml:"inputs"`
	Outputs int    `yaml:"outputs"`
}

// NetworkConfig describes the trained network, either inline or as a CSV
// file. The file takes precedence when both are given.
type NetworkConfig struct {
	File   string        `yaml:"file"`
	Layers []LayerConfig `yaml:"layers"`
}

// PayloadConfig overrides the number of elements each round moves.
type PayloadConfig struct {
	FullGradient *int64 `yaml:"fullGradient"`
	Stochastic   *int64 `yaml:"stochastic"`
}

// VariantConfig describes one strategy.
type VariantConfig struct {
	Name               string `yaml:"name"`
	Label              string `yaml:"label"`
	Period             int    `yaml:"period"`
	FullGradientRounds int    `yaml:"fullGradientRounds"`
	Baseline           bool   `yaml:"baseline"`
}

// OutputConfig controls the exported chart.
type OutputConfig struct {
	Dir     string   `yaml:"dir"`
	DPI     int      `yaml:"dpi"`
	Formats []string `yaml:"formats"`
	Width   float64  `yaml:"width"`
	Height  float64  `yaml:"height"`
}

// Config is the full configuration of a run.
type Config struct {
	Workers  int                `yaml:"workers"`
	Runtime  map[string]float64 `yaml:"runtime"`
	Memory   map[string]int64   `yaml:"memory"`
	Payload  PayloadConfig      `yaml:"payload"`
	Network  NetworkConfig      `yaml:"network"`
	Variants []VariantConfig    `yaml:"variants"`
	Output   OutputConfig       `yaml:"output"`
}

// Default returns the configuration the model was published with.
func Default() *Config {
	c := &Config{
		Workers: DefaultWorkers,
		Output: OutputConfig{
			Dir:     "./cs230-out/",
			DPI:     600,
			Formats: []string{"eps", "png", "svg"},
			Width:   6.4,
			Height:  4.8,
		},
	}

	for _, l := range hesmodel.DefaultNetwork() {
		c.Network.Layers = append(c.Network.Layers, LayerConfig{
			Name:    l.Name,
			Inputs:  l.Inputs,
			Outputs: l.Outputs,
		})
	}

	for _, v := range hesmodel.DefaultVariants() {
		c.Variants = append(c.Variants, VariantConfig{
			Name:               v.Name,
			Label:              v.Label,
			Period:             v.Period,
			FullGradientRounds: v.FullGradientRounds,
			Baseline:           v.Baseline,
		})
	}

	return c
}

// Load reads a YAML file on top of the defaults. Keys that are absent from
// the file keep their default value; lists replace the default list.
func Load(path string) (*Config, error) {
	bs, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return nil, errors.Wrap(err, "error reading configuration file")
	}

	return Parse(bs)
}

// Parse decodes YAML on top of the defaults. Unknown keys are rejected.
func Parse(bs []byte) (*Config, error) {
	c := Default()

	if len(bytes.TrimSpace(bs)) == 0 {
		return c, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(bs))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return nil, errors.Wrap(err, "cannot unmarshal configuration")
	}

	return c, nil
}

// Validate reports every problem of the configuration at once.
func (c *Config) Validate() error {
	var errs *multierror.Error

	if c.Workers <= 0 {
		errs = multierror.Append(errs, errors.Errorf("workers must be positive, got %d", c.Workers))
	}

	for name, v := range c.Runtime {
		if _, err := hesmodel.ParseOperation(name); err != nil {
			errs = multierror.Append(errs, errors.Wrap(err, "runtime"))
		}
		switch {
		case math.IsNaN(v) || math.IsInf(v, 0):
			errs = multierror.Append(errs, errors.Wrapf(hesmodel.ErrInvalidCost, "runtime of %s is %v", name, v))
		case v < 0:
			errs = multierror.Append(errs, errors.Wrapf(hesmodel.ErrNegativeCost, "runtime of %s is %v", name, v))
		}
	}

	for name, v := range c.Memory {
		if _, err := hesmodel.ParseOperation(name); err != nil {
			errs = multierror.Append(errs, errors.Wrap(err, "memory"))
		}
		if v < 0 {
			errs = multierror.Append(errs, errors.Wrapf(hesmodel.ErrNegativeCost, "memory of %s is %d", name, v))
		}
	}

	if p := c.Payload.FullGradient; p != nil && *p < 0 {
		errs = multierror.Append(errs, errors.Wrapf(hesmodel.ErrNegativeCost, "full-gradient payload is %d", *p))
	}
	if p := c.Payload.Stochastic; p != nil && *p < 0 {
		errs = multierror.Append(errs, errors.Wrapf(hesmodel.ErrNegativeCost, "stochastic payload is %d", *p))
	}

	if c.Network.File == "" {
		if err := c.inlineNetwork().Validate(); err != nil {
			errs = multierror.Append(errs, errors.Wrap(err, "network"))
		}
	}

	variants := c.BuildVariants()
	for _, v := range variants {
		if err := v.Validate(); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	if _, err := hesmodel.FindBaseline(variants); err != nil {
		errs = multierror.Append(errs, err)
	}

	if c.Output.Dir == "" {
		errs = multierror.Append(errs, errors.New("output directory is empty"))
	}
	if c.Output.DPI <= 0 {
		errs = multierror.Append(errs, errors.Errorf("dpi must be positive, got %d", c.Output.DPI))
	}
	if c.Output.Width <= 0 || c.Output.Height <= 0 {
		errs = multierror.Append(errs, errors.Errorf("chart size %vx%v", c.Output.Width, c.Output.Height))
	}
	for _, f := range c.Output.Formats {
		switch f {
		case "eps", "png", "svg":
		default:
			errs = multierror.Append(errs, errors.Errorf("unsupported format %q", f))
		}
	}

	return errs.ErrorOrNil()
}

func (c *Config) inlineNetwork() hesmodel.Network {
	n := make(hesmodel.Network, 0, len(c.Network.Layers))
	for _, l := range c.Network.Layers {
		n = append(n, hesmodel.Layer{Name: l.Name, Inputs: l.Inputs, Outputs: l.Outputs})
	}

	return n
}

// BuildNetwork returns the configured network, loading it from file if one
// is given.
func (c *Config) BuildNetwork() (hesmodel.Network, error) {
	if c.Network.File != "" {
		loader := hesmodel.NetworkLoader{Path: c.Network.File}
		return loader.Load()
	}

	n := c.inlineNetwork()
	if err := n.Validate(); err != nil {
		return nil, err
	}

	return n, nil
}

// BuildVariants returns the configured variants in order.
func (c *Config) BuildVariants() []hesmodel.Variant {
	variants := make([]hesmodel.Variant, 0, len(c.Variants))
	for _, v := range c.Variants {
		variants = append(variants, hesmodel.Variant{
			Name:               v.Name,
			Label:              v.Label,
			Period:             v.Period,
			FullGradientRounds: v.FullGradientRounds,
			Baseline:           v.Baseline,
		})
	}

	return variants
}

// BuildCostTable assembles the cost table. Memory costs and the full-gradient
// payload are derived from the network unless set explicitly.
func (c *Config) BuildCostTable() (*costmodel.Table, error) {
	network, err := c.BuildNetwork()
	if err != nil {
		return nil, err
	}

	runtimes := costmodel.DefaultRuntimes()
	for name, v := range c.Runtime {
		op, err := hesmodel.ParseOperation(name)
		if err != nil {
			return nil, err
		}
		runtimes[op] = v
	}

	memory := costmodel.MemoryFromNetwork(network)
	for name, v := range c.Memory {
		op, err := hesmodel.ParseOperation(name)
		if err != nil {
			return nil, err
		}
		memory[op] = v
	}

	payloads := costmodel.PayloadsFromNetwork(network)
	if p := c.Payload.FullGradient; p != nil {
		payloads[hesmodel.FullGradient] = *p
	}
	if p := c.Payload.Stochastic; p != nil {
		payloads[hesmodel.Stochastic] = *p
	}

	return costmodel.Assemble(runtimes, memory, payloads)
}
