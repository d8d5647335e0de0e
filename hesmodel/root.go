package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot/vg"

	"github.com/sarchlab/hesmodel/accounting"
	"github.com/sarchlab/hesmodel/chart"
	"github.com/sarchlab/hesmodel/config"
)

type options struct {
	level      string
	color      bool
	configFile string
	export     bool
	outDir     string
}

func setLogrus(level string, color bool) error {
	l, err := logrus.ParseLevel(level)
	if err != nil {
		return errors.Wrap(err, "invalid log level")
	}

	logrus.SetLevel(l)
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
		DisableColors: !color,
	})

	return nil
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "hesmodel [args...]",
		Short: "compare the overheads of parallel BGD and hybrid evolutionary strategies",
		Long: "hesmodel estimates the per-chunk runtime, memory and network " +
			"traffic of every variant, normalizes them against the baseline " +
			"and prints them. With --export, or with any number of extra " +
			"arguments, the chart is also written as eps, png and svg. " +
			"A first argument of \"replay\" runs the replay subcommand instead.",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return setLogrus(opts.level, opts.color)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, len(args) > 0)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.level, "level", "l", "info",
		"set the logging level (can be one of: trace, debug, info, warn, error, or fatal)")
	cmd.PersistentFlags().BoolVar(&opts.color, "color", false, "colorize log output")
	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "",
		"path to a YAML file overriding costs, network, variants and output")
	cmd.Flags().BoolVar(&opts.export, "export", false, "export the chart to static images")
	cmd.Flags().StringVarP(&opts.outDir, "out", "o", "", "override the export directory")

	cmd.AddCommand(newReplayCmd(opts))

	return cmd
}

func loadConfig(opts *options) (*config.Config, error) {
	c := config.Default()
	if opts.configFile != "" {
		var err error
		c, err = config.Load(opts.configFile)
		if err != nil {
			return nil, err
		}
	}

	if opts.outDir != "" {
		c.Output.Dir = opts.outDir
	}

	if err := c.Validate(); err != nil {
		return nil, errors.Wrap(err, "illegal configuration")
	}

	return c, nil
}

func buildModel(c *config.Config) (*accounting.Model, error) {
	costs, err := c.BuildCostTable()
	if err != nil {
		return nil, err
	}

	return &accounting.Model{
		Costs:    costs,
		Variants: c.BuildVariants(),
		Workers:  c.Workers,
	}, nil
}

func run(cmd *cobra.Command, opts *options, legacyExport bool) error {
	c, err := loadConfig(opts)
	if err != nil {
		return err
	}

	model, err := buildModel(c)
	if err != nil {
		return err
	}

	report, err := model.Run()
	if err != nil {
		return err
	}

	if err := chart.WriteTable(cmd.OutOrStdout(), report); err != nil {
		return err
	}

	if !opts.export && !legacyExport {
		logrus.Debug("export not requested, no files written")
		return nil
	}

	p, err := chart.New(report)
	if err != nil {
		return err
	}

	exporter := &chart.Exporter{
		Dir:     c.Output.Dir,
		Formats: c.Output.Formats,
		DPI:     c.Output.DPI,
		Width:   vg.Length(c.Output.Width) * vg.Inch,
		Height:  vg.Length(c.Output.Height) * vg.Inch,
	}

	_, err = exporter.Export(p)

	return err
}
