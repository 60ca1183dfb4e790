// Command starmap lays out scored issues, pull requests and TODOs as a polar star map.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/starmap/pkg/config"
	"github.com/vanderheijden86/starmap/pkg/layout"
	"github.com/vanderheijden86/starmap/pkg/loader"
	"github.com/vanderheijden86/starmap/pkg/model"
)

// app is the state shared by every subcommand of one invocation.
type app struct {
	configPath    string
	includeClosed bool

	// Layout overrides, applied only when the flag was given.
	innerRadius   float64
	outerRadius   float64
	minSeparation float64
	iterations    int
	maxEdges      int
	proximity     float64

	cfg    config.Config
	engine *layout.Engine
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "starmap",
		Short:         "Lay out issues, pull requests and TODOs as a polar star map",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default "+config.ConfigPath()+")")
	pf.BoolVar(&a.includeClosed, "include-closed", false, "keep closed and merged nodes")
	pf.Float64Var(&a.innerRadius, "inner-radius", 0, "radius of the most important node")
	pf.Float64Var(&a.outerRadius, "outer-radius", 0, "radius of the least important node")
	pf.Float64Var(&a.minSeparation, "min-separation", 0, "overlap threshold in polar distance")
	pf.IntVar(&a.iterations, "iterations", 0, "relaxation iterations")
	pf.IntVar(&a.maxEdges, "max-edges", 0, "maximum retained edges")
	pf.Float64Var(&a.proximity, "proximity", 0, "proximity edge threshold")

	root.AddCommand(newLayoutCmd(a))
	root.AddCommand(newRankCmd(a))
	root.AddCommand(newEdgesCmd(a))
	root.AddCommand(newSnapshotCmd(a))
	root.AddCommand(newWatchCmd(a))
	root.AddCommand(newReportCmd(a))
	root.AddCommand(newConfigCmd(a))
	root.AddCommand(newVersionCmd())
	return root
}

// setup loads the config, applies environment and flag overrides, and builds the engine.
func (a *app) setup(cmd *cobra.Command) error {
	var (
		cfg config.Config
		err error
	)
	if a.configPath != "" {
		if _, statErr := os.Stat(a.configPath); statErr != nil {
			return fmt.Errorf("config file: %w", statErr)
		}
		cfg, err = config.LoadFrom(a.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	cfg = cfg.ApplyEnvOverrides()

	flags := cmd.Flags()
	if flags.Changed("inner-radius") {
		cfg.Layout.InnerRadius = a.innerRadius
	}
	if flags.Changed("outer-radius") {
		cfg.Layout.OuterRadius = a.outerRadius
	}
	if flags.Changed("min-separation") {
		cfg.Layout.MinSeparation = a.minSeparation
	}
	if flags.Changed("iterations") {
		cfg.Layout.Iterations = a.iterations
	}
	if flags.Changed("max-edges") {
		cfg.Layout.MaxRenderedEdges = a.maxEdges
	}
	if flags.Changed("proximity") {
		cfg.Layout.ProximityThreshold = a.proximity
	}

	engine, err := layout.NewEngine(cfg.Layout)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.engine = engine
	return nil
}

func (a *app) parseOptions() loader.ParseOptions {
	return loader.ParseOptions{IncludeClosed: a.includeClosed}
}

// resolve maps a node argument (path, directory or configured input name) to a file.
func (a *app) resolve(args []string) (string, error) {
	arg := ""
	if len(args) > 0 {
		arg = a.cfg.ResolveInput(args[0])
	}
	return loader.ResolvePath(arg)
}

// load resolves and reads the node file named by args.
func (a *app) load(args []string) (*loader.Dataset, error) {
	path, err := a.resolve(args)
	if err != nil {
		return nil, err
	}
	return loader.Load(path, a.parseOptions())
}

// compute loads the nodes and runs one layout pass.
func (a *app) compute(args []string) (*loader.Dataset, *layout.Result, error) {
	ds, err := a.load(args)
	if err != nil {
		return nil, nil, err
	}
	return ds, a.engine.Compute(ds.Nodes), nil
}

func nodeIndex(nodes []model.Node) map[string]model.Node {
	idx := make(map[string]model.Node, len(nodes))
	for _, n := range nodes {
		if _, ok := idx[n.ID]; !ok {
			idx[n.ID] = n
		}
	}
	return idx
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
