package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/pkg/errors"
	log "github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/maxgio92/eaudit/internal/output"
	"github.com/maxgio92/eaudit/pkg/config"
	"github.com/maxgio92/eaudit/pkg/counters"
	"github.com/maxgio92/eaudit/pkg/report"
	"github.com/maxgio92/eaudit/pkg/sampler"
	"github.com/maxgio92/eaudit/pkg/symbolize"
	"github.com/maxgio92/eaudit/pkg/tracer"
)

// sysfsMountPath is where the RAPL energy hierarchy lives on every
// target this profiler runs against.
const sysfsMountPath = "/sys"

// statusRefreshRate governs how often the live status line updates
// while a profiling run is in progress.
const statusRefreshRate = 500 * time.Millisecond

// Options holds the flat CLI's flag values (§6) alongside the common
// context/logger every command needs.
type Options struct {
	period       int64
	outputPrefix string

	processorModelPath string
	uncoreModelPath    string

	*CommonOptions
}

// NewRootCmd builds the single flat command the spec's CLI contract
// describes: `profiler [options] executable [args...]`.
func NewRootCmd(opts *CommonOptions) *cobra.Command {
	o := new(Options)
	o.CommonOptions = opts

	cmd := &cobra.Command{
		Use:                   "eaudit [options] executable [args...]",
		Short:                 "eaudit attributes hardware-counter energy to functions of a target program",
		Long:                  `eaudit is a ptrace-based sampling profiler that attributes instruction, cycle and RAPL energy counters to the functions of a target program, per CPU core.`,
		DisableAutoGenTag:     true,
		DisableFlagsInUseLine: true,
		SilenceUsage:          true,
		Args:                  cobra.MinimumNArgs(1),
		RunE:                  o.Run,
	}
	cmd.Flags().SetInterspersed(false)

	cmd.Flags().Int64VarP(&o.period, "period", "p", int64(config.DefaultPeriod/time.Microsecond), "Sample period in microseconds")
	cmd.Flags().StringVarP(&o.outputPrefix, "output", "o", config.DefaultOutputPrefix, "Output prefix/path for the TSV report")
	cmd.Flags().StringVarP(&o.processorModelPath, "model", "m", "", "Model file for the processor-energy plane")
	cmd.Flags().StringVarP(&o.processorModelPath, "core-model", "c", "", "Model file for the processor plane (alias of -m)")
	cmd.Flags().StringVarP(&o.uncoreModelPath, "uncore-model", "u", "", "Model file for the uncore plane")

	return cmd
}

// Execute wires the profiler's context, logger and root command, and
// translates a run's outcome into the spec's exit-code contract: 0 on
// success, -1 on configuration or tracing failure.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGKILL)

	logger := log.New(
		log.ConsoleWriter{Out: os.Stderr},
	).With().Timestamp().Logger()

	go func() {
		<-ctx.Done()
		cancel()
	}()

	opts := NewCommonOptions(
		WithContext(ctx),
		WithLogger(logger),
	)

	if err := NewRootCmd(opts).Execute(); err != nil {
		os.Exit(-1)
	}
}

func (o *Options) Run(cmd *cobra.Command, args []string) error {
	cfg := &config.Config{
		Period:             time.Duration(o.period) * time.Microsecond,
		OutputPrefix:       o.outputPrefix,
		ProcessorModelPath: o.processorModelPath,
		UncoreModelPath:    o.uncoreModelPath,
		TargetPath:         args[0],
		TargetArgs:         args[1:],
	}

	if err := cfg.Validate(); err != nil {
		o.Logger.Error().Err(err).Msg("configuration error")
		return err
	}

	models, err := config.LoadModels(cfg)
	if err != nil {
		o.Logger.Error().Err(err).Msg("failed to load energy models")
		return err
	}

	provider, err := counters.NewProvider(sysfsMountPath)
	if err != nil {
		o.Logger.Error().Err(err).Msg("failed to init counter provider")
		return err
	}

	s, err := sampler.NewSampler(
		sampler.WithPeriod(cfg.Period),
		sampler.WithPhysicalCores(physicalCores()),
		sampler.WithProvider(provider),
		sampler.WithProcessorModel(models.Processor),
		sampler.WithUncoreModel(models.Uncore),
		sampler.WithDRAMModel(models.DRAM),
		sampler.WithLogger(&o.Logger),
	)
	if err != nil {
		o.Logger.Error().Err(err).Msg("failed to init sampler")
		return err
	}

	proc, err := tracer.Launch(cfg.TargetPath, cfg.TargetArgs)
	if err != nil {
		o.Logger.Error().Err(err).Msg("failed to launch target")
		return errors.Wrapf(err, "launching %q", cfg.TargetPath)
	}

	if err := s.Attach(proc.Process.Pid); err != nil {
		o.Logger.Error().Err(err).Msg("failed to attach to target")
		return err
	}

	// The status line only reads values local to this goroutine
	// (start time, pid): the Attribution Table and Tracked-Thread set
	// stay single-writer inside s.Run.
	started := time.Now()
	statusCtx, stopStatus := context.WithCancel(o.Ctx)
	defer stopStatus()
	go output.StatusBar(statusCtx, statusRefreshRate, func() {
		output.PrintRight(fmt.Sprintf("sampling %s (pid %d), %s elapsed", cfg.TargetPath, proc.Process.Pid, time.Since(started).Round(time.Second)))
	})

	result, err := s.Run()
	stopStatus()
	if err != nil {
		o.Logger.Error().Err(err).Msg("sampling run failed")
		return err
	}

	symbolizer := symbolize.NewSymbolizer(cfg.TargetPath, &o.Logger)
	rep := report.Build(result, symbolizer.Resolve)

	outPath := cfg.OutputPrefix + ".tsv"
	f, err := os.Create(outPath)
	if err != nil {
		o.Logger.Error().Err(err).Str("path", outPath).Msg("failed to create report file")
		return errors.Wrapf(err, "creating %q", outPath)
	}
	defer f.Close()

	if err := rep.WriteAll(f); err != nil {
		o.Logger.Error().Err(err).Msg("failed to write report")
		return err
	}

	o.Logger.Info().Str("path", outPath).Msg("report written")

	return nil
}

// physicalCores treats hardware_concurrency/2 as the physical-core
// count (§GLOSSARY): samples on indices at or beyond this are
// secondary hardware threads and are discarded.
func physicalCores() int {
	n := runtime.NumCPU() / 2
	if n < 1 {
		return 1
	}
	return n
}
