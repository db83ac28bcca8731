package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"canonize/internal/canonizer"
	"canonize/internal/config"
	"canonize/internal/logging"
	"canonize/internal/spec"
	"canonize/internal/stage"
	"canonize/internal/telemetry"
	"canonize/sink"
	kafkasink "canonize/sink/kafka"
	stdoutsink "canonize/sink/stdout"
)

func main() {
	logging.InitFromEnv()

	var logLevel string
	var logJSON bool

	root := &cobra.Command{
		Use:          "canonize",
		Short:        "Transform ingested vault data to canonical form",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if cmd.Flags().Changed("log-level") || cmd.Flags().Changed("log-json") {
				logging.Configure(logging.Options{Level: logLevel, JSON: logJSON})
			}
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug|info|warn|error")
	root.PersistentFlags().BoolVar(&logJSON, "log-json", false, "emit JSON logs")

	root.AddCommand(newRunCmd(), newTransformCmd())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	var cfgPath string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the canonize stage against the vault",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStage(cmd.Context(), cfgPath)
		},
	}
	cmd.Flags().StringVar(&cfgPath, "config", "canonize.yml", "stage config file")
	return cmd
}

func runStage(ctx context.Context, cfgPath string) error {
	cfg, enginePath, err := config.LoadStageSpec(cfgPath)
	if err != nil {
		return fmt.Errorf("stage config: %w", err)
	}
	engineCfg, err := config.LoadEngineConfig(enginePath)
	if err != nil {
		return fmt.Errorf("engine config: %w", err)
	}

	eng, err := canonizer.NewEngine(cfg.Engine.Driver)
	if err != nil {
		return err
	}
	if err := eng.Configure(engineCfg); err != nil {
		return err
	}
	defer eng.Close()

	s := stage.New(cfg, engineCfg, eng)
	if err := s.Validate(); err != nil {
		logging.L().Error("stage validation failed", "err", err)
		return err
	}

	if cfg.MetricsPort > 0 {
		telemetry.Expose(cfg.MetricsPort)
	}

	sinks, err := buildSinks(cfg)
	if err != nil {
		return err
	}
	defer func() {
		for _, d := range sinks {
			_ = d.Close()
		}
	}()

	start := time.Now()
	res := s.Execute(ctx)
	res.DurationSeconds = time.Since(start).Seconds()

	payload, err := json.Marshal(res)
	if err != nil {
		return err
	}
	for _, d := range sinks {
		if err := d.Publish(stage.Name, payload); err != nil {
			logging.L().Warn("result sink publish failed", "err", err)
		}
	}

	if !res.Success {
		logging.L().Error("stage failed", "err", res.ErrorMessage)
		return fmt.Errorf("%s", res.ErrorMessage)
	}
	logging.L().Info("stage complete",
		"records", res.RecordsProcessed,
		"output_files", len(res.OutputFiles),
		"duration_s", res.DurationSeconds)
	return nil
}

func buildSinks(cfg spec.File) ([]sink.Adapter, error) {
	names := cfg.Sinks
	if len(names) == 0 {
		names = []string{"stdout"}
	}

	var sinks []sink.Adapter
	for _, name := range names {
		drv, err := sink.NewAdapter(name)
		if err != nil {
			return nil, err
		}

		switch name {
		case "stdout":
			err = drv.Configure(stdoutsink.Config{
				Pretty: cfg.SinkConfigs.Stdout.Pretty,
			})
		case "kafka":
			err = drv.Configure(kafkasink.Config{
				Brokers: cfg.SinkConfigs.Kafka.Brokers,
				Topic:   cfg.SinkConfigs.Kafka.Topic,
				Acks:    cfg.SinkConfigs.Kafka.Acks,
			})
		default:
			err = fmt.Errorf("no config block for sink %q", name)
		}
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, drv)
	}
	return sinks, nil
}

func newTransformCmd() *cobra.Command {
	var engineCfgPath, meta, input, output string
	cmd := &cobra.Command{
		Use:   "transform",
		Short: "Run one JSONL file through the canonizer (--input mode)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return transformFile(cmd.Context(), engineCfgPath, meta, input, output)
		},
	}
	cmd.Flags().StringVar(&engineCfgPath, "engine-config", "", "engine runtime config file")
	cmd.Flags().StringVar(&meta, "meta", "", "transform metadata file")
	cmd.Flags().StringVar(&input, "input", "", "input JSONL file")
	cmd.Flags().StringVar(&output, "output", "", "append canonical output here (default stdout)")
	_ = cmd.MarkFlagRequired("meta")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func transformFile(ctx context.Context, engineCfgPath, meta, input, output string) error {
	engineCfg, err := config.LoadEngineConfig(engineCfgPath)
	if err != nil {
		return fmt.Errorf("engine config: %w", err)
	}

	drv := &canonizer.ExecDriver{}
	if err := drv.Configure(engineCfg); err != nil {
		return err
	}

	res, err := drv.TransformFile(ctx, meta, input)
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return res.FailureError("")
	}

	if output == "" {
		fmt.Print(res.Stdout)
	} else {
		f, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		if _, err := f.WriteString(res.Stdout); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}

	logging.L().Info("transformed file",
		"input", input, "records", strings.Count(res.Stdout, "\n"))
	return nil
}
