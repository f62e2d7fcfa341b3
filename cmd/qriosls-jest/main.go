package main

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/qrioso-software/qriososls-jest/internal/config"
	"github.com/qrioso-software/qriososls-jest/internal/engine"
	"github.com/qrioso-software/qriososls-jest/internal/logging"
	"github.com/qrioso-software/qriososls-jest/internal/plugin"
	"github.com/qrioso-software/qriososls-jest/internal/runtime"
	"github.com/qrioso-software/qriososls-jest/internal/scaffold"
	"github.com/spf13/cobra"
)

func main() {
	var cfgPath, stage, region string
	var verbose bool

	logger := logging.New(os.Stderr, false)
	p := plugin.New(logger)

	root := &cobra.Command{
		Use:           "qriosls-jest",
		Short:         "Jest tests for serverless services",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logger.SetLevel(log.DebugLevel)
			}
			p.ConfigPath = cfgPath
			p.Stage = stage
			p.Region = region
		},
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", config.DefaultConfigFile, "Path of the service file")
	root.PersistentFlags().StringVarP(&stage, "stage", "s", "", "Stage used to resolve ${opt:stage}")
	root.PersistentFlags().StringVarP(&region, "region", "r", "", "Region used to resolve ${opt:region}")
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "Debug output")

	// ===== qriosls-jest init =====
	var service, rt string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create a starter serverless.yml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return err
			}
			path, err := scaffold.InitService(dir, scaffold.ServiceTemplateData{
				Service: service,
				Runtime: rt,
				Stage:   valueOr(stage, "dev"),
				Region:  valueOr(region, "us-east-1"),
			})
			if err != nil {
				return err
			}
			logger.Info("✅ Created " + path)
			return nil
		},
	}
	initCmd.Flags().StringVar(&service, "service", "my-service", "Service name")
	initCmd.Flags().StringVar(&rt, "runtime", "nodejs20.x", "Provider runtime")

	// ===== qriosls-jest validate =====
	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the service file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if _, err := runtime.NewRuntimeFactory().GetRuntime(cfg.ProviderRuntime()); err != nil {
				return err
			}
			logger.Info("✅ " + cfgPath + " is valid")
			return nil
		},
	}

	// ===== qriosls-jest doctor =====
	doctorCmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the tools tests depend on",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, bin := range []string{"node", "npx"} {
				if _, err := exec.LookPath(bin); err != nil {
					logger.Error("❌ " + bin + " not found")
				} else {
					logger.Info("✅ " + bin + " OK")
				}
			}
			dir, _ := os.Getwd()
			jest, err := engine.NewJestRunner("", logger).Command(dir)
			if err != nil {
				logger.Error("❌ jest not found", "err", err)
				return
			}
			logger.Info("✅ jest OK", "command", jest)
		},
	}

	root.AddCommand(initCmd, validateCmd, doctorCmd)
	root.AddCommand(p.CobraCommands()...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		var failure *engine.RunFailure
		if errors.As(err, &failure) {
			logger.Error("❌ " + failure.Error())
		} else {
			logger.Error("❌ " + err.Error())
		}
		stop()
		os.Exit(1)
	}
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
