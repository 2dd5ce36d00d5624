package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"namefmt/pkg/config"
	"namefmt/pkg/progress"
	"namefmt/pkg/usecase"
)

func buildConfig() (config.Config, error) {
	cfg := config.Config{
		Recursive:      recursive,
		FilesOnly:      filesOnly,
		ExcludeDirs:    append([]string(nil), excludeDirs...),
		SequencePrefix: namePrefix,
		DryRun:         dryRun,
		Verify:         verify,
	}

	// Lower wins when both case flags are given.
	switch {
	case lower:
		cfg.CaseMode = config.CaseLower
	case capitalize:
		cfg.CaseMode = config.CaseCapitalize
	}

	if substitute != "" {
		rule, err := config.ParseSubstitution(substitute)
		if err != nil {
			return config.Config{}, err
		}
		cfg.Substitute = rule
	}

	// Tunables come from the defaults file and are checked by the service.
	return cfg, cfg.ValidateFlags()
}

func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix: config.AppName,
		Level:  log.WarnLevel,
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}

	return logger
}

func newUseCaseService(logger *log.Logger) (*usecase.Service, error) {
	defaults, err := config.LoadDefaults(cfgFile)
	if err != nil {
		return nil, err
	}

	return usecase.New(usecase.Options{
		Defaults: defaults,
		Logger:   logger,
	}), nil
}

func runRename(_ *cobra.Command, args []string) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	logger := newLogger()
	service, err := newUseCaseService(logger)
	if err != nil {
		return err
	}

	printDryRunBanner()

	execution, err := service.Run(usecase.RunRequest{
		Targets: args,
		Config:  cfg,
		OnProgress: func(stage progress.Stage, processed, total int) {
			if processed == total {
				logger.Debug("stage done", "stage", stage, "items", total)
			}
		},
	})

	result := execution.Result()
	printRenames(result.Operations)
	if verbose {
		printSummary(execution)
	}
	if err != nil {
		return err
	}

	if result.RenamedCount == 0 {
		printNothingToDo()
	}

	return nil
}
