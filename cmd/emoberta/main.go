// Command emoberta runs the training pipeline: a hyperparameter search
// stage, a full per-seed training stage, or both back to back.
package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/emoberta/emoberta/internal/config"
	"github.com/emoberta/emoberta/internal/train"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})

	if err := rootCommand().Execute(); err != nil {
		logrus.Fatal(err)
	}
}

func rootCommand() *cobra.Command {
	var configPath string
	var verbose bool

	root := &cobra.Command{
		Use:           "emoberta",
		Short:         "Train the conversational emotion classifier",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "train-erc-text.yaml", "training configuration file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	loadConfig := func() (*config.Train, error) {
		cfg, err := config.LoadTrain(configPath)
		if err != nil {
			return nil, err
		}
		logrus.WithFields(logrus.Fields{
			"config":  configPath,
			"dataset": cfg.Dataset,
			"output":  cfg.OutputDir,
		}).Info("loaded training configuration")
		return cfg, nil
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "search",
			Short: "Sweep candidate learning rates and write hp.json",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				hp, err := train.Search(cfg)
				if err != nil {
					return err
				}
				fmt.Printf("best learning rate: %g\n", hp.LearningRate)
				return nil
			},
		},
		&cobra.Command{
			Use:   "train",
			Short: "Train one full model per seed using hp.json",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				best, err := train.Full(cfg)
				if err != nil {
					return err
				}
				fmt.Printf("best checkpoint: %s (seed %d, f1=%.4f)\n", best.Dir, best.Seed, best.F1Weighted)
				return nil
			},
		},
		&cobra.Command{
			Use:   "pipeline",
			Short: "Run search then full training in one go",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				best, err := train.Pipeline(cfg)
				if err != nil {
					return err
				}
				fmt.Printf("best checkpoint: %s (seed %d, f1=%.4f)\n", best.Dir, best.Seed, best.F1Weighted)
				return nil
			},
		},
	)
	return root
}
