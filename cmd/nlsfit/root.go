// SPDX-License-Identifier: MIT

package main

import (
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/InaEriksson/TSRT14/logging"
)

const envPrefix = "NLSFIT"

// newViper returns a viper instance reading NLSFIT_* variables and the
// given flags; flags win over the environment.
func newViper(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return nil, err
	}

	return v, nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "nlsfit",
		Short:         "Nonlinear least-squares curve fitting",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")
	root.PersistentFlags().Bool("no-color", false, "disable colored log output")

	root.AddCommand(newFitCmd(), newModelsCmd())

	return root
}

// loggerFor builds the logger selected by the persistent flags.
func loggerFor(cmd *cobra.Command, v *viper.Viper) (*slog.Logger, error) {
	level, err := logging.ParseLevel(v.GetString("log-level"))
	if err != nil {
		return nil, err
	}

	return logging.New(cmd.ErrOrStderr(), level, v.GetBool("no-color")), nil
}
