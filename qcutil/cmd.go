/*
Copyright © 2026 the dispenseqc authors.
This file is part of dispenseqc.

dispenseqc is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

dispenseqc is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with dispenseqc.  If not, see <http://www.gnu.org/licenses/>.
*/


// Package qcutil contains the command-line interface and configuration
// handling of dispenseqc.
package qcutil

import (
	"fmt"
	"strings"

	"github.com/dispenseqc/dispenseqc"
	"github.com/lnashier/viper"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information and the command tree that reads it.
type Cfg struct {
	*viper.Viper

	Root, versionCmd, runCmd, inspectCmd, templateCmd *cobra.Command

	options []option
}

type option struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

// InitializeConfig creates a new configuration holder and command tree.
func InitializeConfig() *Cfg {
	cfg := &Cfg{Viper: viper.New()}

	cfg.Root = &cobra.Command{
		Use:   "dispenseqc",
		Short: "Quality control for liquid dispensers.",
		Long: `dispenseqc evaluates the precision and accuracy of liquid dispensing
units from a fluorescence plate-reader export of a 384-well plate.
A standard curve is fit to the standard wells in columns 1-3, every
well is converted to a concentration, and the wells of each chip are
grouped into dispensing units whose coefficient of variation and
accuracy against the target concentration are reported.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'DISPENSEQC_var' where 'var' is the
name of the variable to be set.
Refer to https://github.com/spf13/viper for additional configuration information.`,
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(*cobra.Command, []string) error { return cfg.setConfig() },
	}

	cfg.versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Long:  "version prints the version number of this version of dispenseqc.",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("dispenseqc v%s\n", dispenseqc.Version)
		},
		DisableAutoGenTag: true,
	}

	cfg.runCmd = &cobra.Command{
		Use:   "run",
		Short: "Analyze a plate-reader export.",
		Long: `run analyzes the plate-reader export given by the --file flag and
writes the processed CSV report, optionally an Excel workbook and plots,
and prints a summary with the quality assessment.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 && cfg.GetString("file") == "" {
				cfg.Set("file", args[0])
			}
			inputFile, err := checkInputFile(cfg.GetString("file"))
			if err != nil {
				return err
			}
			outputDir, err := checkOutputDir(cfg.GetString("OutputDir"))
			if err != nil {
				return err
			}
			c, err := PipelineConfig(cfg.Viper)
			if err != nil {
				return err
			}
			crit, err := criteria(cfg.Viper)
			if err != nil {
				return err
			}
			log, err := newLogger(cmd, cfg.GetString("LogLevel"))
			if err != nil {
				return err
			}
			return Run(cmd, log, inputFile, cfg.GetString("sheet"), outputDir, c, crit,
				cfg.GetBool("XLSX"), !cfg.GetBool("NoPlots"))
		},
		Args:              cobra.MaximumNArgs(1),
		DisableAutoGenTag: true,
	}

	cfg.inspectCmd = &cobra.Command{
		Use:   "inspect",
		Short: "Print the parsed well grid and standard points.",
		Long: `inspect parses the plate-reader export given by the --file flag and
prints the signal grid and the median signal of each standard without
fitting or writing anything. It is useful for checking that an export
is laid out as expected.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 && cfg.GetString("file") == "" {
				cfg.Set("file", args[0])
			}
			inputFile, err := checkInputFile(cfg.GetString("file"))
			if err != nil {
				return err
			}
			standards, err := standardConcentrations(cfg.Get("StandardConcentrations"))
			if err != nil {
				return err
			}
			return Inspect(cmd.OutOrStdout(), inputFile, cfg.GetString("sheet"), standards)
		},
		Args:              cobra.MaximumNArgs(1),
		DisableAutoGenTag: true,
	}

	cfg.templateCmd = &cobra.Command{
		Use:   "template",
		Short: "Print an example configuration file.",
		Long: `template prints a TOML configuration file holding the current
settings, which are the defaults unless changed by flags, environment
variables or another configuration file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Template(cmd.OutOrStdout(), cfg.Viper)
		},
		DisableAutoGenTag: true,
	}

	cfg.options = []option{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel is the minimum severity of log messages to print.
              Acceptable values are 'debug', 'info', 'warning' and 'error'.`,
			defaultVal: "warning",
			flagsets:   []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name: "file",
			usage: `
              file is the path to the plate-reader export to analyze, either
              comma-delimited text or an Excel workbook (.xlsx). It can
              include environment variables.`,
			shorthand:  "f",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.runCmd.Flags(), cfg.inspectCmd.Flags(), cfg.templateCmd.Flags()},
		},
		{
			name: "sheet",
			usage: `
              sheet is the worksheet of an Excel input file holding the plate
              data. If it is empty, the first worksheet is used.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.runCmd.Flags(), cfg.inspectCmd.Flags(), cfg.templateCmd.Flags()},
		},
		{
			name: "StandardConcentrations",
			usage: `
              StandardConcentrations are the nominal concentrations of standards
              1 through 8, in plate rows A, C, E, G, I, K, M and O. On the command
              line they are given as a comma-separated list.`,
			shorthand:  "c",
			defaultVal: "600,300,150,75,37.5,18.75,9.375,4.6875",
			flagsets:   []*pflag.FlagSet{cfg.runCmd.Flags(), cfg.inspectCmd.Flags(), cfg.templateCmd.Flags()},
		},
		{
			name: "TargetConcentration",
			usage: `
              TargetConcentration is the concentration every dispensing unit
              was expected to deliver. Accuracy is reported relative to it.`,
			shorthand:  "t",
			defaultVal: 75.0,
			flagsets:   []*pflag.FlagSet{cfg.runCmd.Flags(), cfg.templateCmd.Flags()},
		},
		{
			name: "Chips",
			usage: `
              Chips lists the chips on the plate. On the command line each chip
              is given as 'id:topology:start-end', where topology is one of
              rowpairs, singleunit, quadrantgrid or perwell and start-end is the
              1-based inclusive column range. In a configuration file, chips
              are given as [[Chips]] tables with ID, Topology and Columns keys.`,
			defaultVal: []string{"Chip_1:rowpairs:4-24"},
			flagsets:   []*pflag.FlagSet{cfg.runCmd.Flags(), cfg.templateCmd.Flags()},
		},
		{
			name: "OutputDir",
			usage: `
              OutputDir is the directory reports and plots are written to. If it
              is empty, output is written beside the input file. It can
              include environment variables.`,
			shorthand:  "o",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.runCmd.Flags(), cfg.templateCmd.Flags()},
		},
		{
			name: "NoPlots",
			usage: `
              NoPlots turns off writing the standard curve and unit performance
              plots.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{cfg.runCmd.Flags(), cfg.templateCmd.Flags()},
		},
		{
			name: "XLSX",
			usage: `
              XLSX specifies whether to also write the results as an Excel
              workbook.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{cfg.runCmd.Flags(), cfg.templateCmd.Flags()},
		},
		{
			name: "Assessment.PrecisionExcellent",
			usage: `
              Assessment.PrecisionExcellent is the expression a run must satisfy
              for its precision to be graded excellent. It can use the variables
              MeanCV, MeanAccuracy, BestCV, WorstCV, RSquared and Units and the
              function abs.`,
			defaultVal: dispenseqc.DefaultCriteria.PrecisionExcellent,
			flagsets:   []*pflag.FlagSet{cfg.runCmd.Flags(), cfg.templateCmd.Flags()},
		},
		{
			name: "Assessment.PrecisionGood",
			usage: `
              Assessment.PrecisionGood is the expression a run must satisfy
              for its precision to be graded good.`,
			defaultVal: dispenseqc.DefaultCriteria.PrecisionGood,
			flagsets:   []*pflag.FlagSet{cfg.runCmd.Flags(), cfg.templateCmd.Flags()},
		},
		{
			name: "Assessment.AccuracyExcellent",
			usage: `
              Assessment.AccuracyExcellent is the expression a run must satisfy
              for its accuracy to be graded excellent.`,
			defaultVal: dispenseqc.DefaultCriteria.AccuracyExcellent,
			flagsets:   []*pflag.FlagSet{cfg.runCmd.Flags(), cfg.templateCmd.Flags()},
		},
		{
			name: "Assessment.AccuracyGood",
			usage: `
              Assessment.AccuracyGood is the expression a run must satisfy
              for its accuracy to be graded good.`,
			defaultVal: dispenseqc.DefaultCriteria.AccuracyGood,
			flagsets:   []*pflag.FlagSet{cfg.runCmd.Flags(), cfg.templateCmd.Flags()},
		},
	}

	// Set the prefix for configuration environment variables.
	cfg.SetEnvPrefix("DISPENSEQC")
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()

	for _, option := range cfg.options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case []string:
				if option.shorthand == "" {
					set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
				} else {
					set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}

	// Link the commands together.
	cfg.Root.AddCommand(cfg.versionCmd)
	cfg.Root.AddCommand(cfg.runCmd)
	cfg.Root.AddCommand(cfg.inspectCmd)
	cfg.Root.AddCommand(cfg.templateCmd)
	return cfg
}

// setConfig finds and reads in the configuration file, if there is one.
func (cfg *Cfg) setConfig() error {
	if cfgpath := cfg.GetString("config"); cfgpath != "" {
		cfg.SetConfigFile(cfgpath)
		if err := cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("dispenseqc: problem reading configuration file: %v", err)
		}
	}
	return nil
}
