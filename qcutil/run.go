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


package qcutil

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/dispenseqc/dispenseqc"
	"github.com/dispenseqc/dispenseqc/plots"
	"github.com/dispenseqc/dispenseqc/report"
	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Run analyzes inputFile, writes the processed CSV report into outputDir
// (beside the input when outputDir is empty), optionally an Excel
// workbook and plots, and prints a summary to the standard output of
// CobraCommand.
func Run(CobraCommand *cobra.Command, log logrus.FieldLogger, inputFile, sheet, outputDir string,
	c dispenseqc.Config, crit dispenseqc.Criteria, writeXLSX, makePlots bool) error {

	startTime := time.Now()
	log = log.WithField("file", filepath.Base(inputFile))

	p := &dispenseqc.Pipeline{Config: c, Log: log}
	res, err := p.RunFile(inputFile, sheet)
	if err != nil {
		return err
	}
	a, err := crit.Assess(dispenseqc.Summarize(res.Units), res.Model)
	if err != nil {
		return err
	}

	csvFile := report.CSVFileName(inputFile, outputDir)
	if err := report.SaveCSV(csvFile, res); err != nil {
		return err
	}
	log.WithField("output", csvFile).Info("dispenseqc: wrote CSV report")

	if writeXLSX {
		xlsxFile := report.XLSXFileName(inputFile, outputDir)
		if err := report.SaveXLSX(xlsxFile, res, a); err != nil {
			return err
		}
		log.WithField("output", xlsxFile).Info("dispenseqc: wrote Excel report")
	}

	if makePlots {
		dir := outputDir
		if dir == "" {
			dir = filepath.Dir(inputFile)
		}
		files, err := plots.Save(dir, res)
		if err != nil {
			return err
		}
		log.WithField("plots", len(files)).Info("dispenseqc: wrote plots")
	}

	report.WriteSummary(CobraCommand.OutOrStdout(), res, a)
	log.WithFields(logrus.Fields{
		"fingerprint": res.Fingerprint(),
		"walltime":    time.Since(startTime).String(),
	}).Info("dispenseqc: run complete")
	return nil
}

// Inspect prints the signal grid parsed from inputFile and the median
// signal of each standard to w.
func Inspect(w io.Writer, inputFile, sheet string, standards []float64) error {
	g, err := dispenseqc.ReadGridFile(inputFile, sheet)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s: %d wells with values\n\n", filepath.Base(inputFile), g.Present())
	fmt.Fprintln(w, g)
	points, err := dispenseqc.StandardPoints(g, standards)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%-9s %-6s %14s %14s %s\n", "Standard", "Row", "Concentration", "Signal", "Replicates")
	for _, pt := range points {
		reps := make([]string, len(pt.Replicates))
		for i, v := range pt.Replicates {
			reps[i] = strconv.FormatFloat(v, 'f', 2, 64)
		}
		fmt.Fprintf(w, "%-9d %-6s %14g %14.2f %s\n", pt.Standard,
			dispenseqc.RowLabel(dispenseqc.StandardRows[pt.Standard-1]), pt.Concentration, pt.Signal,
			strings.Join(reps, " "))
	}
	return nil
}

// templateChip is a chip as written to a configuration file.
type templateChip struct {
	ID       string
	Topology string
	Columns  string
}

// templateConfig is the layout of a configuration file.
type templateConfig struct {
	File                   string `toml:"file"`
	Sheet                  string `toml:"sheet"`
	StandardConcentrations []float64
	TargetConcentration    float64
	OutputDir              string
	NoPlots                bool
	XLSX                   bool
	LogLevel               string
	Chips                  []templateChip
	Assessment             dispenseqc.Criteria
}

// Template writes the configuration held in cfg to w as a TOML file that
// can be given to the --config flag.
func Template(w io.Writer, cfg *viper.Viper) error {
	standards, err := standardConcentrations(cfg.Get("StandardConcentrations"))
	if err != nil {
		return err
	}
	chips, err := chipConfigs(cfg.Get("Chips"))
	if err != nil {
		return err
	}
	crit, err := criteria(cfg)
	if err != nil {
		return err
	}
	t := templateConfig{
		File:                   cfg.GetString("file"),
		Sheet:                  cfg.GetString("sheet"),
		StandardConcentrations: standards,
		TargetConcentration:    cfg.GetFloat64("TargetConcentration"),
		OutputDir:              cfg.GetString("OutputDir"),
		NoPlots:                cfg.GetBool("NoPlots"),
		XLSX:                   cfg.GetBool("XLSX"),
		LogLevel:               cfg.GetString("LogLevel"),
		Assessment:             crit,
	}
	for _, c := range chips {
		t.Chips = append(t.Chips, templateChip{ID: c.ID, Topology: c.Topology.String(), Columns: c.Columns.String()})
	}
	if err := toml.NewEncoder(w).Encode(t); err != nil {
		return fmt.Errorf("dispenseqc: writing configuration template: %v", err)
	}
	return nil
}
