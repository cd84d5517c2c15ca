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

package dispenseqc

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/dispenseqc/dispenseqc/internal/hash"
	"github.com/sirupsen/logrus"
)

// Stage is a state of a pipeline run.
type Stage int

// A run moves through the stages in order and stops at StageDone, or at
// StageFailed as soon as any step returns an error.
const (
	StageStart Stage = iota
	StageParsed
	StageCalibrated
	StageMapped
	StageAggregated
	StageDone
	StageFailed
)

var stageNames = [...]string{"start", "parsed", "calibrated", "mapped", "aggregated", "done", "failed"}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("Stage(%d)", int(s))
	}
	return stageNames[s]
}

// step names the work that moves a run into stage s.
func (s Stage) step() string {
	switch s {
	case StageStart:
		return "configure"
	case StageParsed:
		return "parse"
	case StageCalibrated:
		return "calibrate"
	case StageMapped:
		return "map"
	case StageAggregated:
		return "aggregate"
	default:
		return s.String()
	}
}

// Config holds the analysis settings for one plate.
type Config struct {
	// StandardConcentrations are the nominal concentrations of standards
	// 1–8.
	StandardConcentrations []float64

	// TargetConcentration is the concentration every unit was expected
	// to dispense.
	TargetConcentration float64

	// Chips are the chips to evaluate, in report order.
	Chips []ChipConfig
}

// Validate checks the configuration before any data is read.
func (c Config) Validate() error {
	if len(c.StandardConcentrations) != NumStandards {
		return &ConfigError{
			Field: "StandardConcentrations",
			Value: c.StandardConcentrations,
			Msg:   fmt.Sprintf("%d values are required, got %d", NumStandards, len(c.StandardConcentrations)),
		}
	}
	for i, v := range c.StandardConcentrations {
		if !(v > 0) || math.IsInf(v, 0) {
			return &ConfigError{
				Field: fmt.Sprintf("StandardConcentrations[%d]", i),
				Value: v,
				Msg:   "must be a positive number",
			}
		}
	}
	if c.TargetConcentration == 0 {
		return &DivisionError{}
	}
	if !finite(c.TargetConcentration) {
		return &ConfigError{Field: "TargetConcentration", Value: c.TargetConcentration, Msg: "must be a finite number"}
	}
	if len(c.Chips) == 0 {
		return &ConfigError{Field: "chips", Value: 0, Msg: "at least one chip is required"}
	}
	seen := make(map[string]bool)
	for _, chip := range c.Chips {
		if err := chip.Validate(); err != nil {
			return err
		}
		if seen[chip.ID] {
			return &ConfigError{Field: "chip id", Value: chip.ID, Msg: "chip identifiers must be unique"}
		}
		seen[chip.ID] = true
	}
	return nil
}

// Result is the output of a successful pipeline run.
type Result struct {
	Signals        *WellGrid // raw fluorescence
	Concentrations *WellGrid // calibrated concentrations
	Model          CalibrationModel
	Units          []UnitStatistic
	StandardCurve  []CalibrationPoint
	Target         float64
}

// Fingerprint returns a hash of the unit statistics and calibration
// model. Runs over identical input and configuration have identical
// fingerprints.
func (r *Result) Fingerprint() string {
	return hash.Hash(struct {
		Model CalibrationModel
		Units []UnitStatistic
	}{r.Model, r.Units})
}

// Pipeline runs the analysis of one plate: parse, calibrate, map and
// aggregate. A Pipeline holds no per-run state and may be used for
// several runs, including concurrent ones.
type Pipeline struct {
	Config Config

	// Log receives progress messages. If nil, the logrus standard
	// logger is used.
	Log logrus.FieldLogger
}

// NewPipeline returns a pipeline for the given configuration that logs
// to the logrus standard logger.
func NewPipeline(c Config) *Pipeline {
	return &Pipeline{Config: c, Log: logrus.StandardLogger()}
}

func (p *Pipeline) log() logrus.FieldLogger {
	if p.Log == nil {
		return logrus.StandardLogger()
	}
	return p.Log
}

// Run analyzes the comma-delimited plate-reader export read from r.
func (p *Pipeline) Run(r io.Reader) (*Result, error) {
	return p.run(func() (*WellGrid, error) { return ParseGrid(r) })
}

// RunFile analyzes the plate-reader export in fileName. sheet selects the
// worksheet of ".xlsx" files and is otherwise ignored.
func (p *Pipeline) RunFile(fileName, sheet string) (*Result, error) {
	return p.run(func() (*WellGrid, error) { return ReadGridFile(fileName, sheet) })
}

// RunGrid analyzes an already parsed signal grid.
func (p *Pipeline) RunGrid(g *WellGrid) (*Result, error) {
	return p.run(func() (*WellGrid, error) { return g, nil })
}

func (p *Pipeline) run(parse func() (*WellGrid, error)) (*Result, error) {
	start := time.Now()
	log := p.log()
	stage := StageStart
	fail := func(next Stage, err error) (*Result, error) {
		from := stage
		stage = StageFailed
		log.WithFields(logrus.Fields{
			"stage": stage.String(),
			"from":  from.String(),
			"step":  next.step(),
		}).WithError(err).Error("dispenseqc: run failed")
		return nil, &StageError{Stage: next, Err: err}
	}
	advance := func(next Stage, fields logrus.Fields) {
		stage = next
		log.WithFields(fields).WithField("stage", stage.String()).Info("dispenseqc: stage complete")
	}

	if err := p.Config.Validate(); err != nil {
		return fail(StageStart, err)
	}

	signals, err := parse()
	if err != nil {
		return fail(StageParsed, err)
	}
	advance(StageParsed, logrus.Fields{"wells": signals.Present()})

	model, err := BuildCalibration(signals, p.Config.StandardConcentrations)
	if err != nil {
		return fail(StageCalibrated, err)
	}
	advance(StageCalibrated, logrus.Fields{
		"points":    len(model.Points),
		"slope":     model.Slope,
		"intercept": model.Intercept,
		"r2":        model.RSquared,
	})

	conc := model.Apply(signals)
	advance(StageMapped, logrus.Fields{"wells": conc.Present()})

	units, err := Aggregate(conc, p.Config.TargetConcentration, p.Config.Chips)
	if err != nil {
		return fail(StageAggregated, err)
	}
	if len(units) == 0 {
		ids := make([]string, len(p.Config.Chips))
		for i, c := range p.Config.Chips {
			ids[i] = c.ID
		}
		return fail(StageAggregated, &NoUnitsError{Chips: ids})
	}
	advance(StageAggregated, logrus.Fields{"units": len(units), "chips": len(p.Config.Chips)})

	advance(StageDone, logrus.Fields{"walltime": time.Since(start).String()})
	return &Result{
		Signals:        signals,
		Concentrations: conc,
		Model:          model,
		Units:          units,
		StandardCurve:  model.Points,
		Target:         p.Config.TargetConcentration,
	}, nil
}
