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
	"os"
	"strings"

	"github.com/dispenseqc/dispenseqc"
	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

// checkInputFile makes sure that the input file is specified and exists,
// and expands any environment variables.
func checkInputFile(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`dispenseqc: you need to specify an input file (for example: --file="plate.csv")`)
	}
	f = os.ExpandEnv(f)
	if _, err := os.Stat(f); err != nil {
		return f, fmt.Errorf("dispenseqc: the input file can't be read: %v", err)
	}
	return f, nil
}

// checkOutputDir expands any environment variables in the output directory
// and creates it if it doesn't exist. An empty directory means output is
// written beside the input file.
func checkOutputDir(dir string) (string, error) {
	if dir == "" {
		return "", nil
	}
	dir = os.ExpandEnv(dir)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return dir, fmt.Errorf("dispenseqc: creating OutputDir: %v", err)
	}
	return dir, nil
}

// standardConcentrations converts the StandardConcentrations configuration
// variable, which is a comma-separated string when set from the command
// line and an array when set from a configuration file.
func standardConcentrations(v interface{}) ([]float64, error) {
	var vals []interface{}
	switch t := v.(type) {
	case []float64:
		return t, nil
	case string:
		for _, s := range strings.Split(t, ",") {
			if s = strings.TrimSpace(s); s != "" {
				vals = append(vals, s)
			}
		}
	case []string:
		for _, s := range t {
			vals = append(vals, strings.TrimSpace(s))
		}
	case []interface{}:
		vals = t
	default:
		return nil, &dispenseqc.ConfigError{Field: "StandardConcentrations", Value: v, Msg: "invalid type"}
	}
	o := make([]float64, len(vals))
	for i, val := range vals {
		f, err := cast.ToFloat64E(val)
		if err != nil {
			return nil, &dispenseqc.ConfigError{
				Field: fmt.Sprintf("StandardConcentrations[%d]", i),
				Value: val,
				Msg:   err.Error(),
			}
		}
		o[i] = f
	}
	return o, nil
}

// parseChip parses a chip given as "id:topology:start-end".
func parseChip(s string) (dispenseqc.ChipConfig, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return dispenseqc.ChipConfig{}, &dispenseqc.ConfigError{
			Field: "Chips",
			Value: s,
			Msg:   "chips must be given as 'id:topology:start-end'",
		}
	}
	return newChip(parts[0], parts[1], parts[2])
}

func newChip(id, topology, columns string) (dispenseqc.ChipConfig, error) {
	t, err := dispenseqc.ParseTopology(topology)
	if err != nil {
		return dispenseqc.ChipConfig{}, err
	}
	cr, err := dispenseqc.ParseColumnRange(columns)
	if err != nil {
		return dispenseqc.ChipConfig{}, err
	}
	c := dispenseqc.ChipConfig{ID: strings.TrimSpace(id), Topology: t, Columns: cr}
	return c, c.Validate()
}

// chipTable converts one [[Chips]] table of a configuration file. Keys are
// matched without regard to case. The column range is either a "Columns"
// string or "Start" and "End" integers.
func chipTable(v interface{}) (dispenseqc.ChipConfig, error) {
	m, err := cast.ToStringMapE(v)
	if err != nil {
		return dispenseqc.ChipConfig{}, &dispenseqc.ConfigError{Field: "Chips", Value: v, Msg: err.Error()}
	}
	lower := make(map[string]interface{}, len(m))
	for k, val := range m {
		lower[strings.ToLower(k)] = val
	}
	id, err := cast.ToStringE(lower["id"])
	if err != nil {
		return dispenseqc.ChipConfig{}, &dispenseqc.ConfigError{Field: "Chips.ID", Value: lower["id"], Msg: err.Error()}
	}
	topology, err := cast.ToStringE(lower["topology"])
	if err != nil {
		return dispenseqc.ChipConfig{}, &dispenseqc.ConfigError{Field: "Chips.Topology", Value: lower["topology"], Msg: err.Error()}
	}
	if cols, ok := lower["columns"]; ok {
		s, err := cast.ToStringE(cols)
		if err != nil {
			return dispenseqc.ChipConfig{}, &dispenseqc.ConfigError{Field: "Chips.Columns", Value: cols, Msg: err.Error()}
		}
		return newChip(id, topology, s)
	}
	start, err := cast.ToIntE(lower["start"])
	if err != nil {
		return dispenseqc.ChipConfig{}, &dispenseqc.ConfigError{Field: "Chips.Start", Value: lower["start"], Msg: err.Error()}
	}
	end, err := cast.ToIntE(lower["end"])
	if err != nil {
		return dispenseqc.ChipConfig{}, &dispenseqc.ConfigError{Field: "Chips.End", Value: lower["end"], Msg: err.Error()}
	}
	return newChip(id, topology, fmt.Sprintf("%d-%d", start, end))
}

// chipConfigs converts the Chips configuration variable, accounting for
// the fact that it is a list of strings when set from the command line
// and a list of tables when set from a configuration file.
func chipConfigs(v interface{}) ([]dispenseqc.ChipConfig, error) {
	var o []dispenseqc.ChipConfig
	add := func(c dispenseqc.ChipConfig, err error) error {
		if err != nil {
			return err
		}
		o = append(o, c)
		return nil
	}
	switch t := v.(type) {
	case string:
		t = strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(t), "["), "]")
		for _, s := range strings.Split(t, ",") {
			if err := add(parseChip(s)); err != nil {
				return nil, err
			}
		}
	case []string:
		for _, s := range t {
			if err := add(parseChip(s)); err != nil {
				return nil, err
			}
		}
	case []map[string]interface{}:
		for _, m := range t {
			if err := add(chipTable(m)); err != nil {
				return nil, err
			}
		}
	case []interface{}:
		for _, val := range t {
			if s, ok := val.(string); ok {
				if err := add(parseChip(s)); err != nil {
					return nil, err
				}
				continue
			}
			if err := add(chipTable(val)); err != nil {
				return nil, err
			}
		}
	default:
		return nil, &dispenseqc.ConfigError{Field: "Chips", Value: v, Msg: "invalid type"}
	}
	return o, nil
}

// PipelineConfig unmarshals a viper configuration for an analysis run.
func PipelineConfig(cfg *viper.Viper) (dispenseqc.Config, error) {
	standards, err := standardConcentrations(cfg.Get("StandardConcentrations"))
	if err != nil {
		return dispenseqc.Config{}, err
	}
	target, err := cast.ToFloat64E(cfg.Get("TargetConcentration"))
	if err != nil {
		return dispenseqc.Config{}, &dispenseqc.ConfigError{
			Field: "TargetConcentration",
			Value: cfg.Get("TargetConcentration"),
			Msg:   err.Error(),
		}
	}
	chips, err := chipConfigs(cfg.Get("Chips"))
	if err != nil {
		return dispenseqc.Config{}, err
	}
	c := dispenseqc.Config{
		StandardConcentrations: standards,
		TargetConcentration:    target,
		Chips:                  chips,
	}
	return c, c.Validate()
}

// criteria unmarshals the quality assessment expressions.
func criteria(cfg *viper.Viper) (dispenseqc.Criteria, error) {
	c := dispenseqc.Criteria{
		PrecisionExcellent: cfg.GetString("Assessment.PrecisionExcellent"),
		PrecisionGood:      cfg.GetString("Assessment.PrecisionGood"),
		AccuracyExcellent:  cfg.GetString("Assessment.AccuracyExcellent"),
		AccuracyGood:       cfg.GetString("Assessment.AccuracyGood"),
	}
	return c, c.Check()
}

// newLogger returns a logger writing to the error stream of cmd at the
// given level.
func newLogger(cmd *cobra.Command, level string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, &dispenseqc.ConfigError{Field: "LogLevel", Value: level, Msg: err.Error()}
	}
	log := logrus.New()
	log.Out = cmd.OutOrStderr()
	log.Level = lvl
	return log, nil
}
