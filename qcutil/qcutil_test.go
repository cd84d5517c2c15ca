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
	"bytes"
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/dispenseqc/dispenseqc"
	"github.com/kr/pretty"
)

const testPlate = "../testdata/plate.csv"

func tempDir(t *testing.T) string {
	dir, err := ioutil.TempDir("", "dispenseqc")
	if err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestVersion(t *testing.T) {
	cfg := InitializeConfig()
	buf := new(bytes.Buffer)
	cfg.Root.SetOutput(buf)
	cfg.Root.SetArgs([]string{"version"})
	if err := cfg.Root.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), dispenseqc.Version) {
		t.Errorf("version output: %q", buf.String())
	}
}

func TestRun(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)

	cfg := InitializeConfig()
	buf := new(bytes.Buffer)
	cfg.Root.SetOutput(buf)
	cfg.Root.SetArgs([]string{"run", "-f", testPlate, "-o", dir, "--XLSX",
		"--Chips", "Chip_1:rowpairs:4-12,Chip_2:quadrantgrid:13-24"})
	if err := cfg.Root.Execute(); err != nil {
		t.Fatal(err)
	}
	for _, f := range []string{
		"plate_processed.csv",
		"plate_processed.xlsx",
		filepath.Join("plots", "standard_curve.png"),
		filepath.Join("plots", "chip_1_nozzle_performance.png"),
		filepath.Join("plots", "chip_2_nozzle_performance.png"),
		filepath.Join("plots", "all_chips_nozzle_performance.png"),
	} {
		if _, err := os.Stat(filepath.Join(dir, f)); err != nil {
			t.Errorf("missing output: %v", err)
		}
	}
	out := buf.String()
	for _, want := range []string{"QC ANALYSIS SUMMARY", "Chip_2:", "Quadrant_12", "Precision: EXCELLENT"} {
		if !strings.Contains(out, want) {
			t.Errorf("output is missing %q:\n%s", want, out)
		}
	}
}

func TestRunPositional(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)

	cfg := InitializeConfig()
	cfg.Root.SetOutput(ioutil.Discard)
	cfg.Root.SetArgs([]string{"run", "--NoPlots", "-o", dir, testPlate})
	if err := cfg.Root.Execute(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "plate_processed.csv")); err != nil {
		t.Error(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "plots")); !os.IsNotExist(err) {
		t.Errorf("plots should not be written: %v", err)
	}
}

func TestRunErrors(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)

	tests := []struct {
		name string
		args []string
		kind interface{}
	}{
		{name: "target", args: []string{"-t", "0"}, kind: new(*dispenseqc.DivisionError)},
		{name: "standards", args: []string{"-c", "600,300,150"}, kind: new(*dispenseqc.ConfigError)},
		{name: "chip", args: []string{"--Chips", "Chip_1:rowpairs:24-4"}, kind: new(*dispenseqc.ConfigError)},
		{name: "topology", args: []string{"--Chips", "Chip_1:hexagonal:4-24"}, kind: new(*dispenseqc.ConfigError)},
		{name: "criteria", args: []string{"--Assessment.PrecisionGood", "MeanCV <"}, kind: new(*dispenseqc.ConfigError)},
		{name: "log level", args: []string{"--LogLevel", "loud"}, kind: new(*dispenseqc.ConfigError)},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := InitializeConfig()
			cfg.Root.SetOutput(ioutil.Discard)
			cfg.Root.SetArgs(append([]string{"run", "--NoPlots", "-f", testPlate, "-o", dir}, test.args...))
			err := cfg.Root.Execute()
			if !errors.As(err, test.kind) {
				t.Errorf("have error %v, want %T", err, test.kind)
			}
		})
	}

	cfg := InitializeConfig()
	cfg.Root.SetOutput(ioutil.Discard)
	cfg.Root.SetArgs([]string{"run", "-f", filepath.Join(dir, "missing.csv")})
	if err := cfg.Root.Execute(); err == nil {
		t.Error("a missing input file should fail")
	}
}

const testConfigFile = `
file = "../testdata/plate.csv"
StandardConcentrations = [600.0, 300.0, 150.0, 75.0, 37.5, 18.75, 9.375, 4.6875]
TargetConcentration = 80.0
NoPlots = true

[Assessment]
PrecisionExcellent = "WorstCV < 1"

[[Chips]]
ID = "Left"
Topology = "row_pairs"
Columns = "4-12"

[[Chips]]
ID = "Right"
Topology = "perwell"
Start = 13
End = 24
`

func TestRunConfigFile(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	configFile := filepath.Join(dir, "config.toml")
	if err := ioutil.WriteFile(configFile, []byte(testConfigFile), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := InitializeConfig()
	buf := new(bytes.Buffer)
	cfg.Root.SetOutput(buf)
	cfg.Root.SetArgs([]string{"run", "--config", configFile, "-o", dir})
	if err := cfg.Root.Execute(); err != nil {
		t.Fatal(err)
	}

	c, err := PipelineConfig(cfg.Viper)
	if err != nil {
		t.Fatal(err)
	}
	want := dispenseqc.Config{
		StandardConcentrations: []float64{600, 300, 150, 75, 37.5, 18.75, 9.375, 4.6875},
		TargetConcentration:    80,
		Chips: []dispenseqc.ChipConfig{
			{ID: "Left", Topology: dispenseqc.RowPairs{}, Columns: dispenseqc.ColumnRange{Start: 4, End: 12}},
			{ID: "Right", Topology: dispenseqc.PerWell{}, Columns: dispenseqc.ColumnRange{Start: 13, End: 24}},
		},
	}
	if diff := pretty.Diff(c, want); len(diff) != 0 {
		t.Error(diff)
	}
	out := buf.String()
	for _, want := range []string{"Left:", "Right:", "P24", "Precision: GOOD (MeanCV < 10)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output is missing %q:\n%s", want, out)
		}
	}
}

func TestEnvironment(t *testing.T) {
	os.Setenv("DISPENSEQC_TARGETCONCENTRATION", "50")
	os.Setenv("DISPENSEQC_CHIPS", "A:singleunit:4-24")
	defer os.Unsetenv("DISPENSEQC_TARGETCONCENTRATION")
	defer os.Unsetenv("DISPENSEQC_CHIPS")

	cfg := InitializeConfig()
	c, err := PipelineConfig(cfg.Viper)
	if err != nil {
		t.Fatal(err)
	}
	if c.TargetConcentration != 50 {
		t.Errorf("target: have %g, want 50", c.TargetConcentration)
	}
	if len(c.Chips) != 1 || c.Chips[0].ID != "A" || c.Chips[0].Topology != (dispenseqc.SingleUnit{}) {
		t.Errorf("chips: %+v", c.Chips)
	}
}

func TestTemplate(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)

	cfg := InitializeConfig()
	buf := new(bytes.Buffer)
	cfg.Root.SetOutput(buf)
	cfg.Root.SetArgs([]string{"template", "-f", testPlate, "-o", dir, "--NoPlots",
		"--Chips", "Chip_1:rowpairs:4-12", "--Chips", "Chip_2:singleunit:13-24"})
	if err := cfg.Root.Execute(); err != nil {
		t.Fatal(err)
	}

	for _, key := range []string{"file = ", "sheet = "} {
		if !strings.Contains(buf.String(), key) {
			t.Errorf("template is missing the %q key:\n%s", key, buf.String())
		}
	}

	var have templateConfig
	if _, err := toml.Decode(buf.String(), &have); err != nil {
		t.Fatalf("%v\n%s", err, buf.String())
	}
	want := templateConfig{
		File:                   testPlate,
		StandardConcentrations: []float64{600, 300, 150, 75, 37.5, 18.75, 9.375, 4.6875},
		TargetConcentration:    75,
		OutputDir:              dir,
		NoPlots:                true,
		LogLevel:               "warning",
		Chips: []templateChip{
			{ID: "Chip_1", Topology: "rowpairs", Columns: "4-12"},
			{ID: "Chip_2", Topology: "singleunit", Columns: "13-24"},
		},
		Assessment: dispenseqc.DefaultCriteria,
	}
	if diff := pretty.Diff(have, want); len(diff) != 0 {
		t.Error(diff)
	}

	// The template can be used as a configuration file.
	configFile := filepath.Join(dir, "config.toml")
	if err := ioutil.WriteFile(configFile, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	cfg = InitializeConfig()
	cfg.Root.SetOutput(ioutil.Discard)
	cfg.Root.SetArgs([]string{"run", "--config", configFile})
	if err := cfg.Root.Execute(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "plate_processed.csv")); err != nil {
		t.Error(err)
	}
}

func TestInspect(t *testing.T) {
	cfg := InitializeConfig()
	buf := new(bytes.Buffer)
	cfg.Root.SetOutput(buf)
	cfg.Root.SetArgs([]string{"inspect", testPlate})
	if err := cfg.Root.Execute(); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"360 wells with values", "Standard", "60050.00", "4.6875",
		"60350.25 59749.75 60050.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("output is missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "%!") {
		t.Errorf("badly formatted output:\n%s", out)
	}
}

func TestChipConfigs(t *testing.T) {
	want := []dispenseqc.ChipConfig{
		{ID: "A", Topology: dispenseqc.RowPairs{}, Columns: dispenseqc.ColumnRange{Start: 4, End: 12}},
		{ID: "B", Topology: dispenseqc.QuadrantGrid{}, Columns: dispenseqc.ColumnRange{Start: 13, End: 24}},
	}
	for name, in := range map[string]interface{}{
		"string":       "A:rowpairs:4-12, B:quadrant_grid:13-24",
		"string slice": []string{"A:rowpairs:4-12", "B:QuadrantGrid:13-24"},
		"tables": []map[string]interface{}{
			{"ID": "A", "Topology": "rowpairs", "Columns": "4-12"},
			{"id": "B", "topology": "quadrantgrid", "start": int64(13), "end": int64(24)},
		},
		"mixed": []interface{}{
			"A:rowpairs:4-12",
			map[string]interface{}{"ID": "B", "Topology": "quadrantgrid", "Columns": "13-24"},
		},
	} {
		t.Run(name, func(t *testing.T) {
			have, err := chipConfigs(in)
			if err != nil {
				t.Fatal(err)
			}
			if diff := pretty.Diff(have, want); len(diff) != 0 {
				t.Error(diff)
			}
		})
	}

	for _, in := range []interface{}{
		"A:rowpairs",
		"A:rowpairs:12-4",
		[]interface{}{map[string]interface{}{"ID": "A", "Topology": "rowpairs"}},
		42,
	} {
		_, err := chipConfigs(in)
		var ce *dispenseqc.ConfigError
		if !errors.As(err, &ce) {
			t.Errorf("%v: have error %v, want *ConfigError", in, err)
		}
	}
}

func TestStandardConcentrations(t *testing.T) {
	want := []float64{600, 300, 150, 75, 37.5, 18.75, 9.375, 4.6875}
	for name, in := range map[string]interface{}{
		"string":       "600, 300,150,75,37.5,18.75,9.375,4.6875",
		"string slice": []string{"600", "300", "150", "75", "37.5", "18.75", "9.375", "4.6875"},
		"toml array":   []interface{}{int64(600), int64(300), int64(150), int64(75), 37.5, 18.75, 9.375, 4.6875},
		"floats":       want,
	} {
		have, err := standardConcentrations(in)
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if diff := pretty.Diff(have, want); len(diff) != 0 {
			t.Errorf("%s: %v", name, diff)
		}
	}
	_, err := standardConcentrations("600,three")
	var ce *dispenseqc.ConfigError
	if !errors.As(err, &ce) || ce.Field != "StandardConcentrations[1]" {
		t.Errorf("have error %v, want *ConfigError for StandardConcentrations[1]", err)
	}
}
