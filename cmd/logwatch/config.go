package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"logwatch/config"
)

const defaultConfigName = "logwatch.yml"

// configSource records where the configuration came from. Warnings are
// collected before the logger exists and logged once it is initialized.
type configSource struct {
	Path     string
	Warnings []string
}

// findConfigFile returns the first config file found, or "" to run on defaults.
func findConfigFile(configArg string) configSource {
	var src configSource
	if configArg != "" {
		if _, err := os.Stat(configArg); err == nil {
			src.Path = configArg
			return src
		}
		src.Warnings = append(src.Warnings, fmt.Sprintf("config file not found at %s, trying default locations", configArg))
	}

	if _, err := os.Stat(defaultConfigName); err == nil {
		src.Path = defaultConfigName
		return src
	}

	exePath, err := os.Executable()
	if err == nil {
		path := filepath.Join(filepath.Dir(exePath), defaultConfigName)
		if _, err := os.Stat(path); err == nil {
			src.Path = path
			return src
		}
	}

	return src
}

// loadConfig reads the config file if one exists, otherwise the defaults.
func loadConfig(configArg string) (*config.Config, configSource, error) {
	src := findConfigFile(configArg)
	if src.Path == "" {
		return config.Default(), src, nil
	}
	cfg, err := config.LoadConfig(src.Path)
	if err != nil {
		return nil, src, err
	}
	return cfg, src, nil
}

// overrides are the process flags that take precedence over the file.
type overrides struct {
	ttl        int64
	threshold  int
	cadence    int64
	top        int
	admitFirst bool
	sinks      []string
	input      string
	rules      string
	metrics    string
}

func (o *overrides) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Int64Var(&o.ttl, "ttl", 0, "alert window length in seconds")
	f.IntVarP(&o.threshold, "threshold", "t", 0, "average requests per second that raise an alert")
	f.Int64VarP(&o.cadence, "cadence", "s", 0, "summarize every N seconds of log time")
	f.IntVar(&o.top, "top", 0, "sections shown per summary (0 shows all)")
	f.BoolVar(&o.admitFirst, "admit-first", false, "count the current record before checking the threshold")
	f.StringSliceVarP(&o.sinks, "sink", "d", nil, "sinks to render to: cli, file, http, clickhouse, redis, kafka")
	f.StringVarP(&o.input, "input", "i", "", "CSV file to read, - for stdin")
	f.StringVar(&o.rules, "rules", "", "directory of Sigma rules used to tag records")
	f.StringVar(&o.metrics, "metrics-addr", "", "serve Prometheus metrics on this address")
}

// apply copies every flag the user set onto cfg.
func (o *overrides) apply(cmd *cobra.Command, cfg *config.Config) {
	lw := &cfg.Logwatch
	f := cmd.Flags()
	if f.Changed("ttl") {
		lw.Alerts.TTL = o.ttl
	}
	if f.Changed("threshold") {
		lw.Alerts.Threshold = o.threshold
	}
	if f.Changed("cadence") {
		lw.Summary.Cadence = o.cadence
	}
	if f.Changed("top") {
		lw.Summary.TopSections = o.top
	}
	if f.Changed("admit-first") {
		lw.Alerts.AdmitFirst = o.admitFirst
	}
	if f.Changed("sink") {
		lw.Output.Sinks = o.sinks
	}
	if f.Changed("input") {
		lw.Input.Mode = config.InputFile
		lw.Input.File.Path = o.input
	}
	if f.Changed("rules") {
		lw.Rules.Enabled = o.rules != ""
		lw.Rules.Path = o.rules
	}
	if f.Changed("metrics-addr") {
		lw.Metrics.Enabled = o.metrics != ""
		lw.Metrics.Addr = o.metrics
	}
}
