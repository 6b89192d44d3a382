// Package config provides the psrs configuration: defaults, loading from
// JSON or YAML, and validation.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/regsample/psrs/psrs"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DisplayDemo = "demo" // fixed number of values per line
	DisplayTest = "test" // single line

	DefaultParticipants = 4
	DefaultCount        = 64
	DefaultPerLine      = 10
	DefaultMin          = 0
	DefaultMax          = 500
	DefaultServiceName  = "psrs"
)

type (
	Config struct {
		Job     JobConf     `json:"job" yaml:"job"`
		Input   InputConf   `json:"input" yaml:"input"`
		Output  OutputConf  `json:"output" yaml:"output"`
		Log     LogConf     `json:"log" yaml:"log"`
		History HistoryConf `json:"history" yaml:"history"`
		Metrics MetricsConf `json:"metrics" yaml:"metrics"`
		Tracing TracingConf `json:"tracing" yaml:"tracing"`
	}
	JobConf struct {
		LocalSort    string `json:"local_sort" yaml:"local_sort"`
		Merge        string `json:"merge" yaml:"merge"`
		Shortfall    string `json:"shortfall" yaml:"shortfall"`
		Participants int    `json:"participants" yaml:"participants"`
		Root         int    `json:"root" yaml:"root"`
		LinkBuffer   int    `json:"link_buffer" yaml:"link_buffer"`
		Compression  bool   `json:"compression" yaml:"compression"`
		Checksum     bool   `json:"checksum" yaml:"checksum"`
		Verbose      bool   `json:"verbose" yaml:"verbose"`
	}
	InputConf struct {
		File  string `json:"file" yaml:"file"` // C array literal; when set, count/seed/min/max are ignored
		Count int    `json:"count" yaml:"count"`
		Seed  uint64 `json:"seed" yaml:"seed"` // zero: random
		Min   int64  `json:"min" yaml:"min"`
		Max   int64  `json:"max" yaml:"max"` // inclusive
	}
	OutputConf struct {
		Display string `json:"display" yaml:"display"`
		Save    string `json:"save" yaml:"save"` // job report (see cmn/jsp)
		PerLine int    `json:"per_line" yaml:"per_line"`
	}
	LogConf struct {
		Dir      string `json:"dir" yaml:"dir"`
		ToStderr bool   `json:"to_stderr" yaml:"to_stderr"`
	}
	HistoryConf struct {
		DB string `json:"db" yaml:"db"` // buntdb file, or ":memory:"
	}
	MetricsConf struct {
		Listen string `json:"listen" yaml:"listen"` // e.g. ":9090"; empty: disabled
	}
	// OpenTelemetry spans exported over OTLP/gRPC
	TracingConf struct {
		Endpoint    string  `json:"exporter_endpoint" yaml:"exporter_endpoint"`
		ServiceName string  `json:"service_name" yaml:"service_name"`
		SampleRatio float64 `json:"sample_ratio" yaml:"sample_ratio"`
		Enabled     bool    `json:"enabled" yaml:"enabled"`
		Insecure    bool    `json:"insecure" yaml:"insecure"` // plaintext gRPC
	}
)

func Default() *Config {
	return &Config{
		Job: JobConf{
			Participants: DefaultParticipants,
			LocalSort:    psrs.SortPdq,
			Merge:        psrs.MergeKway,
			Shortfall:    psrs.ShortfallRepeat,
		},
		Input:   InputConf{Count: DefaultCount, Min: DefaultMin, Max: DefaultMax},
		Output:  OutputConf{Display: DisplayTest, PerLine: DefaultPerLine},
		Tracing: TracingConf{ServiceName: DefaultServiceName, SampleRatio: 1},
	}
}

// Load overlays the file's contents onto defaults and validates the result.
// The format is determined by the extension: .json, .yaml, or .yml.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	config := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = jsoniter.Unmarshal(b, config)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, config)
	default:
		return nil, fmt.Errorf("config %q: unsupported format %q (expecting .json, .yaml, or .yml)", path, ext)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse config %q", path)
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config %q", path)
	}
	return config, nil
}

func (c *Config) Validate() error {
	if err := c.Job.Validate(); err != nil {
		return err
	}
	if err := c.Input.Validate(c.Job.Participants); err != nil {
		return err
	}
	if err := c.Output.Validate(); err != nil {
		return err
	}
	return c.Tracing.Validate()
}

func (c *JobConf) Validate() error {
	if c.Participants <= 0 {
		return fmt.Errorf("invalid job.participants=%d (must be positive)", c.Participants)
	}
	if c.Root < 0 || c.Root >= c.Participants {
		return fmt.Errorf("invalid job.root=%d (expecting [0, %d))", c.Root, c.Participants)
	}
	if c.LinkBuffer < 0 {
		return fmt.Errorf("invalid job.link_buffer=%d (must be non-negative)", c.LinkBuffer)
	}
	return nil
}

// Options converts the job section; psrs.Run validates the algorithm choices.
func (c *JobConf) Options() *psrs.Options {
	return &psrs.Options{
		Participants: c.Participants,
		Root:         c.Root,
		LocalSort:    c.LocalSort,
		Merge:        c.Merge,
		Shortfall:    c.Shortfall,
		Compress:     c.Compression,
		Checksum:     c.Checksum,
		LinkBuffer:   c.LinkBuffer,
		Verbose:      c.Verbose,
	}
}

func (c *InputConf) Validate(participants int) error {
	if c.File != "" {
		return nil
	}
	if c.Count < 0 {
		return fmt.Errorf("invalid input.count=%d (must be non-negative)", c.Count)
	}
	if participants > 0 && c.Count%participants != 0 {
		return fmt.Errorf("invalid input.count=%d (must be divisible by %d participants)", c.Count, participants)
	}
	if c.Min > c.Max {
		return fmt.Errorf("invalid input range [%d, %d]", c.Min, c.Max)
	}
	return nil
}

func (c *OutputConf) Validate() error {
	if c.Display != DisplayDemo && c.Display != DisplayTest {
		return fmt.Errorf("invalid output.display=%q (expecting %q or %q)", c.Display, DisplayDemo, DisplayTest)
	}
	if c.PerLine <= 0 {
		return fmt.Errorf("invalid output.per_line=%d (must be positive)", c.PerLine)
	}
	return nil
}

func (c *TracingConf) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Endpoint == "" {
		return errors.New("invalid tracing.exporter_endpoint: must be set when tracing is enabled")
	}
	if c.SampleRatio < 0 || c.SampleRatio > 1 {
		return fmt.Errorf("invalid tracing.sample_ratio=%v (expecting [0, 1])", c.SampleRatio)
	}
	if c.ServiceName == "" {
		c.ServiceName = DefaultServiceName
	}
	return nil
}
