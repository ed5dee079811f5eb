package main

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

// Config specifies the file format of config files.
type Config struct {
	Log *LogConfig `yaml:"log"`

	// Authorities is the number of replicas answering update queries.
	Authorities int `yaml:"authorities"`
	// Threshold is the number of colluding replicas needed to learn an identifier.
	Threshold    int `yaml:"threshold"`
	Holders      int `yaml:"holders"`
	Rounds       int `yaml:"rounds"`
	HistoryLimit int `yaml:"history-limit"`

	Timeout string `yaml:"timeout"`
	timeout time.Duration

	MetricsAddr string `yaml:"metrics-addr"` // Optional, serves /metrics while running.
}

type LogConfig struct {
	Level string `yaml:"level"`
	level logrus.Level

	Format string `yaml:"format"` // "text" or "json"
}

func ReadConfig(filename string) (*Config, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return parseConfig(raw)
}

func parseConfig(raw []byte) (*Config, error) {
	var parsed Config
	err := yaml.UnmarshalStrict(raw, &parsed)
	if err != nil {
		return nil, err
	}

	// Check that all required fields are populated.
	if parsed.Authorities == 0 {
		return nil, fmt.Errorf("field not provided: authorities")
	} else if parsed.Threshold == 0 {
		return nil, fmt.Errorf("field not provided: threshold")
	} else if parsed.Holders == 0 {
		return nil, fmt.Errorf("field not provided: holders")
	} else if parsed.Rounds == 0 {
		return nil, fmt.Errorf("field not provided: rounds")
	} else if parsed.Timeout == "" {
		return nil, fmt.Errorf("field not provided: timeout")
	}

	if parsed.Authorities < 0 {
		return nil, fmt.Errorf("invalid authorities: %d", parsed.Authorities)
	} else if parsed.Threshold < 0 || parsed.Threshold > parsed.Authorities {
		return nil, fmt.Errorf("invalid threshold: %d for %d authorities", parsed.Threshold, parsed.Authorities)
	} else if parsed.Holders < 2 {
		// every round revokes one holder and needs another to keep proving
		return nil, fmt.Errorf("invalid holders: %d, need at least 2", parsed.Holders)
	} else if parsed.Rounds < 0 {
		return nil, fmt.Errorf("invalid rounds: %d", parsed.Rounds)
	} else if parsed.HistoryLimit < 0 || parsed.HistoryLimit == 1 {
		// holders lag one deletion and one admission behind between rounds
		return nil, fmt.Errorf("invalid history-limit: %d, need 0 or at least 2", parsed.HistoryLimit)
	}

	parsed.timeout, err = time.ParseDuration(parsed.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout: %v", err)
	} else if parsed.timeout <= 0 {
		return nil, fmt.Errorf("invalid timeout: %v", parsed.timeout)
	}

	if parsed.Log == nil {
		parsed.Log = &LogConfig{}
	}
	if parsed.Log.Level == "" {
		parsed.Log.level = logrus.InfoLevel
	} else if parsed.Log.level, err = logrus.ParseLevel(parsed.Log.Level); err != nil {
		return nil, fmt.Errorf("invalid log.level: %v", err)
	}
	switch parsed.Log.Format {
	case "", "text", "json":
	default:
		return nil, fmt.Errorf("invalid log.format: %q", parsed.Log.Format)
	}

	return &parsed, nil
}

// Logger returns a logger configured by c.
func (c *LogConfig) Logger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(c.level)
	if c.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}
