// The MIT License
//
// Copyright (c) 2020 Temporal Technologies Inc.  All rights reserved.
//
// Copyright (c) 2020 Uber Technologies, Inc.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package engineconfig loads engine-wide defaults — retry policy, timeout
// policy, default worker count, rate-limit defaults — from YAML, with an
// optional file-watcher for hot reload. None of this is consulted by the
// workflow package itself; it exists for callers that want one place to
// configure the defaults they pass into NewTaskWorkflow/NewParallelWorkflow/
// NewRateLimitedWorkflow constructors.
package engineconfig

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	yamlv3 "gopkg.in/yaml.v3"

	"go.flowkit.dev/workflow"
)

// validate backs Load's struct-tag validation, same instance-reuse
// convention as the root package's construction.go.
var validate = validator.New()

// RetryConfig configures a RetryPolicy built via ToRetryPolicy.
type RetryConfig struct {
	Strategy   string        `yaml:"strategy" validate:"required,oneof=none constant linear exponential exponential_jitter"`
	MaxRetries int           `yaml:"maxRetries" validate:"gte=0"`
	Delay      time.Duration `yaml:"delay"`
	Cap        time.Duration `yaml:"cap"`
}

// ToRetryPolicy builds the workflow.RetryPolicy this config describes.
func (c RetryConfig) ToRetryPolicy() (workflow.RetryPolicy, error) {
	switch c.Strategy {
	case "none", "":
		return workflow.NoRetry(), nil
	case "constant":
		return workflow.RetryConstant(c.MaxRetries, c.Delay), nil
	case "linear":
		return workflow.RetryLinear(c.MaxRetries, c.Delay), nil
	case "exponential":
		return workflow.RetryExponential(c.MaxRetries, c.Delay), nil
	case "exponential_jitter":
		return workflow.RetryExponentialWithJitter(c.MaxRetries, c.Delay, c.Cap), nil
	default:
		return nil, fmt.Errorf("engineconfig: unknown retry strategy %q", c.Strategy)
	}
}

// Config is the top-level engine configuration document.
type Config struct {
	DefaultRetry          RetryConfig   `yaml:"defaultRetry"`
	DefaultTimeout        time.Duration `yaml:"defaultTimeout"`
	DefaultWorkerCount    int           `yaml:"defaultWorkerCount" validate:"gte=1"`
	DefaultRateLimit      float64       `yaml:"defaultRateLimit" validate:"gte=0"`
	DefaultRateLimitBurst int           `yaml:"defaultRateLimitBurst" validate:"gte=0"`
}

// ToTimeoutPolicy builds the workflow.TimeoutPolicy DefaultTimeout describes.
func (c Config) ToTimeoutPolicy() workflow.TimeoutPolicy {
	return workflow.NewTimeoutPolicy(c.DefaultTimeout)
}

// Load reads and validates a Config from path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("engineconfig: reading %s: %w", path, err)
	}
	var cfg Config
	if err := yamlv3.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("engineconfig: parsing %s: %w", path, err)
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("engineconfig: validating %s: %w", path, err)
	}
	if err := validate.Struct(cfg.DefaultRetry); err != nil {
		return nil, fmt.Errorf("engineconfig: validating %s: %w", path, err)
	}
	return &cfg, nil
}

// Store holds the most recently loaded Config and optionally refreshes it
// on file change.
type Store struct {
	mu  sync.RWMutex
	cfg *Config
}

// NewStore wraps an already-loaded Config.
func NewStore(cfg *Config) *Store {
	return &Store{cfg: cfg}
}

// Current returns the most recently loaded Config.
func (s *Store) Current() *Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

func (s *Store) set(cfg *Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
}
