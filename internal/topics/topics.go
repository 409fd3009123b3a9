// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package topics loads the list of general concepts and picks the topic of
// the day.
package topics

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"
)

// ErrNoTopics is returned when a topic file contains no usable entries.
var ErrNoTopics = errors.New("topic list is empty")

// Load reads a YAML sequence of topic strings from path. JSON arrays are
// accepted as well since JSON is valid YAML. Blank entries are dropped.
func Load(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading topics %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a topic list.
func Parse(data []byte) ([]string, error) {
	var raw []string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing topics: %w", err)
	}

	topics := make([]string, 0, len(raw))
	for _, t := range raw {
		if t = strings.TrimSpace(t); t != "" {
			topics = append(topics, t)
		}
	}
	if len(topics) == 0 {
		return nil, ErrNoTopics
	}
	return topics, nil
}

// Picker chooses a topic uniformly at random.
type Picker struct {
	topics []string
	rng    *rand.Rand
}

// NewPicker returns a Picker over topics. A zero seed seeds from the clock;
// any other seed makes the sequence of picks reproducible.
func NewPicker(topics []string, seed uint64) *Picker {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Picker{
		topics: topics,
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Pick returns one topic, or "" when the list is empty.
func (p *Picker) Pick() string {
	if len(p.topics) == 0 {
		return ""
	}
	return p.topics[p.rng.IntN(len(p.topics))]
}
