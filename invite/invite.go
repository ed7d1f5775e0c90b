/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package invite loads the shared invitation codes that admit players.
package invite

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultCode admits players when the codes file cannot be read.
const DefaultCode = "PLAY20"

type file struct {
	Codes []string `yaml:"codes"`
}

// Codes is an immutable set of accepted invitation codes.
type Codes struct {
	set map[string]struct{}
}

// New builds a set from codes, ignoring blanks.
func New(codes ...string) *Codes {
	c := &Codes{set: make(map[string]struct{}, len(codes))}
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		c.set[code] = struct{}{}
	}
	return c
}

// Load reads a YAML file of the form:
//
//	codes:
//	  - ABC123
//	  - XYZ789
//
// On any failure, including a file with no codes, it returns a set holding
// only DefaultCode together with the error so the caller can log it.
func Load(path string) (*Codes, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return New(DefaultCode), fmt.Errorf("read invitations: %w", err)
	}

	var f file
	if err := yaml.Unmarshal(b, &f); err != nil {
		return New(DefaultCode), fmt.Errorf("parse invitations: %w", err)
	}

	c := New(f.Codes...)
	if c.Len() == 0 {
		return New(DefaultCode), fmt.Errorf("no invitation codes in %s", path)
	}

	return c, nil
}

func (c *Codes) Admit(code string) bool {
	_, ok := c.set[strings.TrimSpace(code)]
	return ok
}

func (c *Codes) Len() int {
	return len(c.set)
}
