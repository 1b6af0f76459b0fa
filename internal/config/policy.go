package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/poofware/macro-service/internal/constants"
	"gopkg.in/yaml.v3"
)

// MacroPolicy decides which uploaded files the macro endpoints may touch.
//
// IncludeMarkers are matched case-insensitively against lower-cased file
// names, ExcludeMarker against upper-cased ones. PriorityFiles is the fixed
// fast-path set, in display order. MakroFile and HesapFile back the two
// single-file searches.
type MacroPolicy struct {
	IncludeMarkers []string `yaml:"include_markers"`
	ExcludeMarker  string   `yaml:"exclude_marker"`
	PriorityFiles  []string `yaml:"priority_files"`
	MakroFile      string   `yaml:"makro_file"`
	HesapFile      string   `yaml:"hesap_file"`
}

func DefaultPolicy() MacroPolicy {
	return MacroPolicy{
		IncludeMarkers: slices.Clone(constants.DefaultIncludeMarkers),
		ExcludeMarker:  constants.DefaultExcludeMarker,
		PriorityFiles:  slices.Clone(constants.DefaultPriorityFiles),
		MakroFile:      constants.DefaultMakroFile,
		HesapFile:      constants.DefaultHesapFile,
	}
}

// LoadPolicy reads a YAML policy file over the defaults. Keys missing from
// the file keep their default value. An empty path returns the defaults.
func LoadPolicy(path string) (MacroPolicy, error) {
	policy := DefaultPolicy()
	if path == "" {
		return policy, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return MacroPolicy{}, fmt.Errorf("read policy file: %w", err)
	}
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return MacroPolicy{}, fmt.Errorf("parse policy file: %w", err)
	}
	if err := policy.Validate(); err != nil {
		return MacroPolicy{}, err
	}
	return policy, nil
}

func (p MacroPolicy) Validate() error {
	if len(p.IncludeMarkers) == 0 {
		return errors.New("policy: include_markers must not be empty")
	}
	for _, m := range p.IncludeMarkers {
		if strings.TrimSpace(m) == "" {
			return errors.New("policy: include_markers must not contain blank entries")
		}
	}
	if len(p.PriorityFiles) == 0 {
		return errors.New("policy: priority_files must not be empty")
	}
	if p.MakroFile == "" || p.HesapFile == "" {
		return errors.New("policy: makro_file and hesap_file are required")
	}
	return nil
}

func (p MacroPolicy) IsPriorityFile(fileName string) bool {
	return slices.Contains(p.PriorityFiles, fileName)
}
