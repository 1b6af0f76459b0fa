package services

import (
	"strings"

	"github.com/poofware/macro-service/internal/config"
)

// EligibilityFilter decides whether a file takes part in macro search and
// update. A file is eligible when its lower-cased name contains at least one
// include marker and its upper-cased name does not contain the exclude
// marker.
type EligibilityFilter struct {
	include []string
	exclude string
}

func NewEligibilityFilter(policy config.MacroPolicy) *EligibilityFilter {
	include := make([]string, 0, len(policy.IncludeMarkers))
	for _, m := range policy.IncludeMarkers {
		include = append(include, strings.ToLower(m))
	}
	return &EligibilityFilter{
		include: include,
		exclude: strings.ToUpper(policy.ExcludeMarker),
	}
}

func (f *EligibilityFilter) IsEligible(fileName string) bool {
	if f.exclude != "" && strings.Contains(strings.ToUpper(fileName), f.exclude) {
		return false
	}
	lower := strings.ToLower(fileName)
	for _, m := range f.include {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// EligibleFiles keeps the eligible names, preserving order.
func (f *EligibilityFilter) EligibleFiles(fileNames []string) []string {
	out := make([]string, 0, len(fileNames))
	for _, name := range fileNames {
		if f.IsEligible(name) {
			out = append(out, name)
		}
	}
	return out
}
