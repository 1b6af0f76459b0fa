package services

import "github.com/poofware/macro-service/internal/config"

type ScopeKind int

const (
	ScopeAllEligible ScopeKind = iota
	ScopeFixedPrioritySet
	ScopeSingleFile
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeAllEligible:
		return "all_eligible"
	case ScopeFixedPrioritySet:
		return "priority"
	case ScopeSingleFile:
		return "single_file"
	default:
		return "unknown"
	}
}

// SearchScope selects the candidate file set of a search.
type SearchScope struct {
	Kind     ScopeKind
	FileName string // only for ScopeSingleFile
}

func AllEligible() SearchScope { return SearchScope{Kind: ScopeAllEligible} }

func FixedPrioritySet() SearchScope { return SearchScope{Kind: ScopeFixedPrioritySet} }

func SingleFile(name string) SearchScope {
	return SearchScope{Kind: ScopeSingleFile, FileName: name}
}

func MakroScope(policy config.MacroPolicy) SearchScope { return SingleFile(policy.MakroFile) }

func HesapScope(policy config.MacroPolicy) SearchScope { return SingleFile(policy.HesapFile) }

// ParseScope maps the CLI scope names onto a SearchScope.
func ParseScope(name string, policy config.MacroPolicy) (SearchScope, bool) {
	switch name {
	case "", "all":
		return AllEligible(), true
	case "priority":
		return FixedPrioritySet(), true
	case "makro":
		return MakroScope(policy), true
	case "hesap":
		return HesapScope(policy), true
	default:
		return SearchScope{}, false
	}
}
