package waf

import (
	"strings"

	"github.com/samber/lo"
)

// Action is what a rule does with a matching request. Managed rule groups
// carry ActionNone, meaning the group's own actions are not overridden.
type Action string

const (
	ActionAllow Action = "allow"
	ActionBlock Action = "block"
	ActionNone  Action = "none"
)

// Scope is where a web ACL is evaluated.
type Scope string

const (
	// ScopeEdge web ACLs protect CloudFront distributions and live in us-east-1.
	ScopeEdge     Scope = "CLOUDFRONT"
	ScopeRegional Scope = "REGIONAL"
)

func (s Scope) Valid() bool {
	return s == ScopeEdge || s == ScopeRegional
}

// ScopeForResourceType maps a protected resource type name to a scope: only
// "cloudfront" (any case) is edge scoped.
func ScopeForResourceType(resourceType string) Scope {
	if strings.EqualFold(resourceType, string(ScopeEdge)) {
		return ScopeEdge
	}
	return ScopeRegional
}

type Visibility struct {
	MetricsEnabled         bool
	SampledRequestsEnabled bool
	MetricName             string
}

// Statement is the match condition of a rule. The set of implementations is
// closed: ManagedRuleGroup, IPSetReference, RateBased and GeoMatch.
type Statement interface {
	isStatement()
	clone() Statement
}

type ManagedRuleGroup struct {
	VendorName string
	Name       string
}

// IPSet describes an address set owned by the web ACL that references it.
type IPSet struct {
	Name             string
	IPAddressVersion string
	Scope            Scope
	Addresses        []string
}

// IPSetReference points a rule at an IP set. When Arn is set it refers to an
// existing set and Set is only descriptive.
type IPSetReference struct {
	Set IPSet
	Arn string
}

// RateBased matches once more than Limit requests per evaluation window
// arrive for the same aggregation key.
type RateBased struct {
	AggregateKeyType string
	Limit            int
}

type GeoMatch struct {
	CountryCodes []string
}

func (ManagedRuleGroup) isStatement() {}
func (IPSetReference) isStatement()   {}
func (RateBased) isStatement()        {}
func (GeoMatch) isStatement()         {}

func (s ManagedRuleGroup) clone() Statement { return s }
func (s RateBased) clone() Statement        { return s }

func (s IPSetReference) clone() Statement {
	s.Set.Addresses = append([]string(nil), s.Set.Addresses...)
	return s
}

func (s GeoMatch) clone() Statement {
	s.CountryCodes = append([]string(nil), s.CountryCodes...)
	return s
}

type Rule struct {
	Name       string
	Priority   int
	Action     Action
	Statement  Statement
	Visibility Visibility
}

// Clone returns a deep copy of the rule.
func (r Rule) Clone() Rule {
	if r.Statement != nil {
		r.Statement = r.Statement.clone()
	}
	return r
}

// RuleSet is evaluated in ascending priority order. Assembly only appends.
type RuleSet []Rule

// Clone returns an independent deep copy.
func (rs RuleSet) Clone() RuleSet {
	if rs == nil {
		return nil
	}
	return lo.Map(rs, func(r Rule, _ int) Rule { return r.Clone() })
}

func (rs RuleSet) Priorities() []int {
	return lo.Map(rs, func(r Rule, _ int) int { return r.Priority })
}

// Find returns the rule with the given name.
func (rs RuleSet) Find(name string) (Rule, bool) {
	return lo.Find(rs, func(r Rule) bool { return r.Name == name })
}

// IPSets returns the distinct IP sets the rule set needs created, in rule
// order. References to existing sets by ARN are skipped.
func (rs RuleSet) IPSets() []IPSet {
	var sets []IPSet
	for _, r := range rs {
		ref, ok := r.Statement.(IPSetReference)
		if !ok || ref.Arn != "" {
			continue
		}
		if lo.ContainsBy(sets, func(s IPSet) bool { return s.Name == ref.Set.Name }) {
			continue
		}
		sets = append(sets, ref.Clone().Set)
	}
	return sets
}

// Clone returns a copy of the reference that shares no address slice.
func (s IPSetReference) Clone() IPSetReference {
	return s.clone().(IPSetReference)
}
