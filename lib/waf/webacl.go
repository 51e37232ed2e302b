package waf

import (
	"fmt"
	"sort"

	"github.com/samber/lo"
	"go.uber.org/multierr"
)

// WebACL is a named, scoped policy: rules evaluated by ascending priority and
// a default action for requests no rule terminates.
type WebACL struct {
	Name          string
	Scope         Scope
	DefaultAction Action
	Rules         RuleSet
	Visibility    Visibility
}

type BuildOption func(*WebACL)

// WithDefaultAction sets the action for unmatched requests. Default allow.
func WithDefaultAction(a Action) BuildOption {
	return func(w *WebACL) { w.DefaultAction = a }
}

// WithVisibility replaces the web ACL level metrics configuration.
func WithVisibility(v Visibility) BuildOption {
	return func(w *WebACL) { w.Visibility = v }
}

// Build wraps rs into a web ACL after validating it. The returned ACL holds
// its own copy of the rules.
func Build(rs RuleSet, scope Scope, name, metricName string, opts ...BuildOption) (WebACL, error) {
	acl := WebACL{
		Name:          name,
		Scope:         scope,
		DefaultAction: ActionAllow,
		Rules:         rs.Clone(),
		Visibility: Visibility{
			MetricsEnabled:         true,
			SampledRequestsEnabled: true,
			MetricName:             metricName,
		},
	}
	for _, opt := range opts {
		opt(&acl)
	}

	var errs error
	if acl.Name == "" {
		errs = multierr.Append(errs, configErrorf("name", ErrMissingField, ""))
	}
	if acl.Visibility.MetricName == "" {
		errs = multierr.Append(errs, configErrorf("metricName", ErrMissingField, ""))
	}
	if !acl.Scope.Valid() {
		errs = multierr.Append(errs, configErrorf("scope", ErrInvalidScope, "%q", acl.Scope))
	}
	if acl.DefaultAction != ActionAllow && acl.DefaultAction != ActionBlock {
		errs = multierr.Append(errs, configErrorf("defaultAction", ErrInvalidAction, "%q", acl.DefaultAction))
	}
	errs = multierr.Append(errs, Validate(acl.Rules))
	if acl.Scope.Valid() {
		errs = multierr.Append(errs, validateIPSetScopes(acl.Rules, acl.Scope))
	}
	if errs != nil {
		return WebACL{}, errs
	}
	return acl, nil
}

// Validate reports every problem in rs: duplicate or non-positive
// priorities, duplicate names, missing statements, and actions that do not
// fit their statement.
func Validate(rs RuleSet) error {
	var errs error

	byPriority := lo.GroupBy(rs, func(r Rule) int { return r.Priority })
	priorities := lo.Keys(byPriority)
	sort.Ints(priorities)
	for _, p := range priorities {
		rules := byPriority[p]
		if p <= 0 {
			for _, r := range rules {
				errs = multierr.Append(errs, configErrorf(ruleField(r, "priority"), ErrInvalidPriority, "%d", p))
			}
		}
		if len(rules) > 1 {
			names := lo.Map(rules, func(r Rule, _ int) string { return r.Name })
			errs = multierr.Append(errs, configErrorf(fmt.Sprintf("rules[priority=%d]", p), ErrDuplicatePriority, "%d shared by %q", p, names))
		}
	}

	counts := lo.CountValuesBy(rs, func(r Rule) string { return r.Name })
	names := lo.Keys(counts)
	sort.Strings(names)
	for _, name := range names {
		if count := counts[name]; count > 1 {
			errs = multierr.Append(errs, configErrorf("rules["+name+"].name", ErrDuplicateName, "%q appears %d times", name, count))
		}
	}

	for _, r := range rs {
		errs = multierr.Append(errs, validateRule(r))
	}
	return errs
}

func validateRule(r Rule) error {
	if r.Name == "" {
		return configErrorf(ruleField(r, "name"), ErrMissingField, "")
	}
	if r.Visibility.MetricName == "" {
		return configErrorf(ruleField(r, "metricName"), ErrMissingField, "")
	}
	switch s := r.Statement.(type) {
	case nil:
		return configErrorf(ruleField(r, "statement"), ErrMissingField, "")
	case ManagedRuleGroup:
		if s.Name == "" || s.VendorName == "" {
			return configErrorf(ruleField(r, "statement"), ErrMissingField, "managed group needs vendor and name")
		}
		if r.Action != ActionNone {
			return configErrorf(ruleField(r, "action"), ErrInvalidAction, "managed groups take %q, got %q", ActionNone, r.Action)
		}
		return nil
	case IPSetReference:
		if s.Arn == "" && (s.Set.Name == "" || len(s.Set.Addresses) == 0) {
			return configErrorf(ruleField(r, "statement"), ErrMissingField, "ip set needs a name and addresses")
		}
	case RateBased:
		if s.Limit < MinRateLimit || s.Limit > MaxRateLimit {
			return configErrorf(ruleField(r, "statement"), ErrInvalidStatement, "rate limit %d", s.Limit)
		}
		if s.AggregateKeyType == "" {
			return configErrorf(ruleField(r, "statement"), ErrMissingField, "aggregate key type")
		}
	case GeoMatch:
		if len(s.CountryCodes) == 0 {
			return configErrorf(ruleField(r, "statement"), ErrMissingField, "country codes")
		}
	default:
		return configErrorf(ruleField(r, "statement"), ErrInvalidStatement, "%T", s)
	}
	if r.Action != ActionAllow && r.Action != ActionBlock {
		return configErrorf(ruleField(r, "action"), ErrInvalidAction, "custom rules must allow or block, got %q", r.Action)
	}
	return nil
}

func validateIPSetScopes(rs RuleSet, scope Scope) error {
	var errs error
	for _, set := range rs.IPSets() {
		if set.Scope != scope {
			errs = multierr.Append(errs, configErrorf("ipSets["+set.Name+"].scope", ErrScopeMismatch, "set is %s, web acl is %s", set.Scope, scope))
		}
	}
	return errs
}

func ruleField(r Rule, field string) string {
	if r.Name == "" {
		return fmt.Sprintf("rules[priority=%d].%s", r.Priority, field)
	}
	return fmt.Sprintf("rules[%s].%s", r.Name, field)
}
