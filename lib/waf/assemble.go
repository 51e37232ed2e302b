package waf

import (
	"fmt"
	"net/netip"
	"strings"

	"github.com/samber/lo"
)

const (
	IPRuleName   = "ipSetAllowRule"
	RateRuleName = "rateLimitRule"
	GeoRuleName  = "geoLimitRule"

	// DefaultGeoRulePriority keeps the geo allow rule well after the managed
	// groups and any assembled rules.
	DefaultGeoRulePriority = 30

	AggregateKeyIP = "IP"

	MinRateLimit = 10
	MaxRateLimit = 2_000_000_000

	IPv4 = "IPV4"
	IPv6 = "IPV6"
)

// AssembleInput lists the optional protections to add on top of a base rule
// set. Nil or empty fields add nothing.
type AssembleInput struct {
	// NamePrefix prefixes the IP set name and rule metric names, usually
	// "<project>-<resource type>".
	NamePrefix string
	// Scope of the IP set created for Addresses.
	Scope Scope

	// Addresses are CIDR blocks allowed through by an IP set rule. All
	// entries must share one IP version.
	Addresses []string
	// RateLimit is the per-IP request threshold for a blocking rate rule.
	//
	// AWS WAF evaluates rate rules every 30 seconds over the preceding five
	// minutes, so a burst can exceed the limit for a short while before the
	// block takes effect. Up to 10,000 addresses are blocked at once.
	RateLimit *int
	// GeoCountries are ISO 3166 alpha-2 country codes allowed by a geo rule.
	GeoCountries []string

	// IPRulePriority defaults to PriorityLowestFree.
	IPRulePriority PriorityPolicy
	// RateRulePriority defaults to PriorityNext.
	RateRulePriority PriorityPolicy
	// GeoRulePriority defaults to PriorityFixed(DefaultGeoRulePriority).
	GeoRulePriority PriorityPolicy
}

// Assemble extends a copy of base with the rules requested in in. base is
// never modified. Rules are appended in the order IP set, rate limit, geo
// match, and the result is validated before it is returned.
func Assemble(base RuleSet, in AssembleInput) (RuleSet, error) {
	rs := base.Clone()
	if rs == nil {
		rs = RuleSet{}
	}

	if len(in.Addresses) > 0 {
		rule, err := ipAllowRule(rs, in)
		if err != nil {
			return nil, err
		}
		rs = append(rs, rule)
	}

	if in.RateLimit != nil {
		rule, err := rateLimitRule(rs, in)
		if err != nil {
			return nil, err
		}
		rs = append(rs, rule)
	}

	if len(in.GeoCountries) > 0 {
		rule, err := geoAllowRule(rs, in)
		if err != nil {
			return nil, err
		}
		rs = append(rs, rule)
	}

	if err := Validate(rs); err != nil {
		return nil, err
	}
	return rs, nil
}

func ipAllowRule(rs RuleSet, in AssembleInput) (Rule, error) {
	if !in.Scope.Valid() {
		return Rule{}, configErrorf("scope", ErrInvalidScope, "%q", in.Scope)
	}
	version, addresses, err := normalizeAddresses(in.Addresses)
	if err != nil {
		return Rule{}, err
	}
	priority, err := in.IPRulePriority.or(PriorityLowestFree()).Allocate(rs)
	if err != nil {
		return Rule{}, &ConfigError{Field: "ipRulePriority", Err: err}
	}
	return Rule{
		Name:     IPRuleName,
		Priority: priority,
		Action:   ActionAllow,
		Statement: IPSetReference{Set: IPSet{
			Name:             in.NamePrefix + "-waf-ip-set",
			IPAddressVersion: version,
			Scope:            in.Scope,
			Addresses:        addresses,
		}},
		Visibility: Visibility{
			MetricsEnabled:         true,
			SampledRequestsEnabled: true,
			MetricName:             in.NamePrefix + "-WafWebAclIpSetRule",
		},
	}, nil
}

func rateLimitRule(rs RuleSet, in AssembleInput) (Rule, error) {
	limit := *in.RateLimit
	if limit < MinRateLimit || limit > MaxRateLimit {
		return Rule{}, configErrorf("rateLimit", ErrInvalidStatement,
			"limit %d outside [%d, %d]", limit, MinRateLimit, MaxRateLimit)
	}
	priority, err := in.RateRulePriority.or(PriorityNext()).Allocate(rs)
	if err != nil {
		return Rule{}, &ConfigError{Field: "rateRulePriority", Err: err}
	}
	return Rule{
		Name:      RateRuleName,
		Priority:  priority,
		Action:    ActionBlock,
		Statement: RateBased{AggregateKeyType: AggregateKeyIP, Limit: limit},
		Visibility: Visibility{
			MetricsEnabled: true,
			MetricName:     in.NamePrefix + "-" + RateRuleName,
		},
	}, nil
}

func geoAllowRule(rs RuleSet, in AssembleInput) (Rule, error) {
	if lo.ContainsBy(rs, func(r Rule) bool { _, ok := r.Statement.(GeoMatch); return ok }) {
		return Rule{}, &ConfigError{Field: "geoCountries", Err: ErrDuplicateGeoRule}
	}
	codes, err := normalizeCountryCodes(in.GeoCountries)
	if err != nil {
		return Rule{}, err
	}
	priority, err := in.GeoRulePriority.or(PriorityFixed(DefaultGeoRulePriority)).Allocate(rs)
	if err != nil {
		return Rule{}, &ConfigError{Field: "geoRulePriority", Err: err}
	}
	return Rule{
		Name:      GeoRuleName,
		Priority:  priority,
		Action:    ActionAllow,
		Statement: GeoMatch{CountryCodes: codes},
		Visibility: Visibility{
			MetricsEnabled: true,
			MetricName:     in.NamePrefix + "-" + GeoRuleName,
		},
	}, nil
}

func normalizeAddresses(raw []string) (string, []string, error) {
	addresses := make([]string, 0, len(raw))
	versions := map[string]struct{}{}
	for i, a := range raw {
		a = strings.TrimSpace(a)
		prefix, err := netip.ParsePrefix(a)
		if err != nil {
			addr, addrErr := netip.ParseAddr(a)
			if addrErr != nil {
				return "", nil, configErrorf(fmt.Sprintf("addresses[%d]", i), ErrInvalidStatement, "%q is not a CIDR block", a)
			}
			prefix = netip.PrefixFrom(addr, addr.BitLen())
		}
		if prefix.Addr().Is4() {
			versions[IPv4] = struct{}{}
		} else {
			versions[IPv6] = struct{}{}
		}
		addresses = append(addresses, prefix.Masked().String())
	}
	if len(versions) > 1 {
		return "", nil, configErrorf("addresses", ErrInvalidStatement, "an IP set cannot mix IPv4 and IPv6 blocks")
	}
	return lo.Keys(versions)[0], lo.Uniq(addresses), nil
}

func normalizeCountryCodes(raw []string) ([]string, error) {
	codes := make([]string, 0, len(raw))
	for i, c := range raw {
		c = strings.ToUpper(strings.TrimSpace(c))
		if len(c) != 2 || strings.IndexFunc(c, func(r rune) bool { return r < 'A' || r > 'Z' }) >= 0 {
			return nil, configErrorf(fmt.Sprintf("geoCountries[%d]", i), ErrInvalidStatement, "%q is not an alpha-2 country code", c)
		}
		codes = append(codes, c)
	}
	return lo.Uniq(codes), nil
}
