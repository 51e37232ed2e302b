package waf

// VendorAWS is the vendor name of AWS managed rule groups.
const VendorAWS = "AWS"

var defaultManagedGroups = [...]string{
	"AWSManagedRulesCommonRuleSet",
	"AWSManagedRulesAdminProtectionRuleSet",
	"AWSManagedRulesKnownBadInputsRuleSet",
	"AWSManagedRulesAmazonIpReputationList",
	"AWSManagedRulesAnonymousIpList",
	"AWSManagedRulesBotControlRuleSet",
}

// DefaultCatalog returns the baseline managed protections at priorities 1-6.
// Every call builds a new RuleSet, so callers may extend the result freely.
func DefaultCatalog() RuleSet {
	rs := make(RuleSet, 0, len(defaultManagedGroups))
	for i, name := range defaultManagedGroups {
		rs = append(rs, ManagedRule(name, i+1))
	}
	return rs
}

// ManagedRule references an AWS managed rule group without overriding its
// actions. Metrics and sampling are on and named after the group.
func ManagedRule(name string, priority int) Rule {
	return Rule{
		Name:      name,
		Priority:  priority,
		Action:    ActionNone,
		Statement: ManagedRuleGroup{VendorName: VendorAWS, Name: name},
		Visibility: Visibility{
			MetricsEnabled:         true,
			SampledRequestsEnabled: true,
			MetricName:             name,
		},
	}
}
