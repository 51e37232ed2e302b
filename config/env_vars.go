package config

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/caarlos0/env/v11"
	"github.com/gameday/rekognition-edge/infra/lib/waf"
)

// WafEnvironmentVariables override the [waf] section of the project file.
type WafEnvironmentVariables struct {
	// RateLimit is requests per five minute window per source IP.
	RateLimit *int `env:"WAF_RATE_LIMIT"`
	// comma separated ISO 3166 alpha-2 codes, e.g. "JP,US"
	GeoCountries []string `env:"WAF_GEO_COUNTRIES" envSeparator:","`
	// comma separated CIDR blocks
	AllowAddresses []string `env:"WAF_ALLOW_ADDRESSES" envSeparator:","`
	// lowest-free | next | fixed:N
	IPRulePriority   waf.PriorityPolicy `env:"WAF_IP_RULE_PRIORITY"`
	RateRulePriority waf.PriorityPolicy `env:"WAF_RATE_RULE_PRIORITY"`
	GeoRulePriority  waf.PriorityPolicy `env:"WAF_GEO_RULE_PRIORITY"`
}

// IsStackInSynthesis reports whether the stack holding scope is bundled in
// this synthesis. `cdk ls` and stacks left out by --exclusively are not.
func IsStackInSynthesis(scope constructs.Construct) bool {
	stack := awscdk.Stack_Of(scope)
	return stack != nil && *stack.BundlingRequired()
}

// GetEnvironmentVariables parses T from the process environment. Outside
// synthesis it returns the zero T so listing stacks needs no variables.
func GetEnvironmentVariables[T any](scope constructs.Construct) T {
	var envObj T

	// only run if we are synthesizing the stack
	if !IsStackInSynthesis(scope) {
		return envObj
	}

	err := env.Parse(&envObj)
	if err != nil {
		panic(err)
	}

	return envObj
}
