package config

import (
	"fmt"
	"strconv"

	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

const (
	DefaultProjectName = "huang-gameday"
	DefaultStageName   = "dev"
)

// ProjectName prefixes every resource name. Change it with
// 'cdk.json/context/projectName' or `--context projectName=...`.
func ProjectName(scope constructs.Construct) string {
	return contextString(scope, "projectName", DefaultProjectName)
}

// StageName is the API Gateway deployment stage.
func StageName(scope constructs.Construct) string {
	return contextString(scope, "stageName", DefaultStageName)
}

// WithStackSuffix appends the stage name so stages deploy side by side.
func WithStackSuffix(scope constructs.Construct, name string) string {
	return fmt.Sprintf("%s-%s", name, StageName(scope))
}

// LoadBalancerArn names an existing ALB to front with CloudFront when
// originType=alb.
func LoadBalancerArn(scope constructs.Construct) string {
	return contextString(scope, "loadBalancerArn", "")
}

// ZoneName enables the hosted zone stack when set.
func ZoneName(scope constructs.Construct) string {
	return contextString(scope, "zoneName", "")
}

// PublicZone selects a public hosted zone (default) or a private one bound
// to VpcId.
func PublicZone(scope constructs.Construct) bool {
	return contextBool(scope, "publicZone", true)
}

func VpcId(scope constructs.Construct) string {
	return contextString(scope, "vpcId", "")
}

// RegionalWaf attaches a regional web ACL to the API stage in addition to
// the edge web ACL on the distribution.
func RegionalWaf(scope constructs.Construct) bool {
	return contextBool(scope, "regionalWaf", false)
}

// StaticSite toggles the S3 static site stack.
func StaticSite(scope constructs.Construct) bool {
	return contextBool(scope, "staticSite", true)
}

// Region overrides the deployment region of the regional stacks.
func Region(scope constructs.Construct) string {
	return contextString(scope, "region", "")
}

// ConfigFile points at an optional TOML or YAML project file.
func ConfigFile(scope constructs.Construct) string {
	return contextString(scope, "configFile", "")
}

func contextString(scope constructs.Construct, key, fallback string) string {
	raw := scope.Node().TryGetContext(jsii.String(key))
	if raw == nil {
		return fallback
	}
	v, ok := raw.(string)
	if !ok {
		panic(fmt.Sprintf("context %q must be a string, got %T", key, raw))
	}
	if v == "" {
		return fallback
	}
	return v
}

// contextBool accepts JSON booleans from cdk.json and strings from the
// --context flag.
func contextBool(scope constructs.Construct, key string, fallback bool) bool {
	raw := scope.Node().TryGetContext(jsii.String(key))
	switch v := raw.(type) {
	case nil:
		return fallback
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(fmt.Sprintf("context %q must be a boolean, got %q", key, v))
		}
		return b
	default:
		panic(fmt.Sprintf("context %q must be a boolean, got %T", key, raw))
	}
}
