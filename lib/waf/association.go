package waf

import (
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go/aws/arn"
)

// ResourceFamily is the kind of AWS resource an ARN names, as far as web ACL
// scoping is concerned.
type ResourceFamily string

const (
	// FamilyUnknown is returned for ARNs that are not resolved yet, such as
	// CDK tokens. Scope checks are skipped for them.
	FamilyUnknown        ResourceFamily = ""
	FamilyDistribution   ResourceFamily = "cloudfront-distribution"
	FamilyAPIStage       ResourceFamily = "apigateway-stage"
	FamilyLoadBalancer   ResourceFamily = "application-load-balancer"
	FamilyGraphQLAPI     ResourceFamily = "appsync-graphql-api"
	FamilyUserPool       ResourceFamily = "cognito-user-pool"
	FamilyAppRunner      ResourceFamily = "apprunner-service"
	FamilyVerifiedAccess ResourceFamily = "verified-access-instance"
)

// EdgeRegion is the only region that can hold edge scoped web ACLs.
const EdgeRegion = "us-east-1"

const unresolvedTokenMarker = "${Token["

// Scope returns the web ACL scope able to protect the family. ok is false
// for FamilyUnknown.
func (f ResourceFamily) Scope() (scope Scope, ok bool) {
	switch f {
	case FamilyUnknown:
		return "", false
	case FamilyDistribution:
		return ScopeEdge, true
	default:
		return ScopeRegional, true
	}
}

var apiStageResource = regexp.MustCompile(`^/restapis/[^/]+/stages/[^/]+$`)

// IsUnresolved reports whether s still contains a CDK token placeholder.
func IsUnresolved(s string) bool {
	return strings.Contains(s, unresolvedTokenMarker)
}

// ClassifyArn returns the resource family of a protectable resource ARN.
// Unresolved tokens yield FamilyUnknown unless the service and resource
// type parts are literal.
func ClassifyArn(resourceArn string) (ResourceFamily, error) {
	if resourceArn == "" {
		return FamilyUnknown, configErrorf("resourceArn", ErrMissingField, "")
	}
	parsed, err := arn.Parse(resourceArn)
	if err != nil {
		if IsUnresolved(resourceArn) {
			return FamilyUnknown, nil
		}
		return FamilyUnknown, configErrorf("resourceArn", ErrMalformedArn, "%q: %v", resourceArn, err)
	}
	if IsUnresolved(parsed.Service) {
		return FamilyUnknown, nil
	}

	family := FamilyUnknown
	switch parsed.Service {
	case "cloudfront":
		if strings.HasPrefix(parsed.Resource, "distribution/") {
			family = FamilyDistribution
		}
	case "apigateway":
		if apiStageResource.MatchString(parsed.Resource) {
			family = FamilyAPIStage
		}
	case "elasticloadbalancing":
		if strings.HasPrefix(parsed.Resource, "loadbalancer/app/") {
			family = FamilyLoadBalancer
		}
	case "appsync":
		if strings.HasPrefix(parsed.Resource, "apis/") {
			family = FamilyGraphQLAPI
		}
	case "cognito-idp":
		if strings.HasPrefix(parsed.Resource, "userpool/") {
			family = FamilyUserPool
		}
	case "apprunner":
		if strings.HasPrefix(parsed.Resource, "service/") {
			family = FamilyAppRunner
		}
	case "ec2":
		if strings.HasPrefix(parsed.Resource, "verified-access-instance/") {
			family = FamilyVerifiedAccess
		}
	}
	if family == FamilyUnknown {
		if IsUnresolved(parsed.Resource) && !strings.Contains(parsed.Resource, "/") {
			return FamilyUnknown, nil
		}
		return FamilyUnknown, configErrorf("resourceArn", ErrUnsupportedResource, "%s resource %q", parsed.Service, parsed.Resource)
	}
	return family, nil
}

// Association pairs one web ACL with one protected resource.
type Association struct {
	WebACL      WebACL
	ResourceArn string
	Family      ResourceFamily
}

// Associate pairs policy with the resource named by resourceArn, failing
// when the resource family is known and needs the other scope.
func Associate(policy WebACL, resourceArn string) (Association, error) {
	family, err := ClassifyArn(resourceArn)
	if err != nil {
		return Association{}, err
	}
	return AssociateFamily(policy, resourceArn, family)
}

// AssociateFamily is Associate for callers that know the resource family
// even though the ARN is not resolved yet.
func AssociateFamily(policy WebACL, resourceArn string, family ResourceFamily) (Association, error) {
	if policy.Name == "" {
		return Association{}, configErrorf("webAcl.name", ErrMissingField, "")
	}
	if resourceArn == "" {
		return Association{}, configErrorf("resourceArn", ErrMissingField, "")
	}
	if want, ok := family.Scope(); ok && want != policy.Scope {
		return Association{}, configErrorf("scope", ErrScopeMismatch,
			"%s web acl %q cannot protect %s %s", policy.Scope, policy.Name, family, resourceArn)
	}
	return Association{WebACL: policy, ResourceArn: resourceArn, Family: family}, nil
}

// CheckRegion fails when an edge scoped web ACL is defined outside
// us-east-1. Unknown or unresolved regions pass.
func CheckRegion(scope Scope, region string) error {
	if scope != ScopeEdge || region == "" || IsUnresolved(region) || region == EdgeRegion {
		return nil
	}
	return configErrorf("region", ErrEdgeRegion, "got %s", region)
}

// CheckWebACLArn verifies that a literal web ACL ARN has the given scope.
// Unresolved ARNs pass.
func CheckWebACLArn(webACLArn string, scope Scope) error {
	if webACLArn == "" || IsUnresolved(webACLArn) {
		return nil
	}
	parsed, err := arn.Parse(webACLArn)
	if err != nil || parsed.Service != "wafv2" {
		return configErrorf("webAclArn", ErrMalformedArn, "%q", webACLArn)
	}
	switch {
	case strings.HasPrefix(parsed.Resource, "global/webacl/"):
		if scope != ScopeEdge {
			return configErrorf("webAclArn", ErrScopeMismatch, "%q is edge scoped", webACLArn)
		}
		return CheckRegion(ScopeEdge, parsed.Region)
	case strings.HasPrefix(parsed.Resource, "regional/webacl/"):
		if scope != ScopeRegional {
			return configErrorf("webAclArn", ErrScopeMismatch, "%q is regional", webACLArn)
		}
		return nil
	default:
		return configErrorf("webAclArn", ErrMalformedArn, "%q is not a web acl", webACLArn)
	}
}

// Registry holds associations and keeps at most one web ACL per resource.
type Registry struct {
	byResource map[string]Association
	order      []string
}

func NewRegistry() *Registry {
	return &Registry{byResource: map[string]Association{}}
}

// Add records a. It fails if the resource already has a web ACL, even the
// same one. The zero Registry is ready to use.
func (r *Registry) Add(a Association) error {
	if r.byResource == nil {
		r.byResource = map[string]Association{}
	}
	if existing, ok := r.byResource[a.ResourceArn]; ok {
		return configErrorf("resourceArn", ErrAlreadyAssociated, "%s is protected by %q", a.ResourceArn, existing.WebACL.Name)
	}
	r.byResource[a.ResourceArn] = a
	r.order = append(r.order, a.ResourceArn)
	return nil
}

// Associations returns the recorded associations in insertion order.
func (r *Registry) Associations() []Association {
	out := make([]Association, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.byResource[k])
	}
	return out
}
