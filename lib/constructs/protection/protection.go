package protection

import (
	"fmt"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awswafv2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/gameday/rekognition-edge/infra/lib/cdklogger"
	"github.com/gameday/rekognition-edge/infra/lib/waf"
	"github.com/samber/lo"
)

type ProtectionProps struct {
	WebACL waf.WebACL
	// Registry, when set, records every association made through this
	// construct and rejects a second web ACL on the same resource.
	Registry *waf.Registry
}

// Protection renders a waf.WebACL as CloudFormation: one IP set per set the
// rules reference and the web ACL itself.
type Protection struct {
	constructs.Construct
	Policy   waf.WebACL
	WebACL   awswafv2.CfnWebACL
	IPSets   map[string]awswafv2.CfnIPSet
	registry *waf.Registry
}

func NewProtection(scope constructs.Construct, id string, props *ProtectionProps) *Protection {
	if props == nil || props.WebACL.Name == "" {
		panic(fmt.Sprintf("a built web acl is required for Protection construct %s", id))
	}
	construct := constructs.NewConstruct(scope, jsii.String(id))
	policy := props.WebACL

	if err := waf.CheckRegion(policy.Scope, *awscdk.Stack_Of(construct).Region()); err != nil {
		cdklogger.LogError(construct, id, "%v", err)
		panic(err)
	}

	p := &Protection{
		Construct: construct,
		Policy:    policy,
		IPSets:    map[string]awswafv2.CfnIPSet{},
		registry:  props.Registry,
	}

	for i, set := range policy.Rules.IPSets() {
		p.IPSets[set.Name] = awswafv2.NewCfnIPSet(construct, jsii.String(fmt.Sprintf("IPSet%d", i)), &awswafv2.CfnIPSetProps{
			Name:             jsii.String(set.Name),
			IpAddressVersion: jsii.String(set.IPAddressVersion),
			Scope:            jsii.String(string(set.Scope)),
			Addresses:        jsii.Strings(set.Addresses...),
		})
	}

	arnOf := func(ref waf.IPSetReference) *string {
		if ref.Arn != "" {
			return jsii.String(ref.Arn)
		}
		return p.IPSets[ref.Set.Name].AttrArn()
	}
	rules := lo.Map(policy.Rules, func(r waf.Rule, _ int) *awswafv2.CfnWebACL_RuleProperty { return renderRule(r, arnOf) })

	p.WebACL = awswafv2.NewCfnWebACL(construct, jsii.String("WebAcl"), &awswafv2.CfnWebACLProps{
		Name:             jsii.String(policy.Name),
		Scope:            jsii.String(string(policy.Scope)),
		DefaultAction:    defaultAction(policy.DefaultAction),
		VisibilityConfig: visibilityConfig(policy.Visibility),
		Rules:            &rules,
	})

	cdklogger.LogInfo(construct, id, "%s web acl %q with %d rules", policy.Scope, policy.Name, len(policy.Rules))
	return p
}

// Arn is the web ACL ARN.
func (p *Protection) Arn() *string {
	return p.WebACL.AttrArn()
}

// Target is a resource protected by the web ACL.
type Target struct {
	Arn *string
	// Family is required when Arn is still a token whose resource type
	// cannot be read from it.
	Family waf.ResourceFamily
	// DependsOn delays the association until the resource exists, e.g.
	// the API Gateway stage.
	DependsOn constructs.IConstruct
}

// Protect associates the web ACL with target. Regional web ACLs get an
// AWS::WAFv2::WebACLAssociation; edge web ACLs are attached by the
// distribution's WebACLId, so only the association check and registry
// entry apply. Configuration errors panic at synth time.
func (p *Protection) Protect(id string, target Target) waf.Association {
	if target.Arn == nil {
		panic(fmt.Sprintf("target arn is required for association %s", id))
	}
	var (
		assoc waf.Association
		err   error
	)
	if target.Family != waf.FamilyUnknown {
		assoc, err = waf.AssociateFamily(p.Policy, *target.Arn, target.Family)
	} else {
		assoc, err = waf.Associate(p.Policy, *target.Arn)
	}
	if err == nil && p.registry != nil {
		err = p.registry.Add(assoc)
	}
	if err != nil {
		cdklogger.LogError(p, id, "%v", err)
		panic(err)
	}

	if p.Policy.Scope == waf.ScopeRegional {
		association := awswafv2.NewCfnWebACLAssociation(p, jsii.String(id), &awswafv2.CfnWebACLAssociationProps{
			ResourceArn: target.Arn,
			WebAclArn:   p.WebACL.AttrArn(),
		})
		if target.DependsOn != nil {
			association.Node().AddDependency(target.DependsOn)
		}
	}
	return assoc
}
