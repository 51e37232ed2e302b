package protection

import (
	"fmt"

	"github.com/aws/aws-cdk-go/awscdk/v2/awswafv2"
	"github.com/aws/jsii-runtime-go"
	"github.com/gameday/rekognition-edge/infra/lib/waf"
)

func visibilityConfig(v waf.Visibility) *awswafv2.CfnWebACL_VisibilityConfigProperty {
	return &awswafv2.CfnWebACL_VisibilityConfigProperty{
		CloudWatchMetricsEnabled: jsii.Bool(v.MetricsEnabled),
		SampledRequestsEnabled:   jsii.Bool(v.SampledRequestsEnabled),
		MetricName:               jsii.String(v.MetricName),
	}
}

func defaultAction(a waf.Action) *awswafv2.CfnWebACL_DefaultActionProperty {
	if a == waf.ActionBlock {
		return &awswafv2.CfnWebACL_DefaultActionProperty{Block: &awswafv2.CfnWebACL_BlockActionProperty{}}
	}
	return &awswafv2.CfnWebACL_DefaultActionProperty{Allow: &awswafv2.CfnWebACL_AllowActionProperty{}}
}

// ipSetArn resolves the ARN for an IP set statement: the existing ARN or
// the one of the set created alongside the web ACL.
type ipSetArn func(ref waf.IPSetReference) *string

func renderRule(r waf.Rule, arnOf ipSetArn) *awswafv2.CfnWebACL_RuleProperty {
	prop := &awswafv2.CfnWebACL_RuleProperty{
		Name:             jsii.String(r.Name),
		Priority:         jsii.Number(r.Priority),
		Statement:        renderStatement(r.Statement, arnOf),
		VisibilityConfig: visibilityConfig(r.Visibility),
	}
	switch r.Action {
	case waf.ActionNone:
		prop.OverrideAction = &awswafv2.CfnWebACL_OverrideActionProperty{None: map[string]interface{}{}}
	case waf.ActionAllow:
		prop.Action = &awswafv2.CfnWebACL_RuleActionProperty{Allow: &awswafv2.CfnWebACL_AllowActionProperty{}}
	case waf.ActionBlock:
		prop.Action = &awswafv2.CfnWebACL_RuleActionProperty{Block: &awswafv2.CfnWebACL_BlockActionProperty{}}
	}
	return prop
}

func renderStatement(s waf.Statement, arnOf ipSetArn) *awswafv2.CfnWebACL_StatementProperty {
	switch st := s.(type) {
	case waf.ManagedRuleGroup:
		return &awswafv2.CfnWebACL_StatementProperty{
			ManagedRuleGroupStatement: &awswafv2.CfnWebACL_ManagedRuleGroupStatementProperty{
				VendorName: jsii.String(st.VendorName),
				Name:       jsii.String(st.Name),
			},
		}
	case waf.IPSetReference:
		return &awswafv2.CfnWebACL_StatementProperty{
			IpSetReferenceStatement: &awswafv2.CfnWebACL_IPSetReferenceStatementProperty{
				Arn: arnOf(st),
			},
		}
	case waf.RateBased:
		return &awswafv2.CfnWebACL_StatementProperty{
			RateBasedStatement: &awswafv2.CfnWebACL_RateBasedStatementProperty{
				AggregateKeyType: jsii.String(st.AggregateKeyType),
				Limit:            jsii.Number(st.Limit),
			},
		}
	case waf.GeoMatch:
		return &awswafv2.CfnWebACL_StatementProperty{
			GeoMatchStatement: &awswafv2.CfnWebACL_GeoMatchStatementProperty{
				CountryCodes: jsii.Strings(st.CountryCodes...),
			},
		}
	default:
		// waf.Validate rejects every other statement before rendering.
		panic(fmt.Sprintf("unsupported waf statement %T", s))
	}
}
