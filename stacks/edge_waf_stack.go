package stacks

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/gameday/rekognition-edge/infra/config"
	"github.com/gameday/rekognition-edge/infra/lib/cdklogger"
	"github.com/gameday/rekognition-edge/infra/lib/constructs/protection"
	"github.com/gameday/rekognition-edge/infra/lib/waf"
)

type EdgeWafStackProps struct {
	awscdk.StackProps
	Registry *waf.Registry
}

// EdgeWafStackExports is consumed by the stacks creating distributions.
// Their own stacks must enable CrossRegionReferences to read the ARN.
type EdgeWafStackExports struct {
	Stack      awscdk.Stack
	Protection *protection.Protection
}

// EdgeWafStack creates the CloudFront scoped web ACL. CloudFront only
// accepts web ACLs from us-east-1, so the stack env must be pinned there.
func EdgeWafStack(scope constructs.Construct, id string, props *EdgeWafStackProps) EdgeWafStackExports {
	var sprops awscdk.StackProps
	if props != nil {
		sprops = props.StackProps
	} else {
		props = &EdgeWafStackProps{}
	}
	sprops.CrossRegionReferences = jsii.Bool(true)
	stack := awscdk.NewStack(scope, jsii.String(id), &sprops)
	project := config.LoadProject(stack)

	policy, err := project.Waf.WebACL(project.Name, string(waf.ScopeEdge))
	if err != nil {
		cdklogger.LogError(stack, id, "%v", err)
		panic(err)
	}
	p := protection.NewProtection(stack, "EdgeWaf", &protection.ProtectionProps{
		WebACL:   policy,
		Registry: props.Registry,
	})
	awscdk.NewCfnOutput(stack, jsii.String("EdgeWebAclArn"), &awscdk.CfnOutputProps{Value: p.Arn()})

	return EdgeWafStackExports{Stack: stack, Protection: p}
}
