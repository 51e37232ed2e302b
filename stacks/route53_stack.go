package stacks

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudfront"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/gameday/rekognition-edge/infra/config"
	"github.com/gameday/rekognition-edge/infra/lib/constructs/hostedzone"
)

type Route53StackProps struct {
	awscdk.StackProps
	// Aliases maps record names ("" for the apex) to distributions.
	Aliases map[string]awscloudfront.IDistribution
}

type Route53StackExports struct {
	Stack awscdk.Stack
	Zone  *hostedzone.HostedZone
}

// Route53Stack creates the hosted zone named by the zoneName context value.
func Route53Stack(scope constructs.Construct, id string, props *Route53StackProps) Route53StackExports {
	var sprops awscdk.StackProps
	if props != nil {
		sprops = props.StackProps
	} else {
		props = &Route53StackProps{}
	}
	stack := awscdk.NewStack(scope, jsii.String(id), &sprops)

	zone := hostedzone.NewHostedZone(stack, "HostedZone", &hostedzone.HostedZoneProps{
		ZoneName: config.ZoneName(stack),
		Private:  !config.PublicZone(stack),
		VpcId:    config.VpcId(stack),
		Aliases:  props.Aliases,
	})

	awscdk.NewCfnOutput(stack, jsii.String("HostedZoneId"), &awscdk.CfnOutputProps{Value: zone.ZoneId()})
	return Route53StackExports{Stack: stack, Zone: zone}
}
