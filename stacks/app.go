package stacks

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudfront"
	"github.com/aws/jsii-runtime-go"
	"github.com/gameday/rekognition-edge/infra/config"
	"github.com/gameday/rekognition-edge/infra/lib/constructs/origin"
	"github.com/gameday/rekognition-edge/infra/lib/utils"
	"github.com/gameday/rekognition-edge/infra/lib/waf"
	"go.uber.org/zap"
)

// Deployment holds every stack created by Orchestrate. Optional stacks are
// nil when their context switches leave them out.
type Deployment struct {
	Registry     *waf.Registry
	Rekognition  RekognitionStackExports
	EdgeWaf      EdgeWafStackExports
	Distribution *DistributionStackExports
	StaticSite   *StaticSiteStackExports
	Route53      *Route53StackExports
}

// Orchestrate wires the stacks from CDK context:
//   - originType api|alb adds a distribution over the API or a load balancer
//   - originType bucket, or staticSite=true, adds the static site
//   - zoneName adds a hosted zone aliasing the distributions
//
// The edge web ACL always lives in us-east-1.
func Orchestrate(app awscdk.App, env *awscdk.Environment, lambdaEntry string) Deployment {
	regional := utils.InRegion(env, config.Region(app))
	edge := utils.InRegion(regional, waf.EdgeRegion)

	kind := config.GetOriginKind(app)
	d := Deployment{Registry: waf.NewRegistry()}
	zap.L().Info("orchestrating stacks",
		zap.String("project", config.ProjectName(app)),
		zap.String("stage", config.StageName(app)),
		zap.String("originType", string(kind)),
	)

	d.Rekognition = RekognitionStack(app, config.WithStackSuffix(app, "Rekognition"), &RekognitionStackProps{
		StackProps: awscdk.StackProps{
			Env:         regional,
			Description: jsii.String("API Gateway and Lambda calling Rekognition DetectLabels"),
		},
		Registry:    d.Registry,
		LambdaEntry: lambdaEntry,
	})

	d.EdgeWaf = EdgeWafStack(app, config.WithStackSuffix(app, "EdgeWaf"), &EdgeWafStackProps{
		StackProps: awscdk.StackProps{
			Env:         edge,
			Description: jsii.String("CloudFront scoped WAFv2 web ACL"),
		},
		Registry: d.Registry,
	})

	aliases := map[string]awscloudfront.IDistribution{}

	if kind != origin.KindBucket {
		exports := DistributionStack(app, config.WithStackSuffix(app, "Distribution"), &DistributionStackProps{
			StackProps: awscdk.StackProps{
				Env:         regional,
				Description: jsii.String("CloudFront in front of the API or a load balancer"),
			},
			Kind:            kind,
			Api:             d.Rekognition.Api,
			LoadBalancerArn: config.LoadBalancerArn(app),
			EdgeWaf:         d.EdgeWaf.Protection,
		})
		d.Distribution = &exports
		aliases["api"] = exports.Distribution.Distribution
	}

	if kind == origin.KindBucket || config.StaticSite(app) {
		exports := StaticSiteStack(app, config.WithStackSuffix(app, "StaticSite"), &StaticSiteStackProps{
			StackProps: awscdk.StackProps{
				Env:         regional,
				Description: jsii.String("S3 static site behind CloudFront"),
			},
			Api:     d.Rekognition.Api,
			EdgeWaf: d.EdgeWaf.Protection,
		})
		d.StaticSite = &exports
		aliases[""] = exports.Site.Distribution.Distribution
	}

	if config.ZoneName(app) != "" {
		exports := Route53Stack(app, config.WithStackSuffix(app, "Route53"), &Route53StackProps{
			StackProps: awscdk.StackProps{Env: regional},
			Aliases:    aliases,
		})
		d.Route53 = &exports
	}

	for _, a := range d.Registry.Associations() {
		zap.L().Debug("web acl association",
			zap.String("webAcl", a.WebACL.Name),
			zap.String("family", string(a.Family)),
		)
	}
	return d
}
