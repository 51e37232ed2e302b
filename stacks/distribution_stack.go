package stacks

import (
	"fmt"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awselasticloadbalancingv2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/gameday/rekognition-edge/infra/config"
	"github.com/gameday/rekognition-edge/infra/lib/cdklogger"
	"github.com/gameday/rekognition-edge/infra/lib/constructs/origin"
	"github.com/gameday/rekognition-edge/infra/lib/constructs/protection"
	"github.com/gameday/rekognition-edge/infra/lib/constructs/restapi"
	"github.com/gameday/rekognition-edge/infra/lib/utils"
	"github.com/gameday/rekognition-edge/infra/lib/waf"
)

const ProjectHeader = "X-Project-Name"

type DistributionStackProps struct {
	awscdk.StackProps
	Kind origin.Kind
	// Api is required for KindAPI.
	Api *restapi.RekognitionApi
	// LoadBalancerArn is required for KindLoadBalancer. With KindAPI it
	// adds the load balancer as failover origin.
	LoadBalancerArn string
	// EdgeWaf, when set, protects the distribution.
	EdgeWaf *protection.Protection
}

type DistributionStackExports struct {
	Stack        awscdk.Stack
	Distribution *origin.Distribution
}

// DistributionStack fronts the API or an existing load balancer with
// CloudFront. Bucket origins belong to StaticSiteStack.
func DistributionStack(scope constructs.Construct, id string, props *DistributionStackProps) DistributionStackExports {
	if props == nil {
		panic(fmt.Sprintf("props are required for stack %s", id))
	}
	sprops := props.StackProps
	sprops.CrossRegionReferences = jsii.Bool(true)
	stack := awscdk.NewStack(scope, jsii.String(id), &sprops)
	project := config.LoadProject(stack)

	var (
		o          origin.Origin
		policyName string
	)
	switch props.Kind {
	case origin.KindAPI:
		if props.Api == nil {
			panic(fmt.Sprintf("stack %s: originType api needs the Rekognition API", id))
		}
		o = origin.ApiOrigin{
			RestApi:       props.Api.RestApi,
			CustomHeaders: map[string]string{ProjectHeader: project.Name},
		}
		policyName = utils.ResourceName(project.Name, "apigwPolicy")
		if props.LoadBalancerArn != "" {
			o = origin.Group{Primary: o, Fallback: lookupLoadBalancer(stack, props.LoadBalancerArn)}
			cdklogger.LogInfo(stack, id, "load balancer %s is the failover origin", props.LoadBalancerArn)
		}
	case origin.KindLoadBalancer:
		if props.LoadBalancerArn == "" {
			cdklogger.LogError(stack, id, "originType alb needs the loadBalancerArn context value")
			panic(fmt.Sprintf("stack %s: originType alb requires loadBalancerArn", id))
		}
		o = lookupLoadBalancer(stack, props.LoadBalancerArn)
		policyName = utils.ResourceName(project.Name, "elbPolicy")
	default:
		panic(fmt.Sprintf("stack %s: unsupported origin kind %q", id, props.Kind))
	}

	opts := origin.Options{
		Comment:                 fmt.Sprintf("%s %s distribution", project.Name, props.Kind),
		LogBucketName:           utils.ResourceName(project.Name, "cf-log-bucket"),
		OriginRequestPolicyName: policyName,
		CacheKeyQueryStrings:    []string{restapi.NameQueryParam},
		CachePolicyName:         utils.ResourceName(project.Name, "cachePolicy"),
	}
	if props.EdgeWaf != nil {
		opts.WebAclArn = props.EdgeWaf.Arn()
	}
	cfg, err := origin.Compose(o, opts)
	if err != nil {
		cdklogger.LogError(stack, id, "%v", err)
		panic(err)
	}
	dist := origin.NewDistribution(stack, "Cdn", cfg)

	if props.EdgeWaf != nil {
		props.EdgeWaf.Protect(id+"Distribution", protection.Target{
			Arn:    dist.Arn(),
			Family: waf.FamilyDistribution,
		})
	}

	awscdk.NewCfnOutput(stack, jsii.String("DistributionDomainName"), &awscdk.CfnOutputProps{Value: dist.DomainName()})
	return DistributionStackExports{Stack: stack, Distribution: dist}
}

func lookupLoadBalancer(scope constructs.Construct, arn string) origin.LoadBalancerOrigin {
	lb := awselasticloadbalancingv2.ApplicationLoadBalancer_FromLookup(scope, jsii.String("LoadBalancer"), &awselasticloadbalancingv2.ApplicationLoadBalancerLookupOptions{
		LoadBalancerArn: jsii.String(arn),
	})
	return origin.LoadBalancerOrigin{LoadBalancer: lb}
}
