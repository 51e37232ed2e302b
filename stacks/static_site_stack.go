package stacks

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/gameday/rekognition-edge/infra/config"
	"github.com/gameday/rekognition-edge/infra/lib/constructs/origin"
	"github.com/gameday/rekognition-edge/infra/lib/constructs/protection"
	"github.com/gameday/rekognition-edge/infra/lib/constructs/restapi"
	"github.com/gameday/rekognition-edge/infra/lib/constructs/staticsite"
	"github.com/gameday/rekognition-edge/infra/lib/waf"
)

type StaticSiteStackProps struct {
	awscdk.StackProps
	// Api, when set, is routed under /image* next to the site content.
	Api     *restapi.RekognitionApi
	EdgeWaf *protection.Protection
}

type StaticSiteStackExports struct {
	Stack awscdk.Stack
	Site  *staticsite.StaticSite
}

func StaticSiteStack(scope constructs.Construct, id string, props *StaticSiteStackProps) StaticSiteStackExports {
	var sprops awscdk.StackProps
	if props != nil {
		sprops = props.StackProps
	} else {
		props = &StaticSiteStackProps{}
	}
	sprops.CrossRegionReferences = jsii.Bool(true)
	stack := awscdk.NewStack(scope, jsii.String(id), &sprops)
	project := config.LoadProject(stack)

	siteProps := &staticsite.StaticSiteProps{
		ProjectName: project.Name,
		Title:       project.Site.Title,
		Message:     project.Site.Message,
	}
	if props.EdgeWaf != nil {
		siteProps.WebAclArn = props.EdgeWaf.Arn()
	}
	if props.Api != nil {
		siteProps.AdditionalBehaviors = []origin.Behavior{{
			PathPattern: "/" + restapi.ImageResource + "*",
			Origin:      origin.ApiOrigin{RestApi: props.Api.RestApi},
		}}
		siteProps.CacheKeyQueryStrings = []string{restapi.NameQueryParam}
	}
	site := staticsite.NewStaticSite(stack, "Site", siteProps)

	if props.EdgeWaf != nil {
		props.EdgeWaf.Protect(id+"Distribution", protection.Target{
			Arn:    site.Distribution.Arn(),
			Family: waf.FamilyDistribution,
		})
	}

	awscdk.NewCfnOutput(stack, jsii.String("SiteBucketName"), &awscdk.CfnOutputProps{Value: site.Bucket.BucketName()})
	awscdk.NewCfnOutput(stack, jsii.String("SiteUrl"), &awscdk.CfnOutputProps{Value: site.Url()})
	return StaticSiteStackExports{Stack: stack, Site: site}
}
