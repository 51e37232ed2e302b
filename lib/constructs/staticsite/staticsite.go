package staticsite

import (
	"fmt"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudfront"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3deployment"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/gameday/rekognition-edge/infra/lib/cdklogger"
	"github.com/gameday/rekognition-edge/infra/lib/constructs/origin"
	"github.com/gameday/rekognition-edge/infra/lib/utils"
	"github.com/gameday/rekognition-edge/infra/scripts/renderer"
)

const (
	IndexDocument = "index.html"
	ErrorDocument = "error.html"
)

type StaticSiteProps struct {
	ProjectName string
	Title       string
	Message     string
	// WebAclArn attaches an edge web ACL to the distribution.
	WebAclArn *string
	// AdditionalBehaviors route extra path patterns, e.g. /image*, to other
	// origins.
	AdditionalBehaviors []origin.Behavior
	// CacheKeyQueryStrings vary cached responses of API behaviors.
	CacheKeyQueryStrings []string
}

// StaticSite is a private bucket served through its own CloudFront
// distribution with an origin access identity.
type StaticSite struct {
	constructs.Construct
	Bucket         awss3.Bucket
	AccessIdentity awscloudfront.OriginAccessIdentity
	Distribution   *origin.Distribution
	Deployment     awss3deployment.BucketDeployment
}

func NewStaticSite(scope constructs.Construct, id string, props *StaticSiteProps) *StaticSite {
	if props == nil || props.ProjectName == "" {
		panic(fmt.Sprintf("project name is required for StaticSite construct %s", id))
	}
	construct := constructs.NewConstruct(scope, jsii.String(id))
	s := &StaticSite{Construct: construct}

	s.Bucket = awss3.NewBucket(construct, jsii.String("Bucket"), &awss3.BucketProps{
		BucketName:        jsii.String(utils.ResourceName(props.ProjectName, "web-s3")),
		BlockPublicAccess: awss3.BlockPublicAccess_BLOCK_ALL(),
		Encryption:        awss3.BucketEncryption_S3_MANAGED,
		EnforceSSL:        jsii.Bool(true),
		RemovalPolicy:     awscdk.RemovalPolicy_DESTROY,
		AutoDeleteObjects: jsii.Bool(true),
	})

	s.AccessIdentity = awscloudfront.NewOriginAccessIdentity(construct, jsii.String("AccessIdentity"), &awscloudfront.OriginAccessIdentityProps{
		Comment: jsii.String(fmt.Sprintf("%s static site", props.ProjectName)),
	})

	cfg, err := origin.Compose(origin.BucketOrigin{Bucket: s.Bucket, AccessIdentity: s.AccessIdentity}, origin.Options{
		Comment:                 fmt.Sprintf("%s static site", props.ProjectName),
		WebAclArn:               props.WebAclArn,
		AdditionalBehaviors:     props.AdditionalBehaviors,
		OriginRequestPolicyName: utils.ResourceName(props.ProjectName, "sitePolicy"),
		CacheKeyQueryStrings:    props.CacheKeyQueryStrings,
		CachePolicyName:         utils.ResourceName(props.ProjectName, "siteCachePolicy"),
	})
	if err != nil {
		cdklogger.LogError(construct, id, "%v", err)
		panic(err)
	}
	s.Distribution = origin.NewDistribution(construct, "Cdn", cfg)

	title := props.Title
	if title == "" {
		title = props.ProjectName
	}
	pages, err := renderer.RenderFiles(
		renderer.File{
			Path:     IndexDocument,
			Template: renderer.TplSiteIndex,
			Data:     renderer.SitePageData{ProjectName: props.ProjectName, Title: title, Message: props.Message},
		},
		renderer.File{
			Path:     ErrorDocument,
			Template: renderer.TplSiteError,
			Data:     renderer.SitePageData{ProjectName: props.ProjectName, StatusCode: 404},
		},
	)
	if err != nil {
		cdklogger.LogError(construct, id, "%v", err)
		panic(err)
	}
	content := utils.WriteToTempDir("site-*", pages)

	s.Deployment = awss3deployment.NewBucketDeployment(construct, jsii.String("Deployment"), &awss3deployment.BucketDeploymentProps{
		DestinationBucket: s.Bucket,
		Sources:           &[]awss3deployment.ISource{awss3deployment.Source_Asset(content, nil)},
		Distribution:      s.Distribution.Distribution,
		DistributionPaths: jsii.Strings("/*"),
	})

	cdklogger.LogInfo(construct, id, "static site bucket with %d behaviors beyond the default", len(props.AdditionalBehaviors))
	return s
}

// Url is the https address of the distribution.
func (s *StaticSite) Url() *string {
	return jsii.String("https://" + *s.Distribution.DomainName())
}
