package origin

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudfront"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/samber/lo"
)

// Distribution is a CloudFront distribution materialized from a
// DistributionConfig.
type Distribution struct {
	constructs.Construct
	Distribution        awscloudfront.Distribution
	LogBucket           awss3.IBucket
	OriginRequestPolicy awscloudfront.IOriginRequestPolicy
	// QueryCachePolicy keys cached API and load balancer responses on the
	// configured query strings. Nil when none are configured.
	QueryCachePolicy awscloudfront.ICachePolicy
	Kind             Kind
}

// NewDistribution creates the distribution described by cfg, plus its log
// bucket and origin request policy when cfg needs them.
func NewDistribution(scope constructs.Construct, id string, cfg DistributionConfig) *Distribution {
	construct := constructs.NewConstruct(scope, jsii.String(id))
	d := &Distribution{Construct: construct, Kind: cfg.Kind()}

	if cfg.EnableLogging {
		d.LogBucket = cfg.LogBucket
		if d.LogBucket == nil {
			var name *string
			if cfg.LogBucketName != "" {
				name = jsii.String(cfg.LogBucketName)
			}
			// CloudFront standard logging writes through bucket ACLs.
			d.LogBucket = awss3.NewBucket(construct, jsii.String("LogBucket"), &awss3.BucketProps{
				BucketName:        name,
				ObjectOwnership:   awss3.ObjectOwnership_OBJECT_WRITER,
				BlockPublicAccess: awss3.BlockPublicAccess_BLOCK_ALL(),
				Encryption:        awss3.BucketEncryption_S3_MANAGED,
				RemovalPolicy:     awscdk.RemovalPolicy_DESTROY,
				AutoDeleteObjects: jsii.Bool(true),
			})
		}
	}

	if cfg.ForwardAllQueryStrings || lo.SomeBy(cfg.AdditionalBehaviors, func(b Behavior) bool { return forwardsQueryStrings(b.Origin) }) {
		if len(cfg.CacheKeyQueryStrings) > 0 {
			var name *string
			if cfg.CachePolicyName != "" {
				name = jsii.String(cfg.CachePolicyName)
			}
			d.QueryCachePolicy = awscloudfront.NewCachePolicy(construct, jsii.String("QueryCachePolicy"), &awscloudfront.CachePolicyProps{
				CachePolicyName:            name,
				QueryStringBehavior:        awscloudfront.CacheQueryStringBehavior_AllowList(*jsii.Strings(cfg.CacheKeyQueryStrings...)...),
				EnableAcceptEncodingGzip:   jsii.Bool(true),
				EnableAcceptEncodingBrotli: jsii.Bool(true),
			})
		}

		var name *string
		if cfg.OriginRequestPolicyName != "" {
			name = jsii.String(cfg.OriginRequestPolicyName)
		}
		d.OriginRequestPolicy = awscloudfront.NewOriginRequestPolicy(construct, jsii.String("OriginRequestPolicy"), &awscloudfront.OriginRequestPolicyProps{
			OriginRequestPolicyName: name,
			QueryStringBehavior:     awscloudfront.OriginRequestQueryStringBehavior_All(),
		})
	}

	defaultBehavior := &awscloudfront.BehaviorOptions{
		Origin:               cfg.Origin.source(),
		AllowedMethods:       cfg.AllowedMethods,
		CachedMethods:        cfg.CachedMethods,
		CachePolicy:          cfg.CachePolicy,
		ViewerProtocolPolicy: cfg.ViewerProtocolPolicy,
	}
	if cfg.ForwardAllQueryStrings {
		defaultBehavior.OriginRequestPolicy = d.OriginRequestPolicy
		defaultBehavior.CachePolicy = d.queryCachePolicy()
	}

	props := &awscloudfront.DistributionProps{
		DefaultBehavior:        defaultBehavior,
		EnableIpv6:             jsii.Bool(cfg.EnableIpv6),
		EnableLogging:          jsii.Bool(cfg.EnableLogging),
		LogBucket:              d.LogBucket,
		HttpVersion:            cfg.HttpVersion,
		MinimumProtocolVersion: cfg.MinimumProtocolVersion,
		PriceClass:             cfg.PriceClass,
		WebAclId:               cfg.WebAclArn,
	}
	if cfg.Comment != "" {
		props.Comment = jsii.String(cfg.Comment)
	}
	if cfg.DefaultRootObject != "" {
		props.DefaultRootObject = jsii.String(cfg.DefaultRootObject)
	}
	if len(cfg.ErrorResponses) > 0 {
		responses := make([]*awscloudfront.ErrorResponse, 0, len(cfg.ErrorResponses))
		for _, r := range cfg.ErrorResponses {
			responses = append(responses, &awscloudfront.ErrorResponse{
				HttpStatus:         jsii.Number(r.HttpStatus),
				ResponseHttpStatus: jsii.Number(r.ResponseStatus),
				ResponsePagePath:   jsii.String(r.ResponsePagePath),
				Ttl:                awscdk.Duration_Seconds(jsii.Number(r.TTLSeconds)),
			})
		}
		props.ErrorResponses = &responses
	}
	if len(cfg.AdditionalBehaviors) > 0 {
		behaviors := make(map[string]*awscloudfront.BehaviorOptions, len(cfg.AdditionalBehaviors))
		for _, b := range cfg.AdditionalBehaviors {
			behaviors[b.PathPattern] = d.behaviorFor(b.Origin)
		}
		props.AdditionalBehaviors = &behaviors
	}

	d.Distribution = awscloudfront.NewDistribution(construct, jsii.String("Distribution"), props)
	return d
}

func (d *Distribution) behaviorFor(o Origin) *awscloudfront.BehaviorOptions {
	allowed, cached := methodsFor(o)
	b := &awscloudfront.BehaviorOptions{
		Origin:               o.source(),
		CachePolicy:          awscloudfront.CachePolicy_CACHING_OPTIMIZED(),
		ViewerProtocolPolicy: awscloudfront.ViewerProtocolPolicy_REDIRECT_TO_HTTPS,
		AllowedMethods:       allowed,
		CachedMethods:        cached,
	}
	if forwardsQueryStrings(o) {
		b.CachePolicy = d.queryCachePolicy()
		b.OriginRequestPolicy = d.OriginRequestPolicy
	}
	return b
}

func (d *Distribution) queryCachePolicy() awscloudfront.ICachePolicy {
	if d.QueryCachePolicy == nil {
		return awscloudfront.CachePolicy_CACHING_DISABLED()
	}
	return d.QueryCachePolicy
}

// Arn is the distribution ARN. It is a token until deployment.
func (d *Distribution) Arn() *string {
	return awscdk.Stack_Of(d).FormatArn(&awscdk.ArnComponents{
		Service:      jsii.String("cloudfront"),
		Region:       jsii.String(""),
		Resource:     jsii.String("distribution"),
		ResourceName: d.Distribution.DistributionId(),
		ArnFormat:    awscdk.ArnFormat_SLASH_RESOURCE_NAME,
	})
}

func (d *Distribution) DomainName() *string {
	return d.Distribution.DistributionDomainName()
}

func forwardsQueryStrings(o Origin) bool {
	return o.Kind() != KindBucket
}
