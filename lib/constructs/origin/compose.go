package origin

import (
	"fmt"

	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudfront"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3"
	"github.com/gameday/rekognition-edge/infra/lib/waf"
)

// ErrorResponse maps an origin error status to a page.
type ErrorResponse struct {
	HttpStatus       int
	ResponseStatus   int
	ResponsePagePath string
	TTLSeconds       int
}

// Behavior routes PathPattern to its own origin.
type Behavior struct {
	PathPattern string
	Origin      Origin
}

// Options are the caller supplied parts of a distribution. All are optional.
type Options struct {
	Comment string
	// WebAclArn must name an edge scoped (us-east-1, global/webacl) web ACL.
	WebAclArn *string
	// LogBucket receives access logs. NewDistribution creates one when
	// logging is on and this is nil.
	LogBucket awss3.IBucket
	// LogBucketName names the bucket NewDistribution creates.
	LogBucketName string
	// OriginRequestPolicyName names the policy forwarding query strings to
	// API and load balancer origins.
	OriginRequestPolicyName string
	// CacheKeyQueryStrings are the query strings that vary cached API and
	// load balancer responses. Without any, those responses are not cached.
	CacheKeyQueryStrings []string
	// CachePolicyName names the policy built from CacheKeyQueryStrings.
	CachePolicyName     string
	AdditionalBehaviors []Behavior
}

// DistributionConfig is the complete, validated shape of one distribution.
type DistributionConfig struct {
	Origin              Origin
	AdditionalBehaviors []Behavior

	AllowedMethods       awscloudfront.AllowedMethods
	CachedMethods        awscloudfront.CachedMethods
	CachePolicy          awscloudfront.ICachePolicy
	ViewerProtocolPolicy awscloudfront.ViewerProtocolPolicy
	// ForwardAllQueryStrings attaches an origin request policy that passes
	// every query string to the origin.
	ForwardAllQueryStrings  bool
	OriginRequestPolicyName string
	CacheKeyQueryStrings    []string
	CachePolicyName         string

	DefaultRootObject string
	ErrorResponses    []ErrorResponse

	WebAclArn              *string
	EnableIpv6             bool
	EnableLogging          bool
	LogBucket              awss3.IBucket
	LogBucketName          string
	HttpVersion            awscloudfront.HttpVersion
	MinimumProtocolVersion awscloudfront.SecurityPolicyProtocol
	PriceClass             awscloudfront.PriceClass
	Comment                string
}

// Kind reports the variant of the default origin.
func (c DistributionConfig) Kind() Kind {
	return c.Origin.Kind()
}

// Compose builds the distribution configuration for exactly one default
// origin. API and load balancer origins accept every method and forward all
// query strings; bucket origins serve GET/HEAD with index and error pages.
// Origin groups forward query strings but only serve GET, HEAD and OPTIONS.
func Compose(o Origin, opts Options) (DistributionConfig, error) {
	if o == nil {
		return DistributionConfig{}, ErrNoOrigin
	}
	if err := o.validate(); err != nil {
		return DistributionConfig{}, err
	}
	for _, b := range opts.AdditionalBehaviors {
		if b.PathPattern == "" || b.Origin == nil {
			return DistributionConfig{}, fmt.Errorf("%w: additional behavior needs a path pattern and an origin", ErrInvalidOrigin)
		}
		if err := b.Origin.validate(); err != nil {
			return DistributionConfig{}, fmt.Errorf("behavior %q: %w", b.PathPattern, err)
		}
	}
	if opts.WebAclArn != nil {
		if err := waf.CheckWebACLArn(*opts.WebAclArn, waf.ScopeEdge); err != nil {
			return DistributionConfig{}, err
		}
	}

	cfg := DistributionConfig{
		Origin:                 o,
		AdditionalBehaviors:    opts.AdditionalBehaviors,
		ViewerProtocolPolicy:   awscloudfront.ViewerProtocolPolicy_REDIRECT_TO_HTTPS,
		WebAclArn:              opts.WebAclArn,
		EnableIpv6:             true,
		LogBucket:              opts.LogBucket,
		LogBucketName:          opts.LogBucketName,
		HttpVersion:            awscloudfront.HttpVersion_HTTP2_AND_3,
		MinimumProtocolVersion: awscloudfront.SecurityPolicyProtocol_TLS_V1_2_2019,
		PriceClass:             awscloudfront.PriceClass_PRICE_CLASS_ALL,
		Comment:                opts.Comment,
		CacheKeyQueryStrings:   opts.CacheKeyQueryStrings,
		CachePolicyName:        opts.CachePolicyName,
	}

	cfg.AllowedMethods, cfg.CachedMethods = methodsFor(o)
	switch o.Kind() {
	case KindBucket:
		cfg.CachePolicy = awscloudfront.CachePolicy_CACHING_OPTIMIZED()
		cfg.DefaultRootObject = "index.html"
		cfg.ErrorResponses = []ErrorResponse{
			{HttpStatus: 403, ResponseStatus: 403, ResponsePagePath: "/error.html", TTLSeconds: 300},
			{HttpStatus: 404, ResponseStatus: 404, ResponsePagePath: "/error.html", TTLSeconds: 300},
		}
		cfg.EnableLogging = opts.LogBucket != nil
	default:
		// NewDistribution builds the query string cache policy.
		if len(opts.CacheKeyQueryStrings) == 0 {
			cfg.CachePolicy = awscloudfront.CachePolicy_CACHING_DISABLED()
		}
		cfg.ForwardAllQueryStrings = true
		cfg.OriginRequestPolicyName = opts.OriginRequestPolicyName
		cfg.EnableLogging = true
	}
	return cfg, nil
}

// methodsFor reports the methods a behavior in front of o accepts and caches.
// CloudFront rejects origin groups on behaviors that allow writes.
func methodsFor(o Origin) (awscloudfront.AllowedMethods, awscloudfront.CachedMethods) {
	switch o.(type) {
	case Group:
		if o.Kind() == KindBucket {
			return awscloudfront.AllowedMethods_ALLOW_GET_HEAD(), awscloudfront.CachedMethods_CACHE_GET_HEAD()
		}
		return awscloudfront.AllowedMethods_ALLOW_GET_HEAD_OPTIONS(), awscloudfront.CachedMethods_CACHE_GET_HEAD_OPTIONS()
	}
	if o.Kind() == KindBucket {
		return awscloudfront.AllowedMethods_ALLOW_GET_HEAD(), awscloudfront.CachedMethods_CACHE_GET_HEAD()
	}
	return awscloudfront.AllowedMethods_ALLOW_ALL(), awscloudfront.CachedMethods_CACHE_GET_HEAD()
}
