package origin

import (
	"errors"
	"fmt"

	"github.com/aws/aws-cdk-go/awscdk/v2/awsapigateway"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudfront"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudfrontorigins"
	"github.com/aws/aws-cdk-go/awscdk/v2/awselasticloadbalancingv2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3"
	"github.com/aws/jsii-runtime-go"
	"github.com/samber/lo"
)

var (
	ErrNoOrigin      = errors.New("exactly one origin is required")
	ErrInvalidOrigin = errors.New("invalid origin")
)

// DefaultFallbackStatusCodes trigger failover from the primary origin of a
// Group.
var DefaultFallbackStatusCodes = []int{500, 502, 503, 504}

// Origin is one of ApiOrigin, LoadBalancerOrigin, BucketOrigin or Group.
// Callers pick the variant; nothing is inferred from optional fields.
type Origin interface {
	Kind() Kind
	validate() error
	source() awscloudfront.IOrigin
}

// ApiOrigin fronts a REST API stage.
type ApiOrigin struct {
	RestApi       awsapigateway.RestApiBase
	CustomHeaders map[string]string
}

// LoadBalancerOrigin fronts an existing application load balancer.
type LoadBalancerOrigin struct {
	LoadBalancer awselasticloadbalancingv2.ILoadBalancerV2
	// ProtocolPolicy defaults to HTTPS only.
	ProtocolPolicy awscloudfront.OriginProtocolPolicy
}

// BucketOrigin serves a private bucket through an origin access identity.
type BucketOrigin struct {
	Bucket         awss3.IBucket
	AccessIdentity awscloudfront.IOriginAccessIdentity
}

// Group fails over from Primary to Fallback when the primary answers with
// one of FallbackStatusCodes or cannot be reached.
type Group struct {
	Primary             Origin
	Fallback            Origin
	FallbackStatusCodes []int
}

func (ApiOrigin) Kind() Kind          { return KindAPI }
func (LoadBalancerOrigin) Kind() Kind { return KindLoadBalancer }
func (BucketOrigin) Kind() Kind       { return KindBucket }

// Kind of a group is the kind of its primary origin.
func (g Group) Kind() Kind {
	if g.Primary == nil {
		return ""
	}
	return g.Primary.Kind()
}

func (o ApiOrigin) validate() error {
	if o.RestApi == nil {
		return fmt.Errorf("%w: api origin needs a rest api", ErrInvalidOrigin)
	}
	return nil
}

func (o LoadBalancerOrigin) validate() error {
	if o.LoadBalancer == nil {
		return fmt.Errorf("%w: load balancer origin needs a load balancer", ErrInvalidOrigin)
	}
	return nil
}

func (o BucketOrigin) validate() error {
	if o.Bucket == nil || o.AccessIdentity == nil {
		return fmt.Errorf("%w: bucket origin needs a bucket and an access identity", ErrInvalidOrigin)
	}
	return nil
}

func (g Group) validate() error {
	if g.Primary == nil || g.Fallback == nil {
		return fmt.Errorf("%w: origin group needs a primary and a fallback", ErrInvalidOrigin)
	}
	for _, member := range []Origin{g.Primary, g.Fallback} {
		if _, nested := member.(Group); nested {
			return fmt.Errorf("%w: origin groups cannot be nested", ErrInvalidOrigin)
		}
		if err := member.validate(); err != nil {
			return err
		}
	}
	for _, code := range g.FallbackStatusCodes {
		if code < 400 || code > 599 {
			return fmt.Errorf("%w: fallback status code %d is not an error status", ErrInvalidOrigin, code)
		}
	}
	return nil
}

func (o ApiOrigin) source() awscloudfront.IOrigin {
	var props awscloudfrontorigins.RestApiOriginProps
	if len(o.CustomHeaders) > 0 {
		headers := lo.MapValues(o.CustomHeaders, func(v string, _ string) *string { return jsii.String(v) })
		props.CustomHeaders = &headers
	}
	return awscloudfrontorigins.NewRestApiOrigin(o.RestApi, &props)
}

func (o LoadBalancerOrigin) source() awscloudfront.IOrigin {
	policy := o.ProtocolPolicy
	if policy == "" {
		policy = awscloudfront.OriginProtocolPolicy_HTTPS_ONLY
	}
	return awscloudfrontorigins.NewLoadBalancerV2Origin(o.LoadBalancer, &awscloudfrontorigins.LoadBalancerV2OriginProps{
		ProtocolPolicy: policy,
	})
}

func (o BucketOrigin) source() awscloudfront.IOrigin {
	return awscloudfrontorigins.S3BucketOrigin_WithOriginAccessIdentity(o.Bucket, &awscloudfrontorigins.S3BucketOriginWithOAIProps{
		OriginAccessIdentity: o.AccessIdentity,
	})
}

func (g Group) source() awscloudfront.IOrigin {
	codes := g.FallbackStatusCodes
	if len(codes) == 0 {
		codes = DefaultFallbackStatusCodes
	}
	return awscloudfrontorigins.NewOriginGroup(&awscloudfrontorigins.OriginGroupProps{
		PrimaryOrigin:       g.Primary.source(),
		FallbackOrigin:      g.Fallback.source(),
		FallbackStatusCodes: jsii.Numbers(codes...),
	})
}
