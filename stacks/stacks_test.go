package stacks_test

import (
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/assertions"
	"github.com/aws/jsii-runtime-go"
	"github.com/gameday/rekognition-edge/infra/lib/waf"
	"github.com/gameday/rekognition-edge/infra/stacks"
	"github.com/gameday/rekognition-edge/infra/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const albArn = "arn:aws:elasticloadbalancing:ap-northeast-1:123456789012:loadbalancer/app/gameday/50dc6c495c0c9188"

func orchestrate(context map[string]interface{}) stacks.Deployment {
	app := testutil.NoBundlingApp(context)
	return stacks.Orchestrate(app, testutil.Env(), testutil.LambdaEntry())
}

type OrchestrateSuite struct {
	suite.Suite
}

func (s *OrchestrateSuite) TestDefaults() {
	d := orchestrate(nil)

	s.Equal("Rekognition-dev", *d.Rekognition.Stack.StackName())
	s.Equal("us-east-1", *d.EdgeWaf.Stack.Region())
	s.Require().NotNil(d.Distribution)
	s.Require().NotNil(d.StaticSite)
	s.Nil(d.Route53)
	s.Nil(d.Rekognition.RegionalWaf)

	assocs := d.Registry.Associations()
	s.Len(assocs, 2)
	for _, a := range assocs {
		s.Equal(waf.FamilyDistribution, a.Family)
		s.Equal(waf.ScopeEdge, a.WebACL.Scope)
	}
}

func (s *OrchestrateSuite) TestRekognitionStack() {
	d := orchestrate(nil)
	template := assertions.Template_FromStack(d.Rekognition.Stack, nil)

	template.HasResourceProperties(jsii.String("AWS::Lambda::Function"), map[string]interface{}{
		"FunctionName": "huang-gameday-rekognition-lambda",
		"Timeout":      900,
	})
	template.ResourceCountIs(jsii.String("AWS::WAFv2::WebACL"), jsii.Number(0))
	template.HasOutput(jsii.String("ApiUrl"), map[string]interface{}{})
	template.HasOutput(jsii.String("StageArn"), map[string]interface{}{})
}

func (s *OrchestrateSuite) TestEdgeWafStack() {
	d := orchestrate(nil)
	template := assertions.Template_FromStack(d.EdgeWaf.Stack, nil)

	template.HasResourceProperties(jsii.String("AWS::WAFv2::WebACL"), map[string]interface{}{
		"Name":  "huang-gameday-cloudfront-waf-web-acl",
		"Scope": "CLOUDFRONT",
	})
	// Nothing is configured beyond the catalog by default.
	template.ResourceCountIs(jsii.String("AWS::WAFv2::IPSet"), jsii.Number(0))
	template.ResourceCountIs(jsii.String("AWS::WAFv2::WebACLAssociation"), jsii.Number(0))
}

func (s *OrchestrateSuite) TestApiDistribution() {
	d := orchestrate(nil)
	template := assertions.Template_FromStack(d.Distribution.Stack, nil)

	template.ResourceCountIs(jsii.String("AWS::CloudFront::Distribution"), jsii.Number(1))
	template.HasResourceProperties(jsii.String("AWS::CloudFront::OriginRequestPolicy"), map[string]interface{}{
		"OriginRequestPolicyConfig": assertions.Match_ObjectLike(&map[string]interface{}{
			"Name":               "huang-gameday-apigwPolicy",
			"QueryStringsConfig": map[string]interface{}{"QueryStringBehavior": "all"},
		}),
	})
	template.HasResourceProperties(jsii.String("AWS::S3::Bucket"), map[string]interface{}{
		"BucketName": "huang-gameday-cf-log-bucket",
	})
	template.HasResourceProperties(jsii.String("AWS::CloudFront::Distribution"), map[string]interface{}{
		"DistributionConfig": assertions.Match_ObjectLike(&map[string]interface{}{
			"WebACLId": assertions.Match_AnyValue(),
			"Origins": assertions.Match_ArrayWith(&[]interface{}{
				assertions.Match_ObjectLike(&map[string]interface{}{
					"OriginCustomHeaders": []interface{}{
						map[string]interface{}{"HeaderName": stacks.ProjectHeader, "HeaderValue": "huang-gameday"},
					},
				}),
			}),
		}),
	})
	template.HasOutput(jsii.String("DistributionDomainName"), map[string]interface{}{})
}

func (s *OrchestrateSuite) TestBucketOrigin() {
	d := orchestrate(map[string]interface{}{"originType": "bucket", "staticSite": false})

	s.Nil(d.Distribution)
	s.Require().NotNil(d.StaticSite)
	s.Len(d.Registry.Associations(), 1)

	template := assertions.Template_FromStack(d.StaticSite.Stack, nil)
	template.HasResourceProperties(jsii.String("AWS::CloudFront::Distribution"), map[string]interface{}{
		"DistributionConfig": assertions.Match_ObjectLike(&map[string]interface{}{
			"DefaultRootObject": "index.html",
			"CacheBehaviors": []interface{}{
				assertions.Match_ObjectLike(&map[string]interface{}{
					"PathPattern":   "/image*",
					"CachePolicyId": assertions.Match_ObjectLike(&map[string]interface{}{"Ref": assertions.Match_AnyValue()}),
				}),
			},
		}),
	})
	template.HasResourceProperties(jsii.String("AWS::CloudFront::CachePolicy"), map[string]interface{}{
		"CachePolicyConfig": assertions.Match_ObjectLike(&map[string]interface{}{
			"Name": "huang-gameday-siteCachePolicy",
			"ParametersInCacheKeyAndForwardedToOrigin": assertions.Match_ObjectLike(&map[string]interface{}{
				"QueryStringsConfig": map[string]interface{}{
					"QueryStringBehavior": "whitelist",
					"QueryStrings":        []interface{}{"name"},
				},
			}),
		}),
	})
}

func (s *OrchestrateSuite) TestStaticSiteDisabled() {
	d := orchestrate(map[string]interface{}{"staticSite": "false"})
	s.Nil(d.StaticSite)
	s.NotNil(d.Distribution)
}

func (s *OrchestrateSuite) TestLoadBalancerOrigin() {
	d := orchestrate(map[string]interface{}{"originType": "alb", "loadBalancerArn": albArn})
	template := assertions.Template_FromStack(d.Distribution.Stack, nil)

	template.HasResourceProperties(jsii.String("AWS::CloudFront::OriginRequestPolicy"), map[string]interface{}{
		"OriginRequestPolicyConfig": assertions.Match_ObjectLike(&map[string]interface{}{
			"Name": "huang-gameday-elbPolicy",
		}),
	})
	template.HasResourceProperties(jsii.String("AWS::CloudFront::CachePolicy"), map[string]interface{}{
		"CachePolicyConfig": assertions.Match_ObjectLike(&map[string]interface{}{
			"Name": "huang-gameday-cachePolicy",
		}),
	})
	template.HasResourceProperties(jsii.String("AWS::CloudFront::Distribution"), map[string]interface{}{
		"DistributionConfig": assertions.Match_ObjectLike(&map[string]interface{}{
			"DefaultCacheBehavior": assertions.Match_ObjectLike(&map[string]interface{}{
				"AllowedMethods": []interface{}{"GET", "HEAD", "OPTIONS", "PUT", "PATCH", "POST", "DELETE"},
				"CachePolicyId":  assertions.Match_ObjectLike(&map[string]interface{}{"Ref": assertions.Match_AnyValue()}),
			}),
			"Origins": []interface{}{
				assertions.Match_ObjectLike(&map[string]interface{}{
					"CustomOriginConfig": assertions.Match_ObjectLike(&map[string]interface{}{
						"OriginProtocolPolicy": "https-only",
					}),
				}),
			},
		}),
	})
}

func (s *OrchestrateSuite) TestLoadBalancerOriginRequiresArn() {
	s.Panics(func() { orchestrate(map[string]interface{}{"originType": "alb"}) })
}

func (s *OrchestrateSuite) TestApiWithLoadBalancerFailover() {
	d := orchestrate(map[string]interface{}{"loadBalancerArn": albArn})
	template := assertions.Template_FromStack(d.Distribution.Stack, nil)

	template.HasResourceProperties(jsii.String("AWS::CloudFront::Distribution"), map[string]interface{}{
		"DistributionConfig": assertions.Match_ObjectLike(&map[string]interface{}{
			"DefaultCacheBehavior": assertions.Match_ObjectLike(&map[string]interface{}{
				"AllowedMethods": []interface{}{"GET", "HEAD", "OPTIONS"},
				"CachePolicyId":  assertions.Match_ObjectLike(&map[string]interface{}{"Ref": assertions.Match_AnyValue()}),
			}),
			"OriginGroups": assertions.Match_ObjectLike(&map[string]interface{}{
				"Quantity": 1,
				"Items": []interface{}{
					assertions.Match_ObjectLike(&map[string]interface{}{
						"FailoverCriteria": map[string]interface{}{
							"StatusCodes": map[string]interface{}{
								"Items":    []interface{}{500, 502, 503, 504},
								"Quantity": 4,
							},
						},
					}),
				},
			}),
		}),
	})
}

func (s *OrchestrateSuite) TestRegionalWaf() {
	d := orchestrate(map[string]interface{}{"regionalWaf": true})
	s.Require().NotNil(d.Rekognition.RegionalWaf)
	s.Len(d.Registry.Associations(), 3)

	template := assertions.Template_FromStack(d.Rekognition.Stack, nil)
	template.HasResourceProperties(jsii.String("AWS::WAFv2::WebACL"), map[string]interface{}{
		"Name":  "huang-gameday-regional-waf-web-acl",
		"Scope": "REGIONAL",
	})
	template.ResourceCountIs(jsii.String("AWS::WAFv2::WebACLAssociation"), jsii.Number(1))
	template.HasResource(jsii.String("AWS::WAFv2::WebACLAssociation"), map[string]interface{}{
		"DependsOn": assertions.Match_AnyValue(),
	})
	template.HasOutput(jsii.String("RegionalWebAclArn"), map[string]interface{}{})
}

func (s *OrchestrateSuite) TestPublicZone() {
	d := orchestrate(map[string]interface{}{"zoneName": "gameday.example.com"})
	s.Require().NotNil(d.Route53)

	template := assertions.Template_FromStack(d.Route53.Stack, nil)
	template.ResourceCountIs(jsii.String("AWS::Route53::HostedZone"), jsii.Number(1))
	template.ResourceCountIs(jsii.String("AWS::Route53::RecordSet"), jsii.Number(2))
	template.HasOutput(jsii.String("HostedZoneId"), map[string]interface{}{})
}

func (s *OrchestrateSuite) TestPrivateZoneRequiresVpc() {
	s.Panics(func() {
		orchestrate(map[string]interface{}{"zoneName": "gameday.internal", "publicZone": false})
	})
}

func (s *OrchestrateSuite) TestStageAndRegionContext() {
	d := orchestrate(map[string]interface{}{"stageName": "prod", "region": "eu-west-1"})
	s.Equal("Rekognition-prod", *d.Rekognition.Stack.StackName())
	s.Equal("eu-west-1", *d.Rekognition.Stack.Region())
	s.Equal("us-east-1", *d.EdgeWaf.Stack.Region())
}

func TestOrchestrateSuite(t *testing.T) {
	suite.Run(t, new(OrchestrateSuite))
}

func TestEdgeWafStackOutsideUsEast1Panics(t *testing.T) {
	app := testutil.NoBundlingApp(nil)
	assert.Panics(t, func() {
		stacks.EdgeWafStack(app, "EdgeWaf", &stacks.EdgeWafStackProps{
			StackProps: awscdk.StackProps{Env: testutil.Env()},
		})
	})
}

func TestDistributionStackRequiresApi(t *testing.T) {
	app := testutil.NoBundlingApp(nil)
	require.Panics(t, func() {
		stacks.DistributionStack(app, "Distribution", &stacks.DistributionStackProps{
			StackProps: awscdk.StackProps{Env: testutil.Env()},
			Kind:       "api",
		})
	})
}
