package utils

import (
	"os"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/jsii-runtime-go"
)

// CdkEnv resolves the deployment account and region: CDK_DEPLOY_* when both
// are set, otherwise the CDK_DEFAULT_* pair the CDK CLI exports.
// See https://docs.aws.amazon.com/cdk/latest/guide/environments.html
func CdkEnv() *awscdk.Environment {
	account, region := os.Getenv("CDK_DEPLOY_ACCOUNT"), os.Getenv("CDK_DEPLOY_REGION")
	if account == "" || region == "" {
		account, region = os.Getenv("CDK_DEFAULT_ACCOUNT"), os.Getenv("CDK_DEFAULT_REGION")
	}
	return &awscdk.Environment{Account: jsii.String(account), Region: jsii.String(region)}
}

// InRegion copies env with its region replaced. An empty region keeps the
// region of env.
func InRegion(env *awscdk.Environment, region string) *awscdk.Environment {
	out := &awscdk.Environment{}
	if env != nil {
		*out = *env
	}
	if region != "" {
		out.Region = jsii.String(region)
	}
	return out
}
