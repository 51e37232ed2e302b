package stacks

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/gameday/rekognition-edge/infra/config"
	"github.com/gameday/rekognition-edge/infra/lib/cdklogger"
	"github.com/gameday/rekognition-edge/infra/lib/constructs/protection"
	"github.com/gameday/rekognition-edge/infra/lib/constructs/restapi"
	"github.com/gameday/rekognition-edge/infra/lib/waf"
)

// DefaultLambdaEntry is the handler package, relative to the directory cdk
// runs in.
const DefaultLambdaEntry = "cmd/rekognition-lambda"

type RekognitionStackProps struct {
	awscdk.StackProps
	Registry    *waf.Registry
	LambdaEntry string
}

type RekognitionStackExports struct {
	Stack awscdk.Stack
	Api   *restapi.RekognitionApi
	// RegionalWaf is nil unless the regionalWaf context flag is set.
	RegionalWaf *protection.Protection
}

// RekognitionStack deploys the image labelling API and, optionally, a
// regional web ACL on its stage.
func RekognitionStack(scope constructs.Construct, id string, props *RekognitionStackProps) RekognitionStackExports {
	var sprops awscdk.StackProps
	if props != nil {
		sprops = props.StackProps
	} else {
		props = &RekognitionStackProps{}
	}
	stack := awscdk.NewStack(scope, jsii.String(id), &sprops)
	project := config.LoadProject(stack)

	entry := props.LambdaEntry
	if entry == "" {
		entry = DefaultLambdaEntry
	}

	api := restapi.NewRekognitionApi(stack, "Api", &restapi.RekognitionApiProps{
		ProjectName: project.Name,
		StageName:   project.StageName,
		Entry:       entry,
		Function: restapi.FunctionSettings{
			SampleBucket:    project.Lambda.SampleBucket,
			SampleKeyPrefix: project.Lambda.SampleKeyPrefix,
			MaxLabels:       project.Lambda.MaxLabels,
			MinConfidence:   project.Lambda.MinConfidence,
		},
	})
	exports := RekognitionStackExports{Stack: stack, Api: api}

	awscdk.NewCfnOutput(stack, jsii.String("ApiUrl"), &awscdk.CfnOutputProps{Value: api.Url()})
	awscdk.NewCfnOutput(stack, jsii.String("StageArn"), &awscdk.CfnOutputProps{Value: api.StageArn()})

	if !config.RegionalWaf(stack) {
		return exports
	}

	policy, err := project.Waf.WebACL(project.Name, string(waf.ScopeRegional))
	if err != nil {
		cdklogger.LogError(stack, id, "%v", err)
		panic(err)
	}
	exports.RegionalWaf = protection.NewProtection(stack, "RegionalWaf", &protection.ProtectionProps{
		WebACL:   policy,
		Registry: props.Registry,
	})
	exports.RegionalWaf.Protect("StageAssociation", protection.Target{
		Arn:       api.StageArn(),
		Family:    waf.FamilyAPIStage,
		DependsOn: api.RestApi.DeploymentStage(),
	})
	awscdk.NewCfnOutput(stack, jsii.String("RegionalWebAclArn"), &awscdk.CfnOutputProps{Value: exports.RegionalWaf.Arn()})

	return exports
}
