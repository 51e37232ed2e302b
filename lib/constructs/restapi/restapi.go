package restapi

import (
	"fmt"
	"strconv"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsapigateway"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsiam"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslambda"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslogs"
	"github.com/aws/aws-cdk-go/awscdklambdagoalpha/v2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/gameday/rekognition-edge/infra/lib/utils"
	"github.com/gameday/rekognition-edge/infra/scripts/renderer"
	"github.com/go-playground/validator/v10"
)

const (
	DefaultStageName = "dev"
	ImageResource    = "image"
	NameQueryParam   = "name"
)

// FunctionSettings configure the label detection performed by the function.
type FunctionSettings struct {
	SampleBucket    string `validate:"required"`
	SampleKeyPrefix string
	MaxLabels       int     `validate:"min=1"`
	MinConfidence   float64 `validate:"min=0,max=100"`
}

type RekognitionApiProps struct {
	ProjectName string `validate:"required"`
	// StageName defaults to DefaultStageName.
	StageName string
	// Entry is the Go package of the Lambda handler, ModuleDir the directory
	// holding its go.mod.
	Entry     string `validate:"required"`
	ModuleDir string
	Function  FunctionSettings
}

// RekognitionApi is a logging-enabled REST API with a single GET /image
// route backed by a Go Lambda that calls Rekognition.
type RekognitionApi struct {
	constructs.Construct
	RestApi    awsapigateway.RestApi
	AccessLogs awslogs.LogGroup
	Role       awsiam.Role
	Function   awslambda.Function
	Method     awsapigateway.Method
	StageName  string
}

func NewRekognitionApi(scope constructs.Construct, id string, props *RekognitionApiProps) *RekognitionApi {
	if props == nil {
		panic(fmt.Sprintf("props are required for RekognitionApi construct %s", id))
	}
	if err := validator.New().Struct(props); err != nil {
		panic(fmt.Sprintf("invalid props for RekognitionApi construct %s: %v", id, err))
	}
	stageName := props.StageName
	if stageName == "" {
		stageName = DefaultStageName
	}

	construct := constructs.NewConstruct(scope, jsii.String(id))
	r := &RekognitionApi{Construct: construct, StageName: stageName}

	r.AccessLogs = awslogs.NewLogGroup(construct, jsii.String("AccessLogs"), &awslogs.LogGroupProps{
		LogGroupName:  jsii.String(utils.ResourceName(props.ProjectName, "api")),
		Retention:     awslogs.RetentionDays_ONE_WEEK,
		RemovalPolicy: awscdk.RemovalPolicy_DESTROY,
	})

	r.RestApi = awsapigateway.NewRestApi(construct, jsii.String("RestApi"), &awsapigateway.RestApiProps{
		RestApiName:    jsii.String(utils.ResourceName(props.ProjectName, "api-gw")),
		CloudWatchRole: jsii.Bool(true),
		DeployOptions: &awsapigateway.StageOptions{
			StageName:            jsii.String(stageName),
			LoggingLevel:         awsapigateway.MethodLoggingLevel_INFO,
			DataTraceEnabled:     jsii.Bool(true),
			AccessLogDestination: awsapigateway.NewLogGroupLogDestination(r.AccessLogs),
			AccessLogFormat:      awsapigateway.AccessLogFormat_Clf(),
		},
		DefaultCorsPreflightOptions: &awsapigateway.CorsOptions{
			AllowOrigins: awsapigateway.Cors_ALL_ORIGINS(),
			AllowMethods: awsapigateway.Cors_ALL_METHODS(),
			StatusCode:   jsii.Number(200),
		},
	})

	r.Role = awsiam.NewRole(construct, jsii.String("LambdaRole"), &awsiam.RoleProps{
		RoleName:  jsii.String(utils.ResourceName(props.ProjectName, "rekognition-lambda-role")),
		AssumedBy: awsiam.NewServicePrincipal(jsii.String("lambda.amazonaws.com"), nil),
		ManagedPolicies: &[]awsiam.IManagedPolicy{
			awsiam.ManagedPolicy_FromAwsManagedPolicyName(jsii.String("service-role/AWSLambdaBasicExecutionRole")),
			awsiam.ManagedPolicy_FromAwsManagedPolicyName(jsii.String("AmazonRekognitionFullAccess")),
			awsiam.ManagedPolicy_FromAwsManagedPolicyName(jsii.String("AmazonS3ReadOnlyAccess")),
		},
	})

	goProps := &awscdklambdagoalpha.GoFunctionProps{
		FunctionName: jsii.String(utils.ResourceName(props.ProjectName, "rekognition-lambda")),
		Entry:        jsii.String(props.Entry),
		Runtime:      awslambda.Runtime_PROVIDED_AL2023(),
		Architecture: awslambda.Architecture_ARM_64(),
		Role:         r.Role,
		Timeout:      awscdk.Duration_Minutes(jsii.Number(15)),
		MemorySize:   jsii.Number(256),
		Environment: &map[string]*string{
			"SAMPLE_BUCKET":     jsii.String(props.Function.SampleBucket),
			"SAMPLE_KEY_PREFIX": jsii.String(props.Function.SampleKeyPrefix),
			"MAX_LABELS":        jsii.String(strconv.Itoa(props.Function.MaxLabels)),
			"MIN_CONFIDENCE":    jsii.String(strconv.FormatFloat(props.Function.MinConfidence, 'f', -1, 64)),
		},
		Bundling: &awscdklambdagoalpha.BundlingOptions{
			GoBuildFlags: &[]*string{jsii.String(`-ldflags "-s -w"`)},
		},
	}
	if props.ModuleDir != "" {
		goProps.ModuleDir = jsii.String(props.ModuleDir)
	}
	r.Function = awscdklambdagoalpha.NewGoFunction(construct, jsii.String("Function"), goProps)

	mapping := renderer.MustRender(renderer.TplRequestMapping, renderer.RequestMappingData{
		QueryParams: []string{NameQueryParam},
	})
	integration := awsapigateway.NewLambdaIntegration(r.Function, &awsapigateway.LambdaIntegrationOptions{
		Proxy:               jsii.Bool(false),
		PassthroughBehavior: awsapigateway.PassthroughBehavior_WHEN_NO_TEMPLATES,
		RequestTemplates: &map[string]*string{
			"application/json": jsii.String(mapping),
		},
		IntegrationResponses: &[]*awsapigateway.IntegrationResponse{
			{StatusCode: jsii.String("200")},
		},
	})

	image := r.RestApi.Root().AddResource(jsii.String(ImageResource), nil)
	r.Method = image.AddMethod(jsii.String("GET"), integration, &awsapigateway.MethodOptions{
		AuthorizationType: awsapigateway.AuthorizationType_NONE,
		RequestParameters: &map[string]*bool{
			"method.request.querystring." + NameQueryParam: jsii.Bool(true),
		},
		RequestValidatorOptions: &awsapigateway.RequestValidatorOptions{
			ValidateRequestParameters: jsii.Bool(true),
		},
		MethodResponses: &[]*awsapigateway.MethodResponse{
			{StatusCode: jsii.String("200")},
		},
	})

	return r
}

// StageArn is the ARN web ACLs use to protect the deployment stage:
// arn:<partition>:apigateway:<region>::/restapis/<id>/stages/<stage>.
func (r *RekognitionApi) StageArn() *string {
	return awscdk.Stack_Of(r).FormatArn(&awscdk.ArnComponents{
		Service:   jsii.String("apigateway"),
		Account:   jsii.String(""),
		Resource:  jsii.String("/restapis/" + *r.RestApi.RestApiId() + "/stages/" + r.StageName),
		ArnFormat: awscdk.ArnFormat_NO_RESOURCE_NAME,
	})
}

func (r *RekognitionApi) Url() *string {
	return r.RestApi.Url()
}
