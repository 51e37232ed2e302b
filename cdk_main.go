package main

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/gameday/rekognition-edge/infra/lib/utils"
	"github.com/gameday/rekognition-edge/infra/stacks"
	"go.uber.org/zap"
)

func main() {
	logger := zap.Must(zap.NewDevelopment())
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	app := awscdk.NewApp(nil)

	stacks.Orchestrate(app, utils.CdkEnv(), stacks.DefaultLambdaEntry)

	app.Synth(nil)
}
