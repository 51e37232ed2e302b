package cdklogger

import (
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/assertions"
	"github.com/aws/jsii-runtime-go"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithConstructPrefix(t *testing.T) {
	assert.Equal(t, "msg", withConstructPrefix("/Stack/Waf", "Waf", "msg"))
	assert.Equal(t, "msg", withConstructPrefix("/Waf", "Waf", "msg"))
	assert.Equal(t, "[Waf] msg", withConstructPrefix("/Stack", "Waf", "msg"))
	assert.Equal(t, "msg", withConstructPrefix("/Stack", "", "msg"))
}

func TestAnnotationsAndZap(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	app := awscdk.NewApp(nil)
	stack := awscdk.NewStack(app, jsii.String("LogStack"), nil)

	LogInfo(stack, "Waf", "rate limit %d", 100)
	LogWarning(stack, "", "no geo countries")

	annotations := assertions.Annotations_FromStack(stack)
	annotations.HasInfo(jsii.String("/LogStack"), jsii.String("[Waf] rate limit 100"))
	annotations.HasWarning(jsii.String("/LogStack"), jsii.String("no geo countries"))

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, "[Waf] rate limit 100", entries[0].Message)
		assert.Equal(t, zap.WarnLevel, entries[1].Level)
		assert.Equal(t, "/LogStack", entries[1].ContextMap()["path"])
	}
}
