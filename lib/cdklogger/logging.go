package cdklogger

import (
	"fmt"
	"strings"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"go.uber.org/zap"
)

type level int

const (
	levelInfo level = iota
	levelWarning
	levelError
)

// LogInfo adds an INFO annotation to scope. Annotations are printed by
// `cdk synth`; the message is also written to the global zap logger.
func LogInfo(scope constructs.Construct, constructID string, format string, args ...interface{}) {
	annotate(scope, levelInfo, constructID, format, args...)
}

// LogWarning adds a WARNING annotation to scope.
func LogWarning(scope constructs.Construct, constructID string, format string, args ...interface{}) {
	annotate(scope, levelWarning, constructID, format, args...)
}

// LogError adds an ERROR annotation to scope. `cdk synth` fails when any
// error annotation is present.
func LogError(scope constructs.Construct, constructID string, format string, args ...interface{}) {
	annotate(scope, levelError, constructID, format, args...)
}

func annotate(scope constructs.Construct, lvl level, constructID string, format string, args ...interface{}) {
	path := *scope.Node().Path()
	message := withConstructPrefix(path, constructID, fmt.Sprintf(format, args...))

	annotations := awscdk.Annotations_Of(scope)
	logger := zap.L().With(zap.String("path", path))
	switch lvl {
	case levelWarning:
		annotations.AddWarning(jsii.String(message))
		logger.Warn(message)
	case levelError:
		annotations.AddError(jsii.String(message))
		logger.Error(message)
	default:
		annotations.AddInfo(jsii.String(message))
		logger.Info(message)
	}
}

// withConstructPrefix prepends "[constructID] " unless the construct path
// already ends with that id.
func withConstructPrefix(path, constructID, message string) string {
	if constructID == "" || path == "/"+constructID || strings.HasSuffix(path, "/"+constructID) {
		return message
	}
	return fmt.Sprintf("[%s] %s", constructID, message)
}
