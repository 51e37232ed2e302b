package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/jsii-runtime-go"
)

//---------------------------------------------------------------------
// 1. Generic helpers
//---------------------------------------------------------------------

// TmpFile writes content to name inside a per-test directory and returns
// the path. The extension of name is kept, so loaders that dispatch on it
// can be exercised.
func TmpFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write fixture %s: %v", name, err)
	}
	return path
}

// RepoRoot returns the directory holding the module's go.mod.
func RepoRoot() string {
	// use runtime.Caller to locate this file at runtime
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		panic("could not determine repository root")
	}
	return filepath.Join(filepath.Dir(file), "..", "..")
}

// LambdaEntry is the absolute path of the Rekognition handler package.
func LambdaEntry() string {
	return filepath.Join(RepoRoot(), "cmd", "rekognition-lambda")
}

//---------------------------------------------------------------------
// 2. CDK fixtures
//---------------------------------------------------------------------

const (
	Account = "123456789012"
	Region  = "ap-northeast-1"
)

// Env is a fixed, non us-east-1 environment.
func Env() *awscdk.Environment {
	return &awscdk.Environment{Account: jsii.String(Account), Region: jsii.String(Region)}
}

// EdgeEnv is Env in us-east-1.
func EdgeEnv() *awscdk.Environment {
	return &awscdk.Environment{Account: jsii.String(Account), Region: jsii.String("us-east-1")}
}

// NoBundlingApp returns an app that skips asset bundling, so Go Lambda
// functions are not compiled during tests. Extra context is merged in.
func NoBundlingApp(context map[string]interface{}) awscdk.App {
	ctx := map[string]interface{}{
		"aws:cdk:bundling-stacks": []interface{}{},
	}
	for k, v := range context {
		ctx[k] = v
	}
	return awscdk.NewApp(&awscdk.AppProps{Context: &ctx})
}
