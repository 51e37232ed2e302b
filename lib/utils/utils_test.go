package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/jsii-runtime-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResourceName(t *testing.T) {
	assert.Equal(t, "huang-gameday-api-gw", ResourceName("huang-gameday", "api-gw"))
	assert.Equal(t, "p", ResourceName("p"))
}

func TestCdkEnv(t *testing.T) {
	t.Setenv("CDK_DEPLOY_ACCOUNT", "")
	t.Setenv("CDK_DEPLOY_REGION", "")
	t.Setenv("CDK_DEFAULT_ACCOUNT", "123456789012")
	t.Setenv("CDK_DEFAULT_REGION", "ap-northeast-1")

	env := CdkEnv()
	assert.Equal(t, "123456789012", *env.Account)
	assert.Equal(t, "ap-northeast-1", *env.Region)

	t.Setenv("CDK_DEPLOY_ACCOUNT", "210987654321")
	t.Setenv("CDK_DEPLOY_REGION", "eu-west-1")
	assert.Equal(t, "eu-west-1", *CdkEnv().Region)

}

func TestInRegion(t *testing.T) {
	base := CdkEnv()
	base.Account = jsii.String("210987654321")
	base.Region = jsii.String("eu-west-1")

	edge := InRegion(base, "us-east-1")
	assert.Equal(t, "210987654321", *edge.Account)
	assert.Equal(t, "us-east-1", *edge.Region)
	assert.Equal(t, "eu-west-1", *base.Region, "the input is not modified")

	assert.Equal(t, "eu-west-1", *InRegion(base, "").Region)
	assert.Nil(t, InRegion(nil, "").Region)
}

func TestWriteToTempDir(t *testing.T) {
	dir := WriteToTempDir("site-*", map[string][]byte{
		"index.html":     []byte("<h1>hi</h1>"),
		"assets/app.css": []byte("body{}"),
	})
	t.Cleanup(func() { os.RemoveAll(*dir) })

	got, err := os.ReadFile(filepath.Join(*dir, "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<h1>hi</h1>", string(got))
	_, err = os.Stat(filepath.Join(*dir, "assets", "app.css"))
	require.NoError(t, err)
}
