package config

import (
	"path/filepath"
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/jsii-runtime-go"
	"github.com/gameday/rekognition-edge/infra/lib/constructs/origin"
	"github.com/gameday/rekognition-edge/infra/lib/waf"
	"github.com/gameday/rekognition-edge/infra/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStack(t *testing.T, context map[string]interface{}) awscdk.Stack {
	t.Helper()
	app := awscdk.NewApp(&awscdk.AppProps{Context: &context})
	return awscdk.NewStack(app, jsii.String("ConfigTestStack"), nil)
}

func TestContextDefaults(t *testing.T) {
	stack := newStack(t, map[string]interface{}{})
	assert.Equal(t, DefaultProjectName, ProjectName(stack))
	assert.Equal(t, DefaultStageName, StageName(stack))
	assert.True(t, PublicZone(stack))
	assert.False(t, RegionalWaf(stack))
	assert.True(t, StaticSite(stack))
	assert.Empty(t, ZoneName(stack))
	assert.Equal(t, origin.KindAPI, GetOriginKind(stack))
}

func TestContextOverrides(t *testing.T) {
	stack := newStack(t, map[string]interface{}{
		"projectName": "demo",
		"stageName":   "prod",
		"publicZone":  "false",
		"regionalWaf": true,
		"originType":  "alb",
	})
	assert.Equal(t, "demo", ProjectName(stack))
	assert.Equal(t, "prod", StageName(stack))
	assert.False(t, PublicZone(stack))
	assert.True(t, RegionalWaf(stack))
	assert.Equal(t, origin.KindLoadBalancer, GetOriginKind(stack))
}

func TestContextInvalidValuesPanic(t *testing.T) {
	assert.Panics(t, func() { GetOriginKind(newStack(t, map[string]interface{}{"originType": "typo"})) })
	assert.Panics(t, func() { PublicZone(newStack(t, map[string]interface{}{"publicZone": "maybe"})) })
	assert.Panics(t, func() { ProjectName(newStack(t, map[string]interface{}{"projectName": 42})) })
}

func TestLoadProjectFile_TOML(t *testing.T) {
	f, err := LoadProjectFile(filepath.Join("testdata", "project.toml"))
	require.NoError(t, err)
	require.NotNil(t, f)

	p, err := Project{Name: "base", StageName: "dev"}.WithFile(f)
	require.NoError(t, err)
	assert.Equal(t, "edge-demo", p.Name)
	assert.Equal(t, "prod", p.StageName)
	require.NotNil(t, p.Waf.RateLimit)
	assert.Equal(t, 500, *p.Waf.RateLimit)
	assert.Equal(t, []string{"JP", "US"}, p.Waf.GeoCountries)
	assert.Equal(t, []string{"203.0.113.0/24"}, p.Waf.AllowAddresses)
	assert.Equal(t, waf.PriorityNext(), p.Waf.IPRulePriority)
	assert.Equal(t, waf.PriorityFixed(40), p.Waf.GeoRulePriority)
	assert.True(t, p.Waf.RateRulePriority.IsZero())
	assert.Equal(t, "Edge demo", p.Site.Title)
	assert.Equal(t, 5, p.Lambda.MaxLabels)
}

func TestLoadProjectFile_YAML(t *testing.T) {
	f, err := LoadProjectFile(filepath.Join("testdata", "project.yaml"))
	require.NoError(t, err)

	p, err := Project{Lambda: LambdaSettings{SampleBucket: "default", MaxLabels: 10}}.WithFile(f)
	require.NoError(t, err)
	assert.Equal(t, 1000, *p.Waf.RateLimit)
	assert.Equal(t, "my-samples", p.Lambda.SampleBucket)
	assert.Equal(t, 10, p.Lambda.MaxLabels)
	assert.InDelta(t, 90.0, p.Lambda.MinConfidence, 0.001)
}

func TestLoadProjectFile_Errors(t *testing.T) {
	f, err := LoadProjectFile(filepath.Join("testdata", "missing.toml"))
	require.NoError(t, err)
	assert.Nil(t, f)

	_, err = LoadProjectFile(filepath.Join("testdata", "invalid.yaml"))
	require.Error(t, err)
	for _, field := range []string{"ProjectName", "RateLimit", "GeoCountries[0]", "AllowAddresses[0]"} {
		assert.Contains(t, err.Error(), field)
	}

	_, err = LoadProjectFile(testutil.TmpFile(t, "project.json", []byte(`{}`)))
	require.ErrorContains(t, err, "unsupported project config extension")

	_, err = LoadProjectFile(testutil.TmpFile(t, "project.toml", []byte("projectName = [")))
	require.Error(t, err)
}

func TestLoadProjectFile_YmlExtension(t *testing.T) {
	path := testutil.TmpFile(t, "project.yml", []byte("projectName: site-demo\nwaf:\n  rateRulePriority: fixed:40\n"))

	f, err := LoadProjectFile(path)
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, "site-demo", f.ProjectName)
	assert.Equal(t, "fixed:40", f.Waf.RateRulePriority)
}

func TestWithEnv(t *testing.T) {
	limit := 250
	p := Project{Waf: WafSettings{GeoCountries: []string{"JP"}}}.WithEnv(WafEnvironmentVariables{
		RateLimit:        &limit,
		AllowAddresses:   []string{"10.0.0.0/8"},
		IPRulePriority:   waf.PriorityFixed(20),
		RateRulePriority: waf.PriorityFixed(25),
	})
	assert.Equal(t, 250, *p.Waf.RateLimit)
	assert.Equal(t, []string{"JP"}, p.Waf.GeoCountries)
	assert.Equal(t, []string{"10.0.0.0/8"}, p.Waf.AllowAddresses)
	assert.Equal(t, waf.PriorityFixed(20), p.Waf.IPRulePriority)
	assert.Equal(t, waf.PriorityFixed(25), p.Waf.RateRulePriority)
	assert.True(t, p.Waf.GeoRulePriority.IsZero())
}

func TestGetEnvironmentVariables(t *testing.T) {
	t.Setenv("WAF_RATE_LIMIT", "300")
	t.Setenv("WAF_GEO_COUNTRIES", "JP,US")
	t.Setenv("WAF_IP_RULE_PRIORITY", "next")
	t.Setenv("WAF_RATE_RULE_PRIORITY", "fixed:12")

	vars := GetEnvironmentVariables[WafEnvironmentVariables](newStack(t, map[string]interface{}{}))
	require.NotNil(t, vars.RateLimit)
	assert.Equal(t, 300, *vars.RateLimit)
	assert.Equal(t, []string{"JP", "US"}, vars.GeoCountries)
	assert.Equal(t, waf.PriorityNext(), vars.IPRulePriority)
	assert.Equal(t, waf.PriorityFixed(12), vars.RateRulePriority)
	assert.True(t, vars.GeoRulePriority.IsZero())
}

func TestLoadProject(t *testing.T) {
	t.Setenv("WAF_RATE_LIMIT", "700")
	stack := newStack(t, map[string]interface{}{
		"configFile": filepath.Join("testdata", "project.toml"),
	})

	p := LoadProject(stack)
	assert.Equal(t, "edge-demo", p.Name)
	assert.Equal(t, 700, *p.Waf.RateLimit, "environment wins over the file")
	assert.Equal(t, "rekognition-console-v4-prod-nrt", p.Lambda.SampleBucket)

	in := p.Waf.AssembleInput(p.Name, "CLOUDFRONT")
	assert.Equal(t, "edge-demo-cloudfront", in.NamePrefix)
	assert.Equal(t, waf.ScopeEdge, in.Scope)
}

func TestWafSettingsWebACL(t *testing.T) {
	limit := 100
	settings := WafSettings{RateLimit: &limit, AllowAddresses: []string{"1.2.3.4"}, GeoCountries: []string{"jp"}}

	acl, err := settings.WebACL("huang-gameday", "CLOUDFRONT")
	require.NoError(t, err)
	assert.Equal(t, "huang-gameday-cloudfront-waf-web-acl", acl.Name)
	assert.Equal(t, "huang-gamedaycloudfront-WafWebAcl", acl.Visibility.MetricName)
	assert.Equal(t, waf.ScopeEdge, acl.Scope)
	assert.Len(t, acl.Rules, 9)

	regional, err := settings.WebACL("huang-gameday", "REGIONAL")
	require.NoError(t, err)
	assert.Equal(t, waf.ScopeRegional, regional.Scope)
	assert.Equal(t, "huang-gameday-regional-waf-ip-set", regional.Rules.IPSets()[0].Name)

	settings.IPRulePriority = waf.PriorityFixed(1)
	_, err = settings.WebACL("huang-gameday", "CLOUDFRONT")
	assert.ErrorIs(t, err, waf.ErrDuplicatePriority)
}

func TestWithStackSuffix(t *testing.T) {
	stack := newStack(t, map[string]interface{}{"stageName": "prod"})
	assert.Equal(t, "Rekognition-prod", WithStackSuffix(stack, "Rekognition"))
}
