//go:generate go test -run . -update
package renderer_test

import (
	"testing"

	"github.com/gameday/rekognition-edge/infra/scripts/renderer"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestMapping_Golden(t *testing.T) {
	g := goldie.New(t)

	got, err := renderer.Render(renderer.TplRequestMapping, renderer.RequestMappingData{
		QueryParams: []string{"name"},
	})
	require.NoError(t, err)

	g.Assert(t, t.Name(), []byte(got))
}

func TestRequestMapping_MultipleParams(t *testing.T) {
	got, err := renderer.Render(renderer.TplRequestMapping, renderer.RequestMappingData{
		QueryParams: []string{"name", "bucket"},
	})
	require.NoError(t, err)
	assert.Contains(t, got, `"name": "$input.params('name')", "bucket": "$input.params('bucket')"`)
}

func TestSiteIndex_Golden(t *testing.T) {
	g := goldie.New(t)

	got, err := renderer.Render(renderer.TplSiteIndex, renderer.SitePageData{
		ProjectName: "huang-gameday",
		Title:       "Rekognition demo",
		Message:     "Static content served from S3 <CloudFront>.",
	})
	require.NoError(t, err)

	g.Assert(t, t.Name(), []byte(got))
}

func TestSiteError_Golden(t *testing.T) {
	g := goldie.New(t)

	got, err := renderer.Render(renderer.TplSiteError, renderer.SitePageData{
		ProjectName: "huang-gameday",
		StatusCode:  404,
	})
	require.NoError(t, err)

	g.Assert(t, t.Name(), []byte(got))
}

func TestRendererErrors(t *testing.T) {
	tests := []struct {
		name       string
		tplName    renderer.TemplateName
		data       any
		wantErrMsg string
	}{
		{
			name:       "Template not found",
			tplName:    "non_existent_template.tmpl",
			wantErrMsg: "parsing template",
		},
		{
			name:       "Missing query params",
			tplName:    renderer.TplRequestMapping,
			data:       renderer.RequestMappingData{},
			wantErrMsg: "missing required field '.QueryParams'",
		},
		{
			name:       "Missing title",
			tplName:    renderer.TplSiteIndex,
			data:       renderer.SitePageData{ProjectName: "p"},
			wantErrMsg: "missing required field '.Title'",
		},
		{
			name:       "Missing status code",
			tplName:    renderer.TplSiteError,
			data:       renderer.SitePageData{},
			wantErrMsg: "missing required field '.StatusCode'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := renderer.Render(tt.tplName, tt.data)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErrMsg)
		})
	}
}

func TestMustRender(t *testing.T) {
	assert.NotEmpty(t, renderer.MustRender(renderer.TplSiteError, renderer.SitePageData{StatusCode: 403}))
	assert.Panics(t, func() { renderer.MustRender(renderer.TplSiteError, renderer.SitePageData{}) })
}

func TestRenderFiles(t *testing.T) {
	page := renderer.SitePageData{ProjectName: "huang-gameday", Title: "Rekognition demo"}
	files, err := renderer.RenderFiles(
		renderer.File{Path: "index.html", Template: renderer.TplSiteIndex, Data: page},
		renderer.File{Path: "error.html", Template: renderer.TplSiteError, Data: renderer.SitePageData{StatusCode: 404}},
	)
	require.NoError(t, err)
	assert.Len(t, files, 2)
	assert.Contains(t, string(files["index.html"]), "<h1>Rekognition demo</h1>")
	assert.Contains(t, string(files["error.html"]), "<h1>404</h1>")

	_, err = renderer.RenderFiles(
		renderer.File{Path: "index.html", Template: renderer.TplSiteIndex, Data: page},
		renderer.File{Path: "index.html", Template: renderer.TplSiteIndex, Data: page},
	)
	assert.ErrorContains(t, err, "rendered twice")

	_, err = renderer.RenderFiles(renderer.File{Path: "error.html", Template: renderer.TplSiteError, Data: renderer.SitePageData{}})
	assert.ErrorContains(t, err, "error.html")
}
