package renderer

// TemplateName represents a known template filename.
type TemplateName string

// Constants for known template filenames.
const (
	TplRequestMapping TemplateName = "request_mapping.json.tmpl"
	TplSiteIndex      TemplateName = "index.html.tmpl"
	TplSiteError      TemplateName = "error.html.tmpl"
)

// RequestMappingData holds the data required by the TplRequestMapping template.
type RequestMappingData struct {
	// QueryParams are copied from the query string into the JSON event, in order.
	QueryParams []string
}

// SitePageData holds the data required by the static site templates.
type SitePageData struct {
	ProjectName string
	Title       string
	Message     string
	// StatusCode is only used by TplSiteError.
	StatusCode int
}
