// Package renderer loads embedded text templates under scripts/renderer/templates/
// and renders them with sprig functions.
//
// It keeps the API Gateway mapping template and the static site pages as
// readable `.tmpl` files instead of Go string literals.
//
// Example:
//
//	body, err := renderer.Render(renderer.TplRequestMapping, renderer.RequestMappingData{
//	    QueryParams: []string{"name"},
//	})
package renderer
