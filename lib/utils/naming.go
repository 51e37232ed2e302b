package utils

import "strings"

// ResourceName joins the project prefix and parts with "-", the convention
// for every physical name in the app: ResourceName("p", "api", "gw") is
// "p-api-gw".
func ResourceName(project string, parts ...string) string {
	return strings.Join(append([]string{project}, parts...), "-")
}
