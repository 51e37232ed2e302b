package origin

import (
	"fmt"
	"strings"
)

// Kind names the backend a distribution fetches from.
type Kind string

const (
	KindAPI          Kind = "api"
	KindLoadBalancer Kind = "alb"
	KindBucket       Kind = "bucket"
)

// ParseKind converts a raw string into a Kind, returning an error for invalid values.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch Kind(s) {
	case KindAPI, KindLoadBalancer, KindBucket:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("invalid origin type %q", s)
	}
}
