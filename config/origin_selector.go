package config

import (
	"fmt"

	"github.com/aws/constructs-go/constructs/v10"
	"github.com/gameday/rekognition-edge/infra/lib/constructs/origin"
)

const originTypeKey = "originType"

// GetOriginKind reads the originType context value: api (default), alb or
// bucket. Anything else panics during synthesis.
func GetOriginKind(scope constructs.Construct) origin.Kind {
	raw := contextString(scope, originTypeKey, string(origin.KindAPI))
	kind, err := origin.ParseKind(raw)
	if err != nil {
		panic(fmt.Sprintf("invalid %s=%q, allowed: %s | %s | %s: %v",
			originTypeKey, raw, origin.KindAPI, origin.KindLoadBalancer, origin.KindBucket, err))
	}
	return kind
}
