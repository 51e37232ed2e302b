package hostedzone

import (
	"fmt"
	"sort"

	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudfront"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsroute53"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsroute53targets"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/gameday/rekognition-edge/infra/lib/cdklogger"
	"github.com/samber/lo"
)

type HostedZoneProps struct {
	ZoneName string
	// Private zones are bound to the VPC with this id, looked up at synth time.
	Private bool
	VpcId   string
	// Aliases maps a record name relative to the zone (empty for the apex)
	// to the distribution it points at.
	Aliases map[string]awscloudfront.IDistribution
}

type HostedZone struct {
	constructs.Construct
	Zone    awsroute53.IHostedZone
	Records []awsroute53.ARecord
}

// NewHostedZone creates a public zone, or a private one when props.Private
// is set. A private zone without a VPC is a configuration error.
func NewHostedZone(scope constructs.Construct, id string, props *HostedZoneProps) *HostedZone {
	if props == nil || props.ZoneName == "" {
		panic(fmt.Sprintf("zone name is required for HostedZone construct %s", id))
	}
	construct := constructs.NewConstruct(scope, jsii.String(id))
	h := &HostedZone{Construct: construct}

	if props.Private {
		if props.VpcId == "" {
			cdklogger.LogError(construct, id, "private hosted zone %s needs a vpcId", props.ZoneName)
			panic(fmt.Sprintf("private hosted zone %s requires a vpc id", props.ZoneName))
		}
		vpc := awsec2.Vpc_FromLookup(construct, jsii.String("Vpc"), &awsec2.VpcLookupOptions{
			VpcId: jsii.String(props.VpcId),
		})
		h.Zone = awsroute53.NewPrivateHostedZone(construct, jsii.String("Zone"), &awsroute53.PrivateHostedZoneProps{
			ZoneName: jsii.String(props.ZoneName),
			Vpc:      vpc,
		})
	} else {
		h.Zone = awsroute53.NewPublicHostedZone(construct, jsii.String("Zone"), &awsroute53.PublicHostedZoneProps{
			ZoneName: jsii.String(props.ZoneName),
		})
	}

	names := lo.Keys(props.Aliases)
	sort.Strings(names)
	for i, name := range names {
		record := &awsroute53.ARecordProps{
			Zone:   h.Zone,
			Target: awsroute53.RecordTarget_FromAlias(awsroute53targets.NewCloudFrontTarget(props.Aliases[name])),
		}
		if name != "" {
			record.RecordName = jsii.String(name)
		}
		h.Records = append(h.Records, awsroute53.NewARecord(construct, jsii.String(fmt.Sprintf("Alias%d", i)), record))
	}

	cdklogger.LogInfo(construct, id, "hosted zone %s (private=%t) with %d alias records", props.ZoneName, props.Private, len(h.Records))
	return h
}

func (h *HostedZone) ZoneId() *string {
	return h.Zone.HostedZoneId()
}
