package infra

import (
	"github.com/lex00/wetwire-workspace-go/internal/config"
	"github.com/lex00/wetwire-workspace-go/internal/stack"
	. "github.com/lex00/wetwire-workspace-go/intrinsics"
	"github.com/lex00/wetwire-workspace-go/resources/ec2"
)

// Compute logical names.
const (
	AmiParameter    = "LatestAmiId"
	PrivateInstance = "Ec2ConnectVpcEndpointS3"
	PublicInstance  = "Ec2PublicSubnet"
	ElasticIP       = "ElasticIPForEc2Pub"
)

// AmiParameterType resolves an SSM parameter path to an image ID at deploy time.
const AmiParameterType = "AWS::SSM::Parameter::Value<AWS::EC2::Image::Id>"

// Compute holds the two instances and the public address.
type Compute struct {
	Private   stack.Handle
	Public    stack.Handle
	ElasticIP stack.Handle
}

func addCompute(st *stack.Stack, cfg *config.Config, n Network, sg stack.Handle, id Identity) (Compute, error) {
	ami := st.MustAddParameter(AmiParameter, Parameter{
		Type:        AmiParameterType,
		Description: "SSM parameter holding the instance image",
		Default:     cfg.Instances.AMIParameter,
	})

	instance := func(name string, ic config.InstanceConfig, subnet stack.Handle) (stack.Handle, error) {
		h := st.MustAdd(name, &ec2.Instance{
			ImageId:            ami,
			InstanceType:       ic.Type,
			KeyName:            cfg.KeyPair,
			IamInstanceProfile: id.Profile.Ref(),
			AvailabilityZone:   availabilityZone(0),
			SubnetId:           subnet.Ref(),
			SecurityGroupIds:   Any(sg.Attr(ec2.SecurityGroupGroupId)),
			Tags:               Any(Tag{Key: "Name", Value: ic.Name}),
		})
		// The instance boots with the role's permissions already attached.
		return h, st.DependsOn(name, Role, InlinePolicy)
	}

	var c Compute
	var err error
	if c.Private, err = instance(PrivateInstance, cfg.Instances.Private, n.PrivateSubnets[0]); err != nil {
		return Compute{}, err
	}
	if c.Public, err = instance(PublicInstance, cfg.Instances.Public, n.PublicSubnets[0]); err != nil {
		return Compute{}, err
	}

	c.ElasticIP = st.MustAdd(ElasticIP, &ec2.EIP{
		Domain:     "vpc",
		InstanceId: c.Public.Ref(),
	})
	if err := st.DependsOn(ElasticIP, GatewayAttachment); err != nil {
		return Compute{}, err
	}
	return c, nil
}
