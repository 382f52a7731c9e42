package infra

import (
	"github.com/lex00/wetwire-workspace-go/internal/stack"
	. "github.com/lex00/wetwire-workspace-go/intrinsics"
	"github.com/lex00/wetwire-workspace-go/resources/ec2"
)

// SecurityGroup is the logical name of the workspace security group.
const SecurityGroup = "SecurityGroupOpenPort22"

// SSHIngress admits SSH from anywhere.
var SSHIngress = ec2.SecurityGroup_Ingress{
	Description: "allow ssh from the world",
	IpProtocol:  "tcp",
	FromPort:    22,
	ToPort:      22,
	CidrIp:      AnyIPv4,
}

// HTTPSIngress admits HTTPS from anywhere.
var HTTPSIngress = ec2.SecurityGroup_Ingress{
	Description: "allow port 443 from the world",
	IpProtocol:  "tcp",
	FromPort:    443,
	ToPort:      443,
	CidrIp:      AnyIPv4,
}

// AllOutbound lets the instances reach anything.
var AllOutbound = ec2.SecurityGroup_Egress{
	Description: "Allow all outbound traffic by default",
	IpProtocol:  "-1",
	CidrIp:      AnyIPv4,
}

func addSecurityGroup(st *stack.Stack, n Network) stack.Handle {
	return st.MustAdd(SecurityGroup, &ec2.SecurityGroup{
		GroupDescription:     "allow port 22",
		VpcId:                n.VPC.Ref(),
		SecurityGroupIngress: Any(SSHIngress, HTTPSIngress),
		SecurityGroupEgress:  Any(AllOutbound),
		Tags:                 Any(NameTag("sg")),
	})
}
