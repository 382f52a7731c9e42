package infra

import (
	"fmt"

	"github.com/lex00/wetwire-workspace-go/internal/config"
	"github.com/lex00/wetwire-workspace-go/internal/stack"
	. "github.com/lex00/wetwire-workspace-go/intrinsics"
	"github.com/lex00/wetwire-workspace-go/resources/ec2"
)

// Network logical names.
const (
	VPC               = "VpcWithS3Endpoint"
	InternetGateway   = "VpcWithS3EndpointIGW"
	GatewayAttachment = "VpcWithS3EndpointVPCGW"
	S3Endpoint        = "VpcWithS3EndpointS3"
	SSMEndpoint       = "VpcInterfaceEndpointSSM"
)

// AnyIPv4 is the world.
const AnyIPv4 = "0.0.0.0/0"

// Network holds the VPC and everything routed inside it.
type Network struct {
	VPC             stack.Handle
	PublicSubnets   []stack.Handle
	PrivateSubnets  []stack.Handle
	PublicTables    []stack.Handle
	PrivateTables   []stack.Handle
	InternetGateway stack.Handle
	Attachment      stack.Handle
	NatGateways     []stack.Handle
	S3Endpoint      stack.Handle
	SSMEndpoint     stack.Handle
}

// PublicSubnet returns the logical name of the i-th public subnet.
func PublicSubnet(i int) string { return fmt.Sprintf("%sPublicSubnet%d", VPC, i+1) }

// PrivateSubnet returns the logical name of the i-th private subnet.
func PrivateSubnet(i int) string { return fmt.Sprintf("%sPrivateSubnet%d", VPC, i+1) }

func routeTable(subnet string) string    { return subnet + "RouteTable" }
func association(subnet string) string   { return subnet + "RouteTableAssociation" }
func defaultRoute(subnet string) string  { return subnet + "DefaultRoute" }
func natGateway(subnet string) string    { return subnet + "NATGateway" }
func natAddress(subnet string) string    { return subnet + "EIP" }
func subnetTag(kind string, i int) []any { return Any(NameTag(fmt.Sprintf("%s-subnet-%d", kind, i+1))) }

func availabilityZone(i int) Select {
	return Select{Index: i, List: GetAZs{}}
}

func addNetwork(st *stack.Stack, cfg *config.Config) (Network, error) {
	plan, err := cfg.Network.Subnets()
	if err != nil {
		return Network{}, err
	}

	var n Network
	n.VPC = st.MustAdd(VPC, &ec2.VPC{
		CidrBlock:          cfg.Network.CIDR,
		EnableDnsHostnames: true,
		EnableDnsSupport:   true,
		InstanceTenancy:    "default",
		Tags:               Any(NameTag("vpc")),
	})

	n.InternetGateway = st.MustAdd(InternetGateway, &ec2.InternetGateway{
		Tags: Any(NameTag("igw")),
	})
	n.Attachment = st.MustAdd(GatewayAttachment, &ec2.VPCGatewayAttachment{
		VpcId:             n.VPC.Ref(),
		InternetGatewayId: n.InternetGateway.Ref(),
	})

	for i, cidr := range plan.Public {
		name := PublicSubnet(i)
		subnet := st.MustAdd(name, &ec2.Subnet{
			VpcId:               n.VPC.Ref(),
			CidrBlock:           cidr,
			AvailabilityZone:    availabilityZone(i),
			MapPublicIpOnLaunch: true,
			Tags:                subnetTag("public", i),
		})
		table := st.MustAdd(routeTable(name), &ec2.RouteTable{VpcId: n.VPC.Ref(), Tags: subnetTag("public", i)})
		st.MustAdd(association(name), &ec2.SubnetRouteTableAssociation{
			RouteTableId: table.Ref(),
			SubnetId:     subnet.Ref(),
		})
		st.MustAdd(defaultRoute(name), &ec2.Route{
			RouteTableId:         table.Ref(),
			DestinationCidrBlock: AnyIPv4,
			GatewayId:            n.InternetGateway.Ref(),
		})
		// The route is rejected until the gateway is attached.
		if err := st.DependsOn(defaultRoute(name), GatewayAttachment); err != nil {
			return Network{}, err
		}
		n.PublicSubnets = append(n.PublicSubnets, subnet)
		n.PublicTables = append(n.PublicTables, table)
	}

	for i := 0; i < cfg.Network.NatGateways; i++ {
		public := PublicSubnet(i)
		eip := st.MustAdd(natAddress(public), &ec2.EIP{Domain: "vpc", Tags: subnetTag("nat", i)})
		nat := st.MustAdd(natGateway(public), &ec2.NatGateway{
			AllocationId: eip.Attr(ec2.EIPAllocationId),
			SubnetId:     n.PublicSubnets[i].Ref(),
			Tags:         subnetTag("nat", i),
		})
		if err := st.DependsOn(natGateway(public), defaultRoute(public)); err != nil {
			return Network{}, err
		}
		n.NatGateways = append(n.NatGateways, nat)
	}

	for i, cidr := range plan.Private {
		name := PrivateSubnet(i)
		subnet := st.MustAdd(name, &ec2.Subnet{
			VpcId:            n.VPC.Ref(),
			CidrBlock:        cidr,
			AvailabilityZone: availabilityZone(i),
			Tags:             subnetTag("private", i),
		})
		table := st.MustAdd(routeTable(name), &ec2.RouteTable{VpcId: n.VPC.Ref(), Tags: subnetTag("private", i)})
		st.MustAdd(association(name), &ec2.SubnetRouteTableAssociation{
			RouteTableId: table.Ref(),
			SubnetId:     subnet.Ref(),
		})
		if len(n.NatGateways) > 0 {
			st.MustAdd(defaultRoute(name), &ec2.Route{
				RouteTableId:         table.Ref(),
				DestinationCidrBlock: AnyIPv4,
				NatGatewayId:         n.NatGateways[i%len(n.NatGateways)].Ref(),
			})
		}
		n.PrivateSubnets = append(n.PrivateSubnets, subnet)
		n.PrivateTables = append(n.PrivateTables, table)
	}

	var tables []any
	for _, t := range append(append([]stack.Handle{}, n.PublicTables...), n.PrivateTables...) {
		tables = append(tables, t.Ref())
	}
	n.S3Endpoint = st.MustAdd(S3Endpoint, &ec2.VPCEndpoint{
		ServiceName:     Sub{String: "com.amazonaws.${AWS::Region}.s3"},
		VpcId:           n.VPC.Ref(),
		VpcEndpointType: ec2.EndpointTypeGateway,
		RouteTableIds:   tables,
	})

	return n, nil
}

// addInterfaceEndpoint places the SSM endpoint in the private subnets, so
// the private instance reaches Systems Manager without a NAT gateway.
func addInterfaceEndpoint(st *stack.Stack, n Network, sg stack.Handle) stack.Handle {
	var subnets []any
	for _, s := range n.PrivateSubnets {
		subnets = append(subnets, s.Ref())
	}
	return st.MustAdd(SSMEndpoint, &ec2.VPCEndpoint{
		ServiceName:       Sub{String: "com.amazonaws.${AWS::Region}.ssm"},
		VpcId:             n.VPC.Ref(),
		VpcEndpointType:   ec2.EndpointTypeInterface,
		SubnetIds:         subnets,
		SecurityGroupIds:  Any(sg.Attr(ec2.SecurityGroupGroupId)),
		PrivateDnsEnabled: true,
	})
}
