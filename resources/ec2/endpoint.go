package ec2

// VpcEndpointType values.
const (
	EndpointTypeGateway   = "Gateway"
	EndpointTypeInterface = "Interface"
)

// VPCEndpoint represents an AWS::EC2::VPCEndpoint resource.
//
// Gateway endpoints attach to route tables; interface endpoints place network
// interfaces in subnets and are guarded by security groups.
type VPCEndpoint struct {
	ServiceName       any    `json:"ServiceName"`
	VpcId             any    `json:"VpcId"`
	VpcEndpointType   string `json:"VpcEndpointType,omitempty"`
	RouteTableIds     []any  `json:"RouteTableIds,omitempty"`
	SubnetIds         []any  `json:"SubnetIds,omitempty"`
	SecurityGroupIds  []any  `json:"SecurityGroupIds,omitempty"`
	PrivateDnsEnabled bool   `json:"PrivateDnsEnabled,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r VPCEndpoint) ResourceType() string {
	return "AWS::EC2::VPCEndpoint"
}
