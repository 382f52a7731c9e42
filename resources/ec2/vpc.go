// Package ec2 provides typed CloudFormation resources for Amazon EC2 and VPC.
package ec2

// Attribute names for GetAtt.
const (
	VPCCidrBlock            = "CidrBlock"
	VPCDefaultSecurityGroup = "DefaultSecurityGroup"
	SubnetAvailabilityZone  = "AvailabilityZone"
	EIPAllocationId         = "AllocationId"
	EIPPublicIp             = "PublicIp"
)

// VPC represents an AWS::EC2::VPC resource.
type VPC struct {
	CidrBlock          any    `json:"CidrBlock,omitempty"`
	EnableDnsHostnames bool   `json:"EnableDnsHostnames,omitempty"`
	EnableDnsSupport   bool   `json:"EnableDnsSupport,omitempty"`
	InstanceTenancy    string `json:"InstanceTenancy,omitempty"`
	Tags               []any  `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r VPC) ResourceType() string {
	return "AWS::EC2::VPC"
}

// Subnet represents an AWS::EC2::Subnet resource.
type Subnet struct {
	VpcId               any   `json:"VpcId"`
	CidrBlock           any   `json:"CidrBlock,omitempty"`
	AvailabilityZone    any   `json:"AvailabilityZone,omitempty"`
	MapPublicIpOnLaunch bool  `json:"MapPublicIpOnLaunch,omitempty"`
	Tags                []any `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r Subnet) ResourceType() string {
	return "AWS::EC2::Subnet"
}

// InternetGateway represents an AWS::EC2::InternetGateway resource.
type InternetGateway struct {
	Tags []any `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r InternetGateway) ResourceType() string {
	return "AWS::EC2::InternetGateway"
}

// VPCGatewayAttachment represents an AWS::EC2::VPCGatewayAttachment resource.
type VPCGatewayAttachment struct {
	InternetGatewayId any `json:"InternetGatewayId,omitempty"`
	VpcId             any `json:"VpcId"`
}

// ResourceType returns the CloudFormation resource type.
func (r VPCGatewayAttachment) ResourceType() string {
	return "AWS::EC2::VPCGatewayAttachment"
}

// RouteTable represents an AWS::EC2::RouteTable resource.
type RouteTable struct {
	VpcId any   `json:"VpcId"`
	Tags  []any `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r RouteTable) ResourceType() string {
	return "AWS::EC2::RouteTable"
}

// Route represents an AWS::EC2::Route resource.
type Route struct {
	RouteTableId         any `json:"RouteTableId"`
	DestinationCidrBlock any `json:"DestinationCidrBlock,omitempty"`
	GatewayId            any `json:"GatewayId,omitempty"`
	NatGatewayId         any `json:"NatGatewayId,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r Route) ResourceType() string {
	return "AWS::EC2::Route"
}

// SubnetRouteTableAssociation represents an AWS::EC2::SubnetRouteTableAssociation resource.
type SubnetRouteTableAssociation struct {
	RouteTableId any `json:"RouteTableId"`
	SubnetId     any `json:"SubnetId"`
}

// ResourceType returns the CloudFormation resource type.
func (r SubnetRouteTableAssociation) ResourceType() string {
	return "AWS::EC2::SubnetRouteTableAssociation"
}

// NatGateway represents an AWS::EC2::NatGateway resource.
type NatGateway struct {
	AllocationId any   `json:"AllocationId,omitempty"`
	SubnetId     any   `json:"SubnetId"`
	Tags         []any `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r NatGateway) ResourceType() string {
	return "AWS::EC2::NatGateway"
}

// EIP represents an AWS::EC2::EIP resource.
type EIP struct {
	Domain     string `json:"Domain,omitempty"`
	InstanceId any    `json:"InstanceId,omitempty"`
	Tags       []any  `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r EIP) ResourceType() string {
	return "AWS::EC2::EIP"
}
