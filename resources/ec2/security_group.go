package ec2

// SecurityGroup attribute names for GetAtt.
const (
	SecurityGroupGroupId = "GroupId"
	SecurityGroupVpcId   = "VpcId"
)

// SecurityGroup represents an AWS::EC2::SecurityGroup resource.
type SecurityGroup struct {
	GroupDescription     string `json:"GroupDescription"`
	GroupName            any    `json:"GroupName,omitempty"`
	VpcId                any    `json:"VpcId,omitempty"`
	SecurityGroupIngress []any  `json:"SecurityGroupIngress,omitempty"`
	SecurityGroupEgress  []any  `json:"SecurityGroupEgress,omitempty"`
	Tags                 []any  `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r SecurityGroup) ResourceType() string {
	return "AWS::EC2::SecurityGroup"
}

// SecurityGroup_Ingress represents AWS::EC2::SecurityGroup.Ingress.
type SecurityGroup_Ingress struct {
	Description           string `json:"Description,omitempty"`
	IpProtocol            string `json:"IpProtocol"`
	FromPort              int    `json:"FromPort,omitempty"`
	ToPort                int    `json:"ToPort,omitempty"`
	CidrIp                any    `json:"CidrIp,omitempty"`
	SourceSecurityGroupId any    `json:"SourceSecurityGroupId,omitempty"`
}

// SecurityGroup_Egress represents AWS::EC2::SecurityGroup.Egress.
type SecurityGroup_Egress struct {
	Description string `json:"Description,omitempty"`
	IpProtocol  string `json:"IpProtocol"`
	FromPort    int    `json:"FromPort,omitempty"`
	ToPort      int    `json:"ToPort,omitempty"`
	CidrIp      any    `json:"CidrIp,omitempty"`
}
