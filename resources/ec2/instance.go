package ec2

// Instance attribute names for GetAtt.
const (
	InstanceAvailabilityZone = "AvailabilityZone"
	InstancePrivateIp        = "PrivateIp"
	InstancePublicIp         = "PublicIp"
	InstancePublicDnsName    = "PublicDnsName"
)

// Instance represents an AWS::EC2::Instance resource.
type Instance struct {
	ImageId            any   `json:"ImageId,omitempty"`
	InstanceType       any   `json:"InstanceType,omitempty"`
	KeyName            any   `json:"KeyName,omitempty"`
	IamInstanceProfile any   `json:"IamInstanceProfile,omitempty"`
	AvailabilityZone   any   `json:"AvailabilityZone,omitempty"`
	SubnetId           any   `json:"SubnetId,omitempty"`
	SecurityGroupIds   []any `json:"SecurityGroupIds,omitempty"`
	UserData           any   `json:"UserData,omitempty"`
	Tags               []any `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r Instance) ResourceType() string {
	return "AWS::EC2::Instance"
}
