// Package iam provides typed CloudFormation resources for AWS IAM.
package iam

// Attribute names for GetAtt.
const (
	RoleArn            = "Arn"
	RoleRoleId         = "RoleId"
	InstanceProfileArn = "Arn"
)

// Role represents an AWS::IAM::Role resource.
type Role struct {
	RoleName                 any    `json:"RoleName,omitempty"`
	Description              string `json:"Description,omitempty"`
	AssumeRolePolicyDocument any    `json:"AssumeRolePolicyDocument"`
	ManagedPolicyArns        []any  `json:"ManagedPolicyArns,omitempty"`
	Path                     string `json:"Path,omitempty"`
	Tags                     []any  `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r Role) ResourceType() string {
	return "AWS::IAM::Role"
}

// Policy represents an AWS::IAM::Policy resource, an inline policy attached
// to roles, users, or groups.
type Policy struct {
	PolicyName     any   `json:"PolicyName"`
	PolicyDocument any   `json:"PolicyDocument"`
	Roles          []any `json:"Roles,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r Policy) ResourceType() string {
	return "AWS::IAM::Policy"
}

// InstanceProfile represents an AWS::IAM::InstanceProfile resource.
type InstanceProfile struct {
	InstanceProfileName any    `json:"InstanceProfileName,omitempty"`
	Path                string `json:"Path,omitempty"`
	Roles               []any  `json:"Roles"`
}

// ResourceType returns the CloudFormation resource type.
func (r InstanceProfile) ResourceType() string {
	return "AWS::IAM::InstanceProfile"
}
