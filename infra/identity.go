package infra

import (
	"github.com/lex00/wetwire-workspace-go/internal/stack"
	. "github.com/lex00/wetwire-workspace-go/intrinsics"
	"github.com/lex00/wetwire-workspace-go/resources/iam"
)

// Identity logical names. The role and policy names double as their IAM
// names.
const (
	Role            = "RoleForEc2ToAccessS3"
	InlinePolicy    = "PolicyForEc2AccessS3"
	InstanceProfile = "RoleForEc2ToAccessS3InstanceProfile"
)

// EC2Principal is the only service allowed to assume the role.
const EC2Principal = "ec2.amazonaws.com"

// ManagedPolicySSMCore lets the SSM agent register the instance.
const ManagedPolicySSMCore = "AmazonSSMManagedInstanceCore"

// AssumeFromEC2 is the role trust policy.
var AssumeFromEC2 = TrustPolicy(EC2Principal)

// S3FullAccess is the inline permission set.
var S3FullAccess = Allow(Any("s3:*"), Any("*"))

// ManagedPolicyArn returns the partition-aware ARN of an AWS managed policy.
func ManagedPolicyArn(name string) Sub {
	return Sub{String: "arn:${AWS::Partition}:iam::aws:policy/" + name}
}

// Identity holds the instance role and what hangs off it.
type Identity struct {
	Role    stack.Handle
	Policy  stack.Handle
	Profile stack.Handle
}

func addIdentity(st *stack.Stack) Identity {
	var id Identity
	id.Role = st.MustAdd(Role, &iam.Role{
		RoleName:                 Role,
		AssumeRolePolicyDocument: AssumeFromEC2,
		ManagedPolicyArns:        Any(ManagedPolicyArn(ManagedPolicySSMCore)),
	})
	id.Policy = st.MustAdd(InlinePolicy, &iam.Policy{
		PolicyName:     InlinePolicy,
		PolicyDocument: S3FullAccess,
		Roles:          Any(id.Role.Ref()),
	})
	id.Profile = st.MustAdd(InstanceProfile, &iam.InstanceProfile{
		Roles: Any(id.Role.Ref()),
	})
	return id
}
