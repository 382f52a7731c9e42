package intrinsics

import "encoding/json"

// PolicyVersion is the IAM policy language version every document uses.
const PolicyVersion = "2012-10-17"

// Any builds the []any lists that resource properties take.
//
//	SecurityGroupIds: Any(sg.Attr(ec2.SecurityGroupGroupId)),
func Any(items ...any) []any {
	return items
}

// PolicyDocument is an IAM policy document, used for both trust and
// permission policies.
type PolicyDocument struct {
	Version   string `json:"Version,omitempty"`
	Statement []any  `json:"Statement"`
}

// PolicyStatement is one statement of a PolicyDocument.
type PolicyStatement struct {
	Sid       string         `json:"Sid,omitempty"`
	Effect    string         `json:"Effect"`
	Principal any            `json:"Principal,omitempty"`
	Action    any            `json:"Action,omitempty"`
	Resource  any            `json:"Resource,omitempty"`
	Condition map[string]any `json:"Condition,omitempty"`
}

// ServicePrincipal names the AWS services a trust statement admits. One
// service serializes as a string, several as a list.
type ServicePrincipal []any

func (p ServicePrincipal) MarshalJSON() ([]byte, error) {
	if len(p) == 1 {
		return json.Marshal(map[string]any{"Service": p[0]})
	}
	return json.Marshal(map[string]any{"Service": []any(p)})
}

// TrustPolicy lets the given services assume a role.
//
//	TrustPolicy("ec2.amazonaws.com")
func TrustPolicy(services ...string) PolicyDocument {
	principal := make(ServicePrincipal, len(services))
	for i, s := range services {
		principal[i] = s
	}
	return PolicyDocument{
		Version: PolicyVersion,
		Statement: Any(PolicyStatement{
			Effect:    "Allow",
			Principal: principal,
			Action:    "sts:AssumeRole",
		}),
	}
}

// Allow returns a permission policy granting actions on resources.
//
//	Allow(Any("s3:*"), Any("*"))
func Allow(actions, resources []any) PolicyDocument {
	return PolicyDocument{
		Version: PolicyVersion,
		Statement: Any(PolicyStatement{
			Effect:   "Allow",
			Action:   actions,
			Resource: resources,
		}),
	}
}
