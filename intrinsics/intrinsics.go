// Package intrinsics holds the CloudFormation intrinsic functions that the
// workspace declarations use. Declaration files dot-import it:
//
//	Ref{LogicalName: "VpcWithS3Endpoint"}   → {"Ref": "VpcWithS3Endpoint"}
//	Sub{String: "${AWS::StackName}-vpc"}    → {"Fn::Sub": "${AWS::StackName}-vpc"}
//	Select{Index: 0, List: GetAZs{}}        → {"Fn::Select": [0, {"Fn::GetAZs": ""}]}
//
// The function types are those of cloudformation-schema-go, so templates
// built here and by its other consumers agree byte for byte.
package intrinsics

import (
	"encoding/json"

	"github.com/lex00/cloudformation-schema-go/intrinsics"
)

type (
	Ref    = intrinsics.Ref
	GetAtt = intrinsics.GetAtt
	Sub    = intrinsics.Sub
	Select = intrinsics.Select
	GetAZs = intrinsics.GetAZs
	Tag    = intrinsics.Tag
)

// NameTag returns the Name tag, prefixed with the stack name.
//
//	NameTag("public-subnet-1") → {"Key": "Name", "Value": {"Fn::Sub": "${AWS::StackName}-public-subnet-1"}}
func NameTag(suffix string) Tag {
	return Tag{Key: "Name", Value: Sub{String: "${AWS::StackName}-" + suffix}}
}

// Parameter is a template parameter. The stack binds it to a logical name
// when it is added; from then on it serializes as a Ref to that name, so it
// can sit directly in a property.
type Parameter struct {
	Type          string
	Description   string
	Default       any
	AllowedValues []any

	name string
}

// WithName returns a copy bound to name.
func (p Parameter) WithName(name string) Parameter {
	p.name = name
	return p
}

// Name is the bound logical name, empty before the stack adds it.
func (p Parameter) Name() string { return p.name }

func (p Parameter) MarshalJSON() ([]byte, error) {
	return json.Marshal(Ref{LogicalName: p.name})
}
