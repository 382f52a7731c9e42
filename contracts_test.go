package wetwire_workspace

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttrRef_MarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		ref      AttrRef
		expected string
	}{
		{
			name:     "role arn",
			ref:      AttrRef{Resource: "InstanceRole", Attribute: "Arn"},
			expected: `{"Fn::GetAtt":["InstanceRole","Arn"]}`,
		},
		{
			name:     "security group id",
			ref:      AttrRef{Resource: "WorkspaceSecurityGroup", Attribute: "GroupId"},
			expected: `{"Fn::GetAtt":["WorkspaceSecurityGroup","GroupId"]}`,
		},
		{
			name:     "instance public ip",
			ref:      AttrRef{Resource: "PublicInstance", Attribute: "PublicIp"},
			expected: `{"Fn::GetAtt":["PublicInstance","PublicIp"]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.ref)
			require.NoError(t, err)
			assert.JSONEq(t, tt.expected, string(data))
		})
	}
}

func TestAttrRef_IsZero(t *testing.T) {
	tests := []struct {
		name     string
		ref      AttrRef
		expected bool
	}{
		{name: "empty", ref: AttrRef{}, expected: true},
		{name: "with resource", ref: AttrRef{Resource: "InstanceRole"}, expected: false},
		{name: "with attribute", ref: AttrRef{Attribute: "Arn"}, expected: false},
		{name: "fully populated", ref: AttrRef{Resource: "InstanceRole", Attribute: "Arn"}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.ref.IsZero())
		})
	}
}

func TestTemplate_JSONOmitsEmptySections(t *testing.T) {
	tmpl := Template{
		AWSTemplateFormatVersion: "2010-09-09",
		Resources: map[string]ResourceDef{
			"WorkspaceBucket": {Type: "AWS::S3::Bucket"},
		},
	}

	data, err := json.Marshal(tmpl)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))

	assert.Contains(t, raw, "Resources")
	assert.NotContains(t, raw, "Parameters")
	assert.NotContains(t, raw, "Outputs")
	assert.NotContains(t, raw, "Description")

	bucket := raw["Resources"].(map[string]any)["WorkspaceBucket"].(map[string]any)
	assert.NotContains(t, bucket, "Properties")
	assert.NotContains(t, bucket, "DependsOn")
}

func TestOutput_Export(t *testing.T) {
	out := Output{
		Description: "Public address",
		Value:       AttrRef{Resource: "PublicInstance", Attribute: "PublicIp"},
		Export:      &Export{Name: "workspace-public-ip"},
	}

	data, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"Description": "Public address",
		"Value": {"Fn::GetAtt": ["PublicInstance", "PublicIp"]},
		"Export": {"Name": "workspace-public-ip"}
	}`, string(data))
}
