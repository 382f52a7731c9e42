package serialize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wetwire "github.com/lex00/wetwire-workspace-go"
	"github.com/lex00/wetwire-workspace-go/intrinsics"
	"github.com/lex00/wetwire-workspace-go/resources/ec2"
	"github.com/lex00/wetwire-workspace-go/resources/s3"
)

type testInstance struct {
	InstanceType string            `json:"InstanceType,omitempty"`
	Tags         []testTag         `json:"Tags,omitempty"`
	Placement    *testPlacement    `json:"Placement,omitempty"`
	Metadata     map[string]string `json:"Metadata,omitempty"`
	Skipped      string            `json:"-"`
	hidden       string
}

type testTag struct {
	Key   string `json:"Key"`
	Value string `json:"Value"`
}

type testPlacement struct {
	Tenancy string `json:"Tenancy"`
}

func TestResource_SimpleStruct(t *testing.T) {
	props, err := Resource(testInstance{InstanceType: "t2.small", Skipped: "x", hidden: "y"})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"InstanceType": "t2.small"}, props)
}

func TestResource_WithNestedStruct(t *testing.T) {
	props, err := Resource(&testInstance{
		InstanceType: "t2.large",
		Placement:    &testPlacement{Tenancy: "default"},
	})
	require.NoError(t, err)

	placement := props["Placement"].(map[string]any)
	assert.Equal(t, "default", placement["Tenancy"])
}

func TestResource_WithSliceAndMap(t *testing.T) {
	props, err := Resource(testInstance{
		Tags:     []testTag{{Key: "Name", Value: "workspace"}},
		Metadata: map[string]string{"owner": "platform"},
	})
	require.NoError(t, err)

	tags := props["Tags"].([]any)
	require.Len(t, tags, 1)
	assert.Equal(t, "workspace", tags[0].(map[string]any)["Value"])
	assert.Equal(t, "platform", props["Metadata"].(map[string]any)["owner"])
}

func TestResource_OmitsZeroValues(t *testing.T) {
	props, err := Resource(testInstance{})
	require.NoError(t, err)
	assert.Empty(t, props)
}

func TestResource_Errors(t *testing.T) {
	_, err := Resource("not a struct")
	assert.Error(t, err)

	var nilBucket *s3.Bucket
	_, err = Resource(nilBucket)
	assert.Error(t, err)
}

func TestResource_Intrinsics(t *testing.T) {
	sg := ec2.SecurityGroup{
		GroupDescription: "workspace",
		VpcId:            intrinsics.Ref{LogicalName: "WorkspaceVPC"},
		Tags:             []any{intrinsics.NameTag("sg")},
	}
	instance := ec2.Instance{
		SecurityGroupIds: []any{wetwire.AttrRef{Resource: "WorkspaceSecurityGroup", Attribute: "GroupId"}},
	}

	props, err := Resource(sg)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"Ref": "WorkspaceVPC"}, props["VpcId"])
	tag := props["Tags"].([]any)[0].(map[string]any)
	assert.Equal(t, "Name", tag["Key"])
	assert.Equal(t, map[string]any{"Fn::Sub": "${AWS::StackName}-sg"}, tag["Value"])

	props, err = Resource(instance)
	require.NoError(t, err)
	assert.Equal(t,
		[]any{map[string]any{"Fn::GetAtt": []any{"WorkspaceSecurityGroup", "GroupId"}}},
		props["SecurityGroupIds"])
}

func TestProperties_NormalizesNumbers(t *testing.T) {
	props, err := Properties(ec2.SecurityGroup{
		GroupDescription: "workspace",
		SecurityGroupIngress: []any{
			ec2.SecurityGroup_Ingress{IpProtocol: "tcp", FromPort: 22, ToPort: 22, CidrIp: "0.0.0.0/0"},
		},
	})
	require.NoError(t, err)

	rule := props["SecurityGroupIngress"].([]any)[0].(map[string]any)
	assert.Equal(t, float64(22), rule["FromPort"])
}

func TestValue(t *testing.T) {
	v, err := Value(intrinsics.Ref{LogicalName: "WorkspaceBucket"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"Ref": "WorkspaceBucket"}, v)

	v, err = Value("plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", v)
}
