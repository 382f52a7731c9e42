package infra

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wetwire "github.com/lex00/wetwire-workspace-go"
	"github.com/lex00/wetwire-workspace-go/internal/alarm"
	"github.com/lex00/wetwire-workspace-go/internal/config"
	"github.com/lex00/wetwire-workspace-go/internal/template"
)

func build(t *testing.T, mutate func(*config.Config)) (*Workspace, *wetwire.Template) {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	require.NoError(t, cfg.Validate())

	ws, err := Build(cfg)
	require.NoError(t, err)
	tmpl, err := ws.Stack.Build()
	require.NoError(t, err)
	return ws, tmpl
}

func ofType(tmpl *wetwire.Template, typ string) map[string]wetwire.ResourceDef {
	out := make(map[string]wetwire.ResourceDef)
	for name, res := range tmpl.Resources {
		if res.Type == typ {
			out[name] = res
		}
	}
	return out
}

func TestBuild_Inventory(t *testing.T) {
	_, tmpl := build(t, nil)

	assert.Len(t, ofType(tmpl, "AWS::S3::Bucket"), 1)
	assert.Len(t, ofType(tmpl, "AWS::EC2::VPC"), 1)
	assert.Len(t, ofType(tmpl, "AWS::EC2::VPCEndpoint"), 2)
	assert.Len(t, ofType(tmpl, "AWS::IAM::Role"), 1)
	assert.Len(t, ofType(tmpl, "AWS::EC2::SecurityGroup"), 1)
	assert.Len(t, ofType(tmpl, "AWS::EC2::Instance"), 2)
	assert.Len(t, ofType(tmpl, "AWS::EC2::EIP"), 1)
	assert.Len(t, ofType(tmpl, "AWS::CloudWatch::Alarm"), 1)

	assert.Len(t, ofType(tmpl, "AWS::EC2::Subnet"), 4)
	assert.Empty(t, ofType(tmpl, "AWS::EC2::NatGateway"))
}

func TestBuild_BucketAlwaysBlocksPublicAccess(t *testing.T) {
	mutations := map[string]func(*config.Config){
		"defaults":    nil,
		"renamed":     func(c *config.Config) { c.BucketName = "another-bucket" },
		"with nat":    func(c *config.Config) { c.Network.NatGateways = 1 },
		"other stack": func(c *config.Config) { c.StackName = "scratch" },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			_, tmpl := build(t, mutate)
			bucket := tmpl.Resources[WorkspaceBucket]
			assert.Equal(t, map[string]any{
				"BlockPublicAcls":       true,
				"BlockPublicPolicy":     true,
				"IgnorePublicAcls":      true,
				"RestrictPublicBuckets": true,
			}, bucket.Properties["PublicAccessBlockConfiguration"])
			assert.Equal(t, "Retain", bucket.DeletionPolicy)
		})
	}
	assert.True(t, BucketPublicAccessBlock.BlocksAll())
}

func TestBuild_SecurityGroupAdmitsOnly22And443(t *testing.T) {
	_, tmpl := build(t, nil)

	sg := tmpl.Resources[SecurityGroup]
	ingress := sg.Properties["SecurityGroupIngress"].([]any)
	require.Len(t, ingress, 2)

	var ports []float64
	for _, r := range ingress {
		rule := r.(map[string]any)
		assert.Equal(t, "tcp", rule["IpProtocol"])
		assert.Equal(t, AnyIPv4, rule["CidrIp"])
		assert.Equal(t, rule["FromPort"], rule["ToPort"])
		ports = append(ports, rule["FromPort"].(float64))
	}
	assert.ElementsMatch(t, []float64{22, 443}, ports)
}

func TestBuild_ElasticIPBoundToPublicInstance(t *testing.T) {
	_, tmpl := build(t, nil)

	eips := ofType(tmpl, "AWS::EC2::EIP")
	require.Len(t, eips, 1)
	eip := eips[ElasticIP]
	assert.Equal(t, map[string]any{"Ref": PublicInstance}, eip.Properties["InstanceId"])
	assert.Equal(t, "vpc", eip.Properties["Domain"])

	public := tmpl.Resources[PublicInstance]
	subnetRef := public.Properties["SubnetId"].(map[string]any)["Ref"].(string)
	assert.Equal(t, true, tmpl.Resources[subnetRef].Properties["MapPublicIpOnLaunch"])
}

func TestBuild_InstancesSitInOneSubnetEach(t *testing.T) {
	_, tmpl := build(t, nil)

	private := tmpl.Resources[PrivateInstance]
	public := tmpl.Resources[PublicInstance]

	assert.Equal(t, map[string]any{"Ref": PrivateSubnet(0)}, private.Properties["SubnetId"])
	assert.Equal(t, map[string]any{"Ref": PublicSubnet(0)}, public.Properties["SubnetId"])
	assert.NotContains(t, tmpl.Resources[PrivateSubnet(0)].Properties, "MapPublicIpOnLaunch")

	assert.Equal(t, "t2.small", private.Properties["InstanceType"])
	assert.Equal(t, "t2.large", public.Properties["InstanceType"])
	for _, inst := range []wetwire.ResourceDef{private, public} {
		assert.Equal(t, map[string]any{"Ref": AmiParameter}, inst.Properties["ImageId"])
		assert.Equal(t, map[string]any{"Ref": InstanceProfile}, inst.Properties["IamInstanceProfile"])
		assert.Equal(t, config.PlaceholderKeyPair, inst.Properties["KeyName"])
		assert.Equal(t, []string{InlinePolicy, Role}, inst.DependsOn)
	}
	assert.Equal(t, AmiParameterType, tmpl.Parameters[AmiParameter].Type)
}

func TestBuild_RoleTrustsOnlyEC2(t *testing.T) {
	_, tmpl := build(t, nil)

	role := tmpl.Resources[Role]
	trust := role.Properties["AssumeRolePolicyDocument"].(map[string]any)
	stmts := trust["Statement"].([]any)
	require.Len(t, stmts, 1)
	assert.Equal(t, map[string]any{"Service": EC2Principal}, stmts[0].(map[string]any)["Principal"])

	assert.Equal(t,
		[]any{map[string]any{"Fn::Sub": "arn:${AWS::Partition}:iam::aws:policy/AmazonSSMManagedInstanceCore"}},
		role.Properties["ManagedPolicyArns"])

	policy := tmpl.Resources[InlinePolicy]
	doc := policy.Properties["PolicyDocument"].(map[string]any)
	stmt := doc["Statement"].([]any)[0].(map[string]any)
	assert.Equal(t, []any{"s3:*"}, stmt["Action"])
	assert.Equal(t, []any{map[string]any{"Ref": Role}}, policy.Properties["Roles"])
}

func TestBuild_Endpoints(t *testing.T) {
	ws, tmpl := build(t, nil)

	s3 := tmpl.Resources[S3Endpoint]
	assert.Equal(t, "Gateway", s3.Properties["VpcEndpointType"])
	assert.Len(t, s3.Properties["RouteTableIds"], len(ws.Network.PublicTables)+len(ws.Network.PrivateTables))

	ssm := tmpl.Resources[SSMEndpoint]
	assert.Equal(t, "Interface", ssm.Properties["VpcEndpointType"])
	assert.Equal(t, true, ssm.Properties["PrivateDnsEnabled"])
	assert.Equal(t, []any{
		map[string]any{"Ref": PrivateSubnet(0)},
		map[string]any{"Ref": PrivateSubnet(1)},
	}, ssm.Properties["SubnetIds"])
	assert.Equal(t, map[string]any{"Fn::Sub": "com.amazonaws.${AWS::Region}.ssm"}, ssm.Properties["ServiceName"])
}

func TestBuild_NatGateways(t *testing.T) {
	_, tmpl := build(t, func(c *config.Config) { c.Network.NatGateways = 1 })

	assert.Len(t, ofType(tmpl, "AWS::EC2::NatGateway"), 1)
	// The NAT address is not bound to an instance.
	assert.Len(t, ofType(tmpl, "AWS::EC2::EIP"), 2)

	route := tmpl.Resources[defaultRoute(PrivateSubnet(1))]
	assert.Equal(t, map[string]any{"Ref": natGateway(PublicSubnet(0))}, route.Properties["NatGatewayId"])
}

func TestBuild_IdleStopAlarm(t *testing.T) {
	_, tmpl := build(t, nil)

	a := tmpl.Resources[IdleStopAlarm]
	assert.Equal(t, "StopIdleEc2Instance", a.Properties["AlarmName"])
	assert.Equal(t, "LessThanThreshold", a.Properties["ComparisonOperator"])
	assert.Equal(t, 0.99, a.Properties["Threshold"])
	assert.Equal(t, float64(300), a.Properties["Period"])
	assert.Equal(t, []any{map[string]any{"Name": "InstanceId", "Value": map[string]any{"Ref": PublicInstance}}},
		a.Properties["Dimensions"])
	assert.Equal(t, []any{map[string]any{"Fn::Sub": "arn:${AWS::Partition}:automate:${AWS::Region}:ec2:stop"}},
		a.Properties["AlarmActions"])

	e, err := alarm.FromProperties(a.Properties)
	require.NoError(t, err)
	idle := []float64{0.3, 0.3, 0.3, 0.3}
	assert.Empty(t, e.Replay(idle), "four idle periods are not enough")
	assert.Equal(t, []int{4}, e.Replay(append(idle, 0.3)))
}

func TestBuild_DependencyOrder(t *testing.T) {
	ws, _ := build(t, nil)
	decls, err := ws.Stack.Declarations()
	require.NoError(t, err)

	order, err := template.NewBuilder(decls).Order()
	require.NoError(t, err)

	pos := make(map[string]int)
	for i, name := range order {
		pos[name] = i
	}
	assert.Less(t, pos[VPC], pos[SecurityGroup])
	assert.Less(t, pos[SecurityGroup], pos[PublicInstance])
	assert.Less(t, pos[Role], pos[PrivateInstance])
	assert.Less(t, pos[InstanceProfile], pos[PrivateInstance])
	assert.Less(t, pos[GatewayAttachment], pos[ElasticIP])
	assert.Less(t, pos[PublicInstance], pos[ElasticIP])
	assert.Less(t, pos[PublicInstance], pos[IdleStopAlarm])
}

func TestBuild_Deterministic(t *testing.T) {
	_, a := build(t, nil)
	_, b := build(t, nil)

	ja, err := template.ToJSON(a)
	require.NoError(t, err)
	jb, err := template.ToJSON(b)
	require.NoError(t, err)
	assert.Equal(t, string(ja), string(jb))
}

func TestBuild_Outputs(t *testing.T) {
	_, tmpl := build(t, nil)

	assert.Equal(t, map[string]any{"Ref": ElasticIP}, tmpl.Outputs["PublicIp"].Value)
	assert.Equal(t, map[string]any{"Fn::Sub": "${AWS::StackName}-VpcId"}, tmpl.Outputs["VpcId"].Export.Name)
	assert.Len(t, tmpl.Outputs, 6)
}

func TestBuild_NilConfig(t *testing.T) {
	ws, err := Build(nil)
	require.NoError(t, err)
	assert.Equal(t, "GettingStartedCdkStack", ws.Stack.Name())
}

func TestBuild_RejectsInvalidConfig(t *testing.T) {
	ws, err := Build(&config.Config{})
	require.Error(t, err)
	assert.Nil(t, ws)
	assert.Contains(t, err.Error(), "invalid configuration")
	assert.NotContains(t, err.Error(), "index out of range")
}
