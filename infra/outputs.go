package infra

import (
	wetwire "github.com/lex00/wetwire-workspace-go"
	"github.com/lex00/wetwire-workspace-go/internal/stack"
	. "github.com/lex00/wetwire-workspace-go/intrinsics"
	"github.com/lex00/wetwire-workspace-go/resources/ec2"
)

func exported(name string) *wetwire.Export {
	return &wetwire.Export{Name: Sub{String: "${AWS::StackName}-" + name}}
}

func addOutputs(st *stack.Stack, ws *Workspace) error {
	outputs := []struct {
		name string
		out  wetwire.Output
	}{
		{"BucketName", wetwire.Output{Description: "Workspace bucket", Value: ws.Bucket.Ref()}},
		{"VpcId", wetwire.Output{Description: "Workspace VPC", Value: ws.Network.VPC.Ref(), Export: exported("VpcId")}},
		{"PublicIp", wetwire.Output{Description: "Elastic IP of the public instance", Value: ws.Compute.ElasticIP.Ref()}},
		{"PublicInstanceId", wetwire.Output{Description: "Public instance", Value: ws.Compute.Public.Ref()}},
		{"PrivateInstanceId", wetwire.Output{Description: "Private instance", Value: ws.Compute.Private.Ref()}},
		{"PrivateIp", wetwire.Output{Description: "Private address of the private instance", Value: ws.Compute.Private.Attr(ec2.InstancePrivateIp)}},
	}
	for _, o := range outputs {
		if err := st.AddOutput(o.name, o.out); err != nil {
			return err
		}
	}
	return nil
}
