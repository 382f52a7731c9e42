package stack

import (
	wetwire "github.com/lex00/wetwire-workspace-go"
	"github.com/lex00/wetwire-workspace-go/resources/iam"
)

func wetwireOutput(role Handle) wetwire.Output {
	return wetwire.Output{Value: role.Attr(iam.RoleArn)}
}
