package intrinsics

import (
	"strings"

	"github.com/lex00/cloudformation-schema-go/intrinsics"
)

// Pseudo parameters, as Refs.
var (
	AWS_ACCOUNT_ID = intrinsics.AWS_ACCOUNT_ID
	AWS_PARTITION  = intrinsics.AWS_PARTITION
	AWS_REGION     = intrinsics.AWS_REGION
	AWS_STACK_NAME = intrinsics.AWS_STACK_NAME
	AWS_URL_SUFFIX = intrinsics.AWS_URL_SUFFIX
)

// IsPseudoParameter reports whether name is an AWS:: pseudo parameter such
// as AWS::Region. Such names never resolve to a declared resource.
func IsPseudoParameter(name string) bool {
	return strings.HasPrefix(name, "AWS::")
}
