package infra

import (
	"github.com/lex00/wetwire-workspace-go/internal/config"
	"github.com/lex00/wetwire-workspace-go/internal/stack"
	"github.com/lex00/wetwire-workspace-go/resources/s3"
)

// WorkspaceBucket is the logical name of the bucket.
const WorkspaceBucket = "WorkspaceBucket"

// BucketPublicAccessBlock blocks every form of public access. It is not
// configurable.
var BucketPublicAccessBlock = s3.Bucket_PublicAccessBlockConfiguration{
	BlockPublicAcls:       true,
	BlockPublicPolicy:     true,
	IgnorePublicAcls:      true,
	RestrictPublicBuckets: true,
}

func addStorage(st *stack.Stack, cfg *config.Config) (stack.Handle, error) {
	block := BucketPublicAccessBlock
	bucket := st.MustAdd(WorkspaceBucket, &s3.Bucket{
		BucketName:                     cfg.BucketName,
		PublicAccessBlockConfiguration: &block,
	})
	// Buckets outlive the stack unless emptied and removed by hand.
	if err := st.SetDeletionPolicy(WorkspaceBucket, stack.Retain); err != nil {
		return stack.Handle{}, err
	}
	return bucket, nil
}
