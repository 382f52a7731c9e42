// Package s3 provides typed CloudFormation resources for Amazon S3.
package s3

// Bucket attribute names for GetAtt.
const (
	BucketArn                = "Arn"
	BucketDomainName         = "DomainName"
	BucketRegionalDomainName = "RegionalDomainName"
)

// Bucket represents an AWS::S3::Bucket resource.
type Bucket struct {
	// BucketName is the globally unique bucket name
	BucketName any `json:"BucketName,omitempty"`
	// PublicAccessBlockConfiguration controls public ACLs and policies
	PublicAccessBlockConfiguration *Bucket_PublicAccessBlockConfiguration `json:"PublicAccessBlockConfiguration,omitempty"`
	// VersioningConfiguration enables object versioning
	VersioningConfiguration *Bucket_VersioningConfiguration `json:"VersioningConfiguration,omitempty"`
	Tags                    []any                           `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r Bucket) ResourceType() string {
	return "AWS::S3::Bucket"
}

// Bucket_PublicAccessBlockConfiguration represents AWS::S3::Bucket.PublicAccessBlockConfiguration.
type Bucket_PublicAccessBlockConfiguration struct {
	BlockPublicAcls       bool `json:"BlockPublicAcls,omitempty"`
	BlockPublicPolicy     bool `json:"BlockPublicPolicy,omitempty"`
	IgnorePublicAcls      bool `json:"IgnorePublicAcls,omitempty"`
	RestrictPublicBuckets bool `json:"RestrictPublicBuckets,omitempty"`
}

// BlocksAll reports whether every public access flag is set.
func (c Bucket_PublicAccessBlockConfiguration) BlocksAll() bool {
	return c.BlockPublicAcls && c.BlockPublicPolicy && c.IgnorePublicAcls && c.RestrictPublicBuckets
}

// Bucket_VersioningConfiguration represents AWS::S3::Bucket.VersioningConfiguration.
type Bucket_VersioningConfiguration struct {
	Status string `json:"Status"`
}
