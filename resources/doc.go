// Package resources contains the typed CloudFormation resources used by the
// workspace stack, one sub-package per AWS service.
//
// Each resource type carries PascalCase JSON tags matching the CloudFormation
// property names, implements wetwire.Resource, and exposes its GetAtt
// attribute names as constants:
//
//	ec2.SecurityGroupGroupId // "GroupId"
//	iam.RoleArn              // "Arn"
//
// Property values typed as any accept literals or intrinsics.
package resources
