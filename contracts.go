// Package wetwire_workspace provides the shared types for the workspace stack.
//
// Resources are declared as typed Go values and registered on a stack under a
// logical name:
//
//	var WorkspaceBucketPublicAccess = s3.Bucket_PublicAccessBlockConfiguration{
//	    BlockPublicAcls: true,
//	    ...
//	}
//
//	bucket := st.MustAdd("WorkspaceBucket", &s3.Bucket{
//	    BucketName:                     "workspace",
//	    PublicAccessBlockConfiguration: &WorkspaceBucketPublicAccess,
//	})
//
// The wetwire-workspace CLI synthesizes the registered declarations into a
// CloudFormation template.
package wetwire_workspace

import (
	"encoding/json"
)

// Resource represents a CloudFormation resource.
// All resource types (s3.Bucket, iam.Role, etc.) implement this interface.
type Resource interface {
	// ResourceType returns the CloudFormation type (e.g., "AWS::S3::Bucket")
	ResourceType() string
}

// AttrRef represents a GetAtt reference to a resource attribute.
//
// Example:
//
//	role := st.MustAdd("InstanceRole", &iam.Role{...})
//	profile := iam.InstanceProfile{
//	    Roles: []any{role.Ref()},
//	}
//	_ = role.Attr(iam.RoleArn) // AttrRef{Resource: "InstanceRole", Attribute: "Arn"}
//
// When serialized to CloudFormation JSON, AttrRef becomes:
//
//	{"Fn::GetAtt": ["InstanceRole", "Arn"]}
type AttrRef struct {
	// Resource is the logical name of the referenced resource
	Resource string
	// Attribute is the attribute name (e.g., "Arn", "GroupId")
	Attribute string
}

// MarshalJSON serializes AttrRef to CloudFormation GetAtt syntax.
func (a AttrRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string][]string{
		"Fn::GetAtt": {a.Resource, a.Attribute},
	})
}

// IsZero returns true if the AttrRef has not been populated.
func (a AttrRef) IsZero() bool {
	return a.Resource == "" && a.Attribute == ""
}

// Declaration is a resource registered on a stack.
type Declaration struct {
	// Name is the logical ID in the template
	Name string
	// Type is the CloudFormation type (e.g., "AWS::EC2::Instance")
	Type string
	// Dependencies are logical names referenced from the resource properties
	Dependencies []string
	// DependsOn are explicit ordering edges that have no property reference
	DependsOn []string
	// DeletionPolicy is Retain, Delete or Snapshot; empty leaves the service default
	DeletionPolicy string
}

// Template represents a CloudFormation template.
type Template struct {
	AWSTemplateFormatVersion string                 `json:"AWSTemplateFormatVersion" yaml:"AWSTemplateFormatVersion"`
	Description              string                 `json:"Description,omitempty" yaml:"Description,omitempty"`
	Parameters               map[string]Parameter   `json:"Parameters,omitempty" yaml:"Parameters,omitempty"`
	Resources                map[string]ResourceDef `json:"Resources" yaml:"Resources"`
	Outputs                  map[string]Output      `json:"Outputs,omitempty" yaml:"Outputs,omitempty"`
}

// ResourceDef is a single resource in the CloudFormation template.
type ResourceDef struct {
	Type       string         `json:"Type" yaml:"Type"`
	Properties map[string]any `json:"Properties,omitempty" yaml:"Properties,omitempty"`
	DependsOn  []string       `json:"DependsOn,omitempty" yaml:"DependsOn,omitempty"`

	DeletionPolicy      string `json:"DeletionPolicy,omitempty" yaml:"DeletionPolicy,omitempty"`
	UpdateReplacePolicy string `json:"UpdateReplacePolicy,omitempty" yaml:"UpdateReplacePolicy,omitempty"`
}

// Parameter is a CloudFormation template parameter.
type Parameter struct {
	Type          string `json:"Type" yaml:"Type"`
	Description   string `json:"Description,omitempty" yaml:"Description,omitempty"`
	Default       any    `json:"Default,omitempty" yaml:"Default,omitempty"`
	AllowedValues []any  `json:"AllowedValues,omitempty" yaml:"AllowedValues,omitempty"`
}

// Output is a CloudFormation template output.
type Output struct {
	Description string  `json:"Description,omitempty" yaml:"Description,omitempty"`
	Value       any     `json:"Value" yaml:"Value"`
	Export      *Export `json:"Export,omitempty" yaml:"Export,omitempty"`
}

// Export names an output for cross-stack import.
type Export struct {
	Name any `json:"Name" yaml:"Name"`
}

// BuildResult is the JSON output from `wetwire-workspace build`.
type BuildResult struct {
	Success   bool     `json:"success"`
	Template  Template `json:"template,omitempty"`
	Resources []string `json:"resources,omitempty"`
	Errors    []string `json:"errors,omitempty"`
}

// LintResult is the JSON output from `wetwire-workspace lint`.
type LintResult struct {
	Success bool        `json:"success"`
	Issues  []LintIssue `json:"issues,omitempty"`
}

// LintIssue is a single linting issue.
type LintIssue struct {
	Resource string `json:"resource,omitempty"`
	Severity string `json:"severity"` // "error", "warning", "info"
	Message  string `json:"message"`
	Rule     string `json:"rule"`
	File     string `json:"file,omitempty"`
	Line     int    `json:"line,omitempty"`
	Column   int    `json:"column,omitempty"`
}

// ValidateResult is the JSON output from `wetwire-workspace validate`.
type ValidateResult struct {
	Success   bool           `json:"success"`
	Resources int            `json:"resources"`
	Inventory map[string]int `json:"inventory,omitempty"`
	Errors    []string       `json:"errors,omitempty"`
	Warnings  []string       `json:"warnings,omitempty"`
}

// ListResult is the JSON output from `wetwire-workspace list`.
type ListResult struct {
	Resources []ListResource `json:"resources"`
}

// ListResource is a single resource in the list output.
type ListResource struct {
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	Dependencies []string `json:"dependencies,omitempty"`
}

// TemplateDiff groups the resources that differ between two templates.
type TemplateDiff struct {
	Added    []DiffEntry `json:"added,omitempty"`
	Removed  []DiffEntry `json:"removed,omitempty"`
	Modified []DiffEntry `json:"modified,omitempty"`
}

// DiffEntry is one changed resource.
type DiffEntry struct {
	Resource string   `json:"resource"`
	Type     string   `json:"type"`
	Changes  []string `json:"changes,omitempty"`
}

// DiffSummary counts the entries of a TemplateDiff.
type DiffSummary struct {
	Added    int `json:"added"`
	Removed  int `json:"removed"`
	Modified int `json:"modified"`
	Total    int `json:"total"`
}
