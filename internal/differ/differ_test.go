package differ

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	wetwire "github.com/lex00/wetwire-workspace-go"
)

func TestCompare(t *testing.T) {
	t1 := &wetwire.Template{
		Resources: map[string]wetwire.ResourceDef{
			"WorkspaceBucket": {Type: "AWS::S3::Bucket", Properties: map[string]any{"BucketName": "workspace"}},
			"SecurityGroup":   {Type: "AWS::EC2::SecurityGroup", Properties: map[string]any{"GroupDescription": "allow port 22"}},
		},
	}

	t2 := &wetwire.Template{
		Resources: map[string]wetwire.ResourceDef{
			"WorkspaceBucket": {Type: "AWS::S3::Bucket", Properties: map[string]any{"BucketName": "workspace-renamed"}},
			"IdleAlarm":       {Type: "AWS::CloudWatch::Alarm"},
		},
	}

	result, err := Compare(t1, t2, Options{})
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}

	if len(result.Diff.Removed) != 1 || result.Diff.Removed[0].Resource != "SecurityGroup" {
		t.Errorf("Removed = %v, want [SecurityGroup]", result.Diff.Removed)
	}
	if len(result.Diff.Added) != 1 || result.Diff.Added[0].Resource != "IdleAlarm" {
		t.Errorf("Added = %v, want [IdleAlarm]", result.Diff.Added)
	}
	if len(result.Diff.Modified) != 1 || result.Diff.Modified[0].Resource != "WorkspaceBucket" {
		t.Errorf("Modified = %v, want [WorkspaceBucket]", result.Diff.Modified)
	}
	if result.Summary.Total != 3 {
		t.Errorf("Summary.Total = %d, want 3", result.Summary.Total)
	}
}

func TestCompareIdentical(t *testing.T) {
	template := &wetwire.Template{
		Resources: map[string]wetwire.ResourceDef{
			"WorkspaceBucket": {Type: "AWS::S3::Bucket", Properties: map[string]any{"BucketName": "test"}},
		},
	}

	result, err := Compare(template, template, Options{})
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if result.Summary.Total != 0 {
		t.Errorf("Summary.Total = %d, want 0 for identical templates", result.Summary.Total)
	}
}

func TestCompareTypeAndPolicyChange(t *testing.T) {
	t1 := &wetwire.Template{
		Resources: map[string]wetwire.ResourceDef{
			"Resource1": {Type: "AWS::S3::Bucket", DeletionPolicy: "Retain"},
		},
	}
	t2 := &wetwire.Template{
		Resources: map[string]wetwire.ResourceDef{
			"Resource1": {Type: "AWS::S3::AccessPoint"},
		},
	}

	result, err := Compare(t1, t2, Options{})
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if len(result.Diff.Modified) != 1 {
		t.Fatalf("Modified = %d, want 1", len(result.Diff.Modified))
	}

	changes := result.Diff.Modified[0].Changes
	want := []string{
		"Type changed: AWS::S3::Bucket → AWS::S3::AccessPoint",
		`DeletionPolicy changed: "Retain" → ""`,
	}
	if len(changes) != len(want) {
		t.Fatalf("Changes = %v, want %v", changes, want)
	}
	for i := range want {
		if changes[i] != want[i] {
			t.Errorf("Changes[%d] = %q, want %q", i, changes[i], want[i])
		}
	}
}

func TestCompareProperties(t *testing.T) {
	tests := []struct {
		name   string
		props1 map[string]any
		props2 map[string]any
		want   []string
	}{
		{
			name:   "identical",
			props1: map[string]any{"Key": "value"},
			props2: map[string]any{"Key": "value"},
		},
		{
			name:   "added property",
			props1: map[string]any{},
			props2: map[string]any{"Key": "value"},
			want:   []string{"Key added"},
		},
		{
			name:   "removed property",
			props1: map[string]any{"Key": "value"},
			props2: map[string]any{},
			want:   []string{"Key removed"},
		},
		{
			name: "nested flag",
			props1: map[string]any{"PublicAccessBlockConfiguration": map[string]any{
				"BlockPublicAcls": true, "BlockPublicPolicy": true,
			}},
			props2: map[string]any{"PublicAccessBlockConfiguration": map[string]any{
				"BlockPublicAcls": true,
			}},
			want: []string{"PublicAccessBlockConfiguration.BlockPublicPolicy removed"},
		},
		{
			name:   "intrinsic compared whole",
			props1: map[string]any{"VpcId": map[string]any{"Ref": "VpcA"}},
			props2: map[string]any{"VpcId": map[string]any{"Ref": "VpcB"}},
			want:   []string{"VpcId modified"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changes := compareProperties("", tt.props1, tt.props2, Options{})
			if len(changes) != len(tt.want) {
				t.Fatalf("compareProperties() = %v, want %v", changes, tt.want)
			}
			for i := range tt.want {
				if changes[i] != tt.want[i] {
					t.Errorf("changes[%d] = %q, want %q", i, changes[i], tt.want[i])
				}
			}
		})
	}
}

func TestCompareIgnoreOrder(t *testing.T) {
	props1 := map[string]any{"RouteTableIds": []any{map[string]any{"Ref": "A"}, map[string]any{"Ref": "B"}}}
	props2 := map[string]any{"RouteTableIds": []any{map[string]any{"Ref": "B"}, map[string]any{"Ref": "A"}}}

	if changes := compareProperties("", props1, props2, Options{}); len(changes) != 1 {
		t.Errorf("ordered comparison: got %v, want one change", changes)
	}
	if changes := compareProperties("", props1, props2, Options{IgnoreOrder: true}); len(changes) != 0 {
		t.Errorf("unordered comparison: got %v, want none", changes)
	}
}

func TestCompareFiles(t *testing.T) {
	dir := t.TempDir()
	left := filepath.Join(dir, "left.json")
	right := filepath.Join(dir, "right.yaml")

	if err := os.WriteFile(left, []byte(`{"Resources": {"WorkspaceBucket": {"Type": "AWS::S3::Bucket"}}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(right, []byte("Resources:\n  WorkspaceBucket:\n    Type: AWS::S3::Bucket\n  Vpc:\n    Type: AWS::EC2::VPC\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := CompareFiles(left, right, Options{})
	if err != nil {
		t.Fatalf("CompareFiles() error = %v", err)
	}
	if result.Summary.Added != 1 || result.Diff.Added[0].Resource != "Vpc" {
		t.Errorf("Added = %v, want [Vpc]", result.Diff.Added)
	}

	if _, err := CompareFiles(filepath.Join(dir, "missing.json"), right, Options{}); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDelta(t *testing.T) {
	t1 := &wetwire.Template{
		Resources: map[string]wetwire.ResourceDef{
			"WorkspaceBucket": {Type: "AWS::S3::Bucket", Properties: map[string]any{"BucketName": "before"}},
		},
	}
	t2 := &wetwire.Template{
		Resources: map[string]wetwire.ResourceDef{
			"WorkspaceBucket": {Type: "AWS::S3::Bucket", Properties: map[string]any{"BucketName": "after"}},
		},
	}

	same, err := Delta(t1, t1, false)
	if err != nil {
		t.Fatalf("Delta() error = %v", err)
	}
	if same != "" {
		t.Errorf("Delta() of identical templates = %q, want empty", same)
	}

	out, err := Delta(t1, t2, false)
	if err != nil {
		t.Fatalf("Delta() error = %v", err)
	}
	if !strings.Contains(out, "before") {
		t.Errorf("Delta() missing removed value:\n%s", out)
	}
	if !strings.Contains(out, "after") {
		t.Errorf("Delta() missing added value:\n%s", out)
	}
}

func TestCompare_DependsOnAndReplacePolicy(t *testing.T) {
	t1 := &wetwire.Template{
		Resources: map[string]wetwire.ResourceDef{
			"Route": {Type: "AWS::EC2::Route", DependsOn: []string{"Attachment"}},
		},
	}
	t2 := &wetwire.Template{
		Resources: map[string]wetwire.ResourceDef{
			"Route": {Type: "AWS::EC2::Route", UpdateReplacePolicy: "Retain"},
		},
	}

	result, err := Compare(t1, t2, Options{})
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if len(result.Diff.Modified) != 1 {
		t.Fatalf("Modified = %d, want 1", len(result.Diff.Modified))
	}
	want := []string{"DependsOn changed", `UpdateReplacePolicy changed: "" → "Retain"`}
	got := result.Diff.Modified[0].Changes
	if len(got) != len(want) {
		t.Fatalf("Changes = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Changes[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
