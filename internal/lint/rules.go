package lint

// Template rules:
//
//	WWS001: S3 bucket public access must be fully blocked
//	WWS002: World-open ingress only on TCP 22 and 443, each once
//	WWS003: Instance roles are assumable only by ec2.amazonaws.com
//	WWS004: Instance-bound elastic IPs target an instance in a public subnet
//	WWS005: Idle-stop alarms are well formed and watch a declared instance
//	WWS006: Every VPC has an S3 gateway endpoint
//	WWS007: Instance key pair is still the placeholder
//	WWS008: Every instance sits in exactly one subnet

import (
	"fmt"
	"sort"
	"strings"

	wetwire "github.com/lex00/wetwire-workspace-go"
	"github.com/lex00/wetwire-workspace-go/internal/config"
)

// BucketPublicAccess requires all four public access block flags.
type BucketPublicAccess struct{}

func (r BucketPublicAccess) ID() string { return "WWS001" }
func (r BucketPublicAccess) Description() string {
	return "S3 bucket public access must be fully blocked"
}

var publicAccessFlags = []string{"BlockPublicAcls", "BlockPublicPolicy", "IgnorePublicAcls", "RestrictPublicBuckets"}

func (r BucketPublicAccess) Check(t *wetwire.Template) []Issue {
	var issues []Issue
	for _, name := range resourcesOfType(t, "AWS::S3::Bucket") {
		cfg, _ := t.Resources[name].Properties["PublicAccessBlockConfiguration"].(map[string]any)
		var missing []string
		for _, flag := range publicAccessFlags {
			if v, _ := cfg[flag].(bool); !v {
				missing = append(missing, flag)
			}
		}
		if len(missing) > 0 {
			issues = append(issues, Issue{
				Rule:     r.ID(),
				Resource: name,
				Message:  "public access not fully blocked: " + strings.Join(missing, ", ") + " not set",
				Severity: SeverityError,
			})
		}
	}
	return issues
}

// WorldOpenIngress limits what the internet can reach.
type WorldOpenIngress struct{}

func (r WorldOpenIngress) ID() string { return "WWS002" }
func (r WorldOpenIngress) Description() string {
	return "World-open ingress is limited to TCP 22 and 443, each declared once"
}

// AllowedWorldPorts are the only ports that may be open to 0.0.0.0/0.
var AllowedWorldPorts = map[int]bool{22: true, 443: true}

func (r WorldOpenIngress) Check(t *wetwire.Template) []Issue {
	var issues []Issue

	// Standalone ingress resources count against their group.
	rules := make(map[string][]any)
	for _, name := range resourcesOfType(t, "AWS::EC2::SecurityGroup") {
		rules[name] = append(rules[name], asList(t.Resources[name].Properties["SecurityGroupIngress"])...)
	}
	for _, name := range resourcesOfType(t, "AWS::EC2::SecurityGroupIngress") {
		props := t.Resources[name].Properties
		group, ok := refTarget(props["GroupId"])
		if !ok {
			if att, isMap := props["GroupId"].(map[string]any); isMap {
				if args, isList := att["Fn::GetAtt"].([]any); isList && len(args) > 0 {
					group, ok = args[0].(string)
				}
			}
		}
		if !ok {
			group = name
		}
		rules[group] = append(rules[group], props)
	}

	groups := make([]string, 0, len(rules))
	for g := range rules {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	for _, group := range groups {
		seen := make(map[int]int)
		for _, raw := range rules[group] {
			rule, ok := raw.(map[string]any)
			if !ok || !(isWorld(rule["CidrIp"]) || isWorld(rule["CidrIpv6"])) {
				continue
			}
			proto := fmt.Sprint(rule["IpProtocol"])
			if proto != "tcp" && proto != "6" {
				issues = append(issues, r.issue(group, fmt.Sprintf("protocol %s open to the world", proto)))
				continue
			}
			from, okFrom := number(rule["FromPort"])
			to, okTo := number(rule["ToPort"])
			if !okFrom || !okTo || from != to {
				issues = append(issues, r.issue(group, fmt.Sprintf("port range %v-%v open to the world", rule["FromPort"], rule["ToPort"])))
				continue
			}
			port := int(from)
			if !AllowedWorldPorts[port] {
				issues = append(issues, r.issue(group, fmt.Sprintf("port %d open to the world; only 22 and 443 are allowed", port)))
				continue
			}
			seen[port]++
			if seen[port] == 2 {
				issues = append(issues, r.issue(group, fmt.Sprintf("port %d opened to the world more than once", port)))
			}
		}
	}
	return issues
}

func (r WorldOpenIngress) issue(resource, msg string) Issue {
	return Issue{Rule: r.ID(), Resource: resource, Message: msg, Severity: SeverityError}
}

// InstanceRoleTrust checks the trust policy of roles used by instance profiles.
type InstanceRoleTrust struct{}

func (r InstanceRoleTrust) ID() string { return "WWS003" }
func (r InstanceRoleTrust) Description() string {
	return "Instance roles are assumable only by ec2.amazonaws.com"
}

// EC2Service is the principal allowed to assume instance roles.
const EC2Service = "ec2.amazonaws.com"

func (r InstanceRoleTrust) Check(t *wetwire.Template) []Issue {
	roles := make(map[string]bool)
	for _, name := range resourcesOfType(t, "AWS::IAM::InstanceProfile") {
		for _, v := range asList(t.Resources[name].Properties["Roles"]) {
			if role, ok := refTarget(v); ok && isType(t, role, "AWS::IAM::Role") {
				roles[role] = true
			}
		}
	}

	var issues []Issue
	for _, name := range resourcesOfType(t, "AWS::IAM::Role") {
		if !roles[name] {
			continue
		}
		doc, _ := t.Resources[name].Properties["AssumeRolePolicyDocument"].(map[string]any)
		stmts := asList(doc["Statement"])
		if len(stmts) == 0 {
			issues = append(issues, r.issue(name, "role has no trust policy statements"))
			continue
		}
		for _, s := range stmts {
			stmt, _ := s.(map[string]any)
			if effect, _ := stmt["Effect"].(string); effect != "Allow" {
				continue
			}
			if msg := checkPrincipal(stmt["Principal"]); msg != "" {
				issues = append(issues, r.issue(name, msg))
			}
		}
	}
	return issues
}

func checkPrincipal(p any) string {
	principal, ok := p.(map[string]any)
	if !ok {
		return fmt.Sprintf("trust principal %v is not a service principal", p)
	}
	for key := range principal {
		if key != "Service" {
			return fmt.Sprintf("trust policy admits %s principals", key)
		}
	}
	services := asList(principal["Service"])
	if len(services) != 1 || services[0] != EC2Service {
		return fmt.Sprintf("trust policy admits %v; only %s is allowed", principal["Service"], EC2Service)
	}
	return ""
}

func (r InstanceRoleTrust) issue(resource, msg string) Issue {
	return Issue{Rule: r.ID(), Resource: resource, Message: msg, Severity: SeverityError}
}

// ElasticIPPublicInstance checks elastic IP bindings.
type ElasticIPPublicInstance struct{}

func (r ElasticIPPublicInstance) ID() string { return "WWS004" }
func (r ElasticIPPublicInstance) Description() string {
	return "Instance-bound elastic IPs target an instance in a public subnet"
}

func (r ElasticIPPublicInstance) Check(t *wetwire.Template) []Issue {
	var issues []Issue
	bound := make(map[string]string)
	for _, name := range resourcesOfType(t, "AWS::EC2::EIP") {
		props := t.Resources[name].Properties
		if _, ok := props["InstanceId"]; !ok {
			continue
		}
		instance, ok := refTarget(props["InstanceId"])
		if !ok || !isType(t, instance, "AWS::EC2::Instance") {
			issues = append(issues, r.issue(name, fmt.Sprintf("InstanceId %v does not reference a declared instance", props["InstanceId"])))
			continue
		}
		if other, dup := bound[instance]; dup {
			issues = append(issues, r.issue(name, fmt.Sprintf("instance %s already has elastic IP %s", instance, other)))
			continue
		}
		bound[instance] = name

		subnet, ok := refTarget(t.Resources[instance].Properties["SubnetId"])
		if !ok || !IsPublicSubnet(t, subnet) {
			issues = append(issues, r.issue(name, fmt.Sprintf("instance %s is not in a public subnet", instance)))
		}
	}
	return issues
}

func (r ElasticIPPublicInstance) issue(resource, msg string) Issue {
	return Issue{Rule: r.ID(), Resource: resource, Message: msg, Severity: SeverityError}
}

// IsPublicSubnet reports whether subnet maps public IPs on launch or routes
// 0.0.0.0/0 through an internet gateway.
func IsPublicSubnet(t *wetwire.Template, subnet string) bool {
	res, ok := t.Resources[subnet]
	if !ok || res.Type != "AWS::EC2::Subnet" {
		return false
	}
	if v, _ := res.Properties["MapPublicIpOnLaunch"].(bool); v {
		return true
	}

	tables := make(map[string]bool)
	for _, name := range resourcesOfType(t, "AWS::EC2::SubnetRouteTableAssociation") {
		props := t.Resources[name].Properties
		if s, _ := refTarget(props["SubnetId"]); s == subnet {
			if table, ok := refTarget(props["RouteTableId"]); ok {
				tables[table] = true
			}
		}
	}
	for _, name := range resourcesOfType(t, "AWS::EC2::Route") {
		props := t.Resources[name].Properties
		table, _ := refTarget(props["RouteTableId"])
		gw, _ := refTarget(props["GatewayId"])
		if tables[table] && isWorld(props["DestinationCidrBlock"]) && isType(t, gw, "AWS::EC2::InternetGateway") {
			return true
		}
	}
	return false
}

// IdleStopAlarm checks alarms whose action stops an EC2 instance.
type IdleStopAlarm struct{}

func (r IdleStopAlarm) ID() string { return "WWS005" }
func (r IdleStopAlarm) Description() string {
	return "Idle-stop alarms use LessThanThreshold, M-of-N periods, and watch a declared instance"
}

func (r IdleStopAlarm) Check(t *wetwire.Template) []Issue {
	var issues []Issue
	for _, name := range resourcesOfType(t, "AWS::CloudWatch::Alarm") {
		props := t.Resources[name].Properties

		stops := false
		for _, a := range asList(props["AlarmActions"]) {
			if isStopAction(a) {
				stops = true
			}
		}
		if !stops {
			continue
		}

		if op, _ := props["ComparisonOperator"].(string); op != "LessThanThreshold" {
			issues = append(issues, r.issue(name, fmt.Sprintf("comparison %q stops busy instances; use LessThanThreshold", op)))
		}

		periods, ok := number(props["EvaluationPeriods"])
		if !ok || periods < 1 {
			issues = append(issues, r.issue(name, "EvaluationPeriods must be at least 1"))
		} else if datapoints, ok := number(props["DatapointsToAlarm"]); ok && (datapoints < 1 || datapoints > periods) {
			issues = append(issues, r.issue(name,
				fmt.Sprintf("DatapointsToAlarm %v must be between 1 and EvaluationPeriods %v", datapoints, periods)))
		}

		instance := ""
		for _, d := range asList(props["Dimensions"]) {
			dim, _ := d.(map[string]any)
			if dim["Name"] == "InstanceId" {
				instance, _ = refTarget(dim["Value"])
			}
		}
		if instance == "" || !isType(t, instance, "AWS::EC2::Instance") {
			issues = append(issues, r.issue(name, "stop action without an InstanceId dimension referencing a declared instance"))
		}
	}
	return issues
}

func (r IdleStopAlarm) issue(resource, msg string) Issue {
	return Issue{Rule: r.ID(), Resource: resource, Message: msg, Severity: SeverityError}
}

// VPCS3GatewayEndpoint requires an S3 gateway endpoint in every VPC.
type VPCS3GatewayEndpoint struct{}

func (r VPCS3GatewayEndpoint) ID() string { return "WWS006" }
func (r VPCS3GatewayEndpoint) Description() string {
	return "Every VPC has an S3 gateway endpoint"
}

func (r VPCS3GatewayEndpoint) Check(t *wetwire.Template) []Issue {
	covered := make(map[string]bool)
	for _, name := range resourcesOfType(t, "AWS::EC2::VPCEndpoint") {
		props := t.Resources[name].Properties
		kind, _ := props["VpcEndpointType"].(string)
		if kind != "" && kind != "Gateway" {
			continue
		}
		service, _ := stringish(props["ServiceName"])
		if !strings.HasSuffix(service, ".s3") {
			continue
		}
		if vpc, ok := refTarget(props["VpcId"]); ok {
			covered[vpc] = true
		}
	}

	var issues []Issue
	for _, name := range resourcesOfType(t, "AWS::EC2::VPC") {
		if !covered[name] {
			issues = append(issues, Issue{
				Rule:     r.ID(),
				Resource: name,
				Message:  "VPC has no S3 gateway endpoint; S3 traffic would leave through the internet",
				Severity: SeverityError,
			})
		}
	}
	return issues
}

// PlaceholderKeyPair warns when the key pair has not been set.
type PlaceholderKeyPair struct{}

func (r PlaceholderKeyPair) ID() string { return "WWS007" }
func (r PlaceholderKeyPair) Description() string {
	return "Instance key pair must be set before deploying"
}

func (r PlaceholderKeyPair) Check(t *wetwire.Template) []Issue {
	var issues []Issue
	for _, name := range resourcesOfType(t, "AWS::EC2::Instance") {
		if key, _ := t.Resources[name].Properties["KeyName"].(string); key == config.PlaceholderKeyPair {
			issues = append(issues, Issue{
				Rule:     r.ID(),
				Resource: name,
				Message:  fmt.Sprintf("KeyName is the placeholder %q; set %s or key_pair", key, config.EnvKeyPair),
				Severity: SeverityWarning,
			})
		}
	}
	return issues
}

// InstanceSingleSubnet requires exactly one subnet per instance.
type InstanceSingleSubnet struct{}

func (r InstanceSingleSubnet) ID() string { return "WWS008" }
func (r InstanceSingleSubnet) Description() string {
	return "Every instance sits in exactly one subnet"
}

func (r InstanceSingleSubnet) Check(t *wetwire.Template) []Issue {
	var issues []Issue
	for _, name := range resourcesOfType(t, "AWS::EC2::Instance") {
		props := t.Resources[name].Properties
		count := 0
		if _, ok := props["SubnetId"]; ok {
			count++
		}
		for _, ni := range asList(props["NetworkInterfaces"]) {
			if m, ok := ni.(map[string]any); ok {
				if _, ok := m["SubnetId"]; ok {
					count++
				}
			}
		}
		if count != 1 {
			issues = append(issues, Issue{
				Rule:     r.ID(),
				Resource: name,
				Message:  fmt.Sprintf("instance declares %d subnets; exactly one is required", count),
				Severity: SeverityError,
			})
		}
	}
	return issues
}
