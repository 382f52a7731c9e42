// Package cloudwatch provides typed CloudFormation resources for Amazon CloudWatch.
package cloudwatch

// ComparisonOperator values accepted by Alarm.ComparisonOperator.
const (
	GreaterThanOrEqualToThreshold = "GreaterThanOrEqualToThreshold"
	GreaterThanThreshold          = "GreaterThanThreshold"
	LessThanThreshold             = "LessThanThreshold"
	LessThanOrEqualToThreshold    = "LessThanOrEqualToThreshold"
)

// TreatMissingData values accepted by Alarm.TreatMissingData.
const (
	TreatMissingBreaching    = "breaching"
	TreatMissingNotBreaching = "notBreaching"
	TreatMissingIgnore       = "ignore"
	TreatMissingMissing      = "missing"
)

// AlarmArn is the GetAtt attribute for the alarm ARN.
const AlarmArn = "Arn"

// Alarm represents an AWS::CloudWatch::Alarm resource.
//
// Threshold is serialized only when non-zero.
type Alarm struct {
	AlarmName          any               `json:"AlarmName,omitempty"`
	AlarmDescription   string            `json:"AlarmDescription,omitempty"`
	ComparisonOperator string            `json:"ComparisonOperator"`
	Threshold          float64           `json:"Threshold,omitempty"`
	EvaluationPeriods  int               `json:"EvaluationPeriods"`
	DatapointsToAlarm  int               `json:"DatapointsToAlarm,omitempty"`
	Namespace          string            `json:"Namespace,omitempty"`
	MetricName         string            `json:"MetricName,omitempty"`
	Statistic          string            `json:"Statistic,omitempty"`
	Period             int               `json:"Period,omitempty"`
	Dimensions         []Alarm_Dimension `json:"Dimensions,omitempty"`
	TreatMissingData   string            `json:"TreatMissingData,omitempty"`
	AlarmActions       []any             `json:"AlarmActions,omitempty"`
	OKActions          []any             `json:"OKActions,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r Alarm) ResourceType() string {
	return "AWS::CloudWatch::Alarm"
}

// Alarm_Dimension represents AWS::CloudWatch::Alarm.Dimension.
type Alarm_Dimension struct {
	Name  string `json:"Name"`
	Value any    `json:"Value"`
}
