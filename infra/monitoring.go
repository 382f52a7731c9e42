package infra

import (
	"github.com/lex00/wetwire-workspace-go/internal/config"
	"github.com/lex00/wetwire-workspace-go/internal/stack"
	. "github.com/lex00/wetwire-workspace-go/intrinsics"
	"github.com/lex00/wetwire-workspace-go/resources/cloudwatch"
)

// IdleStopAlarm is the logical name of the idle-stop alarm.
const IdleStopAlarm = "StopIdleEc2Pub"

// StopInstanceAction is the EC2 stop action of CloudWatch alarms.
var StopInstanceAction = Sub{String: "arn:${AWS::Partition}:automate:${AWS::Region}:ec2:stop"}

func addMonitoring(st *stack.Stack, cfg *config.Config, target stack.Handle) stack.Handle {
	a := cfg.Alarm
	return st.MustAdd(IdleStopAlarm, &cloudwatch.Alarm{
		AlarmName:          a.Name,
		AlarmDescription:   "Stops the public instance after sustained low CPU",
		ComparisonOperator: cloudwatch.LessThanThreshold,
		Threshold:          a.Threshold,
		EvaluationPeriods:  a.EvaluationPeriods,
		DatapointsToAlarm:  a.DatapointsToAlarm,
		Namespace:          "AWS/EC2",
		MetricName:         "CPUUtilization",
		Statistic:          "Average",
		Period:             a.PeriodSeconds,
		Dimensions: []cloudwatch.Alarm_Dimension{
			{Name: "InstanceId", Value: target.Ref()},
		},
		AlarmActions: Any(StopInstanceAction),
	})
}
