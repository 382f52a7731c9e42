// Package alarm evaluates CloudWatch metric alarms offline.
//
// An alarm looks at the last EvaluationPeriods datapoints and goes to ALARM
// when at least DatapointsToAlarm of them breach the threshold ("M out of
// N"). Its actions run only on the transition into ALARM, never while it
// stays there.
package alarm

import (
	"fmt"
	"math"
	"strconv"

	"github.com/lex00/wetwire-workspace-go/resources/cloudwatch"
)

// State is an alarm state.
type State string

// Alarm states.
const (
	StateOK               State = "OK"
	StateAlarm            State = "ALARM"
	StateInsufficientData State = "INSUFFICIENT_DATA"
)

// Missing is a datapoint with no value.
var Missing = math.NaN()

// Evaluator is the state machine of one alarm.
type Evaluator struct {
	Threshold         float64
	Comparison        string
	EvaluationPeriods int
	DatapointsToAlarm int
	TreatMissingData  string

	window []float64
	state  State
}

// New validates the parameters and returns an evaluator in INSUFFICIENT_DATA.
func New(threshold float64, comparison string, periods, datapoints int, treatMissing string) (*Evaluator, error) {
	if treatMissing == "" {
		treatMissing = cloudwatch.TreatMissingMissing
	}
	switch comparison {
	case cloudwatch.GreaterThanOrEqualToThreshold, cloudwatch.GreaterThanThreshold,
		cloudwatch.LessThanThreshold, cloudwatch.LessThanOrEqualToThreshold:
	default:
		return nil, fmt.Errorf("unsupported comparison operator %q", comparison)
	}
	switch treatMissing {
	case cloudwatch.TreatMissingMissing, cloudwatch.TreatMissingBreaching,
		cloudwatch.TreatMissingNotBreaching, cloudwatch.TreatMissingIgnore:
	default:
		return nil, fmt.Errorf("unsupported treat-missing-data mode %q", treatMissing)
	}
	if periods < 1 {
		return nil, fmt.Errorf("evaluation periods must be at least 1, got %d", periods)
	}
	if datapoints == 0 {
		datapoints = periods
	}
	if datapoints < 1 || datapoints > periods {
		return nil, fmt.Errorf("datapoints to alarm must be between 1 and %d, got %d", periods, datapoints)
	}
	return &Evaluator{
		Threshold:         threshold,
		Comparison:        comparison,
		EvaluationPeriods: periods,
		DatapointsToAlarm: datapoints,
		TreatMissingData:  treatMissing,
		state:             StateInsufficientData,
	}, nil
}

// FromAlarm builds an evaluator from a declared alarm resource.
func FromAlarm(a cloudwatch.Alarm) (*Evaluator, error) {
	return New(a.Threshold, a.ComparisonOperator, a.EvaluationPeriods, a.DatapointsToAlarm, a.TreatMissingData)
}

// FromProperties builds an evaluator from the properties of an
// AWS::CloudWatch::Alarm in a synthesized template.
func FromProperties(props map[string]any) (*Evaluator, error) {
	threshold, ok := number(props["Threshold"])
	if !ok {
		return nil, fmt.Errorf("alarm has no numeric Threshold")
	}
	periods, ok := number(props["EvaluationPeriods"])
	if !ok {
		return nil, fmt.Errorf("alarm has no numeric EvaluationPeriods")
	}
	datapoints, _ := number(props["DatapointsToAlarm"])
	comparison, _ := props["ComparisonOperator"].(string)
	treatMissing, _ := props["TreatMissingData"].(string)
	return New(threshold, comparison, int(periods), int(datapoints), treatMissing)
}

// State returns the current state.
func (e *Evaluator) State() State {
	if e.state == "" {
		return StateInsufficientData
	}
	return e.state
}

// Step feeds one datapoint (Missing for a gap) and returns the new state and
// whether the alarm actions fire.
func (e *Evaluator) Step(value float64) (State, bool) {
	prev := e.State()

	if math.IsNaN(value) && e.TreatMissingData == cloudwatch.TreatMissingIgnore {
		// Ignored gaps neither enter the window nor change the state.
		return prev, false
	}

	e.window = append(e.window, value)
	if len(e.window) > e.EvaluationPeriods {
		e.window = e.window[len(e.window)-e.EvaluationPeriods:]
	}

	e.state = e.evaluate()
	return e.state, e.state == StateAlarm && prev != StateAlarm
}

// Replay feeds every point from a fresh state and returns the indices at
// which the actions fired.
func (e *Evaluator) Replay(points []float64) []int {
	e.Reset()
	var fired []int
	for i, p := range points {
		if _, fire := e.Step(p); fire {
			fired = append(fired, i)
		}
	}
	return fired
}

// Reset clears the window and returns to INSUFFICIENT_DATA.
func (e *Evaluator) Reset() {
	e.window = nil
	e.state = StateInsufficientData
}

func (e *Evaluator) evaluate() State {
	breaching, present := 0, 0
	for _, v := range e.window {
		if math.IsNaN(v) {
			switch e.TreatMissingData {
			case cloudwatch.TreatMissingBreaching:
				breaching++
				present++
			case cloudwatch.TreatMissingNotBreaching:
				present++
			}
			continue
		}
		present++
		if e.breaches(v) {
			breaching++
		}
	}

	if breaching >= e.DatapointsToAlarm {
		return StateAlarm
	}
	if present == 0 {
		return StateInsufficientData
	}
	return StateOK
}

func (e *Evaluator) breaches(v float64) bool {
	switch e.Comparison {
	case cloudwatch.GreaterThanOrEqualToThreshold:
		return v >= e.Threshold
	case cloudwatch.GreaterThanThreshold:
		return v > e.Threshold
	case cloudwatch.LessThanThreshold:
		return v < e.Threshold
	case cloudwatch.LessThanOrEqualToThreshold:
		return v <= e.Threshold
	}
	return false
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		// CloudFormation accepts numbers as strings.
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}
