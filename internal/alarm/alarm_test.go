package alarm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lex00/wetwire-workspace-go/resources/cloudwatch"
)

func idleStop(t *testing.T, treatMissing string) *Evaluator {
	t.Helper()
	e, err := FromAlarm(cloudwatch.Alarm{
		ComparisonOperator: cloudwatch.LessThanThreshold,
		Threshold:          0.99,
		EvaluationPeriods:  6,
		DatapointsToAlarm:  5,
		TreatMissingData:   treatMissing,
	})
	require.NoError(t, err)
	return e
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestEvaluator_FiresAfterMOfN(t *testing.T) {
	e := idleStop(t, "")
	assert.Equal(t, StateInsufficientData, e.State())

	for i := 0; i < 4; i++ {
		state, fire := e.Step(0.2)
		assert.Equal(t, StateOK, state)
		assert.False(t, fire, "point %d", i)
	}

	state, fire := e.Step(0.2)
	assert.Equal(t, StateAlarm, state)
	assert.True(t, fire)

	state, fire = e.Step(0.2)
	assert.Equal(t, StateAlarm, state)
	assert.False(t, fire, "action fires only on the transition")
}

func TestEvaluator_BusyInstanceNeverFires(t *testing.T) {
	e := idleStop(t, "")
	assert.Empty(t, e.Replay(repeat(35, 50)))
	assert.Equal(t, StateOK, e.State())
}

func TestEvaluator_InterleavedActivityNeverFires(t *testing.T) {
	// Two busy points in every six keep breaches at four.
	var points []float64
	for i := 0; i < 10; i++ {
		points = append(points, 0.1, 0.1, 50, 0.1, 0.1, 50)
	}
	assert.Empty(t, idleStop(t, "").Replay(points))
}

func TestEvaluator_Replay(t *testing.T) {
	points := append(repeat(0.5, 6), 40, 40)
	points = append(points, repeat(0.5, 5)...)

	fired := idleStop(t, "").Replay(points)
	// First idle run fires at index 4; recovering and idling again fires at
	// the fifth low point of the second run.
	assert.Equal(t, []int{4, 12}, fired)
}

func TestEvaluator_ThresholdIsStrict(t *testing.T) {
	assert.Empty(t, idleStop(t, "").Replay(repeat(0.99, 10)))
	assert.Equal(t, []int{4}, idleStop(t, "").Replay(repeat(0.98, 10)))
}

func TestEvaluator_MissingData(t *testing.T) {
	gaps := []float64{0.1, Missing, 0.1, 0.1, Missing, 0.1, 0.1}

	tests := []struct {
		mode     string
		expected []int
		final    State
	}{
		// Missing points fill window slots but never breach.
		{cloudwatch.TreatMissingMissing, nil, StateOK},
		{cloudwatch.TreatMissingNotBreaching, nil, StateOK},
		{cloudwatch.TreatMissingBreaching, []int{4}, StateAlarm},
		// Ignored points are dropped, so five real lows are contiguous.
		{cloudwatch.TreatMissingIgnore, []int{6}, StateAlarm},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			e := idleStop(t, tt.mode)
			assert.Equal(t, tt.expected, e.Replay(gaps))
			assert.Equal(t, tt.final, e.State())
		})
	}
}

func TestEvaluator_AllMissing(t *testing.T) {
	e := idleStop(t, cloudwatch.TreatMissingMissing)
	assert.Empty(t, e.Replay(repeat(Missing, 8)))
	assert.Equal(t, StateInsufficientData, e.State())

	e = idleStop(t, cloudwatch.TreatMissingIgnore)
	state, fire := e.Step(Missing)
	assert.Equal(t, StateInsufficientData, state)
	assert.False(t, fire)
}

func TestEvaluator_Comparisons(t *testing.T) {
	tests := []struct {
		op       string
		value    float64
		breaches bool
	}{
		{cloudwatch.GreaterThanThreshold, 10, false},
		{cloudwatch.GreaterThanThreshold, 11, true},
		{cloudwatch.GreaterThanOrEqualToThreshold, 10, true},
		{cloudwatch.LessThanThreshold, 10, false},
		{cloudwatch.LessThanOrEqualToThreshold, 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			e, err := New(10, tt.op, 1, 1, "")
			require.NoError(t, err)
			state, fire := e.Step(tt.value)
			assert.Equal(t, tt.breaches, fire)
			assert.Equal(t, tt.breaches, state == StateAlarm)
		})
	}
}

func TestNew_Errors(t *testing.T) {
	_, err := New(1, "Sideways", 6, 5, "")
	assert.Error(t, err)
	_, err = New(1, cloudwatch.LessThanThreshold, 0, 0, "")
	assert.Error(t, err)
	_, err = New(1, cloudwatch.LessThanThreshold, 6, 7, "")
	assert.Error(t, err)
	_, err = New(1, cloudwatch.LessThanThreshold, 6, 5, "sometimes")
	assert.Error(t, err)

	e, err := New(1, cloudwatch.LessThanThreshold, 3, 0, "")
	require.NoError(t, err)
	assert.Equal(t, 3, e.DatapointsToAlarm)
}

func TestFromProperties(t *testing.T) {
	e, err := FromProperties(map[string]any{
		"ComparisonOperator": "LessThanThreshold",
		"Threshold":          0.99,
		"EvaluationPeriods":  float64(6),
		"DatapointsToAlarm":  float64(5),
	})
	require.NoError(t, err)
	assert.Equal(t, 6, e.EvaluationPeriods)
	assert.Equal(t, 5, e.DatapointsToAlarm)
	assert.Equal(t, cloudwatch.TreatMissingMissing, e.TreatMissingData)

	_, err = FromProperties(map[string]any{"EvaluationPeriods": float64(6)})
	assert.Error(t, err)
	_, err = FromProperties(map[string]any{"Threshold": 1.0})
	assert.Error(t, err)
}

func TestFromProperties_StringNumbers(t *testing.T) {
	e, err := FromProperties(map[string]any{
		"ComparisonOperator": "LessThanThreshold",
		"Threshold":          "0.99",
		"EvaluationPeriods":  "6",
		"DatapointsToAlarm":  "5",
	})
	require.NoError(t, err)
	assert.Equal(t, 0.99, e.Threshold)
	assert.Equal(t, 6, e.EvaluationPeriods)
	assert.Equal(t, 5, e.DatapointsToAlarm)

	_, err = FromProperties(map[string]any{
		"ComparisonOperator": "LessThanThreshold",
		"Threshold":          "low",
		"EvaluationPeriods":  "6",
	})
	assert.Error(t, err)
}
