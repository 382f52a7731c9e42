package main

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lex00/wetwire-workspace-go/infra"
	"github.com/lex00/wetwire-workspace-go/internal/alarm"
)

type simulationStep struct {
	Value   float64     `json:"value"`
	Missing bool        `json:"missing,omitempty"`
	State   alarm.State `json:"state"`
	Fired   bool        `json:"fired,omitempty"`
}

func newSimulateCmd(cfg configPath) *cobra.Command {
	var (
		alarmName    string
		outputFormat string
	)

	cmd := &cobra.Command{
		Use:   "simulate <datapoint> [datapoint...]",
		Short: "Replay CPU datapoints through the idle-stop alarm",
		Long: `Simulate feeds one datapoint per period through the alarm exactly as declared in
the template and reports the state after each period. "-" marks a missing
datapoint. The stop action fires on every transition into ALARM.

Examples:
    wetwire-workspace simulate 5 3 0.5 0.2 0.1 0.1 0.1 0.3
    wetwire-workspace simulate 0.5 - 0.5 0.5 - 0.5 --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			points, err := parseDatapoints(args)
			if err != nil {
				return err
			}

			_, tmpl, err := synthesize(cfg())
			if err != nil {
				return err
			}
			res, ok := tmpl.Resources[alarmName]
			if !ok || res.Type != "AWS::CloudWatch::Alarm" {
				return fmt.Errorf("no alarm named %s", alarmName)
			}
			eval, err := alarm.FromProperties(res.Properties)
			if err != nil {
				return fmt.Errorf("alarm %s: %w", alarmName, err)
			}

			steps := simulate(eval, points)
			switch outputFormat {
			case "json":
				data, err := json.MarshalIndent(steps, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
			case "text":
				fmt.Fprint(cmd.OutOrStdout(), renderSimulation(alarmName, steps))
			default:
				return fmt.Errorf("unknown format: %s", outputFormat)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&alarmName, "alarm", infra.IdleStopAlarm, "Logical name of the alarm")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")

	return cmd
}

func parseDatapoints(args []string) ([]float64, error) {
	points := make([]float64, 0, len(args))
	for _, arg := range args {
		switch strings.ToLower(arg) {
		case "-", "nan", "missing":
			points = append(points, alarm.Missing)
			continue
		}
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid datapoint %q", arg)
		}
		points = append(points, v)
	}
	return points, nil
}

func simulate(eval *alarm.Evaluator, points []float64) []simulationStep {
	eval.Reset()
	steps := make([]simulationStep, 0, len(points))
	for _, p := range points {
		state, fired := eval.Step(p)
		step := simulationStep{Value: p, State: state, Fired: fired}
		if math.IsNaN(p) {
			step.Value, step.Missing = 0, true
		}
		steps = append(steps, step)
	}
	return steps
}
