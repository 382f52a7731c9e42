// Package infra declares the developer workspace: an S3 bucket, a VPC with
// S3 and SSM endpoints, an instance role, a security group, a private and a
// public instance, an elastic IP for the public instance, and an alarm that
// stops the public instance when it sits idle.
//
// Logical names are exported constants so lint rules, tests and the CLI can
// refer to the resources without string literals.
package infra

import (
	"fmt"
	"runtime"

	"github.com/lex00/wetwire-workspace-go/internal/config"
	"github.com/lex00/wetwire-workspace-go/internal/stack"
)

// Workspace is the declared stack plus handles to its main resources.
type Workspace struct {
	Stack *stack.Stack

	Bucket        stack.Handle
	Network       Network
	SecurityGroup stack.Handle
	Identity      Identity
	Compute       Compute
	Alarm         stack.Handle
}

// Build declares the whole workspace from cfg.
func Build(cfg *config.Config) (ws *Workspace, err error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	// Declarations use MustAdd, whose panics are duplicate logical names.
	// Runtime errors are bugs and keep panicking.
	defer func() {
		if r := recover(); r != nil {
			if rerr, ok := r.(runtime.Error); ok {
				panic(rerr)
			}
			ws, err = nil, fmt.Errorf("declaring workspace: %v", r)
		}
	}()

	st := stack.New(cfg.StackName, cfg.Description)
	ws = &Workspace{Stack: st}

	if ws.Bucket, err = addStorage(st, cfg); err != nil {
		return nil, err
	}
	if ws.Network, err = addNetwork(st, cfg); err != nil {
		return nil, err
	}
	ws.SecurityGroup = addSecurityGroup(st, ws.Network)
	ws.Network.SSMEndpoint = addInterfaceEndpoint(st, ws.Network, ws.SecurityGroup)
	ws.Identity = addIdentity(st)
	if ws.Compute, err = addCompute(st, cfg, ws.Network, ws.SecurityGroup, ws.Identity); err != nil {
		return nil, err
	}
	ws.Alarm = addMonitoring(st, cfg, ws.Compute.Public)
	if err = addOutputs(st, ws); err != nil {
		return nil, err
	}
	return ws, nil
}
