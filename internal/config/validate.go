package config

import (
	"fmt"
	"net"
	"regexp"
)

var (
	stackNamePattern    = regexp.MustCompile(`^[A-Za-z][-A-Za-z0-9]{0,127}$`)
	bucketNamePattern   = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]{1,61}[a-z0-9]$`)
	instanceTypePattern = regexp.MustCompile(`^[a-z][a-z0-9-]*\.[a-z0-9]+$`)
)

// Validate checks the configuration for common errors and returns a detailed
// error if validation fails.
func (c *Config) Validate() error {
	if !stackNamePattern.MatchString(c.StackName) {
		return fmt.Errorf("invalid stack_name %q: must start with a letter and contain only letters, digits and hyphens", c.StackName)
	}
	if !bucketNamePattern.MatchString(c.BucketName) {
		return fmt.Errorf("invalid bucket_name %q: must be 3-63 lowercase letters, digits, dots or hyphens", c.BucketName)
	}
	if c.KeyPair == "" {
		return fmt.Errorf("key_pair is required")
	}

	if err := c.validateNetwork(); err != nil {
		return fmt.Errorf("network validation failed: %w", err)
	}
	if err := c.validateInstances(); err != nil {
		return fmt.Errorf("instance validation failed: %w", err)
	}
	if err := c.validateAlarm(); err != nil {
		return fmt.Errorf("alarm validation failed: %w", err)
	}
	return nil
}

func (c *Config) validateNetwork() error {
	ip, network, err := net.ParseCIDR(c.Network.CIDR)
	if err != nil {
		return fmt.Errorf("invalid cidr %q: %w", c.Network.CIDR, err)
	}
	if ip.To4() == nil {
		return fmt.Errorf("cidr %q must be IPv4", c.Network.CIDR)
	}
	if !ip.Equal(network.IP) {
		return fmt.Errorf("cidr %q has host bits set; use %s", c.Network.CIDR, network.String())
	}
	ones, _ := network.Mask.Size()
	if ones < 16 || ones > 28 {
		return fmt.Errorf("cidr %q: VPC prefix must be between /16 and /28", c.Network.CIDR)
	}

	if c.Network.MaxAZs < 1 || c.Network.MaxAZs > 6 {
		return fmt.Errorf("max_azs must be between 1 and 6, got %d", c.Network.MaxAZs)
	}
	if c.Network.SubnetBits < 1 {
		return fmt.Errorf("subnet_bits must be positive, got %d", c.Network.SubnetBits)
	}
	if ones+c.Network.SubnetBits > 28 {
		return fmt.Errorf("subnet_bits %d carves subnets smaller than /28 from %s", c.Network.SubnetBits, c.Network.CIDR)
	}
	if need := 2 * c.Network.MaxAZs; need > 1<<c.Network.SubnetBits {
		return fmt.Errorf("subnet_bits %d leaves room for %d subnets, need %d", c.Network.SubnetBits, 1<<c.Network.SubnetBits, need)
	}
	if c.Network.NatGateways < 0 || c.Network.NatGateways > c.Network.MaxAZs {
		return fmt.Errorf("nat_gateways must be between 0 and max_azs (%d), got %d", c.Network.MaxAZs, c.Network.NatGateways)
	}
	return nil
}

func (c *Config) validateInstances() error {
	for _, inst := range []struct {
		role string
		cfg  InstanceConfig
	}{
		{"private", c.Instances.Private},
		{"public", c.Instances.Public},
	} {
		if inst.cfg.Name == "" {
			return fmt.Errorf("%s instance name is required", inst.role)
		}
		if !instanceTypePattern.MatchString(inst.cfg.Type) {
			return fmt.Errorf("%s instance type %q is not of the form family.size", inst.role, inst.cfg.Type)
		}
	}
	if c.Instances.AMIParameter == "" {
		return fmt.Errorf("ami_parameter is required")
	}
	return nil
}

func (c *Config) validateAlarm() error {
	a := c.Alarm
	if a.Threshold <= 0 {
		return fmt.Errorf("threshold must be positive, got %v", a.Threshold)
	}
	if a.EvaluationPeriods < 1 {
		return fmt.Errorf("evaluation_periods must be at least 1, got %d", a.EvaluationPeriods)
	}
	if a.DatapointsToAlarm < 1 || a.DatapointsToAlarm > a.EvaluationPeriods {
		return fmt.Errorf("datapoints_to_alarm must be between 1 and evaluation_periods (%d), got %d",
			a.EvaluationPeriods, a.DatapointsToAlarm)
	}
	switch {
	case a.PeriodSeconds == 10, a.PeriodSeconds == 30:
	case a.PeriodSeconds >= 60 && a.PeriodSeconds%60 == 0:
	default:
		return fmt.Errorf("period_seconds must be 10, 30 or a multiple of 60, got %d", a.PeriodSeconds)
	}
	return nil
}
