package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Environment variables read by Load.
const (
	EnvConfig     = "WORKSPACE_CONFIG"
	EnvKeyPair    = "WORKSPACE_KEY_PAIR"
	EnvStackName  = "WORKSPACE_STACK_NAME"
	EnvBucketName = "WORKSPACE_BUCKET_NAME"
)

// DefaultFile is the configuration file looked up when none is named.
const DefaultFile = "workspace.yaml"

// PlaceholderKeyPair is the unset key pair name. It must be replaced before
// the template is deployed.
const PlaceholderKeyPair = "keyPairName"

// Config is the full workspace configuration.
type Config struct {
	StackName   string          `yaml:"stack_name"`
	Description string          `yaml:"description"`
	BucketName  string          `yaml:"bucket_name"`
	KeyPair     string          `yaml:"key_pair"`
	Network     NetworkConfig   `yaml:"network"`
	Instances   InstancesConfig `yaml:"instances"`
	Alarm       AlarmConfig     `yaml:"alarm"`
	Publish     PublishConfig   `yaml:"publish"`
}

// NetworkConfig sizes the VPC.
type NetworkConfig struct {
	CIDR string `yaml:"cidr"`
	// MaxAZs is the number of availability zones to spread subnets across.
	MaxAZs int `yaml:"max_azs"`
	// SubnetBits is the prefix extension used to carve subnets out of CIDR.
	SubnetBits  int `yaml:"subnet_bits"`
	NatGateways int `yaml:"nat_gateways"`
}

// InstancesConfig holds the two instances and their shared image.
type InstancesConfig struct {
	// AMIParameter is the SSM parameter path resolving to the image ID.
	AMIParameter string         `yaml:"ami_parameter"`
	Private      InstanceConfig `yaml:"private"`
	Public       InstanceConfig `yaml:"public"`
}

// InstanceConfig describes one instance.
type InstanceConfig struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// AlarmConfig tunes the idle-stop alarm.
type AlarmConfig struct {
	Name              string  `yaml:"name"`
	Threshold         float64 `yaml:"threshold"`
	EvaluationPeriods int     `yaml:"evaluation_periods"`
	DatapointsToAlarm int     `yaml:"datapoints_to_alarm"`
	PeriodSeconds     int     `yaml:"period_seconds"`
}

// PublishConfig names the staging location for published templates.
type PublishConfig struct {
	Bucket   string `yaml:"bucket"`
	Prefix   string `yaml:"prefix"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
}

// Default returns the stock configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load resolves the configuration file (explicit path, then WORKSPACE_CONFIG,
// then ./workspace.yaml if it exists), applies environment overrides and
// defaults, and validates the result.
func Load(path string) (*Config, error) {
	path, explicit := Resolve(path)

	cfg := &Config{}
	data, err := os.ReadFile(path) // #nosec G304
	switch {
	case err == nil:
		if cfg, err = Parse(data); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// no file: defaults only
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Resolve returns the configuration file Load reads for path, and whether
// it was named explicitly rather than defaulted.
func Resolve(path string) (string, bool) {
	if path != "" {
		return path, true
	}
	if env := os.Getenv(EnvConfig); env != "" {
		return env, true
	}
	return DefaultFile, false
}

// Parse decodes YAML configuration without applying env or defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	// An empty document decodes to io.EOF and means "all defaults".
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvKeyPair); v != "" {
		c.KeyPair = v
	}
	if v := os.Getenv(EnvStackName); v != "" {
		c.StackName = v
	}
	if v := os.Getenv(EnvBucketName); v != "" {
		c.BucketName = v
	}
}

func (c *Config) applyDefaults() {
	if c.StackName == "" {
		c.StackName = "GettingStartedCdkStack"
	}
	if c.Description == "" {
		c.Description = "Developer workspace: private and public instances with S3 and SSM endpoints"
	}
	if c.BucketName == "" {
		c.BucketName = "haimtran-workspace"
	}
	if c.KeyPair == "" {
		c.KeyPair = PlaceholderKeyPair
	}
	if c.Network.CIDR == "" {
		c.Network.CIDR = "10.0.0.0/16"
	}
	if c.Network.MaxAZs == 0 {
		c.Network.MaxAZs = 2
	}
	if c.Network.SubnetBits == 0 {
		c.Network.SubnetBits = 2
	}
	if c.Instances.AMIParameter == "" {
		c.Instances.AMIParameter = "/aws/service/ami-amazon-linux-latest/amzn2-ami-hvm-x86_64-gp2"
	}
	if c.Instances.Private.Name == "" {
		c.Instances.Private.Name = "Ec2PrivateVsCode"
	}
	if c.Instances.Private.Type == "" {
		c.Instances.Private.Type = "t2.small"
	}
	if c.Instances.Public.Name == "" {
		c.Instances.Public.Name = "Ec2PubVscode"
	}
	if c.Instances.Public.Type == "" {
		c.Instances.Public.Type = "t2.large"
	}
	if c.Alarm.Name == "" {
		c.Alarm.Name = "StopIdleEc2Instance"
	}
	if c.Alarm.Threshold == 0 {
		c.Alarm.Threshold = 0.99
	}
	if c.Alarm.EvaluationPeriods == 0 {
		c.Alarm.EvaluationPeriods = 6
	}
	if c.Alarm.DatapointsToAlarm == 0 {
		c.Alarm.DatapointsToAlarm = 5
	}
	if c.Alarm.PeriodSeconds == 0 {
		c.Alarm.PeriodSeconds = 300
	}
	if c.Publish.Prefix == "" {
		c.Publish.Prefix = "templates"
	}
}

// KeyPairSet reports whether the key pair has been changed from the placeholder.
func (c *Config) KeyPairSet() bool {
	return c.KeyPair != "" && c.KeyPair != PlaceholderKeyPair
}
