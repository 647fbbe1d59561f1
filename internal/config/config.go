// Package config loads pipeline parameters from a YAML file and secrets
// from the environment. Secrets are supplied by the invoking environment and
// are never generated or persisted here.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Secrets are the five opaque credential values crossing the secrets
// boundary, plus the S3 store credentials when that backend is enabled.
type Secrets struct {
	AWSAccessKeyID     string `envconfig:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `envconfig:"AWS_SECRET_ACCESS_KEY"`
	AWSRegion          string `envconfig:"AWS_DEFAULT_REGION" default:"us-east-1"`
	HostPublicKey      string `envconfig:"HOST_PUBLIC_KEY"`
	HostPrivateKeyPath string `envconfig:"HOST_PRIVATE_KEY_PATH"`

	S3AccessKey string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey string `envconfig:"S3_SECRET_KEY"`
}

// LoadSecrets reads an optional .env file, then resolves secrets from the
// process environment.
func LoadSecrets(envFile string) (*Secrets, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("loading env file %q: %w", envFile, err)
		}
	}

	var s Secrets
	if err := envconfig.Process("", &s); err != nil {
		return nil, fmt.Errorf("reading secrets from environment: %w", err)
	}
	return &s, nil
}

type ArtifactConfig struct {
	// Name is the published artifact slot.
	Name string `yaml:"name"`

	// Selector narrows jar selection when a build emits several.
	Selector string `yaml:"selector"`

	// Store selects the backend: "local" or "s3".
	Store string `yaml:"store"`

	// Dir is the local store root.
	Dir string `yaml:"dir"`

	S3 S3Config `yaml:"s3"`
}

type S3Config struct {
	Endpoint string `yaml:"endpoint"`
	Bucket   string `yaml:"bucket"`
	UseSSL   bool   `yaml:"use_ssl"`
}

type ProvisionConfig struct {
	// Driver selects the provisioner: "terraform" or "ec2".
	Driver string `yaml:"driver"`

	// Name prefixes created cloud resources.
	Name string `yaml:"name"`

	InstanceType string `yaml:"instance_type"`
	AMI          string `yaml:"ami"`
	AppPort      int    `yaml:"app_port"`

	// AllowOpenIngress acknowledges 0.0.0.0/0 ingress on the administrative
	// and application ports. Off by default: without it, ingress is pinned
	// to the caller's public address.
	AllowOpenIngress bool `yaml:"allow_open_ingress"`

	// Workspace is the persistent terraform workdir.
	Workspace string `yaml:"workspace"`

	// SSHUser is the login account fixed by the machine image.
	SSHUser string `yaml:"ssh_user"`
}

type DeployConfig struct {
	Playbook string `yaml:"playbook"`
}

// Config is the caller-editable pipeline description.
type Config struct {
	RepoURL   string          `yaml:"repo_url"`
	Artifact  ArtifactConfig  `yaml:"artifact"`
	Provision ProvisionConfig `yaml:"provision"`
	Deploy    DeployConfig    `yaml:"deploy"`
	LogsDir   string          `yaml:"logs_dir"`
}

// Default returns the documented defaults; a missing config file yields
// exactly this configuration.
func Default() *Config {
	return &Config{
		Artifact: ArtifactConfig{
			Name:  "app-jar",
			Store: "local",
			Dir:   ".labsession/artifacts",
		},
		Provision: ProvisionConfig{
			Driver:       "terraform",
			Name:         "labsession",
			InstanceType: "t3.micro",
			AppPort:      8080,
			Workspace:    ".labsession/terraform",
			SSHUser:      "ubuntu",
		},
		Deploy: DeployConfig{
			Playbook: "deploy/playbook.yml",
		},
	}
}

// Load reads the YAML config at 'path' over the defaults. A missing file is
// not an error; the defaults apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %q: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Artifact.Store {
	case "local", "s3":
	default:
		return fmt.Errorf("unknown artifact store %q (want \"local\" or \"s3\")", c.Artifact.Store)
	}

	switch c.Provision.Driver {
	case "terraform", "ec2":
	default:
		return fmt.Errorf("unknown provision driver %q (want \"terraform\" or \"ec2\")", c.Provision.Driver)
	}

	if c.Provision.AppPort <= 0 || c.Provision.AppPort > 65535 {
		return fmt.Errorf("app_port %d out of range", c.Provision.AppPort)
	}
	return nil
}
