// Package ec2 provisions the deployment target directly against the AWS API,
// without a terraform binary on the host. It creates a key pair, a security
// group and a single instance, tracking created resources on a LIFO stack.
package ec2

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/someshbvrm/labsession/internal/log"
	"github.com/someshbvrm/labsession/internal/provision"
)

var _ provision.Driver = (*Driver)(nil)

// Config carries the caller-supplied inputs of the EC2 driver.
type Config struct {
	// Name prefixes every created resource and tags them for teardown.
	Name string

	// Region is the AWS region to provision into.
	Region string

	// InstanceType is the EC2 instance class, e.g. "t3.micro".
	InstanceType string

	// AMI pins the machine image. When empty the latest Ubuntu 22.04 LTS
	// image is resolved at provision time.
	AMI string

	// PublicKey is the OpenSSH public key authorized for host login.
	PublicKey string

	// User is the login account fixed by the machine image.
	User string

	// KeyPath points at the matching private key for the deploy stage.
	KeyPath string

	// AppPort is the application port opened on the security group.
	AppPort int32

	// AllowOpenIngress opens the SSH and application ports to 0.0.0.0/0.
	// Without it, SSH ingress is restricted to the caller's public /32.
	AllowOpenIngress bool
}

type Driver struct {
	cfg    Config
	client *ec2.Client

	// stack tears down resources created during Provision, in reverse order.
	stack *provision.Stack
}

func New(ctx context.Context, cfg Config) (*Driver, error) {
	if cfg.Name == "" {
		cfg.Name = "labsession"
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if cfg.InstanceType == "" {
		cfg.InstanceType = "t3.micro"
	}
	if cfg.AppPort == 0 {
		cfg.AppPort = 8080
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("%w: loading AWS config: %w", provision.ErrCredential, err)
	}

	return &Driver{
		cfg:    cfg,
		client: ec2.NewFromConfig(awsCfg),
		stack:  provision.NewStack(),
	}, nil
}

// Provision implements provision.Driver.
func (d *Driver) Provision(ctx context.Context) (*provision.Host, error) {
	if d.cfg.PublicKey == "" {
		return nil, fmt.Errorf("a public key is required for host access")
	}
	ctx = log.With(ctx, "driver", "ec2", "region", d.cfg.Region)

	kp := &keyPair{
		client:    d.client,
		name:      d.cfg.Name + "-key",
		publicKey: d.cfg.PublicKey,
		tags:      managedTags(d.cfg.Name),
	}
	teardown, err := kp.create(ctx)
	if err != nil {
		return nil, classify(fmt.Errorf("creating key pair: %w", err))
	}
	_ = d.stack.Add(teardown)

	sg := &securityGroup{
		client:           d.client,
		name:             d.cfg.Name + "-sg",
		appPort:          d.cfg.AppPort,
		allowOpenIngress: d.cfg.AllowOpenIngress,
		tags:             managedTags(d.cfg.Name),
	}
	teardown, err = sg.create(ctx)
	if err != nil {
		return nil, classify(fmt.Errorf("creating security group: %w", err))
	}
	_ = d.stack.Add(teardown)

	ami, err := d.resolveAMI(ctx)
	if err != nil {
		return nil, classify(fmt.Errorf("resolving AMI: %w", err))
	}

	inst := &instance{
		client:          d.client,
		ami:             ami,
		instanceType:    types.InstanceType(d.cfg.InstanceType),
		keyName:         kp.name,
		securityGroupID: sg.id,
		tags:            managedTags(d.cfg.Name),
	}
	teardown, err = inst.create(ctx)
	if err != nil {
		return nil, classify(fmt.Errorf("launching instance: %w", err))
	}
	_ = d.stack.Add(teardown)

	if err := inst.wait(ctx); err != nil {
		return nil, classify(fmt.Errorf("waiting for instance: %w", err))
	}

	host := &provision.Host{
		PublicIP:  inst.publicIP,
		PublicDNS: inst.publicDNS,
		User:      d.cfg.User,
		KeyPath:   d.cfg.KeyPath,
	}
	if err := host.Validate(); err != nil {
		return nil, err
	}

	log.Info(ctx, "instance provisioned", "id", inst.id, "public_ip", host.PublicIP)
	return host, nil
}

// Teardown implements provision.Driver. Within a single process it unwinds
// the provision stack; when called out-of-band (fresh process, empty stack)
// it discovers resources by tag instead.
func (d *Driver) Teardown(ctx context.Context) error {
	ctx = log.With(ctx, "driver", "ec2", "region", d.cfg.Region)

	if d.stack.Empty() {
		return d.teardownByTag(ctx)
	}
	return d.stack.Teardown(ctx)
}
