package main

import (
	"context"
	"fmt"
	"time"

	"github.com/someshbvrm/labsession/internal/artifact"
	"github.com/someshbvrm/labsession/internal/build"
	"github.com/someshbvrm/labsession/internal/config"
	"github.com/someshbvrm/labsession/internal/deploy"
	"github.com/someshbvrm/labsession/internal/provision"
	"github.com/someshbvrm/labsession/internal/provision/ec2"
	"github.com/someshbvrm/labsession/internal/provision/terraform"
)

func newStore(cfg *config.Config, secrets *config.Secrets) (artifact.Store, error) {
	switch cfg.Artifact.Store {
	case "s3":
		accessKey := secrets.S3AccessKey
		if accessKey == "" {
			accessKey = secrets.AWSAccessKeyID
		}
		secretKey := secrets.S3SecretKey
		if secretKey == "" {
			secretKey = secrets.AWSSecretAccessKey
		}
		return artifact.NewS3Store(artifact.S3Config{
			Endpoint:  cfg.Artifact.S3.Endpoint,
			Region:    secrets.AWSRegion,
			AccessKey: accessKey,
			SecretKey: secretKey,
			Bucket:    cfg.Artifact.S3.Bucket,
			UseSSL:    cfg.Artifact.S3.UseSSL,
		})
	default:
		return artifact.NewLocalStore(cfg.Artifact.Dir)
	}
}

func newBuilder(cfg *config.Config) *build.Builder {
	return &build.Builder{
		RepoURL:      cfg.RepoURL,
		ArtifactName: cfg.Artifact.Name,
		Selector:     cfg.Artifact.Selector,
	}
}

// requireHostKeys checks the key material needed to provision and later log
// into a host. Teardown does not need it.
func requireHostKeys(secrets *config.Secrets) error {
	if secrets.HostPublicKey == "" {
		return fmt.Errorf("HOST_PUBLIC_KEY is not set; provisioning needs a public key to authorize")
	}
	if secrets.HostPrivateKeyPath == "" {
		return fmt.Errorf("HOST_PRIVATE_KEY_PATH is not set; the deploy stage needs the matching private key")
	}
	return nil
}

func newDriver(ctx context.Context, cfg *config.Config, secrets *config.Secrets) (provision.Driver, error) {
	switch cfg.Provision.Driver {
	case "ec2":
		return ec2.New(ctx, ec2.Config{
			Name:             cfg.Provision.Name,
			Region:           secrets.AWSRegion,
			InstanceType:     cfg.Provision.InstanceType,
			AMI:              cfg.Provision.AMI,
			PublicKey:        secrets.HostPublicKey,
			User:             cfg.Provision.SSHUser,
			KeyPath:          secrets.HostPrivateKeyPath,
			AppPort:          int32(cfg.Provision.AppPort),
			AllowOpenIngress: cfg.Provision.AllowOpenIngress,
		})
	default:
		vars := terraform.Vars{
			Name:         cfg.Provision.Name,
			Region:       secrets.AWSRegion,
			InstanceType: cfg.Provision.InstanceType,
			SSHPublicKey: secrets.HostPublicKey,
			AppPort:      cfg.Provision.AppPort,
		}
		if cfg.Provision.AllowOpenIngress {
			vars.SSHIngressCIDR = provision.OpenIngress
			vars.AppIngressCIDR = provision.OpenIngress
		}
		return terraform.New(vars,
			terraform.WithWorkspace(cfg.Provision.Workspace),
			terraform.WithLogin(cfg.Provision.SSHUser, secrets.HostPrivateKeyPath),
		)
	}
}

func newDeployer(cfg *config.Config) *deploy.Deployer {
	return &deploy.Deployer{
		PlaybookPath:   cfg.Deploy.Playbook,
		AppPort:        cfg.Provision.AppPort,
		ConnectTimeout: 2 * time.Minute,
	}
}
