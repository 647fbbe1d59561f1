package ec2

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/someshbvrm/labsession/internal/log"
)

// teardownFunc destroys one created resource.
type teardownFunc = func(ctx context.Context) error

// keyPair imports the caller-supplied public key. The matching private key
// stays with the caller; this tool never generates or stores key material.
type keyPair struct {
	client    *ec2.Client
	name      string
	publicKey string
	tags      []types.Tag
}

func (k *keyPair) create(ctx context.Context) (teardownFunc, error) {
	result, err := k.client.ImportKeyPair(ctx, &ec2.ImportKeyPairInput{
		KeyName:           aws.String(k.name),
		PublicKeyMaterial: []byte(k.publicKey),
		TagSpecifications: tagSpec(types.ResourceTypeKeyPair, k.tags),
	})
	if err != nil {
		return nil, fmt.Errorf("importing key pair: %w", err)
	}

	log.Info(ctx, "imported key pair", "id", aws.ToString(result.KeyPairId), "name", k.name)

	teardown := func(ctx context.Context) error {
		log.Info(ctx, "deleting key pair", "name", k.name)
		_, err := k.client.DeleteKeyPair(ctx, &ec2.DeleteKeyPairInput{
			KeyName: aws.String(k.name),
		})
		if err != nil {
			return fmt.Errorf("deleting key pair: %w", err)
		}
		return nil
	}

	return teardown, nil
}
