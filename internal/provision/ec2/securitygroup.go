package ec2

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/someshbvrm/labsession/internal/log"
	"github.com/someshbvrm/labsession/internal/provision"
)

const (
	portSSH      = int32(22)
	sgDescriptor = "labsession application security group"
)

type securityGroup struct {
	client           *ec2.Client
	name             string
	appPort          int32
	allowOpenIngress bool
	tags             []types.Tag

	id string
}

func (sg *securityGroup) create(ctx context.Context) (teardownFunc, error) {
	result, err := sg.client.CreateSecurityGroup(ctx, &ec2.CreateSecurityGroupInput{
		GroupName:         aws.String(sg.name),
		Description:       aws.String(sgDescriptor),
		TagSpecifications: tagSpec(types.ResourceTypeSecurityGroup, sg.tags),
	})
	if err != nil {
		return nil, fmt.Errorf("creating security group: %w", err)
	}
	sg.id = aws.ToString(result.GroupId)
	log.Info(ctx, "created security group", "id", sg.id, "name", sg.name)

	ingressCIDR := provision.OpenIngress
	if !sg.allowOpenIngress {
		// Open ingress was not acknowledged; restrict both ports to the caller.
		cidr, err := provision.CallerCIDR(ctx)
		if err != nil {
			return nil, fmt.Errorf("getting local public IP: %w", err)
		}
		ingressCIDR = cidr
	}

	rules := []struct {
		port int32
		cidr string
		what string
	}{
		{portSSH, ingressCIDR, "SSH"},
		{sg.appPort, ingressCIDR, "application"},
	}

	for _, rule := range rules {
		_, err = sg.client.AuthorizeSecurityGroupIngress(ctx, &ec2.AuthorizeSecurityGroupIngressInput{
			GroupId:    aws.String(sg.id),
			IpProtocol: aws.String("tcp"),
			FromPort:   aws.Int32(rule.port),
			ToPort:     aws.Int32(rule.port),
			CidrIp:     aws.String(rule.cidr),
		})
		if err != nil {
			return nil, fmt.Errorf("authorizing %s ingress: %w", rule.what, err)
		}
		log.Info(ctx, "authorized ingress", "rule", rule.what, "port", rule.port, "cidr", rule.cidr)
	}

	teardown := func(ctx context.Context) error {
		log.Info(ctx, "deleting security group", "id", sg.id, "name", sg.name)
		_, err := sg.client.DeleteSecurityGroup(ctx, &ec2.DeleteSecurityGroupInput{
			GroupId: aws.String(sg.id),
		})
		if err != nil {
			return fmt.Errorf("deleting security group: %w", err)
		}
		return nil
	}

	return teardown, nil
}
