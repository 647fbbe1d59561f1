package ec2

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/someshbvrm/labsession/internal/log"
)

// teardownByTag discovers and destroys resources created by a previous run
// of this tool, identified by the ManagedBy tag and the configured name.
func (d *Driver) teardownByTag(ctx context.Context) error {
	log.Info(ctx, "discovering managed resources by tag", "name", d.cfg.Name)

	var errs error

	if err := d.terminateTaggedInstances(ctx); err != nil {
		errs = errors.Join(errs, err)
	}

	// Security group and key pair go by their fixed names. Both may already
	// be gone; their absence is not an error during teardown.
	if err := d.deleteSecurityGroupByName(ctx, d.cfg.Name+"-sg"); err != nil {
		errs = errors.Join(errs, err)
	}

	log.Info(ctx, "deleting key pair", "name", d.cfg.Name+"-key")
	if _, err := d.client.DeleteKeyPair(ctx, &ec2.DeleteKeyPairInput{
		KeyName: aws.String(d.cfg.Name + "-key"),
	}); err != nil {
		errs = errors.Join(errs, fmt.Errorf("deleting key pair: %w", err))
	}

	return errs
}

func (d *Driver) terminateTaggedInstances(ctx context.Context) error {
	result, err := d.client.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		Filters: []types.Filter{
			{Name: aws.String("tag:" + managedByKey), Values: []string{managedByValue}},
			{Name: aws.String("tag:Name"), Values: []string{d.cfg.Name}},
			{Name: aws.String("instance-state-name"), Values: []string{"pending", "running", "stopping", "stopped"}},
		},
	})
	if err != nil {
		return fmt.Errorf("describing managed instances: %w", err)
	}

	var ids []string
	for _, reservation := range result.Reservations {
		for _, inst := range reservation.Instances {
			ids = append(ids, aws.ToString(inst.InstanceId))
		}
	}
	if len(ids) == 0 {
		log.Info(ctx, "no managed instances found")
		return nil
	}

	log.Info(ctx, "terminating managed instances", "ids", ids)
	if _, err := d.client.TerminateInstances(ctx, &ec2.TerminateInstancesInput{
		InstanceIds: ids,
	}); err != nil {
		return fmt.Errorf("terminating instances: %w", err)
	}

	waiter := ec2.NewInstanceTerminatedWaiter(d.client)
	if err := waiter.Wait(ctx, &ec2.DescribeInstancesInput{
		InstanceIds: ids,
	}, time.Hour); err != nil {
		return fmt.Errorf("waiting for instance termination: %w", err)
	}
	return nil
}

func (d *Driver) deleteSecurityGroupByName(ctx context.Context, name string) error {
	result, err := d.client.DescribeSecurityGroups(ctx, &ec2.DescribeSecurityGroupsInput{
		Filters: []types.Filter{
			{Name: aws.String("group-name"), Values: []string{name}},
		},
	})
	if err != nil {
		return fmt.Errorf("describing security group: %w", err)
	}
	if len(result.SecurityGroups) == 0 {
		return nil
	}

	id := aws.ToString(result.SecurityGroups[0].GroupId)
	log.Info(ctx, "deleting security group", "id", id, "name", name)
	if _, err := d.client.DeleteSecurityGroup(ctx, &ec2.DeleteSecurityGroupInput{
		GroupId: aws.String(id),
	}); err != nil {
		return fmt.Errorf("deleting security group: %w", err)
	}
	return nil
}
