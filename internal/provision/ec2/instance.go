package ec2

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/someshbvrm/labsession/internal/log"
)

type instance struct {
	client          *ec2.Client
	ami             string
	instanceType    types.InstanceType
	keyName         string
	securityGroupID string
	tags            []types.Tag

	id        string
	publicIP  string
	publicDNS string
}

func (i *instance) create(ctx context.Context) (teardownFunc, error) {
	result, err := i.client.RunInstances(ctx, &ec2.RunInstancesInput{
		ImageId:      aws.String(i.ami),
		InstanceType: i.instanceType,
		MinCount:     aws.Int32(1),
		MaxCount:     aws.Int32(1),
		KeyName:      aws.String(i.keyName),
		NetworkInterfaces: []types.InstanceNetworkInterfaceSpecification{{
			DeviceIndex:              aws.Int32(0),
			AssociatePublicIpAddress: aws.Bool(true),
			Groups:                   []string{i.securityGroupID},
		}},
		TagSpecifications: tagSpec(types.ResourceTypeInstance, i.tags),
	})
	if err != nil {
		return nil, fmt.Errorf("launching instance: %w", err)
	}

	if len(result.Instances) != 1 || result.Instances[0].InstanceId == nil {
		return nil, fmt.Errorf("no instance returned from launch")
	}
	i.id = aws.ToString(result.Instances[0].InstanceId)
	log.Info(ctx, "launched instance", "id", i.id)

	teardown := func(ctx context.Context) error {
		log.Info(ctx, "terminating instance", "id", i.id)
		_, err := i.client.TerminateInstances(ctx, &ec2.TerminateInstancesInput{
			InstanceIds: []string{i.id},
		})
		if err != nil {
			return fmt.Errorf("terminating instance: %w", err)
		}

		// Wait for full termination so the security group delete succeeds.
		waiter := ec2.NewInstanceTerminatedWaiter(i.client)
		if err := waiter.Wait(ctx, &ec2.DescribeInstancesInput{
			InstanceIds: []string{i.id},
		}, time.Hour); err != nil {
			log.Warn(ctx, "error waiting for instance termination, continuing", "id", i.id, "error", err)
		}
		return nil
	}

	return teardown, nil
}

// wait blocks until the instance is running with a public address and its
// SSH port accepts TCP connections.
func (i *instance) wait(ctx context.Context) error {
	log.Info(ctx, "waiting for instance to enter running state", "id", i.id)
	runningWaiter := ec2.NewInstanceRunningWaiter(i.client)
	runningOutput, err := runningWaiter.WaitForOutput(ctx, &ec2.DescribeInstancesInput{
		InstanceIds: []string{i.id},
	}, time.Hour)
	if err != nil {
		return fmt.Errorf("waiting for running state: %w", err)
	}

	if len(runningOutput.Reservations) == 0 || len(runningOutput.Reservations[0].Instances) == 0 {
		return fmt.Errorf("instance not found in waiter output")
	}
	inst := runningOutput.Reservations[0].Instances[0]
	if inst.PublicIpAddress == nil {
		return fmt.Errorf("instance has no public IP")
	}
	i.publicIP = aws.ToString(inst.PublicIpAddress)
	i.publicDNS = aws.ToString(inst.PublicDnsName)

	log.Info(ctx, "waiting for SSH to become available", "ip", i.publicIP)
	if err := waitTCP(ctx, i.publicIP, uint16(portSSH)); err != nil {
		return fmt.Errorf("waiting for SSH: %w", err)
	}

	return nil
}

func waitTCP(ctx context.Context, host string, port uint16) error {
	target := net.JoinHostPort(host, strconv.Itoa(int(port)))
	dialer := &net.Dialer{Timeout: 3 * time.Second}

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			conn, err := dialer.DialContext(ctx, "tcp", target)
			if err != nil {
				log.Debug(ctx, "TCP port not ready", "target", target)
				continue
			}
			_ = conn.Close()
			log.Debug(ctx, "TCP port ready", "target", target)
			return nil
		}
	}
}
