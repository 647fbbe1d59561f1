package ec2

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"

	"github.com/someshbvrm/labsession/internal/provision"
)

// classify maps AWS API errors onto the provisioner error taxonomy so
// callers can distinguish credential and quota failures from generic apply
// failures. Error codes per the EC2 API reference.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %w", provision.ErrApply, err)
	}

	switch apiErr.ErrorCode() {
	case "AuthFailure", "UnauthorizedOperation", "InvalidClientTokenId",
		"SignatureDoesNotMatch", "MissingAuthenticationToken", "ExpiredToken":
		return fmt.Errorf("%w: %w", provision.ErrCredential, err)
	case "InstanceLimitExceeded", "VcpuLimitExceeded", "ResourceLimitExceeded",
		"SecurityGroupLimitExceeded", "AddressLimitExceeded":
		return fmt.Errorf("%w: %w", provision.ErrQuota, err)
	default:
		return fmt.Errorf("%w: %w", provision.ErrApply, err)
	}
}
