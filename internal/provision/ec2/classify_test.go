package ec2

import (
	"fmt"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"

	"github.com/someshbvrm/labsession/internal/provision"
)

func apiError(code string) error {
	return &smithy.GenericAPIError{Code: code, Message: "test"}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"auth failure", apiError("AuthFailure"), provision.ErrCredential},
		{"unauthorized", apiError("UnauthorizedOperation"), provision.ErrCredential},
		{"bad token", apiError("InvalidClientTokenId"), provision.ErrCredential},
		{"instance limit", apiError("InstanceLimitExceeded"), provision.ErrQuota},
		{"vcpu limit", apiError("VcpuLimitExceeded"), provision.ErrQuota},
		{"other api error", apiError("InvalidParameterValue"), provision.ErrApply},
		{"non-api error", fmt.Errorf("dial tcp: timeout"), provision.ErrApply},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := classify(tc.err)
			if tc.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tc.want)
		})
	}
}

func TestClassifyWrapsAPIErrorInChain(t *testing.T) {
	wrapped := fmt.Errorf("creating security group: %w", apiError("SecurityGroupLimitExceeded"))
	assert.ErrorIs(t, classify(wrapped), provision.ErrQuota)
}
