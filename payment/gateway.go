package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// OfflineGateway is a Gateway that issues locally generated client secrets
// without contacting a processor. It serves development and test setups where
// no processor credentials exist.
type OfflineGateway struct{}

var _ Gateway = OfflineGateway{}

// CreateIntent implements Gateway.
func (OfflineGateway) CreateIntent(ctx context.Context, req ChargeRequest) (string, error) {
	return fmt.Sprintf("pi_offline_%s_secret_%s", uuid.NewString(), uuid.NewString()), nil
}
