package command

import (
	"context"

	featuregate "github.com/goliatone/go-featuregate/gate"
)

// FeatureResetRequests switches self-service reset intake on or off.
const FeatureResetRequests = "credentials.password_reset_request"

func featureEnabled(ctx context.Context, gate featuregate.FeatureGate, key string) (bool, error) {
	if gate == nil {
		return true, nil
	}
	return gate.Enabled(ctx, key, featuregate.WithScopeSet(featuregate.ScopeSet{System: true}))
}
