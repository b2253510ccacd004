package ports

import (
	"context"
	"fmt"
	"sort"

	"fulfillment/internal/pkg/errs"
)

// Credential categories understood by the store.
const (
	CategoryPayment  = "payment"
	CategoryDelivery = "delivery"
)

// AuthContext identifies the tenant a credential lookup is made for.
type AuthContext struct {
	CompanyID   int64
	AppCode     string
	Environment string
}

// CredentialQuery selects one integration's credentials.
type CredentialQuery struct {
	SubsidiaryCode  string
	CategoryCode    string
	IntegrationCode string
}

// Credentials are the environment-scoped secrets of one integration.
type Credentials struct {
	Environment string
	Values      map[string]string
}

// Get returns the value of key or an empty string.
func (c Credentials) Get(key string) string {
	return c.Values[key]
}

// Require fails with a ValueIsRequiredError naming the missing keys.
func (c Credentials) Require(keys ...string) error {
	var missing []string
	for _, k := range keys {
		if c.Values[k] == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return errs.NewValueIsRequiredErrorWithCause("credentials", fmt.Errorf("missing %v", missing))
}

// CredentialStore resolves integration secrets.
// Returns errs.ErrObjectNotFound when the integration is not configured.
type CredentialStore interface {
	GetCredentials(ctx context.Context, auth AuthContext, query CredentialQuery) (Credentials, error)
}
