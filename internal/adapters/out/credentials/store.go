// Package credentials serves integration secrets from a configuration file.
//
// The file groups secrets by category, integration and environment. Company
// and app sections override the shared ones:
//
//	payment:
//	  mercadopago:
//	    sandbox:
//	      api_key: TEST-123
//	companies:
//	  "7":
//	    payment:
//	      mercadopago:
//	        production:
//	          api_key: APP-456
//	apps:
//	  shop:
//	    delivery:
//	      olva:
//	        sandbox:
//	          api_key: OLV-1
package credentials

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"github.com/spf13/viper"
)

var _ ports.CredentialStore = (*ViperStore)(nil)

// ViperStore resolves credentials from a viper tree. Lookups read the tree
// on every call, so a watched config file takes effect without a restart.
type ViperStore struct {
	v                  *viper.Viper
	defaultEnvironment string
}

func NewViperStore(v *viper.Viper, defaultEnvironment string) (*ViperStore, error) {
	if v == nil {
		return nil, errs.NewValueIsRequiredError("viper")
	}
	if defaultEnvironment == "" {
		defaultEnvironment = "sandbox"
	}
	return &ViperStore{v: v, defaultEnvironment: defaultEnvironment}, nil
}

// LoadFile reads a yaml or json credentials file. An empty path yields an
// empty tree.
func LoadFile(path string) (*viper.Viper, error) {
	v := viper.New()
	if path == "" {
		return v, nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}
	return v, nil
}

func (s *ViperStore) GetCredentials(_ context.Context, auth ports.AuthContext, query ports.CredentialQuery) (ports.Credentials, error) {
	if query.CategoryCode == "" || query.IntegrationCode == "" {
		return ports.Credentials{}, errors.Join(
			requireValue("categoryCode", query.CategoryCode),
			requireValue("integrationCode", query.IntegrationCode),
		)
	}

	env := auth.Environment
	if env == "" {
		env = s.defaultEnvironment
	}
	app := query.SubsidiaryCode
	if app == "" {
		app = auth.AppCode
	}

	for _, key := range s.candidates(auth.CompanyID, app, query, env) {
		if !s.v.IsSet(key) {
			continue
		}
		values := s.v.GetStringMapString(key)
		if len(values) == 0 {
			continue
		}
		return ports.Credentials{Environment: env, Values: values}, nil
	}

	return ports.Credentials{}, errs.NewObjectNotFoundError("credentials",
		strings.Join([]string{query.CategoryCode, query.IntegrationCode, env}, "."))
}

// candidates lists keys from the most to the least specific.
func (s *ViperStore) candidates(companyID int64, app string, query ports.CredentialQuery, env string) []string {
	tail := strings.Join([]string{query.CategoryCode, query.IntegrationCode, env}, ".")

	keys := make([]string, 0, 3)
	if companyID > 0 {
		keys = append(keys, "companies."+strconv.FormatInt(companyID, 10)+"."+tail)
	}
	if app != "" {
		keys = append(keys, "apps."+strings.ToLower(app)+"."+tail)
	}
	return append(keys, tail)
}

func requireValue(name, value string) error {
	if value == "" {
		return errs.NewValueIsRequiredError(name)
	}
	return nil
}
