package carriers

import (
	"net/http"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

var _ ports.DeliveryClientFactory = (*Factory)(nil)

type Factory struct {
	clients map[delivery.CarrierCode]*Client
}

func NewFactory(httpClient *http.Client) *Factory {
	clients := make(map[delivery.CarrierCode]*Client)
	for code, profile := range Profiles() {
		clients[code] = NewClient(profile, httpClient)
	}
	return &Factory{clients: clients}
}

func (f *Factory) For(code delivery.CarrierCode) (ports.DeliveryClient, error) {
	c, ok := f.clients[code]
	if !ok {
		return nil, errs.NewObjectNotFoundError("carrier", code.String())
	}
	return c, nil
}
