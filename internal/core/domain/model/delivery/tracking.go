package delivery

// Tracking is what a carrier returns when a shipment is registered. It is
// stored on the order as its tracking information.
type Tracking struct {
	Carrier CarrierCode `json:"carrier"`
	Code    string      `json:"code"`
	URL     string      `json:"url,omitempty"`
}
