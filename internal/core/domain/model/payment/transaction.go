package payment

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrTransactionIsNotConstructed = errors.New("GatewayTransaction must be created via NewPaymentTransaction, NewRefundTransaction or Restore")

// AdditionalInformation is stored as an opaque JSON document next to the transaction.
type AdditionalInformation struct {
	Environment   string            `json:"environment,omitempty"`
	CredentialRef string            `json:"credentialRef,omitempty"`
	CheckoutURL   string            `json:"checkoutUrl,omitempty"`
	Extra         map[string]string `json:"extra,omitempty"`
}

// GatewayTransaction is one payment or refund attempt against a gateway.
type GatewayTransaction struct {
	id              kernel.UUID
	code            string
	gatewayCode     GatewayCode
	companyID       int64
	orderID         int64
	relatedOrderIDs []int64
	typeTransaction TransactionType
	status          TransactionStatus
	state           State
	amount          kernel.Money
	referenceID     string
	tokenGateway    string
	dateTransaction time.Time
	dateExpiration  time.Time
	datePayment     *time.Time
	authorization   json.RawMessage
	additional      AdditionalInformation
	errorCode       string
	transactionID   *kernel.UUID
	notifiedAt      *time.Time
	guard           guard.ConstructorGuard
}

// CheckoutParams collects what a checkout produced before it is recorded.
type CheckoutParams struct {
	OrderID         int64
	CompanyID       int64
	RelatedOrderIDs []int64
	Gateway         GatewayCode
	Amount          kernel.Money
	ReferenceID     string
	TokenGateway    string
	Now             time.Time
	ExpiresAt       time.Time
	Additional      AdditionalInformation
	Authorization   json.RawMessage
}

// NewPaymentTransaction records a PENDING, OPEN payment attempt.
func NewPaymentTransaction(p CheckoutParams) (*GatewayTransaction, error) {
	scope := kernel.Scope{OrderID: p.OrderID, CompanyID: p.CompanyID}
	if err := errors.Join(scope.Validate(), p.Gateway.Validate(), p.Amount.Validate()); err != nil {
		return nil, err
	}
	if p.Now.IsZero() {
		return nil, errs.NewValueIsRequiredError("dateTransaction")
	}
	if !p.ExpiresAt.After(p.Now) {
		return nil, errs.NewValueIsInvalidErrorWithCause("dateExpiration", fmt.Errorf("must be after %s", p.Now.Format(time.RFC3339)))
	}

	return &GatewayTransaction{
		id:              kernel.NewUUID(),
		code:            IdempotencyCode(p.OrderID, p.CompanyID, p.Gateway),
		gatewayCode:     p.Gateway,
		companyID:       p.CompanyID,
		orderID:         p.OrderID,
		relatedOrderIDs: slices.Clone(p.RelatedOrderIDs),
		typeTransaction: TypePayment,
		status:          StatusOpen,
		state:           StatePending,
		amount:          p.Amount,
		referenceID:     p.ReferenceID,
		tokenGateway:    p.TokenGateway,
		dateTransaction: p.Now,
		dateExpiration:  p.ExpiresAt,
		authorization:   p.Authorization,
		additional:      p.Additional,
		guard:           guard.NewConstructorGuard(),
	}, nil
}

// NewRefundTransaction records an executed refund of an approved payment.
func NewRefundTransaction(original *GatewayTransaction, referenceID string, raw json.RawMessage, now time.Time) (*GatewayTransaction, error) {
	if err := original.Validate(); err != nil {
		return nil, err
	}
	if original.typeTransaction != TypePayment {
		return nil, errs.NewValueIsInvalidErrorWithCause("transaction", fmt.Errorf("refunds reference payments only"))
	}

	originalID := original.id
	paidAt := now
	return &GatewayTransaction{
		id:              kernel.NewUUID(),
		code:            original.code,
		gatewayCode:     original.gatewayCode,
		companyID:       original.companyID,
		orderID:         original.orderID,
		relatedOrderIDs: slices.Clone(original.relatedOrderIDs),
		typeTransaction: TypeRefund,
		status:          StatusClosed,
		state:           StateApproved,
		amount:          original.amount,
		referenceID:     referenceID,
		dateTransaction: now,
		dateExpiration:  now,
		datePayment:     &paidAt,
		authorization:   raw,
		additional:      original.additional,
		transactionID:   &originalID,
		guard:           guard.NewConstructorGuard(),
	}, nil
}

// Snapshot is the flat persisted form of a transaction.
type Snapshot struct {
	ID              kernel.UUID
	Code            string
	GatewayCode     GatewayCode
	CompanyID       int64
	OrderID         int64
	RelatedOrderIDs []int64
	TypeTransaction TransactionType
	Status          TransactionStatus
	State           State
	Amount          kernel.Money
	ReferenceID     string
	TokenGateway    string
	DateTransaction time.Time
	DateExpiration  time.Time
	DatePayment     *time.Time
	Authorization   json.RawMessage
	Additional      AdditionalInformation
	ErrorCode       string
	TransactionID   *kernel.UUID
	NotifiedAt      *time.Time
}

// Restore rebuilds a transaction read from the ledger.
func Restore(s Snapshot) (*GatewayTransaction, error) {
	if err := errors.Join(
		s.ID.Validate(),
		s.GatewayCode.Validate(),
		s.TypeTransaction.Validate(),
		s.Status.Validate(),
		s.State.Validate(),
		s.Amount.Validate(),
	); err != nil {
		return nil, err
	}

	return &GatewayTransaction{
		id:              s.ID,
		code:            s.Code,
		gatewayCode:     s.GatewayCode,
		companyID:       s.CompanyID,
		orderID:         s.OrderID,
		relatedOrderIDs: slices.Clone(s.RelatedOrderIDs),
		typeTransaction: s.TypeTransaction,
		status:          s.Status,
		state:           s.State,
		amount:          s.Amount,
		referenceID:     s.ReferenceID,
		tokenGateway:    s.TokenGateway,
		dateTransaction: s.DateTransaction,
		dateExpiration:  s.DateExpiration,
		datePayment:     s.DatePayment,
		authorization:   s.Authorization,
		additional:      s.Additional,
		errorCode:       s.ErrorCode,
		transactionID:   s.TransactionID,
		notifiedAt:      s.NotifiedAt,
		guard:           guard.NewConstructorGuard(),
	}, nil
}

func (t *GatewayTransaction) Snapshot() Snapshot {
	return Snapshot{
		ID:              t.id,
		Code:            t.code,
		GatewayCode:     t.gatewayCode,
		CompanyID:       t.companyID,
		OrderID:         t.orderID,
		RelatedOrderIDs: slices.Clone(t.relatedOrderIDs),
		TypeTransaction: t.typeTransaction,
		Status:          t.status,
		State:           t.state,
		Amount:          t.amount,
		ReferenceID:     t.referenceID,
		TokenGateway:    t.tokenGateway,
		DateTransaction: t.dateTransaction,
		DateExpiration:  t.dateExpiration,
		DatePayment:     t.datePayment,
		Authorization:   t.authorization,
		Additional:      t.additional,
		ErrorCode:       t.errorCode,
		TransactionID:   t.transactionID,
		NotifiedAt:      t.notifiedAt,
	}
}

func (t *GatewayTransaction) Validate() error {
	if t == nil {
		return ErrTransactionIsNotConstructed
	}
	return t.guard.Validate(ErrTransactionIsNotConstructed)
}

func (t *GatewayTransaction) ID() kernel.UUID                   { return t.id }
func (t *GatewayTransaction) Code() string                      { return t.code }
func (t *GatewayTransaction) GatewayCode() GatewayCode          { return t.gatewayCode }
func (t *GatewayTransaction) CompanyID() int64                  { return t.companyID }
func (t *GatewayTransaction) OrderID() int64                    { return t.orderID }
func (t *GatewayTransaction) Type() TransactionType             { return t.typeTransaction }
func (t *GatewayTransaction) Status() TransactionStatus         { return t.status }
func (t *GatewayTransaction) State() State                      { return t.state }
func (t *GatewayTransaction) Amount() kernel.Money              { return t.amount }
func (t *GatewayTransaction) ReferenceID() string               { return t.referenceID }
func (t *GatewayTransaction) TokenGateway() string              { return t.tokenGateway }
func (t *GatewayTransaction) DateTransaction() time.Time        { return t.dateTransaction }
func (t *GatewayTransaction) DateExpiration() time.Time         { return t.dateExpiration }
func (t *GatewayTransaction) DatePayment() *time.Time           { return t.datePayment }
func (t *GatewayTransaction) Authorization() json.RawMessage    { return t.authorization }
func (t *GatewayTransaction) Additional() AdditionalInformation { return t.additional }
func (t *GatewayTransaction) ErrorCode() string                 { return t.errorCode }
func (t *GatewayTransaction) OriginalID() *kernel.UUID          { return t.transactionID }
func (t *GatewayTransaction) NotifiedAt() *time.Time            { return t.notifiedAt }

// OrderIDs returns the primary order followed by every other order paid by
// the same transaction, without duplicates.
func (t *GatewayTransaction) OrderIDs() []int64 {
	ids := []int64{t.orderID}
	for _, id := range t.relatedOrderIDs {
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	return ids
}

func (t *GatewayTransaction) IsTerminal() bool {
	return t.state.IsTerminal()
}

// IsReconcilable reports whether a poll may still settle the transaction at now.
func (t *GatewayTransaction) IsReconcilable(now time.Time) bool {
	return t.typeTransaction == TypePayment &&
		slices.Contains(Settleable(), t.state) &&
		!now.Before(t.dateTransaction) &&
		!now.After(t.dateExpiration)
}

// IsAbandoned reports an unsettled payment whose checkout expired without a result.
func (t *GatewayTransaction) IsAbandoned(now time.Time) bool {
	return t.typeTransaction == TypePayment && slices.Contains(Settleable(), t.state) && now.After(t.dateExpiration)
}

// ApplyClassification moves a non-terminal transaction to the classified state.
func (t *GatewayTransaction) ApplyClassification(c Classification, now time.Time) error {
	if t.IsTerminal() {
		return errs.NewActionInvalidError("settle", t.state.String())
	}
	if err := c.State.Validate(); err != nil {
		return err
	}

	t.state = c.State
	if c.ReferenceID != "" {
		t.referenceID = c.ReferenceID
	}
	if len(c.RawResponse) > 0 {
		t.authorization = c.RawResponse
	}
	t.errorCode = c.GatewayErrorCode
	if c.State == StateApproved {
		paidAt := c.PaidAt
		if paidAt.IsZero() {
			paidAt = now
		}
		t.datePayment = &paidAt
	}
	if c.IsFinal() {
		t.status = StatusClosed
	}
	return nil
}

// RefundDeadline is the last instant the gateway accepts a refund.
func (t *GatewayTransaction) RefundDeadline() time.Time {
	if t.datePayment == nil {
		return time.Time{}
	}
	return t.datePayment.Add(t.gatewayCode.RefundWindow())
}

// Cancel marks an approved payment as refunded.
func (t *GatewayTransaction) Cancel() error {
	if t.state == StateCanceled {
		return errs.NewAlreadyCanceledError(t.id.String())
	}
	if t.state != StateApproved {
		return errs.NewActionInvalidError("cancel", t.state.String())
	}
	t.state = StateCanceled
	t.status = StatusClosed
	return nil
}

// MarkNotified records the approval fan-out.
func (t *GatewayTransaction) MarkNotified(at time.Time) {
	t.notifiedAt = &at
}
