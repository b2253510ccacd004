// Package transactionrepo persists the gateway transaction ledger.
package transactionrepo

import (
	"encoding/json"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/payment"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// TransactionDTO is one gateway_transactions row. Payments and refunds share
// the table; a refund points at its payment through TransactionID.
type TransactionDTO struct {
	ID                           uuid.UUID                                         `gorm:"type:uuid;primaryKey"`
	Code                         string                                            `gorm:"type:varchar(64);not null;index"`
	GatewayCode                  string                                            `gorm:"type:varchar(32);not null;index:idx_tx_sweep,priority:1"`
	CompanyID                    int64                                             `gorm:"not null;index"`
	OrderID                      int64                                             `gorm:"not null;index"`
	RelatedOrderIDs              datatypes.JSONType[[]int64]                       `gorm:"type:jsonb;not null"`
	TypeTransaction              int                                               `gorm:"not null;index:idx_tx_sweep,priority:2"`
	Status                       int                                               `gorm:"not null"`
	PaymentState                 int                                               `gorm:"not null;index:idx_tx_sweep,priority:3"`
	Amount                       decimal.Decimal                                   `gorm:"type:numeric(12,2);not null"`
	Currency                     string                                            `gorm:"type:char(3);not null"`
	ReferenceID                  string                                            `gorm:"type:varchar(128)"`
	TokenGateway                 string                                            `gorm:"type:varchar(255)"`
	DateTransaction              time.Time                                         `gorm:"not null"`
	DateExpiration               time.Time                                         `gorm:"not null"`
	DatePayment                  *time.Time
	GatewayAuthorizationResponse datatypes.JSON                                    `gorm:"type:jsonb;not null"`
	AdditionalInformation        datatypes.JSONType[payment.AdditionalInformation] `gorm:"type:jsonb;not null"`
	GatewayErrorCode             string                                            `gorm:"type:varchar(64)"`
	TransactionID                *uuid.UUID                                        `gorm:"type:uuid;index"`
	NotifiedAt                   *time.Time
	CreatedAt                    time.Time
	UpdatedAt                    time.Time
}

func (TransactionDTO) TableName() string {
	return "gateway_transactions"
}

func fromDomain(tx *payment.GatewayTransaction) TransactionDTO {
	s := tx.Snapshot()

	var original *uuid.UUID
	if s.TransactionID != nil {
		raw := s.TransactionID.Raw()
		original = &raw
	}

	authorization := datatypes.JSON("null")
	if len(s.Authorization) > 0 {
		authorization = datatypes.JSON(s.Authorization)
	}

	return TransactionDTO{
		ID:                           s.ID.Raw(),
		Code:                         s.Code,
		GatewayCode:                  string(s.GatewayCode),
		CompanyID:                    s.CompanyID,
		OrderID:                      s.OrderID,
		RelatedOrderIDs:              datatypes.NewJSONType(s.RelatedOrderIDs),
		TypeTransaction:              int(s.TypeTransaction),
		Status:                       int(s.Status),
		PaymentState:                 int(s.State),
		Amount:                       s.Amount.Amount(),
		Currency:                     s.Amount.Currency(),
		ReferenceID:                  s.ReferenceID,
		TokenGateway:                 s.TokenGateway,
		DateTransaction:              s.DateTransaction,
		DateExpiration:               s.DateExpiration,
		DatePayment:                  s.DatePayment,
		GatewayAuthorizationResponse: authorization,
		AdditionalInformation:        datatypes.NewJSONType(s.Additional),
		GatewayErrorCode:             s.ErrorCode,
		TransactionID:                original,
		NotifiedAt:                   s.NotifiedAt,
	}
}

func toDomain(dto TransactionDTO) (*payment.GatewayTransaction, error) {
	id, err := kernel.UUIDFromRaw(dto.ID)
	if err != nil {
		return nil, err
	}
	amount, err := kernel.NewMoney(dto.Amount, dto.Currency)
	if err != nil {
		return nil, err
	}

	var original *kernel.UUID
	if dto.TransactionID != nil {
		o, oErr := kernel.UUIDFromRaw(*dto.TransactionID)
		if oErr != nil {
			return nil, oErr
		}
		original = &o
	}

	var authorization json.RawMessage
	if len(dto.GatewayAuthorizationResponse) > 0 && string(dto.GatewayAuthorizationResponse) != "null" {
		authorization = json.RawMessage(dto.GatewayAuthorizationResponse)
	}

	return payment.Restore(payment.Snapshot{
		ID:              id,
		Code:            dto.Code,
		GatewayCode:     payment.GatewayCode(dto.GatewayCode),
		CompanyID:       dto.CompanyID,
		OrderID:         dto.OrderID,
		RelatedOrderIDs: dto.RelatedOrderIDs.Data(),
		TypeTransaction: payment.TransactionType(dto.TypeTransaction),
		Status:          payment.TransactionStatus(dto.Status),
		State:           payment.State(dto.PaymentState),
		Amount:          amount,
		ReferenceID:     dto.ReferenceID,
		TokenGateway:    dto.TokenGateway,
		DateTransaction: dto.DateTransaction,
		DateExpiration:  dto.DateExpiration,
		DatePayment:     dto.DatePayment,
		Authorization:   authorization,
		Additional:      dto.AdditionalInformation.Data(),
		ErrorCode:       dto.GatewayErrorCode,
		TransactionID:   original,
		NotifiedAt:      dto.NotifiedAt,
	})
}
