package payment

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// IdempotencyCode correlates repeated checkout attempts for the same order and gateway.
func IdempotencyCode(orderID, companyID int64, code GatewayCode) string {
	sum := sha256.Sum256([]byte(strconv.FormatInt(orderID, 10) + ":" + strconv.FormatInt(companyID, 10) + ":" + string(code)))
	return hex.EncodeToString(sum[:])
}
