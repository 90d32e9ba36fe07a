package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// MovementReason explains a change in a batch's quantity-on-hand
type MovementReason int

const (
	MovementReasonReceipt MovementReason = 0
	MovementReasonSale    MovementReason = 1
)

func (r MovementReason) String() string {
	names := [...]string{"RECEIPT", "SALE"}
	if int(r) < 0 || int(r) >= len(names) {
		return "RECEIPT"
	}
	return names[r]
}

func (r MovementReason) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r MovementReason) Value() (driver.Value, error) {
	return int64(r), nil
}

func (r *MovementReason) Scan(value interface{}) error {
	if value == nil {
		*r = MovementReasonReceipt
		return nil
	}
	switch v := value.(type) {
	case int64:
		*r = MovementReason(v)
	case int:
		*r = MovementReason(v)
	}
	return nil
}
