package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// CreditEntryKind distinguishes balance increases from payments
type CreditEntryKind int

const (
	CreditEntrySale    CreditEntryKind = 0
	CreditEntryPayment CreditEntryKind = 1
)

func (k CreditEntryKind) String() string {
	names := [...]string{"SALE", "PAYMENT"}
	if int(k) < 0 || int(k) >= len(names) {
		return "SALE"
	}
	return names[k]
}

func (k CreditEntryKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k CreditEntryKind) Value() (driver.Value, error) {
	return int64(k), nil
}

func (k *CreditEntryKind) Scan(value interface{}) error {
	if value == nil {
		*k = CreditEntrySale
		return nil
	}
	switch v := value.(type) {
	case int64:
		*k = CreditEntryKind(v)
	case int:
		*k = CreditEntryKind(v)
	}
	return nil
}
