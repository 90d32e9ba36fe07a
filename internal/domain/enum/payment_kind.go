package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// PaymentKind represents how a sale is settled
type PaymentKind int

const (
	PaymentKindCash   PaymentKind = 0
	PaymentKindCredit PaymentKind = 1
)

func (k PaymentKind) String() string {
	names := [...]string{"CASH", "CREDIT"}
	if int(k) < 0 || int(k) >= len(names) {
		return "CASH"
	}
	return names[k]
}

// ParsePaymentKind accepts "cash" or "credit" in any case.
func ParsePaymentKind(s string) (PaymentKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CASH":
		return PaymentKindCash, nil
	case "CREDIT":
		return PaymentKindCredit, nil
	}
	return PaymentKindCash, fmt.Errorf("unknown payment kind %q", s)
}

func (k PaymentKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *PaymentKind) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*k = PaymentKind(i)
		return nil
	}
	parsed, err := ParsePaymentKind(str)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

func (k PaymentKind) Value() (driver.Value, error) {
	return int64(k), nil
}

func (k *PaymentKind) Scan(value interface{}) error {
	if value == nil {
		*k = PaymentKindCash
		return nil
	}
	switch v := value.(type) {
	case int64:
		*k = PaymentKind(v)
	case int:
		*k = PaymentKind(v)
	}
	return nil
}
