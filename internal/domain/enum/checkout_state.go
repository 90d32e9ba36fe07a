package enum

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CheckoutState is the lifecycle state of a checkout session.
// OPEN is the only re-entrant state; COMMITTED and ABORTED are terminal.
type CheckoutState int

const (
	CheckoutStateOpen       CheckoutState = 0
	CheckoutStateValidating CheckoutState = 1
	CheckoutStateCommitted  CheckoutState = 2
	CheckoutStateAborted    CheckoutState = 3
)

var checkoutStateNames = [...]string{"OPEN", "VALIDATING", "COMMITTED", "ABORTED"}

func (s CheckoutState) String() string {
	if int(s) < 0 || int(s) >= len(checkoutStateNames) {
		return "OPEN"
	}
	return checkoutStateNames[s]
}

// Terminal reports whether no further transitions are possible.
func (s CheckoutState) Terminal() bool {
	return s == CheckoutStateCommitted || s == CheckoutStateAborted
}

// ParseCheckoutState accepts a state name in any case.
func ParseCheckoutState(str string) (CheckoutState, error) {
	str = strings.ToUpper(strings.TrimSpace(str))
	for i, name := range checkoutStateNames {
		if name == str {
			return CheckoutState(i), nil
		}
	}
	return CheckoutStateOpen, fmt.Errorf("unknown checkout state %q", str)
}

func (s CheckoutState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *CheckoutState) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParseCheckoutState(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
