package paypal

import (
	"fmt"
	"strconv"
	"strings"
)

// PayPal speaks decimal-string amounts; locally everything is integer
// minor units.

func formatMinorUnits(pence int64) string {
	sign := ""
	if pence < 0 {
		sign = "-"
		pence = -pence
	}
	return fmt.Sprintf("%s%d.%02d", sign, pence/100, pence%100)
}

func parseMinorUnits(value string) int64 {
	if value == "" {
		return 0
	}
	whole, frac, _ := strings.Cut(value, ".")
	negative := strings.HasPrefix(whole, "-")
	whole = strings.TrimPrefix(whole, "-")

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0
	}

	for len(frac) < 2 {
		frac += "0"
	}
	cents, err := strconv.ParseInt(frac[:2], 10, 64)
	if err != nil {
		return 0
	}

	total := units*100 + cents
	if negative {
		total = -total
	}
	return total
}
