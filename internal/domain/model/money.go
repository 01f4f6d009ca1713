package model

import "github.com/shopspring/decimal"

// Money は numeric(10,2) の金額。
// DBとの読み書きは decimal.Decimal に任せ、JSONは常に小数2桁の文字列（"120.50"）で返す。
type Money struct {
	decimal.Decimal
}

func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.StringFixed(2) + `"`), nil
}
