// README: Common money value object used across modules.
package types

// Money carries an amount in minor units (cents).
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func (m Money) Add(o Money) Money {
	return Money{Amount: m.Amount + o.Amount, Currency: m.Currency}
}

func (m Money) Sub(o Money) Money {
	return Money{Amount: m.Amount - o.Amount, Currency: m.Currency}
}
