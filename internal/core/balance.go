package core

// Balance is the income/outcome aggregate over a set of transactions.
// It is derived on demand and never stored.
type Balance struct {
	Income  Money
	Outcome Money
	Total   Money
}

// CalculateBalance folds transactions into a Balance. Transactions with an
// unknown type contribute nothing. An empty set yields the zero Balance.
func CalculateBalance(transactions []Transaction) Balance {
	var b Balance
	for _, tx := range transactions {
		switch tx.Type {
		case Income:
			b.Income = b.Income.Add(tx.Value)
		case Outcome:
			b.Outcome = b.Outcome.Add(tx.Value)
		}
	}
	b.Total = b.Income.Sub(b.Outcome)
	return b
}
