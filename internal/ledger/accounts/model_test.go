package accounts

import "testing"

func TestNormalBalance(t *testing.T) {
	cases := []struct {
		accountType AccountType
		want        BalanceSide
	}{
		{AccountTypeAsset, BalanceDebit},
		{AccountTypeExpense, BalanceDebit},
		{AccountTypeLiability, BalanceCredit},
		{AccountTypeEquity, BalanceCredit},
		{AccountTypeRevenue, BalanceCredit},
	}
	for _, tc := range cases {
		if got := tc.accountType.NormalBalance(); got != tc.want {
			t.Fatalf("%s normal balance = %s, want %s", tc.accountType, got, tc.want)
		}
	}
}
