package payroll

import (
	"github.com/shopspring/decimal"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/domain/payroll"
)

var (
	half    = decimal.NewFromFloat(0.5)
	hundred = decimal.NewFromInt(100)
)

type SalaryInput struct {
	BasicSalary     decimal.Decimal
	WorkingDays     int
	TotalUnpaidDays float64
	Components      []payroll.SalaryComponent
}

type SalaryAmounts struct {
	PerDaySalary decimal.Decimal
	Deduction    decimal.Decimal
	FinalSalary  decimal.Decimal
	Earnings     []payroll.Earning
}

// roundHalfUp rounds to a whole currency unit with ties going up.
func roundHalfUp(d decimal.Decimal) decimal.Decimal {
	return d.Add(half).Floor()
}

// CalculateSalary rounds every intermediate amount on its own, so per-day
// salary is rounded before it is multiplied into the deduction.
func CalculateSalary(in SalaryInput) SalaryAmounts {
	perDay := decimal.Zero
	if in.WorkingDays > 0 {
		perDay = roundHalfUp(in.BasicSalary.Div(decimal.NewFromInt(int64(in.WorkingDays))))
	}

	deduction := roundHalfUp(perDay.Mul(decimal.NewFromFloat(in.TotalUnpaidDays)))
	final := roundHalfUp(in.BasicSalary.Sub(deduction))

	earnings := make([]payroll.Earning, 0, len(in.Components))
	for _, c := range in.Components {
		earnings = append(earnings, payroll.Earning{
			Title:      c.Title,
			Percentage: c.Percentage,
			Amount:     roundHalfUp(c.Percentage.Div(hundred).Mul(in.BasicSalary)),
		})
	}

	return SalaryAmounts{
		PerDaySalary: perDay,
		Deduction:    deduction,
		FinalSalary:  final,
		Earnings:     earnings,
	}
}
