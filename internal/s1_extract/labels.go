package s1_extract

// Label sets per concept. Order is priority.
var (
	conceptSales = Concept{
		Name:       "sales",
		Candidates: []string{"Sales", "Net Sales", "Revenue from Operations", "Net Sales/Income from operations", "Total Income From Operations", "Revenue"},
		Exclude:    []string{"other"},
	}
	conceptOtherIncome = Concept{
		Name:       "other_income",
		Candidates: []string{"Other Income"},
	}
	conceptInterest = Concept{
		Name:       "interest",
		Candidates: []string{"Interest", "Finance Costs", "Finance Cost", "Interest Expense"},
		Exclude:    []string{"earned", "income"},
	}
	conceptDepreciation = Concept{
		Name:       "depreciation",
		Candidates: []string{"Depreciation", "Depreciation and Amortisation", "Depreciation and Amortization Expense"},
	}
	conceptPBT = Concept{
		Name:       "profit_before_tax",
		Candidates: []string{"Profit before tax", "P/L Before Tax", "PBT", "Profit/(Loss) Before Tax"},
	}
	conceptTax = Concept{
		Name:       "tax",
		Candidates: []string{"Tax", "Tax Expense", "Total Tax Expense", "Tax Expenses"},
		Exclude:    []string{"before", "after", "%"},
	}
	conceptNetProfit = Concept{
		Name:       "net_profit",
		Candidates: []string{"Net Profit", "Net Profit/(Loss) For the Period", "Profit after tax", "PAT"},
	}
	conceptBasicEPS = Concept{
		Name:       "basic_eps",
		Candidates: []string{"Basic EPS", "EPS Basic", "Basic EPS (Rs.)", "Basic", "EPS in Rs", "EPS"},
		Exclude:    []string{"diluted"},
	}
	conceptDilutedEPS = Concept{
		Name:       "diluted_eps",
		Candidates: []string{"Diluted EPS", "EPS Diluted", "Diluted EPS (Rs.)", "Diluted"},
	}

	// bank shape
	conceptInterestEarned = Concept{
		Name:       "interest_earned",
		Candidates: []string{"Interest Earned", "Total Interest Earned", "Interest Income"},
	}
	conceptInterestExpended = Concept{
		Name:       "interest_expended",
		Candidates: []string{"Interest Expended", "Interest Expenses"},
	}
	conceptOperatingExpenses = Concept{
		Name:       "operating_expenses",
		Candidates: []string{"Operating Expenses", "Total Operating Expenses"},
		Exclude:    []string{"other"},
	}
	conceptEmployeeCost = Concept{
		Name:       "employee_cost",
		Candidates: []string{"Employee Cost", "Employees Cost", "Employee Benefit Expenses"},
	}
	conceptOtherOperatingExpenses = Concept{
		Name:       "other_operating_expenses",
		Candidates: []string{"Other Operating Expenses", "Other Expenses"},
	}
	conceptProvisions = Concept{
		Name:       "provisions",
		Candidates: []string{"Provisions And Contingencies", "Provisions and Contingencies (Net)", "Provisions"},
	}
	conceptGrossNPA = Concept{
		Name:       "gross_npa_pct",
		Candidates: []string{"Gross NPA %", "% of Gross NPA", "Gross NPA"},
	}
	conceptNetNPA = Concept{
		Name:       "net_npa_pct",
		Candidates: []string{"Net NPA %", "% of Net NPA", "Net NPA"},
	}

	// NBFC shape
	conceptTotalExpenses = Concept{
		Name:       "total_expenses",
		Candidates: []string{"Total Expenses", "Total Expenditure"},
	}
)
