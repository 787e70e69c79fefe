package main

import (
	"fmt"
	"os"

	calc "github.com/rpgo/policy-projector/internal/calculation"
	"github.com/rpgo/policy-projector/internal/config"
	"github.com/rpgo/policy-projector/internal/refdata"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: debug_break_even <assumptions-file> [data-dir]")
		return
	}
	dataDir := "data"
	if len(os.Args) > 2 {
		dataDir = os.Args[2]
	}

	p := config.NewInputParser()
	in, err := p.LoadFromFile(os.Args[1])
	if err != nil {
		panic(err)
	}
	ref, err := refdata.NewLoader(dataDir).Load()
	if err != nil {
		panic(err)
	}
	res, err := calc.NewEngine().Project(in.ToAssumptionSet(), ref)
	if err != nil {
		panic(err)
	}
	if len(res.Rows) == 0 {
		fmt.Println("no projection data")
		return
	}

	target := res.Summary.BreakEvenTarget
	if !target.Valid {
		fmt.Println("no death benefit or policy size; break-even not evaluated")
		return
	}

	fmt.Printf("Target: %s\n", target.Decimal.StringFixed(2))
	fmt.Println("Year,Age,Contribution,MarketGain,NoFurtherContributions,RunningBalance,Gap,Exceeds")
	for _, r := range res.Rows {
		gap := r.BalanceIfNoFurtherContributions.Sub(target.Decimal)
		fmt.Printf("%d,%d,%s,%s,%s,%s,%s,%t\n", r.Year, r.Age,
			r.Contribution.StringFixed(2), r.MarketGain.StringFixed(2),
			r.BalanceIfNoFurtherContributions.StringFixed(2), r.RunningBalance.StringFixed(2),
			gap.StringFixed(2), gap.IsPositive())
	}

	be := res.Summary.BreakEven
	fmt.Printf("\nBreakEven: %+v\n", be)
	if be == nil || be.Year < 1 {
		return
	}
	eg, err := calc.CalculateEndingGrowth(res.Rows, be.Year, res.Sections.Globals.MarketMultiplier, 5, 10)
	fmt.Printf("Growth into break-even year: %+v, err=%v\n", eg, err)
}
