// Package report turns simulation trajectories into CSV, text tables and
// summary statistics for the plotting and BI tools downstream.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/andresuchdata/skusim/internal/domain"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Header is the column layout of the trajectory CSV.
var Header = []string{"period", "inventory_level", "order_quantity", "demand", "lost_sales"}

const places = 2

func fixed(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}

// WriteCSV writes one row per period.
func WriteCSV(w io.Writer, traj domain.Trajectories) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return errors.Wrap(err, "write header")
	}

	for p := 0; p < traj.Len(); p++ {
		record := []string{
			strconv.Itoa(p),
			fixed(traj.InventoryLevels[p]),
			fixed(traj.OrderQuantities[p]),
			valueAt(traj.Demands, p),
			valueAt(traj.LostSales, p),
		}
		if err := cw.Write(record); err != nil {
			return errors.Wrapf(err, "write period %d", p)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrap(err, "flush report")
	}
	return nil
}

// valueAt tolerates runs persisted without the demand/lost-sales series.
func valueAt(series []float64, p int) string {
	if p >= len(series) {
		return ""
	}
	return fixed(series[p])
}

// Summary aggregates a run's trajectories.
type Summary struct {
	Periods          int     `json:"periods"`
	SafetyStock      float64 `json:"safety_stock"`
	TotalDemand      float64 `json:"total_demand"`
	TotalLostSales   float64 `json:"total_lost_sales"`
	TotalOrdered     float64 `json:"total_ordered"`
	OrdersPlaced     int     `json:"orders_placed"`
	StockoutPeriods  int     `json:"stockout_periods"`
	AverageInventory float64 `json:"average_inventory"`
	// FillRate is the share of positive demand that was served.
	FillRate float64 `json:"fill_rate"`
}

// Summarize computes the run summary. Sums are accumulated in decimal to keep
// long horizons free of float drift.
func Summarize(run *domain.SimulationRun) Summary {
	traj := run.Trajectories
	s := Summary{Periods: traj.Len(), SafetyStock: run.SafetyStock}
	if s.Periods == 0 {
		return s
	}

	var demand, lost, ordered, inventory decimal.Decimal
	for p := 0; p < s.Periods; p++ {
		inventory = inventory.Add(decimal.NewFromFloat(traj.InventoryLevels[p]))
		if q := traj.OrderQuantities[p]; q > 0 {
			ordered = ordered.Add(decimal.NewFromFloat(q))
			s.OrdersPlaced++
		}
		if p < len(traj.Demands) && traj.Demands[p] > 0 {
			demand = demand.Add(decimal.NewFromFloat(traj.Demands[p]))
		}
		if p < len(traj.LostSales) && traj.LostSales[p] > 0 {
			lost = lost.Add(decimal.NewFromFloat(traj.LostSales[p]))
			s.StockoutPeriods++
		}
	}

	s.TotalDemand = demand.InexactFloat64()
	s.TotalLostSales = lost.InexactFloat64()
	s.TotalOrdered = ordered.InexactFloat64()
	s.AverageInventory = inventory.Div(decimal.NewFromInt(int64(s.Periods))).InexactFloat64()
	s.FillRate = 1
	if demand.IsPositive() {
		s.FillRate = decimal.NewFromInt(1).Sub(lost.Div(demand)).InexactFloat64()
	}

	return s
}

// WriteTable renders the run as an aligned text table followed by its summary.
func WriteTable(w io.Writer, run *domain.SimulationRun) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "period\tinventory\torder\tdemand\tlost\t")

	traj := run.Trajectories
	for p := 0; p < traj.Len(); p++ {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t\n", p,
			fixed(traj.InventoryLevels[p]),
			fixed(traj.OrderQuantities[p]),
			valueAt(traj.Demands, p),
			valueAt(traj.LostSales, p))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	s := Summarize(run)
	_, err := fmt.Fprintf(w,
		"\nsafety stock %s | ordered %s in %d orders | avg inventory %s | stockouts %d/%d | fill rate %s%%\n",
		fixed(s.SafetyStock), fixed(s.TotalOrdered), s.OrdersPlaced, fixed(s.AverageInventory),
		s.StockoutPeriods, s.Periods, fixed(s.FillRate*100))
	return err
}
