package export

import (
	"encoding/csv"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/amparo-lar/amparo-lar/internal/reports"
)

var printer = message.NewPrinter(language.BrazilianPortuguese)

// WriteDashboardCSV serialises the consolidated snapshot to CSV, with values
// in pt-BR number formatting.
func WriteDashboardCSV(w io.Writer, dashboard reports.Dashboard) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Indicador", "Valor"}); err != nil {
		return err
	}
	records := [][]string{
		{"Periodo", dashboard.PeriodStart.Format("2006-01-02")},
		{"Entradas do Periodo", formatValue(dashboard.CashPosition.InflowTotal)},
		{"Saidas do Periodo", formatValue(dashboard.CashPosition.OutflowTotal)},
		{"Saldo do Periodo", formatValue(dashboard.CashPosition.EndingBalance)},
		{"Contas a Pagar Pendentes", formatValue(dashboard.Payables.Pending)},
		{"Contas a Pagar Vencidas", formatValue(dashboard.Payables.OverdueNow)},
		{"Contas a Receber Pendentes", formatValue(dashboard.Receivables.Pending)},
		{"Contas a Receber Vencidas", formatValue(dashboard.Receivables.OverdueNow)},
		{"Movimentos Bancarios Pendentes", formatValue(dashboard.Reconciliation.PendingValue)},
		{"Movimentos Bancarios Divergentes", formatValue(dashboard.Reconciliation.DivergentValue)},
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteTrendCSV emits the monthly cash movement as CSV.
func WriteTrendCSV(w io.Writer, points []reports.TrendPoint) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Mes", "Entradas", "Saidas", "Saldo"}); err != nil {
		return err
	}
	for _, point := range points {
		if err := writer.Write([]string{
			point.Period,
			formatValue(point.Inflow),
			formatValue(point.Outflow),
			formatValue(point.Net),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatValue(v float64) string {
	return printer.Sprintf("%.2f", v)
}
