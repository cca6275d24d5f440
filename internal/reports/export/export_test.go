package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/amparo-lar/amparo-lar/internal/reports"
)

func TestWriteDashboardCSV(t *testing.T) {
	dashboard := reports.Dashboard{
		PeriodStart: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		CashPosition: reports.CashPosition{
			InflowTotal:   1234.5,
			OutflowTotal:  400,
			EndingBalance: 834.5,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteDashboardCSV(&buf, dashboard))

	out := buf.String()
	require.True(t, strings.HasPrefix(out, "Indicador,Valor\n"))
	require.Contains(t, out, "Periodo,2024-06-01")
	// pt-BR numbers use comma as the decimal separator.
	require.Contains(t, out, `"1.234,50"`)
	require.Contains(t, out, `"834,50"`)
}

func TestWriteTrendCSV(t *testing.T) {
	points := []reports.TrendPoint{
		{Period: "2024-04", Inflow: 150, Outflow: 170, Net: -20},
		{Period: "2024-05", Inflow: 300, Outflow: 100, Net: 200},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTrendCSV(&buf, points))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "Mes,Entradas,Saidas,Saldo", lines[0])
	require.Contains(t, lines[1], "2024-04")
	require.Contains(t, lines[2], "2024-05")
}
