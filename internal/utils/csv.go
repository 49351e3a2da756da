package utils

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"klineDataCore/internal/domain"
)

var baseColumns = []string{
	"symbol", "open_time", "open", "high", "low", "close", "volume",
	"open_interest", "funding_rate", "volume_delta",
}

// IndicatorKeys returns the sorted union of indicator keys over all candles.
func IndicatorKeys(data []domain.KlineData) []string {
	seen := make(map[string]struct{})
	for _, kd := range data {
		for _, c := range kd.Data {
			for k := range c.Indicators {
				seen[k] = struct{}{}
			}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// WriteCandlesCSV writes enriched candles with one column per indicator key.
// Undefined indicator values are written as empty cells.
func WriteCandlesCSV(w io.Writer, data []domain.KlineData) error {
	keys := IndicatorKeys(data)

	writer := csv.NewWriter(w)
	if err := writer.Write(append(append([]string(nil), baseColumns...), keys...)); err != nil {
		return err
	}

	row := make([]string, len(baseColumns)+len(keys))
	for _, kd := range data {
		for _, c := range kd.Data {
			row[0] = kd.Symbol
			row[1] = time.UnixMilli(c.OpenTime).UTC().Format(time.RFC3339)
			row[2] = c.Open
			row[3] = c.High
			row[4] = c.Low
			row[5] = c.Close
			row[6] = c.Volume
			row[7] = c.OpenInterest
			row[8] = c.FundingRate
			row[9] = c.VolumeDelta
			for i, k := range keys {
				row[len(baseColumns)+i] = formatValue(c.Indicator(k))
			}
			if err := writer.Write(row); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteCandlesToCSVFile creates filename (and its directory) and writes data to it.
func WriteCandlesToCSVFile(data []domain.KlineData, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", filename, err)
	}
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := WriteCandlesCSV(file, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return file.Close()
}

func formatValue(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
