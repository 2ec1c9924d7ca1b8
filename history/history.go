package history

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/bcdannyboy/stocvar/models"
)

// Day is one row of a price file.
type Day struct {
	Date   string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// QuoteHistory is a price series in file order, most recent day first.
type QuoteHistory struct {
	Path string
	Days []Day
}

// Closes returns the closing prices.
func (q QuoteHistory) Closes() []float64 {
	closes := make([]float64, len(q.Days))
	for i, d := range q.Days {
		closes[i] = d.Close
	}
	return closes
}

// Bars returns the most recent days bars, or all of them when days <= 0.
func (q QuoteHistory) Bars(days int) []models.Bar {
	if days <= 0 || days > len(q.Days) {
		days = len(q.Days)
	}
	bars := make([]models.Bar, days)
	for i := 0; i < days; i++ {
		d := q.Days[i]
		bars[i] = models.Bar{Open: d.Open, High: d.High, Low: d.Low, Close: d.Close}
	}
	return bars
}

// Returns derives the log returns of the closing prices.
func (q QuoteHistory) Returns() ([]float64, error) {
	r, err := LogReturns(q.Closes())
	if err != nil {
		return nil, models.Wrap(models.KindNumerical, q.Path, err)
	}
	return r, nil
}

type columns struct {
	date, open, high, low, close, volume int
}

func locateColumns(header []string) (columns, bool) {
	cols := columns{date: -1, open: -1, high: -1, low: -1, close: -1, volume: -1}
	for i, h := range header {
		name := strings.TrimSpace(h)
		if cols.close < 0 && strings.Contains(name, "Close") {
			cols.close = i
			continue
		}
		switch strings.ToLower(name) {
		case "date":
			cols.date = i
		case "open":
			cols.open = i
		case "high":
			cols.high = i
		case "low":
			cols.low = i
		case "volume":
			cols.volume = i
		}
	}
	return cols, cols.close >= 0
}

// Load reads a comma delimited price file with a header row. The close
// column is the first header containing "Close"; Date, Open, High, Low and
// Volume are picked up when present.
func Load(path string) (QuoteHistory, error) {
	f, err := os.Open(path)
	if err != nil {
		return QuoteHistory{}, models.Wrap(models.KindDataIO, path, err)
	}
	defer f.Close()

	q, err := Parse(f)
	if err != nil {
		return QuoteHistory{}, models.Wrap(models.KindParse, path, err)
	}
	q.Path = path
	return q, nil
}

// Parse reads price records from r. See Load for the format.
func Parse(r io.Reader) (QuoteHistory, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return QuoteHistory{}, models.Errorf(models.KindParse, "", "empty price file")
	}
	if err != nil {
		return QuoteHistory{}, models.Wrap(models.KindDataIO, "", err)
	}
	cols, ok := locateColumns(header)
	if !ok {
		return QuoteHistory{}, models.Errorf(models.KindParse, "", "no Close column in header %v", header)
	}

	var q QuoteHistory
	for row := 2; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return QuoteHistory{}, models.Wrap(models.KindParse, "", err)
		}
		if cols.close >= len(record) {
			return QuoteHistory{}, models.Errorf(models.KindParse, "", "row %d: missing Close field", row)
		}
		closePrice, err := strconv.ParseFloat(strings.TrimSpace(record[cols.close]), 64)
		if err != nil {
			return QuoteHistory{}, models.Errorf(models.KindParse, "", "row %d: Close: %v", row, err)
		}

		day := Day{Close: closePrice}
		day.Date = field(record, cols.date)
		day.Open = optionalFloat(record, cols.open)
		day.High = optionalFloat(record, cols.high)
		day.Low = optionalFloat(record, cols.low)
		if v, err := strconv.ParseFloat(field(record, cols.volume), 64); err == nil {
			day.Volume = int64(v)
		}
		q.Days = append(q.Days, day)
	}
	return q, nil
}

// LoadCloses returns the closing prices of the file at path.
func LoadCloses(path string) ([]float64, error) {
	q, err := Load(path)
	if err != nil {
		return nil, err
	}
	return q.Closes(), nil
}

func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// optionalFloat leaves unparsable OHLC fields at zero; only the close column
// is mandatory.
func optionalFloat(record []string, idx int) float64 {
	v, err := strconv.ParseFloat(field(record, idx), 64)
	if err != nil {
		return 0
	}
	return v
}
