// Command seedhsn converts the GST HSN master workbook into a SQL seed for hsn_codes.
// Only chapter 30 (pharmaceutical products) and the other chapters listed in
// -chapters are kept; ambiguous multi-rate rows keep their lowest rate.
//
// Usage: go run ./cmd/seedhsn -in hsn_master.xlsx -out db/seeds/hsn_codes.sql
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const batchSize = 500

type hsnEntry struct {
	code        string
	description string
	gstRate     decimal.Decimal
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	xlsxPath := flag.String("in", "hsn_master.xlsx", "HSN master workbook")
	outPath := flag.String("out", "db/seeds/hsn_codes.sql", "output SQL file")
	sheet := flag.Int("sheet", 0, "sheet index holding the HSN master")
	chapters := flag.String("chapters", "30,33,34,38,40,90", "comma-separated HSN chapters to keep; empty keeps all")
	gstType := flag.String("gst-type", "", "pricing convention stamped on every row: INCLUSIVE, EXCLUSIVE or empty")
	flag.Parse()

	switch *gstType {
	case "", "INCLUSIVE", "EXCLUSIVE":
	default:
		return fmt.Errorf("invalid -gst-type %q", *gstType)
	}

	f, err := excelize.OpenFile(*xlsxPath)
	if err != nil {
		return fmt.Errorf("open Excel file: %w", err)
	}
	defer func() { _ = f.Close() }()

	entries, err := parseHSNSheet(f, *sheet, chapterSet(*chapters))
	if err != nil {
		return fmt.Errorf("parse HSN sheet: %w", err)
	}
	log.Printf("HSN sheet: %d codes", len(entries))

	out, err := os.Create(*outPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() { _ = out.Close() }()

	if _, err := fmt.Fprintf(out, "-- HSN master seed generated from %s.\n-- %d codes in batches of %d.\nBEGIN;\n\n",
		*xlsxPath, len(entries), batchSize); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := 0; i < len(entries); i += batchSize {
		end := i + batchSize
		if end > len(entries) {
			end = len(entries)
		}
		if err := writeBatch(out, entries[i:end], *gstType); err != nil {
			return fmt.Errorf("write batch at offset %d: %w", i, err)
		}
	}
	if _, err := fmt.Fprintln(out, "COMMIT;"); err != nil {
		return fmt.Errorf("write footer: %w", err)
	}

	log.Printf("Generated %d codes (%d batches) in %s",
		len(entries), (len(entries)+batchSize-1)/batchSize, *outPath)
	return nil
}

// parseHSNSheet reads the goods master.
// Columns: F(5)=4-digit, H(7)=4-digit desc, I(8)=6-digit, J(9)=6-digit desc,
// K(10)=8-digit, M(12)=8-digit desc, N(13)=GST rate. Data starts at row index 5.
func parseHSNSheet(f *excelize.File, sheet int, keep map[string]bool) ([]hsnEntry, error) {
	rows, err := f.GetRows(f.GetSheetName(sheet))
	if err != nil {
		return nil, err
	}

	byCode := make(map[string]hsnEntry)
	for i := 5; i < len(rows); i++ {
		row := rows[i]
		if len(row) < 14 {
			continue
		}
		rates := parseRate(cellVal(row, 13))
		if len(rates) == 0 {
			continue
		}
		rate := rates[0]

		for _, col := range [][2]int{{10, 12}, {8, 9}, {5, 7}} {
			code := strings.TrimSpace(cellVal(row, col[0]))
			if !isNumeric(code) || len(code) > 8 {
				continue
			}
			if len(keep) > 0 && (len(code) < 2 || !keep[code[:2]]) {
				continue
			}
			if prev, ok := byCode[code]; ok && prev.gstRate.LessThanOrEqual(rate) {
				continue
			}
			byCode[code] = hsnEntry{code: code, description: strings.TrimSpace(cellVal(row, col[1])), gstRate: rate}
		}
	}

	entries := make([]hsnEntry, 0, len(byCode))
	for _, e := range byCode {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].code < entries[j].code })
	return entries, nil
}

// ratePattern matches a number followed by "%".
var ratePattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)

// parseRate extracts GST rates from free-text cells, lowest first.
//
//	"12%"      → [12]
//	"Exempt"   → [0]
//	"5%-12%"   → [5, 12]
//	"0.12"     → [12] (percentage-formatted cell read as a fraction)
func parseRate(s string) []decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	switch strings.ToLower(s) {
	case "exempt", "nil":
		return []decimal.Decimal{decimal.Zero}
	}

	var rates []decimal.Decimal
	if matches := ratePattern.FindAllStringSubmatch(s, -1); len(matches) > 0 {
		for _, m := range matches {
			if d, err := decimal.NewFromString(m[1]); err == nil {
				rates = append(rates, d)
			}
		}
	} else if d, err := decimal.NewFromString(s); err == nil {
		if d.LessThan(decimal.NewFromInt(1)) {
			d = d.Mul(decimal.NewFromInt(100))
		}
		rates = append(rates, d)
	}
	sort.Slice(rates, func(i, j int) bool { return rates[i].LessThan(rates[j]) })
	return rates
}

func writeBatch(out *os.File, batch []hsnEntry, gstType string) error {
	if len(batch) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("INSERT INTO hsn_codes (code, description, default_gst_rate, gst_type) VALUES\n")
	for i := range batch {
		e := &batch[i]
		if i > 0 {
			b.WriteString(",\n")
		}
		fmt.Fprintf(&b, "  ('%s', '%s', %s, '%s')",
			escapeSQL(e.code), escapeSQL(e.description), e.gstRate.StringFixed(2), gstType)
	}
	b.WriteString("\nON CONFLICT (code) DO UPDATE SET description = EXCLUDED.description,\n")
	b.WriteString("  default_gst_rate = EXCLUDED.default_gst_rate, gst_type = EXCLUDED.gst_type;\n\n")

	_, err := out.WriteString(b.String())
	return err
}

func chapterSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			set[c] = true
		}
	}
	return set
}

func cellVal(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

func isNumeric(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return s != ""
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
