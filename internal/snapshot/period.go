package snapshot

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// monthNames maps lower-case month names found in file names to the Spanish
// label used in period keys. Spanish names come first so "mayo" is not read as
// the English "may".
var monthNames = []struct {
	key   string
	label string
}{
	{"enero", "Enero"}, {"febrero", "Febrero"}, {"marzo", "Marzo"},
	{"abril", "Abril"}, {"mayo", "Mayo"}, {"junio", "Junio"},
	{"julio", "Julio"}, {"agosto", "Agosto"}, {"septiembre", "Septiembre"},
	{"octubre", "Octubre"}, {"noviembre", "Noviembre"}, {"diciembre", "Diciembre"},
	{"january", "Enero"}, {"february", "Febrero"}, {"march", "Marzo"},
	{"april", "Abril"}, {"may", "Mayo"}, {"june", "Junio"},
	{"july", "Julio"}, {"august", "Agosto"}, {"september", "Septiembre"},
	{"october", "Octubre"}, {"november", "Noviembre"}, {"december", "Diciembre"},
}

var yearPattern = regexp.MustCompile(`20\d{2}`)

// ExtractPeriod derives a "<Mes> <Año>" label from a file name such as
// "Cierre_Marzo_2024.xlsx". Without a year the current year of now is used.
// Without a month name the file name minus its extension is returned.
func ExtractPeriod(fileName string, now time.Time) string {
	lower := strings.ToLower(fileName)

	for _, m := range monthNames {
		if !strings.Contains(lower, m.key) {
			continue
		}

		year := strconv.Itoa(now.Year())
		if y := yearPattern.FindString(lower); y != "" {
			year = y
		}

		return m.label + " " + year
	}

	return strings.TrimSuffix(fileName, filepath.Ext(fileName))
}

// ParsePeriod splits a "<Month> <Year>" label.
func ParsePeriod(period string) (string, int, bool) {
	parts := strings.Fields(period)
	if len(parts) != 2 {
		return "", 0, false
	}

	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, false
	}

	return parts[0], year, true
}

// PreviousYearPeriod returns the label of the same month one year earlier.
func PreviousYearPeriod(period string) (string, bool) {
	month, year, ok := ParsePeriod(period)
	if !ok {
		return "", false
	}

	return fmt.Sprintf("%s %d", month, year-1), true
}
