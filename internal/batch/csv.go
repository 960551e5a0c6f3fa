package batch

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Column aliases accepted in input headers, checked case-insensitively
var (
	addressAliases   = []string{"address", "street_address", "street", "full_address"}
	cityAliases      = []string{"city", "town"}
	regionAliases    = []string{"state", "region", "province"}
	postalAliases    = []string{"zip", "zipcode", "zip_code", "postal_code", "postcode"}
	coordAliases     = []string{"coordinates", "coords", "lat_lng"}
	latitudeAliases  = []string{"latitude", "lat"}
	longitudeAliases = []string{"longitude", "lng", "lon"}
	priorAptAliases  = []string{"is_apartment", "apartment"}
	priorConfAliases = []string{"confidence", "apartment_confidence"}
	priorKwAliases   = []string{"matched_keywords", "keywords"}
)

// columnMap resolves which input column feeds which record field
type columnMap struct {
	header  []string
	address int
	city    int
	region  int
	postal  int
	coords  int
	lat     int
	lng     int
	prior   int
	conf    int
	kw      int
}

func findColumn(header []string, aliases []string) int {
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		for _, alias := range aliases {
			if name == alias {
				return i
			}
		}
	}
	return -1
}

func mapColumns(header []string) (*columnMap, error) {
	m := &columnMap{
		header:  header,
		address: findColumn(header, addressAliases),
		city:    findColumn(header, cityAliases),
		region:  findColumn(header, regionAliases),
		postal:  findColumn(header, postalAliases),
		coords:  findColumn(header, coordAliases),
		lat:     findColumn(header, latitudeAliases),
		lng:     findColumn(header, longitudeAliases),
		prior:   findColumn(header, priorAptAliases),
		conf:    findColumn(header, priorConfAliases),
		kw:      findColumn(header, priorKwAliases),
	}
	if m.address < 0 {
		return nil, fmt.Errorf("no address column found (accepted: %s)",
			strings.Join(addressAliases, ", "))
	}
	return m, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// ReadRecords loads an input CSV. Only an unreadable file or a missing
// address column is fatal; short rows are padded and read as-is.
func ReadRecords(path string) ([]Record, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening input file: %w", err)
	}
	defer f.Close()

	records, header, err := readRecordsFrom(f)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return records, header, nil
}

func readRecordsFrom(r io.Reader) ([]Record, []string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("reading header: %w", err)
	}

	cols, err := mapColumns(header)
	if err != nil {
		return nil, nil, err
	}

	var records []Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("reading row %d: %w", len(records)+2, err)
		}

		records = append(records, Record{
			Address:     cell(row, cols.address),
			City:        cell(row, cols.city),
			Region:      cell(row, cols.region),
			PostalCode:  cell(row, cols.postal),
			Coordinates: cell(row, cols.coords),
			Latitude:    cell(row, cols.lat),
			Longitude:   cell(row, cols.lng),
			Prior:       parsePrior(cell(row, cols.prior), cell(row, cols.conf), cell(row, cols.kw)),
			Fields:      row,
		})
	}
	return records, header, nil
}

// resultColumns are appended to the input columns in the output file
var resultColumns = []string{
	"has_apartment",
	"apartment_type",
	"unit_value",
	"main_address",
	"is_apartment_rule",
	"rule_confidence",
	"rule_keywords",
	"placekey",
	"placekey_confidence",
	"placekey_success",
	"apartment_type_enhanced",
	"main_address_enhanced",
	"access_code",
	"is_apartment_final",
	"confidence_final",
	"keywords_final",
	"process_status",
	"conflict_flag",
}

// WriteResults writes the output CSV: every input column echoed back,
// followed by the full result column set. Rows come out in input order
// regardless of which worker finished first.
func WriteResults(path string, header []string, results []Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()

	if err := writeResultsTo(f, header, results); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func writeResultsTo(w io.Writer, header []string, results []Result) error {
	writer := csv.NewWriter(w)

	outHeader := append(append([]string{}, header...), resultColumns...)
	if err := writer.Write(outHeader); err != nil {
		return err
	}

	for _, res := range results {
		row := make([]string, len(header))
		copy(row, res.Record.Fields)

		row = append(row,
			strconv.FormatBool(res.HasApartment),
			res.ApartmentType,
			res.UnitValue,
			res.MainAddress,
			strconv.FormatBool(res.Rule.IsApartment),
			strconv.Itoa(res.Rule.Confidence),
			res.Rule.Keywords,
			res.Placekey,
			res.PlacekeyConfidence,
			strconv.FormatBool(res.PlacekeySuccess),
			res.ApartmentTypeEnhanced,
			res.MainAddressEnhanced,
			res.AccessCode,
			strconv.FormatBool(res.Final.IsApartment),
			strconv.Itoa(res.Final.Confidence),
			res.Final.Keywords,
			string(res.Final.Status),
			strconv.FormatBool(res.Final.Conflict),
		)
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
