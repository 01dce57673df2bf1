package directory

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/lib/pq"
)

// Importer errors
var (
	ErrEmptyFile = errors.New("file is empty")
	ErrNoHeaders = errors.New("no header row detected in CSV file")
)

// PreviewRows is how many data rows the preview endpoint returns
const PreviewRows = 5

// headerAliases maps producer columns to the header spellings seen in the
// wild (exports from the old spreadsheet use French column names).
var headerAliases = map[string][]string{
	"company_name": {"company_name", "entreprise", "societe", "société", "company"},
	"contact_name": {"contact_name", "contact", "nom", "nom_contact"},
	"email":        {"email", "mail", "e-mail", "courriel"},
	"phone":        {"phone", "telephone", "téléphone", "tel"},
	"address":      {"address", "adresse"},
	"postal_code":  {"postal_code", "code_postal", "cp", "zip"},
	"city":         {"city", "ville"},
	"region":       {"region", "région"},
	"description":  {"description"},
	"website":      {"website", "site_web", "site", "url"},
	"products":     {"products", "produits"},
	"categories":   {"categories", "catégories", "categorie", "catégorie"},
}

// Importer reads producer CSV files and inserts one producer per data row,
// recording the attempt in import_history.
type Importer struct {
	store *Store
}

// NewImporter creates a new CSV importer
func NewImporter(store *Store) *Importer {
	return &Importer{store: store}
}

// ImportResult summarizes one import run
type ImportResult struct {
	TotalRows    int      `json:"total_rows"`
	ImportedRows int      `json:"imported_rows"`
	FailedRows   int      `json:"failed_rows"`
	Errors       []string `json:"errors,omitempty"`
}

func normalizeHeader(header string) string {
	// Spreadsheet exports often carry a UTF-8 BOM on the first header cell.
	return strings.ToLower(strings.TrimSpace(strings.Trim(header, "\uFEFF")))
}

// mapHeaders resolves each CSV column index to a producer field name.
// Unrecognized columns are ignored.
func mapHeaders(headers []string) map[int]string {
	mapping := make(map[int]string)
	for idx, header := range headers {
		normalized := normalizeHeader(header)
		for field, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized == alias {
					mapping[idx] = field
					break
				}
			}
		}
	}
	return mapping
}

func producerFromRecord(record []string, mapping map[int]string) *Producer {
	p := &Producer{IsVisible: true}
	for idx, field := range mapping {
		if idx >= len(record) {
			continue
		}
		value := strings.TrimSpace(record[idx])
		switch field {
		case "company_name":
			p.CompanyName = value
		case "contact_name":
			p.ContactName = value
		case "email":
			p.Email = value
		case "phone":
			p.Phone = value
		case "address":
			p.Address = value
		case "postal_code":
			p.PostalCode = value
		case "city":
			p.City = value
		case "region":
			p.Region = value
		case "description":
			p.Description = value
		case "website":
			p.Website = value
		case "products":
			p.Products = splitList(value)
		case "categories":
			p.Categories = splitList(value)
		}
	}
	if p.CompanyName == "" {
		p.CompanyName = "Non spécifié"
	}
	return p
}

// splitList parses semicolon-separated multi-value cells
func splitList(value string) pq.StringArray {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ";")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Preview parses up to PreviewRows data rows without writing anything
func (im *Importer) Preview(r io.Reader) ([]map[string]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	mapping := mapHeaders(headers)
	if len(mapping) == 0 {
		return nil, ErrNoHeaders
	}

	var preview []map[string]string
	for len(preview) < PreviewRows {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row: %w", err)
		}

		row := make(map[string]string)
		for idx, field := range mapping {
			if idx < len(record) {
				row[field] = strings.TrimSpace(record[idx])
			}
		}
		preview = append(preview, row)
	}
	return preview, nil
}

// Import reads the whole CSV and inserts one producer per data row. A row
// with an empty email is still attempted; the unique constraint (or its
// absence) decides, matching the historical import behavior. Per-row
// failures are collected, not fatal.
func (im *Importer) Import(ctx context.Context, filename string, r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	mapping := mapHeaders(headers)
	if len(mapping) == 0 {
		return nil, ErrNoHeaders
	}

	result := &ImportResult{}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.TotalRows++
			result.FailedRows++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		result.TotalRows++
		producer := producerFromRecord(record, mapping)
		if err := im.store.Create(ctx, producer); err != nil {
			result.FailedRows++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d (%s): %v", line, producer.Email, err))
			continue
		}
		result.ImportedRows++
	}

	history := &ImportHistory{
		Filename:     filename,
		Source:       SourceCSV,
		TotalRows:    result.TotalRows,
		ImportedRows: result.ImportedRows,
		FailedRows:   result.FailedRows,
		Errors:       result.Errors,
	}
	if err := im.store.CreateImportHistory(ctx, history); err != nil {
		log.Printf("[import] failed to record import history for %s: %v", filename, err)
	}

	log.Printf("[import] %s: %d rows, %d imported, %d failed",
		filename, result.TotalRows, result.ImportedRows, result.FailedRows)
	return result, nil
}
