package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReadProductsCSV parses a product catalog export. The first record is the
// header; columns are matched by name so the column order is free. Required
// columns: product_id, sku, name. Optional: description, supplier_id,
// category.
func ReadProductsCSV(r io.Reader) ([]Product, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"product_id", "sku", "name"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("csv is missing required column %q", required)
		}
	}

	var products []Product
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("reading csv line %d: %w", line, err)
		}

		field := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		productID, err := strconv.ParseUint(field("product_id"), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: invalid product_id %q", line, field("product_id"))
		}

		var supplierID uint64
		if raw := field("supplier_id"); raw != "" {
			supplierID, err = strconv.ParseUint(raw, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("csv line %d: invalid supplier_id %q", line, raw)
			}
		}

		products = append(products, Product{
			ProductID:   productID,
			SKU:         field("sku"),
			Name:        field("name"),
			Description: field("description"),
			SupplierID:  supplierID,
			Category:    field("category"),
		})
	}

	return products, nil
}
