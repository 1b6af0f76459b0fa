package services

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/poofware/macro-service/internal/dtos"
	"github.com/poofware/macro-service/internal/models"
)

// DecodeRowData turns a stored payload into its column map. An empty or
// "null" payload decodes to an empty map.
func DecodeRowData(raw string) (map[string]string, error) {
	out := map[string]string{}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "null" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(trimmed), &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string]string{}
	}
	return out, nil
}

// EncodeRowData writes the column map back without HTML escaping.
func EncodeRowData(data map[string]string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// PayloadContains is the in-process twin of the repositories' substring
// filter: case-sensitive, on the encoded text.
func PayloadContains(raw, documentID string) bool {
	return strings.Contains(raw, documentID)
}

// ToExcelDataResponse decodes a row for transport.
func ToExcelDataResponse(row *models.ExcelDataRow) (dtos.ExcelDataResponse, error) {
	data, err := DecodeRowData(row.RowData)
	if err != nil {
		return dtos.ExcelDataResponse{}, err
	}
	return dtos.ExcelDataResponse{
		ID:           row.ID,
		FileName:     row.FileName,
		SheetName:    row.SheetName,
		RowIndex:     row.RowIndex,
		Data:         data,
		CreatedDate:  row.CreatedDate,
		ModifiedDate: row.ModifiedDate,
		Version:      row.RowVersion,
		ModifiedBy:   row.ModifiedBy,
	}, nil
}

