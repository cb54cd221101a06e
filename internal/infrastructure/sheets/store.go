// Package sheets implementa el puerto ledger.Store sobre una planilla de
// Google Sheets: cada tabla del libro es una hoja (worksheet) del documento.
package sheets

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/MiltonKlun/Pombot-PG-Original/internal/domain"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/ledger"
	"github.com/MiltonKlun/Pombot-PG-Original/pkg/logger"
)

// Store conexión a una planilla concreta.
type Store struct {
	svc           *sheets.Service
	spreadsheetID string
	log           *logger.Logger
	ctx           context.Context
}

// NewStore abre la conexión contra la planilla configurada usando una
// credencial de service account.
func NewStore(ctx context.Context, spreadsheetID, credentialsFile string, log *logger.Logger) (*Store, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("cliente de sheets: %w", err)
	}
	return &Store{svc: svc, spreadsheetID: spreadsheetID, log: log, ctx: ctx}, nil
}

// Table devuelve la hoja con ese título, o domain.ErrNotFound si no existe.
func (s *Store) Table(name string) (ledger.Table, error) {
	titles, err := s.TableTitles()
	if err != nil {
		return nil, err
	}
	for _, title := range titles {
		if title == name {
			return &table{store: s, name: name}, nil
		}
	}
	return nil, fmt.Errorf("hoja %q: %w", name, domain.ErrNotFound)
}

// CreateTable agrega una hoja nueva y escribe la fila de cabecera.
func (s *Store) CreateTable(name string, headers []string) (ledger.Table, error) {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: name},
			},
		}},
	}
	if _, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(s.ctx).Do(); err != nil {
		return nil, s.mapDocErr(err)
	}
	t := &table{store: s, name: name}
	headerRow := make([]any, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}
	if err := t.writeRange(fmt.Sprintf("'%s'!A1", name), [][]any{headerRow}); err != nil {
		return nil, err
	}
	s.log.Info().Str("hoja", name).Msg("hoja creada")
	return t, nil
}

// TableTitles lista los títulos de todas las hojas del documento.
func (s *Store) TableTitles() ([]string, error) {
	doc, err := s.svc.Spreadsheets.Get(s.spreadsheetID).
		Fields("sheets.properties.title").Context(s.ctx).Do()
	if err != nil {
		return nil, s.mapDocErr(err)
	}
	titles := make([]string, 0, len(doc.Sheets))
	for _, sheet := range doc.Sheets {
		titles = append(titles, sheet.Properties.Title)
	}
	return titles, nil
}

// mapErr traduce errores de operaciones sobre rangos de una hoja: 404 es una
// hoja inexistente, cualquier otra cosa es backend inaccesible.
func (s *Store) mapErr(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == 404 {
		return fmt.Errorf("sheets: %s: %w", apiErr.Message, domain.ErrNotFound)
	}
	return fmt.Errorf("sheets: %v: %w", err, domain.ErrNotConnected)
}

// mapDocErr traduce errores de operaciones sobre el documento entero. Un 404
// acá es un SHEET_ID mal configurado, no una hoja ausente: si se devolviera
// ErrNotFound los agregadores lo leerían como "mes sin actividad" y el
// balance saldría en cero con la planilla inaccesible.
func (s *Store) mapDocErr(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == 404 {
		return fmt.Errorf("sheets: planilla %s inexistente: %w", s.spreadsheetID, domain.ErrNotConnected)
	}
	return s.mapErr(err)
}

type table struct {
	store *Store
	name  string
}

func (t *table) Name() string { return t.name }

func (t *table) Headers() ([]string, error) {
	values, err := t.readRange(fmt.Sprintf("'%s'!1:1", t.name))
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, nil
	}
	headers := make([]string, 0, len(values[0]))
	for _, cell := range values[0] {
		headers = append(headers, fmt.Sprint(cell))
	}
	return headers, nil
}

func (t *table) Rows() ([]ledger.Row, error) {
	values, err := t.readRange(fmt.Sprintf("'%s'", t.name))
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, nil
	}
	headers := make([]string, 0, len(values[0]))
	for _, cell := range values[0] {
		headers = append(headers, fmt.Sprint(cell))
	}
	rows := make([]ledger.Row, 0, len(values)-1)
	for i, raw := range values[1:] {
		cells := make([]string, 0, len(raw))
		for _, cell := range raw {
			cells = append(cells, fmt.Sprint(cell))
		}
		rows = append(rows, ledger.NewRow(i+2, headers, cells))
	}
	return rows, nil
}

func (t *table) AppendRow(values []any) error {
	vr := &sheets.ValueRange{Values: [][]any{values}}
	_, err := t.store.svc.Spreadsheets.Values.
		Append(t.store.spreadsheetID, fmt.Sprintf("'%s'!A1", t.name), vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(t.store.ctx).Do()
	if err != nil {
		return t.store.mapErr(err)
	}
	return nil
}

func (t *table) UpdateCell(rowNumber, column int, value any) error {
	cell := fmt.Sprintf("'%s'!%s%d", t.name, columnLetter(column), rowNumber)
	return t.writeRange(cell, [][]any{{value}})
}

func (t *table) Find(value string, column int) (int, error) {
	colRange := fmt.Sprintf("'%s'!%s:%s", t.name, columnLetter(column), columnLetter(column))
	values, err := t.readRange(colRange)
	if err != nil {
		return 0, err
	}
	// La fila 1 es cabecera; los datos arrancan en la 2.
	for i, raw := range values {
		if i == 0 || len(raw) == 0 {
			continue
		}
		if fmt.Sprint(raw[0]) == value {
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("valor %q en %s: %w", value, t.name, domain.ErrNotFound)
}

// Rewrite limpia la hoja y la reescribe completa (cabecera más datos).
func (t *table) Rewrite(headers []string, rows [][]any) error {
	_, err := t.store.svc.Spreadsheets.Values.
		Clear(t.store.spreadsheetID, fmt.Sprintf("'%s'", t.name), &sheets.ClearValuesRequest{}).
		Context(t.store.ctx).Do()
	if err != nil {
		return t.store.mapErr(err)
	}
	all := make([][]any, 0, len(rows)+1)
	headerRow := make([]any, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}
	all = append(all, headerRow)
	all = append(all, rows...)
	return t.writeRange(fmt.Sprintf("'%s'!A1", t.name), all)
}

func (t *table) readRange(a1 string) ([][]any, error) {
	resp, err := t.store.svc.Spreadsheets.Values.
		Get(t.store.spreadsheetID, a1).Context(t.store.ctx).Do()
	if err != nil {
		return nil, t.store.mapErr(err)
	}
	return resp.Values, nil
}

func (t *table) writeRange(a1 string, values [][]any) error {
	vr := &sheets.ValueRange{Values: values}
	_, err := t.store.svc.Spreadsheets.Values.
		Update(t.store.spreadsheetID, a1, vr).
		ValueInputOption("USER_ENTERED").
		Context(t.store.ctx).Do()
	if err != nil {
		return t.store.mapErr(err)
	}
	return nil
}

// columnLetter convierte un índice de columna 1-based a notación A1.
func columnLetter(column int) string {
	letters := ""
	for column > 0 {
		column--
		letters = string(rune('A'+column%26)) + letters
		column /= 26
	}
	return letters
}

var _ ledger.Store = (*Store)(nil)
var _ ledger.Table = (*table)(nil)
var _ ledger.Rewriter = (*table)(nil)
