package syncer

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/myconcall-sys/myconcall/pkg/logger"
)

var (
	sheetHeader = []interface{}{
		"Company Name", "Date", "Time", "Phone Number", "PDF Link", "Watchlists", "Concall ID",
	}
	// Pixel widths for the visible columns.
	sheetColumnWidths = []int64{150, 130, 110, 280, 450, 200}
)

// GoogleSheetStore implements SheetStore against the Google Sheets API. The
// concall_id lives in the hidden last column.
type GoogleSheetStore struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetName     string
	logger        *logger.Logger
}

// NewGoogleSheetStore creates a SheetStore bound to one spreadsheet tab.
func NewGoogleSheetStore(ctx context.Context, creds option.ClientOption, spreadsheetID, sheetName string, log *logger.Logger) (*GoogleSheetStore, error) {
	svc, err := sheets.NewService(ctx, creds, option.WithScopes(sheets.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &GoogleSheetStore{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		logger:        log,
	}, nil
}

// EnsureHeader writes the header row and applies its formatting: bold frozen
// header, fixed column widths, hidden concall_id column.
func (s *GoogleSheetStore) EnsureHeader(ctx context.Context) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{sheetHeader}}
	_, err := s.svc.Spreadsheets.Values.
		Update(s.spreadsheetID, s.rowRange(1), vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to write sheet header: %w", err)
	}

	sheetID, err := s.numericSheetID(ctx)
	if err != nil {
		return err
	}

	requests := []*sheets.Request{
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{SheetId: sheetID, StartRowIndex: 0, EndRowIndex: 1},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						TextFormat:      &sheets.TextFormat{Bold: true},
						BackgroundColor: &sheets.Color{Red: 0.9, Green: 0.9, Blue: 0.9},
					},
				},
				Fields: "userEnteredFormat(textFormat,backgroundColor)",
			},
		},
		{
			UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
				Properties: &sheets.SheetProperties{
					SheetId:        sheetID,
					GridProperties: &sheets.GridProperties{FrozenRowCount: 1},
				},
				Fields: "gridProperties.frozenRowCount",
			},
		},
		{
			UpdateDimensionProperties: &sheets.UpdateDimensionPropertiesRequest{
				Range: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "COLUMNS",
					StartIndex: int64(len(sheetHeader) - 1),
					EndIndex:   int64(len(sheetHeader)),
				},
				Properties: &sheets.DimensionProperties{HiddenByUser: true},
				Fields:     "hiddenByUser",
			},
		},
	}
	for i, width := range sheetColumnWidths {
		requests = append(requests, &sheets.Request{
			UpdateDimensionProperties: &sheets.UpdateDimensionPropertiesRequest{
				Range: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "COLUMNS",
					StartIndex: int64(i),
					EndIndex:   int64(i + 1),
				},
				Properties: &sheets.DimensionProperties{PixelSize: width},
				Fields:     "pixelSize",
			},
		})
	}

	_, err = s.svc.Spreadsheets.
		BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{Requests: requests}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to format sheet header: %w", err)
	}
	return nil
}

// LoadIndex reads the id column of every data row and maps concall_id to its
// 1-based row number.
func (s *GoogleSheetStore) LoadIndex(ctx context.Context) (map[string]int, error) {
	readRange := fmt.Sprintf("%s!A2:G", s.sheetName)
	resp, err := s.svc.Spreadsheets.Values.
		Get(s.spreadsheetID, readRange).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet rows: %w", err)
	}

	idx := make(map[string]int)
	for i, row := range resp.Values {
		if len(row) < len(sheetHeader) {
			continue
		}
		id, ok := row[len(sheetHeader)-1].(string)
		if !ok || id == "" {
			continue
		}
		if _, exists := idx[id]; exists {
			// The invariant says this cannot happen after a completed sync;
			// keep the first row so updates stay deterministic.
			s.logger.Warn("Duplicate concall id in sheet", logger.Field("concall_id", id))
			continue
		}
		idx[id] = i + 2
	}
	return idx, nil
}

// Append adds a new row after the existing data.
func (s *GoogleSheetStore) Append(ctx context.Context, row SheetRow) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{row.Values()}}
	_, err := s.svc.Spreadsheets.Values.
		Append(s.spreadsheetID, fmt.Sprintf("%s!A:G", s.sheetName), vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append sheet row: %w", err)
	}
	return nil
}

// Update overwrites the fields of an existing row.
func (s *GoogleSheetStore) Update(ctx context.Context, rowNum int, row SheetRow) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{row.Values()}}
	_, err := s.svc.Spreadsheets.Values.
		Update(s.spreadsheetID, s.rowRange(rowNum), vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to update sheet row %d: %w", rowNum, err)
	}
	return nil
}

func (s *GoogleSheetStore) rowRange(rowNum int) string {
	return fmt.Sprintf("%s!A%d:G%d", s.sheetName, rowNum, rowNum)
}

func (s *GoogleSheetStore) numericSheetID(ctx context.Context) (int64, error) {
	meta, err := s.svc.Spreadsheets.
		Get(s.spreadsheetID).
		Fields("sheets.properties").
		Context(ctx).
		Do()
	if err != nil {
		return 0, fmt.Errorf("failed to read spreadsheet metadata: %w", err)
	}
	for _, sh := range meta.Sheets {
		if sh.Properties != nil && sh.Properties.Title == s.sheetName {
			return sh.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("sheet %q not found in spreadsheet", s.sheetName)
}
