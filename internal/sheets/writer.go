package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"log/slog"
	"time"

	"github.com/EdvardGK/reduzer-summary/internal/common"
	"github.com/EdvardGK/reduzer-summary/internal/report"
	"github.com/EdvardGK/reduzer-summary/internal/service"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Writer publishes reports to a Google spreadsheet.
type Writer struct {
	service *sheets.Service
	logger  *slog.Logger
	config  Config
}

var _ report.Writer = (*Writer)(nil)

// NewWriter creates a new Google Sheets report writer.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	ts, err := tokenSource(ctx, config)
	if err != nil {
		return nil, err
	}
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, ts)))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return &Writer{
		config:  config,
		service: srv,
		logger:  logger,
	}, nil
}

// Write replaces the spreadsheet's contents with d.
func (w *Writer) Write(ctx context.Context, d *report.Data) error {
	data := PrepareTabs(d)
	w.logger.Info("starting sheets export", "tabs", len(data.Tabs), "rows", data.Rows())

	retryOpts := service.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	var sheetIDs map[string]int64
	var spreadsheetID string
	err := common.WithRetry(ctx, "prepare spreadsheet", func(ctx context.Context) error {
		var err error
		spreadsheetID, sheetIDs, err = w.prepareSpreadsheet(ctx, data.Titles())
		return classifyError(err)
	}, retryOpts)
	if err != nil {
		return fmt.Errorf("failed to prepare spreadsheet: %w", err)
	}

	for _, tab := range data.Tabs {
		for _, b := range batches(tab.Title, tab.Values, w.config.BatchSize) {
			err := common.WithRetry(ctx, "write "+b.Range, func(ctx context.Context) error {
				return classifyError(w.writeBatch(ctx, spreadsheetID, b))
			}, retryOpts)
			if err != nil {
				return fmt.Errorf("failed to write %s: %w", b.Range, err)
			}
		}
	}

	if w.config.EnableFormatting {
		requests := formatRequests(data, sheetIDs)
		err = common.WithRetry(ctx, "format tabs", func(ctx context.Context) error {
			_, err := w.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
				Requests: requests,
			}).Context(ctx).Do()
			return classifyError(err)
		}, retryOpts)
		if err != nil {
			// Formatting is cosmetic; the data is already written.
			w.logger.Warn("failed to apply formatting", "error", err)
		}
	}

	w.logger.Info("sheets export completed",
		"spreadsheet_id", spreadsheetID,
		"url", "https://docs.google.com/spreadsheets/d/"+spreadsheetID,
		"rows_written", data.Rows())
	return nil
}

// prepareSpreadsheet opens or creates the spreadsheet, adds missing tabs and
// clears the ones being written. It returns the sheet id of every tab.
func (w *Writer) prepareSpreadsheet(ctx context.Context, titles []string) (string, map[string]int64, error) {
	var ss *sheets.Spreadsheet
	var err error
	if w.config.SpreadsheetID != "" {
		ss, err = w.service.Spreadsheets.Get(w.config.SpreadsheetID).Context(ctx).Do()
		if err != nil {
			return "", nil, fmt.Errorf("unable to access spreadsheet %s: %w", w.config.SpreadsheetID, err)
		}
	} else {
		ss, err = w.service.Spreadsheets.Create(newSpreadsheet(w.config, titles)).Context(ctx).Do()
		if err != nil {
			return "", nil, fmt.Errorf("unable to create spreadsheet: %w", err)
		}
		w.logger.Info("created new spreadsheet", "id", ss.SpreadsheetId, "url", ss.SpreadsheetUrl)
		// Pin the id so retries and later writes reuse this spreadsheet.
		w.config.SpreadsheetID = ss.SpreadsheetId
	}

	ids := sheetIDs(ss)
	if missing := missingTabs(ids, titles); len(missing) > 0 {
		requests := make([]*sheets.Request, 0, len(missing))
		for _, title := range missing {
			requests = append(requests, &sheets.Request{
				AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: title}},
			})
		}
		resp, err := w.service.Spreadsheets.BatchUpdate(ss.SpreadsheetId, &sheets.BatchUpdateSpreadsheetRequest{
			Requests: requests,
		}).Context(ctx).Do()
		if err != nil {
			return "", nil, fmt.Errorf("unable to add tabs: %w", err)
		}
		for _, reply := range resp.Replies {
			if reply.AddSheet != nil && reply.AddSheet.Properties != nil {
				ids[reply.AddSheet.Properties.Title] = reply.AddSheet.Properties.SheetId
			}
		}
	}

	ranges := make([]string, len(titles))
	for i, title := range titles {
		ranges[i] = fmt.Sprintf("'%s'", title)
	}
	_, err = w.service.Spreadsheets.Values.BatchClear(ss.SpreadsheetId, &sheets.BatchClearValuesRequest{
		Ranges: ranges,
	}).Context(ctx).Do()
	if err != nil {
		return "", nil, fmt.Errorf("unable to clear tabs: %w", err)
	}

	return ss.SpreadsheetId, ids, nil
}

func (w *Writer) writeBatch(ctx context.Context, spreadsheetID string, b batch) error {
	_, err := w.service.Spreadsheets.Values.Update(spreadsheetID, b.Range, &sheets.ValueRange{Values: b.Values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return err
	}
	w.logger.Debug("wrote batch", "range", b.Range, "rows", len(b.Values))
	return nil
}

func newSpreadsheet(c Config, titles []string) *sheets.Spreadsheet {
	tabs := make([]*sheets.Sheet, len(titles))
	for i, title := range titles {
		tabs[i] = &sheets.Sheet{Properties: &sheets.SheetProperties{Title: title}}
	}
	return &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    c.SpreadsheetName,
			TimeZone: c.TimeZone,
		},
		Sheets: tabs,
	}
}

func sheetIDs(ss *sheets.Spreadsheet) map[string]int64 {
	ids := make(map[string]int64, len(ss.Sheets))
	for _, s := range ss.Sheets {
		if s.Properties != nil {
			ids[s.Properties.Title] = s.Properties.SheetId
		}
	}
	return ids
}

func missingTabs(ids map[string]int64, titles []string) []string {
	var missing []string
	for _, title := range titles {
		if _, ok := ids[title]; !ok {
			missing = append(missing, title)
		}
	}
	return missing
}

// formatRequests bolds header rows, freezes the top rows and auto-sizes the
// columns of every tab.
func formatRequests(data TabData, ids map[string]int64) []*sheets.Request {
	var requests []*sheets.Request
	for _, tab := range data.Tabs {
		id, ok := ids[tab.Title]
		if !ok {
			continue
		}
		for _, row := range tab.HeaderRows {
			requests = append(requests, &sheets.Request{
				RepeatCell: &sheets.RepeatCellRequest{
					Range: &sheets.GridRange{
						SheetId:       id,
						StartRowIndex: int64(row),
						EndRowIndex:   int64(row + 1),
					},
					Cell: &sheets.CellData{
						UserEnteredFormat: &sheets.CellFormat{
							TextFormat: &sheets.TextFormat{Bold: true},
						},
					},
					Fields: "userEnteredFormat.textFormat",
				},
			})
		}
		if tab.FrozenRows > 0 {
			requests = append(requests, &sheets.Request{
				UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
					Properties: &sheets.SheetProperties{
						SheetId:        id,
						GridProperties: &sheets.GridProperties{FrozenRowCount: int64(tab.FrozenRows)},
					},
					Fields: "gridProperties.frozenRowCount",
				},
			})
		}
		requests = append(requests, &sheets.Request{
			AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
				Dimensions: &sheets.DimensionRange{
					SheetId:   id,
					Dimension: "COLUMNS",
				},
			},
		})
	}
	return requests
}

// classifyError maps API failures onto the retry policy: 429 is a rate
// limit, other 4xx responses are permanent.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", common.ErrRateLimit, err)
	case apiErr.Code >= 400 && apiErr.Code < 500:
		return common.Permanent(err)
	default:
		return err
	}
}
