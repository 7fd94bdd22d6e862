package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mailforge/mailforge-backend/internal/logger"
	"github.com/mailforge/mailforge-backend/internal/utils"
)

// DocFetcher pulls shared planning documents (topic sheets, metadata)
// from a spreadsheet export endpoint.
type DocFetcher interface {
	// FetchSheet returns the sheet as tab-separated rows joined by newlines.
	FetchSheet(ctx context.Context, docID, sheetName string) (string, error)
	// FetchMeta reads the "Meta" sheet as lowercased key to value pairs
	// taken from the first two columns.
	FetchMeta(ctx context.Context, docID string) (map[string]string, error)
}

type docFetcher struct {
	log        *logger.Logger
	baseURL    string
	httpClient *http.Client
}

func NewDocFetcher(log *logger.Logger) DocFetcher {
	serviceLog := log.With("service", "DocFetcher")
	baseURL := utils.GetEnv("DOC_EXPORT_BASE_URL", "https://docs.google.com/spreadsheets/d", log)
	timeoutSec := utils.GetEnvAsInt("DOC_FETCH_TIMEOUT_SECONDS", 15, log)

	return &docFetcher{
		log:        serviceLog,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
	}
}

func (f *docFetcher) FetchSheet(ctx context.Context, docID, sheetName string) (string, error) {
	if strings.TrimSpace(docID) == "" {
		return "", fmt.Errorf("doc id required")
	}
	endpoint := fmt.Sprintf("%s/%s/gviz/tq?tqx=out:csv&sheet=%s",
		f.baseURL, url.PathEscape(docID), url.QueryEscape(sheetName))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch sheet %q: %w", sheetName, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch sheet %q: status %d", sheetName, resp.StatusCode)
	}

	rows := parseCSVRows(string(body))
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, strings.Join(row, "\t"))
	}
	return strings.Join(lines, "\n"), nil
}

func (f *docFetcher) FetchMeta(ctx context.Context, docID string) (map[string]string, error) {
	raw, err := f.FetchSheet(ctx, docID, "Meta")
	if err != nil {
		return nil, err
	}
	meta := map[string]string{}
	for _, line := range strings.Split(raw, "\n") {
		cols := strings.SplitN(line, "\t", 3)
		if len(cols) < 2 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(cols[0]))
		if key == "" {
			continue
		}
		meta[key] = strings.TrimSpace(cols[1])
	}
	return meta, nil
}

func parseCSVRows(s string) [][]string {
	r := csv.NewReader(strings.NewReader(s))
	r.FieldsPerRecord = -1
	var rows [][]string
	for {
		record, err := r.Read()
		if err != nil {
			break
		}
		empty := true
		for _, cell := range record {
			if strings.TrimSpace(cell) != "" {
				empty = false
				break
			}
		}
		if !empty {
			rows = append(rows, record)
		}
	}
	return rows
}
