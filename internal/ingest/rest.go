package ingest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/elevata-labs/elevata-core/internal/catalog"
	"github.com/elevata-labs/elevata-core/internal/elvterr"
	"github.com/elevata-labs/elevata-core/internal/engine"
)

// RestConnector performs a paginated HTTP GET against ds.ConnectorURL with a
// context-bound timeout, grounded on original_source's REST import
// connectors (SPEC_FULL.md section "Supplemented Features"), kept behind
// the same three-way ingest dispatch rather than ported file-for-file.
type RestConnector struct {
	Target     engine.Engine
	HTTPClient *http.Client
	PageParam  string // query param carrying the page cursor/offset, default "page"
	Timeout    time.Duration
}

type restPage struct {
	Rows     []map[string]any `json:"rows"`
	NextPage string           `json:"next_page"`
}

func (c RestConnector) Ingest(ctx context.Context, ds catalog.SourceDataset, targetSchema, targetTable string) (int64, error) {
	if ds.ConnectorURL == "" {
		return 0, elvterr.New(elvterr.KindIngest, "rest ingest: dataset %s has no ConnectorURL configured", ds.Key())
	}
	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	timeout := c.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	var total int64
	cursor := ""
	for {
		page, err := c.fetchPage(ctx, client, timeout, ds.ConnectorURL, cursor)
		if err != nil {
			return total, elvterr.Wrap(elvterr.KindIngest, err, "rest ingest: fetching %s", ds.Key())
		}
		if len(page.Rows) > 0 {
			statements := make([]string, 0, len(page.Rows))
			for _, r := range page.Rows {
				statements = append(statements, buildInsertStatement(targetSchema, targetTable, engine.Row(r)))
			}
			if err := c.Target.ExecuteMany(ctx, statements); err != nil {
				return total, elvterr.Wrap(elvterr.KindIngest, err, "rest ingest: writing %s.%s", targetSchema, targetTable)
			}
			total += int64(len(page.Rows))
		}
		if page.NextPage == "" {
			break
		}
		cursor = page.NextPage
	}
	return total, nil
}

func (c RestConnector) fetchPage(ctx context.Context, client *http.Client, timeout time.Duration, url, cursor string) (restPage, error) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	reqURL := url
	param := c.PageParam
	if param == "" {
		param = "page"
	}
	if cursor != "" {
		reqURL = url + "?" + param + "=" + cursor
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, reqURL, nil)
	if err != nil {
		return restPage{}, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return restPage{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return restPage{}, elvterr.New(elvterr.KindIngest, "rest ingest: unexpected status %d from %s", resp.StatusCode, reqURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return restPage{}, err
	}
	var page restPage
	if err := json.Unmarshal(body, &page); err != nil {
		return restPage{}, err
	}
	return page, nil
}
