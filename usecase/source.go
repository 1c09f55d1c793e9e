// Package usecase holds what the dashboard knows about use-case list items
// beyond the aggregation engine: decoding them, filtering the library and
// choosing cover images.
package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/dtkav/casemap/aggregate"
	"github.com/dtkav/casemap/logging"
)

// Decode reads a JSON array of list items. Any other JSON value yields an
// empty catalogue, matching how the web page treated a non-array payload.
// Elements that are not objects are skipped; the rest of the array survives.
func Decode(r io.Reader) ([]aggregate.Record, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode items: %w", err)
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, nil
	}

	records := make([]aggregate.Record, 0, len(elems))
	skipped := 0
	for _, elem := range elems {
		var rec aggregate.Record
		if err := json.Unmarshal(elem, &rec); err != nil || rec == nil {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	if skipped > 0 {
		logging.Warn("skipped malformed items", "skipped", skipped, "kept", len(records))
	}
	return records, nil
}

// ReadFile decodes the items stored at path.
func ReadFile(path string) ([]aggregate.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open items: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Fetch loads items from an HTTP endpoint such as /api/get-usecase-data.
func Fetch(ctx context.Context, client *http.Client, url string) ([]aggregate.Record, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch items: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return Decode(resp.Body)
}
