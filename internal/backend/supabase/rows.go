package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pogibrader/noted/internal/common"
)

// Select fetches all rows of table where eqCol equals eqVal, ordered by
// orderCol. The PostgREST response (a JSON array) is returned as-is.
func (c *Client) Select(ctx context.Context, table, eqCol, eqVal, orderCol string, desc bool) ([]byte, error) {
	dir := "asc"
	if desc {
		dir = "desc"
	}
	q := url.Values{}
	q.Set("select", "*")
	q.Set(eqCol, "eq."+eqVal)
	q.Set("order", orderCol+"."+dir)

	resp, err := c.do(ctx, http.MethodGet, c.restURL(table)+"?"+q.Encode(), nil, nil)
	if err != nil {
		return nil, err
	}
	return restResult(resp)
}

// Insert adds a row and returns the inserted rows as a JSON array
// (server-assigned columns included).
func (c *Client) Insert(ctx context.Context, table string, row any) ([]byte, error) {
	body, err := json.Marshal(row)
	if err != nil {
		return nil, fmt.Errorf("encode row: %w", err)
	}
	resp, err := c.do(ctx, http.MethodPost, c.restURL(table), body,
		map[string]string{"Prefer": "return=representation"})
	if err != nil {
		return nil, err
	}
	return restResult(resp)
}

// Update patches the row where idCol equals idVal and returns the updated
// rows as a JSON array.
func (c *Client) Update(ctx context.Context, table, idCol, idVal string, changes any) ([]byte, error) {
	body, err := json.Marshal(changes)
	if err != nil {
		return nil, fmt.Errorf("encode changes: %w", err)
	}
	u := c.restURL(table) + "?" + url.Values{idCol: {"eq." + idVal}}.Encode()
	resp, err := c.do(ctx, http.MethodPatch, u, body,
		map[string]string{"Prefer": "return=representation"})
	if err != nil {
		return nil, err
	}
	return restResult(resp)
}

// Delete removes the row where idCol equals idVal.
func (c *Client) Delete(ctx context.Context, table, idCol, idVal string) error {
	u := c.restURL(table) + "?" + url.Values{idCol: {"eq." + idVal}}.Encode()
	resp, err := c.do(ctx, http.MethodDelete, u, nil, nil)
	if err != nil {
		return err
	}
	_, err = restResult(resp)
	return err
}

func (c *Client) restURL(table string) string {
	return c.endpoint + "/rest/v1/" + url.PathEscape(table)
}

// restResult reads a PostgREST response and maps error statuses onto the
// shared sentinels.
func restResult(resp *http.Response) ([]byte, error) {
	raw, err := readBody(resp)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	switch {
	case resp.StatusCode < 300:
		return raw, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: %s", common.ErrUnauthorized, raw)
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", common.ErrNotFound, raw)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d: %s", common.ErrInternal, resp.StatusCode, raw)
	default:
		return nil, fmt.Errorf("row store request failed: status %d: %s", resp.StatusCode, raw)
	}
}
