package supabase

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pogibrader/noted/internal/common"
)

// Upload stores data under bucket/key without overwrite permission: an
// existing key is rejected with common.ErrKeyExists instead of clobbered.
func (c *Client) Upload(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	u := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.endpoint, bucket, key)

	resp, err := c.do(ctx, http.MethodPost, u, data, map[string]string{
		"Content-Type": contentType,
		"x-upsert":     "false",
	})
	if err != nil {
		return err
	}
	raw, err := readBody(resp)
	if err != nil {
		return fmt.Errorf("read upload response: %w", err)
	}

	switch {
	case resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusConflict:
		return fmt.Errorf("%w: %s/%s", common.ErrKeyExists, bucket, key)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s", common.ErrUnauthorized, raw)
	default:
		return fmt.Errorf("upload failed: status %d: %s", resp.StatusCode, raw)
	}
}

// PublicURL resolves the public URL for an object, mirroring the hosted
// service's getPublicUrl.
func (c *Client) PublicURL(bucket, key string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.endpoint, bucket, key)
}
