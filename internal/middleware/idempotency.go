package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	idempotencyHeader = "Idempotency-Key"
	idempotencyTTL    = 24 * time.Hour
)

// storedReply is the cached response for an idempotent request.
type storedReply struct {
	StatusCode  int             `json:"status_code"`
	Body        json.RawMessage `json:"body"`
	ContentType string          `json:"content_type"`
}

// captureWriter wraps gin.ResponseWriter to record the response body.
type captureWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency returns middleware that replays cached responses for repeated
// mutating requests carrying the same Idempotency-Key header. A client retry
// of a ride request or an accept therefore cannot double-apply.
func Idempotency(redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
		default:
			c.Next()
			return
		}

		key := c.GetHeader(idempotencyHeader)
		if key == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		cacheKey := "idempotency:" + key

		cached, err := loadReply(ctx, redisClient, cacheKey)
		if err != nil && err != redis.Nil {
			// Redis trouble: serve the request without idempotency.
			c.Next()
			return
		}

		if cached != nil {
			contentType := cached.ContentType
			if contentType == "" {
				contentType = "application/json"
			}
			c.Data(cached.StatusCode, contentType, cached.Body)
			c.Abort()
			return
		}

		w := &captureWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = w

		c.Next()

		if c.Writer.Status() >= 200 && c.Writer.Status() < 500 {
			reply := storedReply{
				StatusCode:  c.Writer.Status(),
				Body:        w.body.Bytes(),
				ContentType: c.Writer.Header().Get("Content-Type"),
			}
			_ = saveReply(ctx, redisClient, cacheKey, &reply)
		}
	}
}

func loadReply(ctx context.Context, client *redis.Client, key string) (*storedReply, error) {
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}

	var reply storedReply
	if err := json.Unmarshal(data, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

func saveReply(ctx context.Context, client *redis.Client, key string, reply *storedReply) error {
	data, err := json.Marshal(reply)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, data, idempotencyTTL).Err()
}
