package main

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Record summarizes one forwarded chat request. It is logged, not stored,
// and carries no request or response content.
type Record struct {
	ID          uuid.UUID
	CreatedAt   time.Time
	IP          string
	Model       string
	Stream      bool
	Messages    int
	BodySize    int
	Status      int
	Usage       FetchModeUsage
	ElapsedTime time.Duration
	Err         error
}

type FetchModeResponse struct {
	Model string         `json:"model"`
	Usage FetchModeUsage `json:"usage"`
}

type FetchModeUsage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}

func newRecord(c *gin.Context) *Record {
	return &Record{
		ID:        requestID(c),
		CreatedAt: time.Now(),
		IP:        c.ClientIP(),
	}
}

func (r *Record) readRequest(body []byte) {
	r.BodySize = len(body)
	requestBody, err := ParseRequestBody(body)
	if err != nil {
		log.Debugf("[record]: request body is not a chat request: %v", err)
		return
	}
	r.Model = requestBody.Model
	r.Stream = requestBody.Stream
	r.Messages = len(requestBody.Messages)
}

func (r *Record) readResponse(resp *UpstreamResponse) {
	r.Status = resp.StatusCode
	if resp.ContentType != "" && !strings.HasPrefix(resp.ContentType, "application/json") {
		return
	}
	var fetchResp FetchModeResponse
	if err := json.Unmarshal(resp.Body, &fetchResp); err != nil {
		return
	}
	if r.Model == "" {
		r.Model = fetchResp.Model
	}
	r.Usage = fetchResp.Usage
}

func (r *Record) fields() logrus.Fields {
	fields := logrus.Fields{
		"request_id":   r.ID.String(),
		"client_ip":    r.IP,
		"model":        r.Model,
		"stream":       r.Stream,
		"messages":     r.Messages,
		"body_size":    r.BodySize,
		"elapsed":      r.ElapsedTime,
		"total_tokens": r.Usage.TotalTokens,
	}
	if r.Status != 0 {
		fields["upstream_status"] = r.Status
	}
	return fields
}

func (r *Record) finish() {
	r.ElapsedTime = time.Since(r.CreatedAt)
	entry := log.WithFields(r.fields())
	if r.Err != nil {
		entry.Errorf("[proxy.record]: upstream call failed: %v", r.Err)
		return
	}
	entry.Info("[proxy.record]: forwarded")
}
