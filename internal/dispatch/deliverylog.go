// internal/dispatch/deliverylog.go
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"card-dispatch/internal/common/logger"
)

// DeliveryLog indexes terminal message statuses into Elasticsearch for audit
// and search. Writes are best-effort; a failed index never fails the message.
type DeliveryLog struct {
	client *elasticsearch.Client
	index  string
	log    logger.Logger
}

func NewDeliveryLog(client *elasticsearch.Client, index string, log logger.Logger) *DeliveryLog {
	return &DeliveryLog{
		client: client,
		index:  index,
		log:    log.WithFields(map[string]interface{}{"component": "delivery-log"}),
	}
}

type deliveryDocument struct {
	JobID             string    `json:"jobId"`
	MessageID         string    `json:"messageId"`
	GuestID           string    `json:"guestId"`
	GuestName         string    `json:"guestName"`
	To                string    `json:"to"`
	Channel           string    `json:"channel"`
	Status            string    `json:"status"`
	Error             string    `json:"error,omitempty"`
	ErrorCode         string    `json:"errorCode,omitempty"`
	ProviderMessageID string    `json:"providerMessageId,omitempty"`
	RecordedAt        time.Time `json:"recordedAt"`
}

// Record indexes one terminal status, keyed by message ID so a replay
// overwrites rather than duplicates.
func (d *DeliveryLog) Record(ctx context.Context, jobID string, st MessageStatus) error {
	doc := deliveryDocument{
		JobID:             jobID,
		MessageID:         st.ID,
		GuestID:           st.GuestID,
		GuestName:         st.GuestName,
		To:                st.To,
		Channel:           string(st.Channel),
		Status:            string(st.Status),
		Error:             st.Error,
		ErrorCode:         st.ErrorCode,
		ProviderMessageID: st.ProviderMessageID,
		RecordedAt:        time.Now().UTC(),
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal delivery document: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      d.index,
		DocumentID: st.ID,
		Body:       bytes.NewReader(payload),
	}
	res, err := req.Do(ctx, d.client)
	if err != nil {
		return fmt.Errorf("failed to index delivery document: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("delivery log index error: %s", res.Status())
	}
	return nil
}
