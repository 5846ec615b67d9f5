package kafka

import (
	"time"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/internal/usecase"
	"github.com/DRSN-tech/dropship-sync/pkg/e"
	"github.com/jimlawless/whereami"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// EventEncoder кодирует события аудита в protobuf Struct. Учётные данные и контакты покупателя в события не попадают.
type EventEncoder struct{}

var _ usecase.EventEncoder = EventEncoder{}

func (EventEncoder) EncodeSyncLog(entry *domain.SyncLogEntry) ([]byte, error) {
	details := make([]any, 0, len(entry.Errors))
	for _, d := range entry.Errors {
		details = append(details, map[string]any{
			"external_id": d.ExternalID,
			"stage":       d.Stage,
			"message":     d.Message,
		})
	}

	return encode(map[string]any{
		"event_type":   string(usecase.EventSyncLogRecorded),
		"id":           entry.ID.String(),
		"operation":    string(entry.Operation),
		"provider":     entry.Provider.String(),
		"outcome":      string(entry.Outcome),
		"processed":    entry.Processed,
		"updated":      entry.Updated,
		"failed":       entry.Failed,
		"errors":       details,
		"snapshot_key": entry.SnapshotKey,
		"started_at":   entry.StartedAt.Format(time.RFC3339Nano),
		"finished_at":  entry.FinishedAt.Format(time.RFC3339Nano),
	})
}

func (EventEncoder) EncodeFulfillment(record *domain.FulfillmentRecord) ([]byte, error) {
	fields := map[string]any{
		"event_type":          string(usecase.EventFulfillmentRecorded),
		"id":                  record.ID.String(),
		"order_id":            record.OrderID,
		"external_order_id":   record.ExternalOrderID,
		"provider":            record.Provider.String(),
		"product_external_id": record.ProductExternalID,
		"quantity":            record.Quantity,
		"status":              string(record.Status),
		"error_message":       record.ErrorMessage,
		"country":             record.ShippingAddress.Country,
		"created_at":          record.CreatedAt.Format(time.RFC3339Nano),
	}
	if record.TrackingNumber != nil {
		fields["tracking_number"] = *record.TrackingNumber
	}
	return encode(fields)
}

// DecodeEvent разбирает payload события обратно в map.
func DecodeEvent(payload []byte) (map[string]any, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(payload, &s); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	return s.AsMap(), nil
}

func encode(fields map[string]any) ([]byte, error) {
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	return proto.Marshal(s)
}
