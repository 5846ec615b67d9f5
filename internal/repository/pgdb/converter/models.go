package converter

import "time"

// ProviderConfigModel представляет запись таблицы dropship_api_configs в PostgreSQL.
type ProviderConfigModel struct {
	ID           string     `db:"id"`
	Provider     string     `db:"provider"`
	APIKey       string     `db:"api_key"`
	APISecret    *string    `db:"api_secret"`
	Settings     []byte     `db:"settings"`
	IsActive     bool       `db:"is_active"`
	CreatedAt    time.Time  `db:"created_at"`
	SupersededAt *time.Time `db:"superseded_at"`
}

// CatalogEntryModel представляет запись таблицы dropship_products в PostgreSQL.
// Десятичные значения читаются как текст (::text), чтобы не терять точность.
type CatalogEntryModel struct {
	ID                  string     `db:"id"`
	StorefrontProductID string     `db:"storefront_product_id"`
	Provider            string     `db:"provider"`
	ExternalID          string     `db:"external_id"`
	Title               string     `db:"title"`
	Description         string     `db:"description"`
	Price               string     `db:"price"`
	SKU                 string     `db:"sku"`
	Category            string     `db:"category"`
	Tags                []string   `db:"tags"`
	Images              []string   `db:"images"`
	StockLevel          int        `db:"stock_level"`
	ShippingTime        string     `db:"shipping_time"`
	Weight              *string    `db:"weight"`
	Dimensions          []byte     `db:"dimensions"`
	Variants            []byte     `db:"variants"`
	IsActive            bool       `db:"is_active"`
	LastSyncedAt        *time.Time `db:"last_synced_at"`
	CreatedAt           time.Time  `db:"created_at"`
	UpdatedAt           *time.Time `db:"updated_at"`
}

// StorefrontProductModel представляет запись таблицы products (витрина).
type StorefrontProductModel struct {
	ID               string     `db:"id"`
	Name             string     `db:"name"`
	Description      string     `db:"description"`
	Price            string     `db:"price"`
	Category         string     `db:"category"`
	Images           []string   `db:"images"`
	Stock            int        `db:"stock"`
	SourceProvider   string     `db:"source_provider"`
	SourceExternalID string     `db:"source_external_id"`
	IsActive         bool       `db:"is_active"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        *time.Time `db:"updated_at"`
}

// SyncLogModel представляет запись таблицы dropship_sync_logs.
type SyncLogModel struct {
	ID          string    `db:"id"`
	Operation   string    `db:"operation"`
	Provider    string    `db:"provider"`
	Outcome     string    `db:"outcome"`
	Processed   int       `db:"processed"`
	Updated     int       `db:"updated"`
	Failed      int       `db:"failed"`
	Errors      []byte    `db:"errors"`
	SnapshotKey *string   `db:"snapshot_key"`
	StartedAt   time.Time `db:"started_at"`
	FinishedAt  time.Time `db:"finished_at"`
}

// FulfillmentModel представляет запись таблицы dropship_fulfillments.
type FulfillmentModel struct {
	ID                string    `db:"id"`
	OrderID           string    `db:"order_id"`
	ExternalOrderID   *string   `db:"external_order_id"`
	Provider          string    `db:"provider"`
	ProductExternalID string    `db:"product_external_id"`
	Customer          []byte    `db:"customer"`
	ShippingAddress   []byte    `db:"shipping_address"`
	Quantity          int       `db:"quantity"`
	Status            string    `db:"status"`
	TrackingNumber    *string   `db:"tracking_number"`
	ErrorMessage      *string   `db:"error_message"`
	RawResponse       []byte    `db:"raw_response"`
	CreatedAt         time.Time `db:"created_at"`
}

// OutboxEventModel представляет запись таблицы outbox_events.
type OutboxEventModel struct {
	ID          int64      `db:"id"`
	EventID     string     `db:"event_id"`
	EventType   string     `db:"event_type"`
	AggregateID string     `db:"aggregate_id"`
	Payload     []byte     `db:"payload"`
	Status      string     `db:"status"`
	CreatedAt   time.Time  `db:"created_at"`
	ProcessedAt *time.Time `db:"processed_at"`
}
