package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	"sitestock/internal/core/id"
	"sitestock/internal/domain/stock"
)

// CompressionAlgo specifies the compression algorithm used for a payload.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// auditQuerierSource yields the statement executor bound to the calling
// transaction, or the pool outside one.
type auditQuerierSource interface {
	GetQuerier(ctx context.Context) Querier
}

// AuditStore records applied stock adjustments. Large payloads are
// zstd-compressed before insert.
type AuditStore struct {
	txm               auditQuerierSource
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int // bytes
}

// NewAuditStore creates a new adjustment audit store.
func NewAuditStore(txm auditQuerierSource) (*AuditStore, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &AuditStore{
		txm:               txm,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: compressThreshold,
	}, nil
}

// compressThreshold is sized against real adjustment payloads: a bare
// quantity change stays under it, one carrying kind, unit cost and purchase
// references crosses it.
const compressThreshold = 200

type auditPayload struct {
	Type          stock.MovementType  `json:"type"`
	Kind          *stock.MovementKind `json:"kind,omitempty"`
	Quantity      string              `json:"quantity"`
	UnitCost      *string             `json:"unitCost,omitempty"`
	ReferenceType *string             `json:"referenceType,omitempty"`
	ReferenceID   *string             `json:"referenceId,omitempty"`
	Before        auditBalance        `json:"before"`
	After         auditBalance        `json:"after"`
}

type auditBalance struct {
	Quantity string `json:"quantity"`
	AvgCost  string `json:"avgCost"`
}

// LogAdjustment implements stock.AuditLogger.
func (s *AuditStore) LogAdjustment(ctx context.Context, rec stock.AdjustmentRecord) error {
	var unitCost *string
	if rec.UnitCost != nil {
		v := rec.UnitCost.String()
		unitCost = &v
	}

	payload, err := json.Marshal(auditPayload{
		Type:          rec.Type,
		Kind:          rec.Kind,
		Quantity:      rec.Quantity.String(),
		UnitCost:      unitCost,
		ReferenceType: rec.ReferenceType,
		ReferenceID:   rec.ReferenceID,
		Before: auditBalance{
			Quantity: rec.Before.Quantity.String(),
			AvgCost:  rec.Before.AvgCost.String(),
		},
		After: auditBalance{
			Quantity: rec.Balance.Quantity.String(),
			AvgCost:  rec.Balance.AvgCost.String(),
		},
	})
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	algo := CompressionNone
	data := payload
	isCompressed := false
	if len(payload) > s.compressThreshold {
		data = s.encoder.EncodeAll(payload, nil)
		isCompressed = true
		algo = CompressionZstd
	}

	sql := `
		INSERT INTO stock_audit (
			id, company_id, item_id, movement_id, actor,
			payload, payload_compressed, compression_algo, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	querier := s.txm.GetQuerier(ctx)
	_, err = querier.Exec(ctx, sql,
		id.New(), rec.CompanyID, rec.ItemID, rec.MovementID, rec.Actor,
		data, isCompressed, algo, time.Now().UTC(),
	)

	return err
}

// Decompress restores a compressed audit payload.
func (s *AuditStore) Decompress(algo CompressionAlgo, compressed []byte) (json.RawMessage, error) {
	switch algo {
	case CompressionZstd:
		return s.decoder.DecodeAll(compressed, nil)
	case CompressionNone:
		return compressed, nil
	default:
		return nil, fmt.Errorf("unknown compression algo: %s", algo)
	}
}

// Ensure interface compliance.
var _ stock.AuditLogger = (*AuditStore)(nil)
