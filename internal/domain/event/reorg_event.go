package event

import (
	"time"

	"github.com/emperorhan/multichain-ingestor/internal/domain/model"
	"github.com/google/uuid"
)

// ReorgEvent is the audit record of a broken parent-hash link.
// BlockNumber is the first block whose declared parent does not match the stored predecessor.
type ReorgEvent struct {
	ID                 uuid.UUID
	ChainID            model.ChainID
	BlockNumber        int64
	StoredParentHash   string // hash stored for BlockNumber-1
	DeclaredParentHash string // parent hash declared by the incoming block
	BlockHash          string
	BlocksFlagged      int64
	DetectedAt         time.Time
}
