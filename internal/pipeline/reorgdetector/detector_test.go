package reorgdetector

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"log/slog"
	"testing"

	chainmocks "github.com/emperorhan/multichain-ingestor/internal/chain/mocks"
	"github.com/emperorhan/multichain-ingestor/internal/chain/rpc"
	"github.com/emperorhan/multichain-ingestor/internal/domain/event"
	"github.com/emperorhan/multichain-ingestor/internal/domain/model"
	storemocks "github.com/emperorhan/multichain-ingestor/internal/store/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fakeDriver struct{}
type fakeConn struct{}
type fakeTx struct{}

func (d *fakeDriver) Open(string) (driver.Conn, error)  { return &fakeConn{}, nil }
func (c *fakeConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not implemented") }
func (c *fakeConn) Close() error                        { return nil }
func (c *fakeConn) Begin() (driver.Tx, error)           { return &fakeTx{}, nil }
func (tx *fakeTx) Commit() error                        { return nil }
func (tx *fakeTx) Rollback() error                      { return nil }

func init() {
	sql.Register("fake_reorgdetector", &fakeDriver{})
}

func expectBeginTx(mockDB *storemocks.MockTxBeginner, times int) {
	db, _ := sql.Open("fake_reorgdetector", "")
	mockDB.EXPECT().BeginTx(gomock.Any(), gomock.Nil()).
		DoAndReturn(func(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
			return db.BeginTx(ctx, opts)
		}).Times(times)
}

var mainnet = model.Chain{ID: 1, Name: "ethereum", Active: true}

type fixture struct {
	db     *storemocks.MockTxBeginner
	blocks *storemocks.MockBlockRepository
	reorgs *storemocks.MockReorgEventRepository
	cache  *storemocks.MockBlockCache
	client *chainmocks.MockClient
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)
	return &fixture{
		db:     storemocks.NewMockTxBeginner(ctrl),
		blocks: storemocks.NewMockBlockRepository(ctrl),
		reorgs: storemocks.NewMockReorgEventRepository(ctrl),
		cache:  storemocks.NewMockBlockCache(ctrl),
		client: chainmocks.NewMockClient(ctrl),
	}
}

func (f *fixture) detector(opts ...Option) *Detector {
	return New(f.db, f.blocks, f.reorgs, slog.Default(), opts...)
}

func TestCheckParent_Match(t *testing.T) {
	f := newFixture(t)
	f.blocks.EXPECT().Get(gomock.Any(), model.ChainID(1), int64(99)).
		Return(&model.Block{Number: 99, Hash: "0xaa"}, nil)

	ev, err := f.detector().CheckParent(context.Background(), 1, 100, "0xbb", "0xAA")
	require.NoError(t, err)
	assert.Nil(t, ev)
}

func TestCheckParent_Mismatch(t *testing.T) {
	f := newFixture(t)
	f.blocks.EXPECT().Get(gomock.Any(), model.ChainID(1), int64(99)).
		Return(&model.Block{Number: 99, Hash: "0xaa"}, nil)

	ev, err := f.detector().CheckParent(context.Background(), 1, 100, "0xBB", "0xCC")
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, int64(100), ev.BlockNumber)
	assert.Equal(t, "0xaa", ev.StoredParentHash)
	assert.Equal(t, "0xcc", ev.DeclaredParentHash)
	assert.Equal(t, "0xbb", ev.BlockHash)
	assert.NotEqual(t, uuid.Nil, ev.ID)
}

func TestCheckParent_UnknownPredecessor(t *testing.T) {
	f := newFixture(t)
	f.blocks.EXPECT().Get(gomock.Any(), model.ChainID(1), int64(99)).Return(nil, nil)

	ev, err := f.detector().CheckParent(context.Background(), 1, 100, "0xbb", "0xcc")
	require.NoError(t, err)
	assert.Nil(t, ev)
}

func TestCheckParent_GenesisHasNoParent(t *testing.T) {
	f := newFixture(t)
	ev, err := f.detector().CheckParent(context.Background(), 1, 0, "0xbb", "0x00")
	require.NoError(t, err)
	assert.Nil(t, ev)
}

func TestCheckParent_CacheHitSkipsStore(t *testing.T) {
	f := newFixture(t)
	f.cache.EXPECT().GetHash(gomock.Any(), model.ChainID(1), int64(99)).Return("0xaa", true)

	ev, err := f.detector(WithBlockCache(f.cache)).CheckParent(context.Background(), 1, 100, "0xbb", "0xaa")
	require.NoError(t, err)
	assert.Nil(t, ev)
}

func TestCheckParent_CacheMissFallsBack(t *testing.T) {
	f := newFixture(t)
	f.cache.EXPECT().GetHash(gomock.Any(), model.ChainID(1), int64(99)).Return("", false)
	f.blocks.EXPECT().Get(gomock.Any(), model.ChainID(1), int64(99)).Return(nil, errors.New("connection refused"))

	_, err := f.detector(WithBlockCache(f.cache)).CheckParent(context.Background(), 1, 100, "0xbb", "0xaa")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get block 99")
}

func TestFlagTx_MarksAndAudits(t *testing.T) {
	f := newFixture(t)
	db, _ := sql.Open("fake_reorgdetector", "")
	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	ev := &event.ReorgEvent{ChainID: 1, BlockNumber: 100}
	f.blocks.EXPECT().MarkReorganizedFromTx(gomock.Any(), tx, model.ChainID(1), int64(100)).Return(int64(3), nil)
	f.reorgs.EXPECT().InsertTx(gomock.Any(), tx, ev).Return(true, nil)

	require.NoError(t, f.detector().FlagTx(context.Background(), tx, ev))
	assert.Equal(t, int64(3), ev.BlocksFlagged)
}

func TestVerifyTip_NoMismatch(t *testing.T) {
	f := newFixture(t)
	f.client.EXPECT().GetBlockNumber(gomock.Any()).Return(int64(105), nil)
	f.blocks.EXPECT().ListRange(gomock.Any(), model.ChainID(1), int64(102), int64(105)).Return([]model.Block{
		{Number: 102, Hash: "0x102"},
		{Number: 103, Hash: "0x103"},
	}, nil)
	f.client.EXPECT().GetBlockByNumber(gomock.Any(), int64(103), false).Return(&rpc.Block{Hash: "0x103"}, nil)

	ev, err := f.detector(WithTipVerification(0, 4)).VerifyTip(context.Background(), mainnet, f.client)
	require.NoError(t, err)
	assert.Nil(t, ev)
}

func TestVerifyTip_FlagsFromLowestMismatch(t *testing.T) {
	f := newFixture(t)
	f.client.EXPECT().GetBlockNumber(gomock.Any()).Return(int64(105), nil)
	f.blocks.EXPECT().ListRange(gomock.Any(), model.ChainID(1), int64(102), int64(105)).Return([]model.Block{
		{Number: 102, Hash: "0x102", ParentHash: "0x101"},
		{Number: 103, Hash: "0x103", ParentHash: "0x102"},
		{Number: 104, Hash: "0x104", ParentHash: "0x103"},
		{Number: 105, Hash: "0x105", ParentHash: "0x104"},
	}, nil)
	f.client.EXPECT().GetBlockByNumber(gomock.Any(), int64(105), false).Return(&rpc.Block{Hash: "0x105b", ParentHash: "0x104b"}, nil)
	f.client.EXPECT().GetBlockByNumber(gomock.Any(), int64(104), false).Return(&rpc.Block{Hash: "0x104B", ParentHash: "0x103"}, nil)
	f.client.EXPECT().GetBlockByNumber(gomock.Any(), int64(103), false).Return(&rpc.Block{Hash: "0x103", ParentHash: "0x102"}, nil)

	expectBeginTx(f.db, 1)
	f.blocks.EXPECT().MarkReorganizedFromTx(gomock.Any(), gomock.Any(), model.ChainID(1), int64(104)).Return(int64(2), nil)
	f.reorgs.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil).Times(1)

	ev, err := f.detector(WithTipVerification(0, 4)).VerifyTip(context.Background(), mainnet, f.client)
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, int64(104), ev.BlockNumber)
	assert.Equal(t, "0x104b", ev.BlockHash)
	assert.Equal(t, "0x103", ev.StoredParentHash)
	assert.Equal(t, int64(2), ev.BlocksFlagged)
}

func TestVerifyTip_SkipsAlreadyFlagged(t *testing.T) {
	f := newFixture(t)
	f.client.EXPECT().GetBlockNumber(gomock.Any()).Return(int64(3), nil)
	f.blocks.EXPECT().ListRange(gomock.Any(), model.ChainID(1), int64(0), int64(3)).Return([]model.Block{
		{Number: 2, Hash: "0x2"},
		{Number: 3, Hash: "0x3", Status: model.BlockStatusReorganized},
	}, nil)
	f.client.EXPECT().GetBlockByNumber(gomock.Any(), int64(2), false).Return(&rpc.Block{Hash: "0x2"}, nil)

	ev, err := f.detector(WithTipVerification(0, 10)).VerifyTip(context.Background(), mainnet, f.client)
	require.NoError(t, err)
	assert.Nil(t, ev)
}

func TestVerifyTip_RPCError(t *testing.T) {
	f := newFixture(t)
	f.client.EXPECT().GetBlockNumber(gomock.Any()).Return(int64(0), errors.New("timeout"))

	_, err := f.detector().VerifyTip(context.Background(), mainnet, f.client)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get head")
}
