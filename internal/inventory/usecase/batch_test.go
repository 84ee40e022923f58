package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fekuna/omnipos-stock-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-stock-service/internal/inventory/errs"
	"github.com/fekuna/omnipos-stock-service/internal/metrics"
	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/fekuna/omnipos-stock-service/pkg/cache"
	"github.com/fekuna/omnipos-stock-service/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func importString(uc *inventoryUseCase, body string) ([]model.InventoryRecord, error) {
	return uc.ImportBatch(context.Background(), &dto.ImportBatchInput{Source: strings.NewReader(body), Name: "batch.csv"})
}

func TestImportBatch_InvalidLineCommitsNothing(t *testing.T) {
	repo := newMemRepo()
	uc := newTestUseCase(repo)

	_, err := importString(uc, "red,50.0,100\nblue,1000,50")

	require.ErrorIs(t, err, errs.ErrBusiness)
	assert.ErrorIs(t, err, errs.ErrValidation)
	assert.Contains(t, err.Error(), `line 2 "blue,1000,50"`)
	assert.Empty(t, repo.snapshot())
	assert.Empty(t, repo.s.movements)
}

func TestImportBatch_RepeatedIdentityAccumulates(t *testing.T) {
	uc := newTestUseCase(newMemRepo())

	got, err := importString(uc, "red,50.0,100\nred,50.0,50")

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "red", got[0].Category)
	assert.Equal(t, 150, got[0].Quantity)
}

func TestImportBatch_MalformedLineIsTechnical(t *testing.T) {
	repo := newMemRepo()
	uc := newTestUseCase(repo)

	_, err := importString(uc, "red,50.0,100\nblue,20\n")

	require.ErrorIs(t, err, errs.ErrTechnical)
	assert.Contains(t, err.Error(), `"blue,20"`)
	assert.Contains(t, err.Error(), "{category string, attribute value float, quantity int}")
	assert.Empty(t, repo.snapshot())
}

func TestImportBatch_ResultInFirstAppearanceOrder(t *testing.T) {
	uc := newTestUseCase(newMemRepo())
	add(t, uc, "green", 10, 1)

	got, err := importString(uc, "blue,20,5\nred,50,1\nblue,20,5\ngreen,10,2\n\n")

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "blue", got[0].Category)
	assert.Equal(t, 10, got[0].Quantity)
	assert.Equal(t, "red", got[1].Category)
	assert.Equal(t, "green", got[2].Category)
	assert.Equal(t, 3, got[2].Quantity)
}

func TestImportBatch_EmptySource(t *testing.T) {
	uc := newTestUseCase(newMemRepo())

	got, err := importString(uc, "")

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestImportBatch_RollsBackEarlierBatchLinesOnly(t *testing.T) {
	repo := newMemRepo()
	uc := newTestUseCase(repo)
	add(t, uc, "red", 50, 7)

	_, err := importString(uc, "red,50,3\nred,-1,3")
	require.Error(t, err)

	snap := repo.snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, 7, snap[0].Quantity)
}

func TestImportBatch_MovementsReferenceSource(t *testing.T) {
	repo := newMemRepo()
	uc := newTestUseCase(repo)

	_, err := importString(uc, "red,50,3")
	require.NoError(t, err)

	movements, err := uc.ListMovements(context.Background(), &dto.MovementFilters{MovementType: model.MovementImport})
	require.NoError(t, err)
	require.Len(t, movements, 1)
	require.NotNil(t, movements[0].Reference)
	assert.Equal(t, "batch.csv", *movements[0].Reference)
}

func TestImportBatch_NilSource(t *testing.T) {
	uc := newTestUseCase(newMemRepo())

	_, err := uc.ImportBatch(context.Background(), &dto.ImportBatchInput{})

	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestImportBatch_DuplicateKeyRejected(t *testing.T) {
	repo := newMemRepo()
	guard := newMockGuard()
	uc := NewInventoryUseCase(repo, guard, metrics.NewMetrics(), logger.NewNop()).(*inventoryUseCase)
	ctx := context.Background()

	_, err := uc.ImportBatch(ctx, &dto.ImportBatchInput{Source: strings.NewReader("red,50,1"), IdempotencyKey: "k1"})
	require.NoError(t, err)

	_, err = uc.ImportBatch(ctx, &dto.ImportBatchInput{Source: strings.NewReader("red,50,1"), IdempotencyKey: "k1"})
	require.ErrorIs(t, err, errs.ErrDuplicateRequest)

	assert.Equal(t, 1, repo.snapshot()[0].Quantity)
	assert.Equal(t, cache.IdempotencyKeyTTL, guard.ttls["k1"])
}

func TestImportBatch_FailedImportReleasesKey(t *testing.T) {
	repo := newMemRepo()
	guard := newMockGuard()
	uc := NewInventoryUseCase(repo, guard, nil, logger.NewNop()).(*inventoryUseCase)
	ctx := context.Background()

	_, err := uc.ImportBatch(ctx, &dto.ImportBatchInput{Source: strings.NewReader("red,500,1"), IdempotencyKey: "k2"})
	require.Error(t, err)
	assert.Equal(t, []string{"k2"}, guard.released)

	got, err := uc.ImportBatch(ctx, &dto.ImportBatchInput{Source: strings.NewReader("red,50,1"), IdempotencyKey: "k2"})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestImportBatch_ReadFailureIsTechnical(t *testing.T) {
	uc := newTestUseCase(newMemRepo())

	_, err := uc.ImportBatch(context.Background(), &dto.ImportBatchInput{Source: failingReader{}})

	require.ErrorIs(t, err, errs.ErrTechnical)
	assert.Contains(t, err.Error(), "disk gone")
}
