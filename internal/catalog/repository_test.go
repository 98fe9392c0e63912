package catalog

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/pestilink/pestilink-backend/pkg/db/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&_busy_timeout=5000"), &gorm.Config{})
	require.NoError(t, err)

	products := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  specifications TEXT NOT NULL DEFAULT '',
  chemicals TEXT NOT NULL DEFAULT '',
  crop_type TEXT NOT NULL DEFAULT '',
  cost TEXT NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 0,
  shop_owner_id TEXT NOT NULL,
  shop_name TEXT NOT NULL,
  image_filename TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(products).Error)

	t.Cleanup(func() {
		db.Exec("DELETE FROM products")
	})
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, name, cropType string, quantity int) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:          uuid.New(),
		Name:        name,
		CropType:    cropType,
		Cost:        decimal.NewFromInt(10),
		Quantity:    quantity,
		ShopOwnerID: uuid.New(),
		ShopName:    "GreenGrow Supply",
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func TestConditionalDecrement_TakesStock(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	product := seedProduct(t, db, "Cypermethrin 10EC", "rice", 5)

	ok, err := repo.ConditionalDecrement(ctx, product.ID, 3)
	require.NoError(t, err)
	assert.True(t, ok)

	reloaded, err := repo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.Quantity)
}

func TestConditionalDecrement_RefusesOversell(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	product := seedProduct(t, db, "Cypermethrin 10EC", "rice", 2)

	ok, err := repo.ConditionalDecrement(ctx, product.ID, 3)
	require.NoError(t, err)
	assert.False(t, ok)

	reloaded, err := repo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.Quantity, "stock must be untouched on refusal")
}

func TestConditionalDecrement_ExactStockDrainsToZero(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	product := seedProduct(t, db, "Cypermethrin 10EC", "rice", 4)

	ok, err := repo.ConditionalDecrement(ctx, product.ID, 4)
	require.NoError(t, err)
	assert.True(t, ok)

	reloaded, err := repo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, reloaded.Quantity)

	// Nothing left for the next buyer.
	ok, err = repo.ConditionalDecrement(ctx, product.ID, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConditionalDecrement_ConcurrentBuyersOneWinner(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	// One pooled connection keeps sqlite from throwing lock errors while the
	// two buyers race through the guarded UPDATE.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	product := seedProduct(t, db, "Last Unit", "corn", 1)

	var wg sync.WaitGroup
	results := make([]bool, 2)
	errs := make([]error, 2)
	start := make(chan struct{})

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			<-start
			results[idx], errs[idx] = repo.ConditionalDecrement(ctx, product.ID, 1)
		}(i)
	}
	close(start)
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "buyer %d", i)
	}

	winners := 0
	for _, ok := range results {
		if ok {
			winners++
		}
	}
	assert.Equal(t, 1, winners, "exactly one buyer may take the last unit")

	reloaded, err := repo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, reloaded.Quantity, "stock must never go negative")
}

func TestSearch_MatchesNameAndCropTypeCaseInsensitively(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seedProduct(t, db, "Cypermethrin 10EC", "rice", 5)
	seedProduct(t, db, "Glyphosate 480SL", "corn", 5)
	seedProduct(t, db, "Neem Oil", "rice", 5)

	byName, err := repo.Search(ctx, "CYPER")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "Cypermethrin 10EC", byName[0].Name)

	byCrop, err := repo.Search(ctx, "rice")
	require.NoError(t, err)
	assert.Len(t, byCrop, 2)

	none, err := repo.Search(ctx, "fungicide")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSearch_TreatsWildcardsLiterally(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seedProduct(t, db, "100% Organic Neem", "rice", 5)
	seedProduct(t, db, "Malathion 57EC", "corn", 5)
	seedProduct(t, db, "snake_bait pellets", "corn", 5)

	// "%" and "_" in the query must match those characters, not act as
	// wildcards over the whole catalog.
	byPercent, err := repo.Search(ctx, "100%")
	require.NoError(t, err)
	require.Len(t, byPercent, 1)
	assert.Equal(t, "100% Organic Neem", byPercent[0].Name)

	byUnderscore, err := repo.Search(ctx, "snake_bait")
	require.NoError(t, err)
	require.Len(t, byUnderscore, 1)
	assert.Equal(t, "snake_bait pellets", byUnderscore[0].Name)

	allWild, err := repo.Search(ctx, "%")
	require.NoError(t, err)
	require.Len(t, allWild, 1, "a literal percent matches only the product containing one")
	assert.Equal(t, "100% Organic Neem", allWild[0].Name)
}

func TestListByShopOwner_OnlyOwnListings(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	mine := seedProduct(t, db, "Mine", "rice", 5)
	seedProduct(t, db, "Theirs", "rice", 5)

	listed, err := repo.ListByShopOwner(ctx, mine.ShopOwnerID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, mine.ID, listed[0].ID)
}
