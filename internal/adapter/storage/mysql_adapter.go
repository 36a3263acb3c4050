package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/openmkt/marketplace/internal/core/domain"
	"github.com/openmkt/marketplace/internal/port"
)

// MySQLAdapter is the system-of-record MarketStore. One sql.Tx backs one
// unit of work; the conditional-UPDATE debit in Transfer is what keeps a
// settlement all-or-nothing under concurrent spenders.
type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS assets (
		id VARCHAR(100) PRIMARY KEY,
		owner VARCHAR(64) NOT NULL,
		origin_chain VARCHAR(32),
		origin_external_id VARCHAR(100),
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS royalties (
		asset_id VARCHAR(100) PRIMARY KEY,
		creator VARCHAR(64) NOT NULL,
		rate TINYINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS listings (
		asset_id VARCHAR(100) PRIMARY KEY,
		price BIGINT NOT NULL,
		seller VARCHAR(64) NOT NULL,
		active BOOLEAN NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS accounts (
		id VARCHAR(64) PRIMARY KEY,
		balance BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS asset_metadata (
		asset_id VARCHAR(100) PRIMARY KEY,
		name VARCHAR(200) NOT NULL,
		description VARCHAR(1000) NOT NULL,
		image VARCHAR(500) NOT NULL,
		traits TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS trades (
		id CHAR(36) PRIMARY KEY,
		asset_id VARCHAR(100) NOT NULL,
		seller VARCHAR(64) NOT NULL,
		buyer VARCHAR(64) NOT NULL,
		price BIGINT NOT NULL,
		fee BIGINT NOT NULL,
		royalty BIGINT NOT NULL,
		seller_proceeds BIGINT NOT NULL,
		created_at DATETIME NOT NULL,
		INDEX idx_trades_asset (asset_id)
	)`,
}

// EnsureSchema creates the tables on startup if they do not exist.
func (m *MySQLAdapter) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (m *MySQLAdapter) WithinTx(ctx context.Context, fn func(tx port.MarketTx) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&mysqlTx{tx: tx}); err != nil {
		return err
	}

	return tx.Commit()
}

type mysqlTx struct {
	tx *sql.Tx
}

func (t *mysqlTx) GetAsset(ctx context.Context, id domain.AssetID) (*domain.Asset, error) {
	var asset domain.Asset
	var chain, externalID sql.NullString

	err := t.tx.QueryRowContext(ctx, `
		SELECT id, owner, origin_chain, origin_external_id, created_at, updated_at
		FROM assets WHERE id = ?`, string(id),
	).Scan(&asset.ID, &asset.Owner, &chain, &externalID, &asset.CreatedAt, &asset.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query asset: %w", err)
	}

	if chain.Valid {
		asset.Origin = &domain.BridgeOrigin{Chain: chain.String, ExternalID: externalID.String}
	}
	return &asset, nil
}

func (t *mysqlTx) PutAsset(ctx context.Context, asset *domain.Asset) error {
	var chain, externalID sql.NullString
	if asset.Origin != nil {
		chain = sql.NullString{String: asset.Origin.Chain, Valid: true}
		externalID = sql.NullString{String: asset.Origin.ExternalID, Valid: true}
	}

	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO assets (id, owner, origin_chain, origin_external_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE owner = ?, updated_at = ?`,
		string(asset.ID), asset.Owner, chain, externalID, asset.CreatedAt, asset.UpdatedAt,
		asset.Owner, asset.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert asset: %w", err)
	}
	return nil
}

func (t *mysqlTx) GetRoyalty(ctx context.Context, id domain.AssetID) (*domain.RoyaltyRecord, error) {
	var record domain.RoyaltyRecord

	err := t.tx.QueryRowContext(ctx, `
		SELECT asset_id, creator, rate FROM royalties WHERE asset_id = ?`, string(id),
	).Scan(&record.AssetID, &record.Creator, &record.Rate)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query royalty: %w", err)
	}
	return &record, nil
}

func (t *mysqlTx) PutRoyalty(ctx context.Context, record *domain.RoyaltyRecord) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO royalties (asset_id, creator, rate) VALUES (?, ?, ?)`,
		string(record.AssetID), record.Creator, record.Rate,
	)
	if err != nil {
		return fmt.Errorf("insert royalty: %w", err)
	}
	return nil
}

func (t *mysqlTx) GetListing(ctx context.Context, id domain.AssetID) (*domain.Listing, error) {
	var listing domain.Listing

	err := t.tx.QueryRowContext(ctx, `
		SELECT asset_id, price, seller, active, updated_at
		FROM listings WHERE asset_id = ?`, string(id),
	).Scan(&listing.AssetID, &listing.Price, &listing.Seller, &listing.Active, &listing.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query listing: %w", err)
	}
	return &listing, nil
}

func (t *mysqlTx) PutListing(ctx context.Context, listing *domain.Listing) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO listings (asset_id, price, seller, active, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE price = ?, seller = ?, active = ?, updated_at = ?`,
		string(listing.AssetID), listing.Price, listing.Seller, listing.Active, listing.UpdatedAt,
		listing.Price, listing.Seller, listing.Active, listing.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert listing: %w", err)
	}
	return nil
}

func (t *mysqlTx) GetMetadata(ctx context.Context, id domain.AssetID) (*domain.Metadata, error) {
	var md domain.Metadata
	var traits sql.NullString

	err := t.tx.QueryRowContext(ctx, `
		SELECT asset_id, name, description, image, traits
		FROM asset_metadata WHERE asset_id = ?`, string(id),
	).Scan(&md.AssetID, &md.Name, &md.Description, &md.Image, &traits)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query metadata: %w", err)
	}

	if traits.Valid && traits.String != "" {
		if err := json.Unmarshal([]byte(traits.String), &md.Traits); err != nil {
			return nil, fmt.Errorf("decode traits: %w", err)
		}
	}
	return &md, nil
}

func (t *mysqlTx) PutMetadata(ctx context.Context, metadata *domain.Metadata) error {
	var traits []byte
	if len(metadata.Traits) > 0 {
		var err error
		traits, err = json.Marshal(metadata.Traits)
		if err != nil {
			return fmt.Errorf("encode traits: %w", err)
		}
	}

	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO asset_metadata (asset_id, name, description, image, traits)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE name = ?, description = ?, image = ?, traits = ?`,
		string(metadata.AssetID), metadata.Name, metadata.Description, metadata.Image, traits,
		metadata.Name, metadata.Description, metadata.Image, traits,
	)
	if err != nil {
		return fmt.Errorf("upsert metadata: %w", err)
	}
	return nil
}

func (t *mysqlTx) Balance(ctx context.Context, account string) (int64, error) {
	var balance int64

	err := t.tx.QueryRowContext(ctx, `
		SELECT balance FROM accounts WHERE id = ?`, account,
	).Scan(&balance)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query balance: %w", err)
	}
	return balance, nil
}

func (t *mysqlTx) Credit(ctx context.Context, account string, amount int64) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO accounts (id, balance) VALUES (?, ?)
		ON DUPLICATE KEY UPDATE balance = balance + ?`,
		account, amount, amount,
	)
	if err != nil {
		return fmt.Errorf("credit account: %w", err)
	}
	return nil
}

func (t *mysqlTx) Transfer(ctx context.Context, amount int64, from, to string) error {
	if amount == 0 {
		return nil
	}

	result, err := t.tx.ExecContext(ctx, `
		UPDATE accounts SET balance = balance - ?
		WHERE id = ? AND balance >= ?`,
		amount, from, amount,
	)
	if err != nil {
		return fmt.Errorf("debit account: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrInsufficientBalance
	}

	return t.Credit(ctx, to, amount)
}

func (t *mysqlTx) AppendTrade(ctx context.Context, trade *domain.Trade) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO trades (id, asset_id, seller, buyer, price, fee, royalty, seller_proceeds, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		trade.ID, string(trade.AssetID), trade.Seller, trade.Buyer,
		trade.Price, trade.Fee, trade.Royalty, trade.SellerProceeds, trade.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert trade: %w", err)
	}
	return nil
}

func (t *mysqlTx) TradesByAsset(ctx context.Context, id domain.AssetID) ([]domain.Trade, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT id, asset_id, seller, buyer, price, fee, royalty, seller_proceeds, created_at
		FROM trades WHERE asset_id = ? ORDER BY created_at`, string(id),
	)
	if err != nil {
		return nil, fmt.Errorf("query trades: %w", err)
	}
	defer rows.Close()

	var trades []domain.Trade
	for rows.Next() {
		var trade domain.Trade
		if err := rows.Scan(&trade.ID, &trade.AssetID, &trade.Seller, &trade.Buyer,
			&trade.Price, &trade.Fee, &trade.Royalty, &trade.SellerProceeds, &trade.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		trades = append(trades, trade)
	}
	return trades, rows.Err()
}
