package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateProfile создает тестовый профиль и возвращает его UID.
func (f *TestDataFactory) CreateProfile(t *testing.T, username, email, role string, balance float64) string {
	var uid string
	err := f.storage.DB.QueryRow(`INSERT INTO profiles (email, username, password_hash, role, referral_code, balance)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING uid`,
		email, username, "hashedpassword", role, "REF-TEST", balance).Scan(&uid)
	require.NoError(t, err)
	return uid
}

// CreateDepositAddress создает активный расчётный адрес шлюза.
func (f *TestDataFactory) CreateDepositAddress(t *testing.T, gateway, address string, active bool) {
	_, err := f.storage.DB.Exec(`INSERT INTO deposit_addresses (gateway, address, active)
		VALUES ($1, $2, $3)`,
		gateway, address, active)
	require.NoError(t, err)
}

// CreateDeposit создает тестовый депозит.
func (f *TestDataFactory) CreateDeposit(t *testing.T, txID, username, gateway, status string,
	payableUSD float64, idempotencyKey string) {
	_, err := f.storage.DB.Exec(`INSERT INTO deposits (tx_id, username, gateway, amount_usd, fee_usd,
			payable_usd, status, address, currency, conversion_rate, crypto_amount, idempotency_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NULLIF($12, ''))`,
		txID, username, gateway, payableUSD, 0, payableUSD, status,
		"test-address", "BTC", 1.0, payableUSD, idempotencyKey)
	require.NoError(t, err)
}

// CreateCatalogPlan создает запись плана каталога и возвращает её ID.
func (f *TestDataFactory) CreateCatalogPlan(t *testing.T, name, family string, priceUSD float64, durationDays int) int {
	var id int
	err := f.storage.DB.QueryRow(`INSERT INTO mining_plans (name, family, price_usd, duration_days)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		name, family, priceUSD, durationDays).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateUserPlan создает купленный план и возвращает его ID.
func (f *TestDataFactory) CreateUserPlan(t *testing.T, username string, planID int, planName, status string,
	remainingDays int, expiresAt time.Time, depositTxID string) int {
	var id int
	err := f.storage.DB.QueryRow(`INSERT INTO user_plans (username, plan_id, plan_name, total_days,
			remaining_days, status, expires_at, deposit_tx_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, '')) RETURNING id`,
		username, planID, planName, remainingDays, remainingDays, status, expiresAt, depositTxID).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateTicket создает обращение в поддержку и возвращает его ID.
func (f *TestDataFactory) CreateTicket(t *testing.T, username, subject, message, status string) int {
	var id int
	err := f.storage.DB.QueryRow(`INSERT INTO support_tickets (username, subject, message, status)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		username, subject, message, status).Scan(&id)
	require.NoError(t, err)
	return id
}

// TestVerification содержит общие функции для проверки результатов тестов
type TestVerification struct {
	storage *Storage
}

// NewTestVerification создает новый объект для проверки результатов
func NewTestVerification(storage *Storage) *TestVerification {
	return &TestVerification{storage: storage}
}

// VerifyDepositStatus проверяет статус депозита в БД.
func (v *TestVerification) VerifyDepositStatus(t *testing.T, txID, expectedStatus string) {
	var status string
	err := v.storage.DB.QueryRow("SELECT status FROM deposits WHERE tx_id = $1", txID).Scan(&status)
	require.NoError(t, err)
	require.Equal(t, expectedStatus, status)
}

// VerifyBalance проверяет баланс профиля в БД.
func (v *TestVerification) VerifyBalance(t *testing.T, username string, expected float64) {
	var balance float64
	err := v.storage.DB.QueryRow("SELECT balance FROM profiles WHERE username = $1", username).Scan(&balance)
	require.NoError(t, err)
	require.InDelta(t, expected, balance, 0.0001)
}

// VerifyUserPlanStatus проверяет статус купленного плана в БД.
func (v *TestVerification) VerifyUserPlanStatus(t *testing.T, planID int, expectedStatus string) {
	var status string
	err := v.storage.DB.QueryRow("SELECT status FROM user_plans WHERE id = $1", planID).Scan(&status)
	require.NoError(t, err)
	require.Equal(t, expectedStatus, status)
}

// setupTestDatabase создает тестовую БД с контейнером PostgreSQL
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(3*time.Minute),
		),
	)
	require.NoError(t, err, "failed to start container")

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	// Пробуем подключиться несколько раз с ретраями
	var storage *Storage
	for range 10 {
		storage, err = New(connStr)
		if err == nil {
			err = storage.DB.Ping()
			if err == nil {
				break
			}
		}
		time.Sleep(1 * time.Second)
	}
	require.NoError(t, err, "failed to create storage after retries")

	// Создаем таблицы
	_, err = storage.DB.Exec(`
        CREATE EXTENSION IF NOT EXISTS "pgcrypto";

        CREATE TABLE profiles (
            uid           UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            email         TEXT NOT NULL UNIQUE,
            username      TEXT NOT NULL UNIQUE,
            password_hash TEXT NOT NULL,
            role          TEXT NOT NULL DEFAULT 'user',
            referral_code TEXT NOT NULL DEFAULT '',
            balance       DOUBLE PRECISION NOT NULL DEFAULT 0,
            created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );

        CREATE TABLE deposit_addresses (
            id      SERIAL PRIMARY KEY,
            gateway TEXT NOT NULL,
            address TEXT NOT NULL,
            active  BOOLEAN NOT NULL DEFAULT TRUE
        );

        CREATE TABLE deposits (
            id              SERIAL PRIMARY KEY,
            tx_id           TEXT NOT NULL UNIQUE,
            username        TEXT NOT NULL REFERENCES profiles (username),
            gateway         TEXT NOT NULL,
            amount_usd      DOUBLE PRECISION NOT NULL,
            fee_usd         DOUBLE PRECISION NOT NULL DEFAULT 0,
            payable_usd     DOUBLE PRECISION NOT NULL,
            status          TEXT NOT NULL DEFAULT 'pending',
            address         TEXT NOT NULL DEFAULT '',
            currency        TEXT NOT NULL DEFAULT '',
            conversion_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
            crypto_amount   DOUBLE PRECISION NOT NULL DEFAULT 0,
            idempotency_key TEXT UNIQUE,
            created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );

        CREATE TABLE mining_plans (
            id            SERIAL PRIMARY KEY,
            name          TEXT NOT NULL,
            family        TEXT NOT NULL,
            price_usd     DOUBLE PRECISION NOT NULL,
            duration_days INTEGER NOT NULL,
            UNIQUE (name, family)
        );

        CREATE TABLE user_plans (
            id             SERIAL PRIMARY KEY,
            username       TEXT NOT NULL REFERENCES profiles (username),
            plan_id        INTEGER NOT NULL REFERENCES mining_plans (id),
            plan_name      TEXT NOT NULL,
            total_days     INTEGER NOT NULL,
            remaining_days INTEGER NOT NULL,
            status         TEXT NOT NULL DEFAULT 'pending',
            expires_at     TIMESTAMPTZ NOT NULL,
            deposit_tx_id  TEXT UNIQUE REFERENCES deposits (tx_id),
            created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );

        CREATE TABLE withdrawals (
            id         SERIAL PRIMARY KEY,
            username   TEXT NOT NULL REFERENCES profiles (username),
            amount_usd DOUBLE PRECISION NOT NULL,
            address    TEXT NOT NULL,
            currency   TEXT NOT NULL,
            status     TEXT NOT NULL DEFAULT 'pending',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );

        CREATE TABLE support_tickets (
            id             SERIAL PRIMARY KEY,
            username       TEXT NOT NULL REFERENCES profiles (username),
            subject        TEXT NOT NULL,
            message        TEXT NOT NULL,
            status         TEXT NOT NULL DEFAULT 'open',
            admin_response TEXT,
            created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );

        CREATE TABLE mining_stats (
            id           SERIAL PRIMARY KEY,
            username     TEXT NOT NULL UNIQUE REFERENCES profiles (username),
            hashrate     DOUBLE PRECISION NOT NULL DEFAULT 0,
            earnings_usd DOUBLE PRECISION NOT NULL DEFAULT 0,
            updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );

        CREATE INDEX idx_deposits_username ON deposits (username);
        CREATE INDEX idx_user_plans_username ON user_plans (username);
        CREATE INDEX idx_withdrawals_username ON withdrawals (username);
        CREATE INDEX idx_support_tickets_username ON support_tickets (username);
    `)
	require.NoError(t, err, "failed to create tables")

	cleanup := func() {
		if storage != nil && storage.DB != nil {
			_ = storage.DB.Close()
		}
		if postgresContainer != nil {
			_ = postgresContainer.Terminate(ctx)
		}
	}

	return storage, cleanup
}
