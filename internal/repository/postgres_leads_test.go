package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lead-service/internal/domain"
)

func setupMockLeadsDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresLeadsRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewPostgresLeadsRepository(db)

	return db, mock, repo
}

func newTestLead() *domain.Lead {
	return &domain.Lead{
		ID:            uuid.New().String(),
		RequirementID: uuid.New().String(),
		SellerID:      uuid.New().String(),
		BuyerID:       uuid.New().String(),
		Status:        domain.LeadStatusProcessing,
	}
}

func TestCreateLead_Success(t *testing.T) {
	db, mock, repo := setupMockLeadsDB(t)
	defer db.Close()

	lead := newTestLead()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status FROM requirements`).
		WithArgs(lead.RequirementID).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(domain.RequirementStatusOpen))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(lead.RequirementID, lead.SellerID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(`INSERT INTO leads`).
		WithArgs(lead.ID, lead.RequirementID, lead.SellerID, lead.BuyerID, lead.Status).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(time.Now(), time.Now()))
	mock.ExpectCommit()

	err := repo.CreateLead(context.Background(), lead)

	require.NoError(t, err)
	assert.False(t, lead.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateLead_RequirementMissing(t *testing.T) {
	db, mock, repo := setupMockLeadsDB(t)
	defer db.Close()

	lead := newTestLead()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status FROM requirements`).
		WithArgs(lead.RequirementID).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := repo.CreateLead(context.Background(), lead)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, "Requirement not found", err.Error())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateLead_RequirementClosed(t *testing.T) {
	db, mock, repo := setupMockLeadsDB(t)
	defer db.Close()

	lead := newTestLead()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status FROM requirements`).
		WithArgs(lead.RequirementID).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(domain.RequirementStatusClosed))
	mock.ExpectRollback()

	err := repo.CreateLead(context.Background(), lead)

	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, "Requirement already closed", err.Error())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateLead_AlreadyContacted(t *testing.T) {
	db, mock, repo := setupMockLeadsDB(t)
	defer db.Close()

	lead := newTestLead()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status FROM requirements`).
		WithArgs(lead.RequirementID).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(domain.RequirementStatusOpen))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(lead.RequirementID, lead.SellerID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	err := repo.CreateLead(context.Background(), lead)

	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, "Already contacted", err.Error())
	require.NoError(t, mock.ExpectationsWereMet())
}

// The pre-check may lose a race; the unique index must still reject the
// loser with the same conflict the pre-check would have reported.
func TestCreateLead_UniqueIndexRace(t *testing.T) {
	db, mock, repo := setupMockLeadsDB(t)
	defer db.Close()

	lead := newTestLead()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status FROM requirements`).
		WithArgs(lead.RequirementID).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(domain.RequirementStatusOpen))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(lead.RequirementID, lead.SellerID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(`INSERT INTO leads`).
		WithArgs(lead.ID, lead.RequirementID, lead.SellerID, lead.BuyerID, lead.Status).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "leads_requirement_seller_unique"})
	mock.ExpectRollback()

	err := repo.CreateLead(context.Background(), lead)

	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, "Already contacted", err.Error())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelLead_Success(t *testing.T) {
	db, mock, repo := setupMockLeadsDB(t)
	defer db.Close()

	leadID := uuid.New().String()
	sellerID := uuid.New().String()
	requirementID := uuid.New().String()
	buyerID := uuid.New().String()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM leads`).
		WithArgs(leadID, sellerID, domain.LeadStatusProcessing).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "requirement_id", "seller_id", "buyer_id", "status", "created_at", "updated_at",
		}).AddRow(leadID, requirementID, sellerID, buyerID, domain.LeadStatusProcessing, time.Now(), time.Now()))
	mock.ExpectExec(`UPDATE leads`).
		WithArgs(leadID, domain.LeadStatusCancelled).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE requirements`).
		WithArgs(requirementID, domain.RequirementStatusOpen).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	lead, err := repo.CancelLead(context.Background(), leadID, sellerID)

	require.NoError(t, err)
	assert.Equal(t, domain.LeadStatusCancelled, lead.Status)
	assert.Equal(t, requirementID, lead.RequirementID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelLead_NotCancellable(t *testing.T) {
	db, mock, repo := setupMockLeadsDB(t)
	defer db.Close()

	leadID := uuid.New().String()
	sellerID := uuid.New().String()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM leads`).
		WithArgs(leadID, sellerID, domain.LeadStatusProcessing).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	lead, err := repo.CancelLead(context.Background(), leadID, sellerID)

	assert.Nil(t, lead)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSellerStats_CountsByStatus(t *testing.T) {
	db, mock, repo := setupMockLeadsDB(t)
	defer db.Close()

	sellerID := uuid.New().String()

	mock.ExpectQuery(`SELECT status, COUNT`).
		WithArgs(sellerID).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow(domain.LeadStatusProcessing, 3).
			AddRow(domain.LeadStatusClosed, 2).
			AddRow(domain.LeadStatusCancelled, 1).
			AddRow(domain.LeadStatusRejected, 4))

	stats, err := repo.SellerStats(context.Background(), sellerID)

	require.NoError(t, err)
	assert.Equal(t, 10, stats.Total)
	assert.Equal(t, 3, stats.Accepted)
	assert.Equal(t, 2, stats.Closed)
	assert.Equal(t, 1, stats.Cancelled)
	assert.Equal(t, 0, stats.Open)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSellerStats_EmptySellerID(t *testing.T) {
	db, _, repo := setupMockLeadsDB(t)
	defer db.Close()

	stats, err := repo.SellerStats(context.Background(), "")

	require.NoError(t, err)
	assert.Equal(t, 0, stats.Total)
}

func TestListContactedBySeller(t *testing.T) {
	db, mock, repo := setupMockLeadsDB(t)
	defer db.Close()

	sellerID := uuid.New().String()
	now := time.Now()

	mock.ExpectQuery(`SELECT(.+)FROM leads l`).
		WithArgs(sellerID).
		WillReturnRows(sqlmock.NewRows([]string{
			"lead_id", "lead_status", "lead_created_at",
			"requirement_id", "product_name", "details", "quantity",
			"location_preference", "city", "requirement_status",
			"buyer_id", "buyer_name", "buyer_email",
		}).AddRow(
			"lead-1", domain.LeadStatusProcessing, now,
			"req-1", "Steel pipes", "{}", "100",
			"Pune", "Pune", domain.RequirementStatusOpen,
			"buyer-1", "Asha", "asha@example.com",
		))

	items, err := repo.ListContactedBySeller(context.Background(), sellerID)

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Steel pipes", items[0].ProductName)
	assert.Equal(t, "Asha", items[0].BuyerName)
	require.NoError(t, mock.ExpectationsWereMet())
}
