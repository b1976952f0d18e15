package quota

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

const companyID int64 = 3

func newService(limit int, client *domain.Client, count int, now time.Time) (*Service, *mockAppointmentRepo) {
	cfgRepo := &mockConfigRepo{configs: map[int64]*domain.ScheduleConfiguration{
		companyID: {
			CompanyID:               companyID,
			MonthlyAppointmentLimit: limit,
			Timezone:                "America/Sao_Paulo",
		},
	}}
	appts := &mockAppointmentRepo{count: count}
	svc := NewService(cfgRepo, &mockClientResolver{client: client}, appts, fixedTime{now: now}, mockLogger{})
	return svc, appts
}

func TestCheckMonthlyQuota(t *testing.T) {
	now := time.Date(2025, 3, 14, 15, 0, 0, 0, time.UTC)
	known := &domain.Client{ID: 10, CompanyID: companyID}

	tests := []struct {
		name        string
		limit       int
		client      *domain.Client
		count       int
		wantAllowed bool
		wantCount   int
	}{
		{name: "unknown client is trivially allowed", limit: 4, client: nil, count: 99, wantAllowed: true, wantCount: 0},
		{name: "below limit", limit: 4, client: known, count: 3, wantAllowed: true, wantCount: 3},
		{name: "at limit", limit: 4, client: known, count: 4, wantAllowed: false, wantCount: 4},
		{name: "unlimited", limit: 0, client: known, count: 40, wantAllowed: true, wantCount: 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newService(tt.limit, tt.client, tt.count, now)

			status, err := svc.CheckMonthlyQuota(context.Background(), companyID, "11987654321")

			require.NoError(t, err)
			assert.Equal(t, tt.wantAllowed, status.Allowed)
			assert.Equal(t, tt.wantCount, status.CurrentCount)
			assert.Equal(t, tt.limit, status.Limit)
		})
	}
}

func TestCheckMonthlyQuota_MissingConfiguration(t *testing.T) {
	svc, _ := newService(4, nil, 0, time.Now())

	_, err := svc.CheckMonthlyQuota(context.Background(), companyID+1, "11987654321")

	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestCheck_UsesCompanyLocalMonth(t *testing.T) {
	// 1 апреля 01:00 UTC это еще 31 марта в Сан-Паулу (UTC-3)
	now := time.Date(2025, 4, 1, 1, 0, 0, 0, time.UTC)
	svc, appts := newService(4, &domain.Client{ID: 10}, 1, now)

	_, err := svc.CheckMonthlyQuota(context.Background(), companyID, "11987654321")
	require.NoError(t, err)

	require.Len(t, appts.calls, 1)
	call := appts.calls[0]
	assert.Equal(t, "2025-03-01", call.from.Format(domain.DateFormat))
	assert.Equal(t, "2025-03-31", call.to.Format(domain.DateFormat))
	assert.Equal(t, int64(10), call.clientID)
}

func TestEnforce(t *testing.T) {
	now := time.Date(2025, 3, 14, 15, 0, 0, 0, time.UTC)
	cfg := &domain.ScheduleConfiguration{CompanyID: companyID, MonthlyAppointmentLimit: 4}

	t.Run("limit reached", func(t *testing.T) {
		svc, _ := newService(4, nil, 4, now)

		err := svc.Enforce(context.Background(), cfg, 10)

		var qErr *domain.QuotaExceededError
		require.ErrorAs(t, err, &qErr)
		assert.Equal(t, 4, qErr.Current)
		assert.Equal(t, 4, qErr.Limit)
		assert.ErrorIs(t, err, domain.ErrQuotaExceeded)
	})

	t.Run("unlimited skips counting", func(t *testing.T) {
		svc, appts := newService(0, nil, 100, now)

		err := svc.Enforce(context.Background(), &domain.ScheduleConfiguration{CompanyID: companyID}, 10)

		require.NoError(t, err)
		assert.Empty(t, appts.calls)
	})

	t.Run("transient store error", func(t *testing.T) {
		svc, appts := newService(4, nil, 0, now)
		appts.err = &pgconn.PgError{Code: "40P01"}

		err := svc.Enforce(context.Background(), cfg, 10)

		assert.ErrorIs(t, err, domain.ErrTransientStore)
	})
}
