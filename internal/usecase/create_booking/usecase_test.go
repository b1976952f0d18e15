package create_booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
	"github.com/m04kA/SMC-SchedulingService/pkg/retry"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

const (
	companyID = int64(1)
	serviceID = int64(7)
)

// 2025-03-04 - вторник, 2025-03-09 - воскресенье
var (
	tuesday = time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)
	sunday  = time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)
	now     = time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)
)

type fixture struct {
	appointments *mockAppointmentRepo
	configs      *mockConfigRepo
	clients      *mockClients
	tx           *mockTxManager
	cache        *mockCache
	publisher    *mockPublisher
	metrics      *mockMetrics
	uc           *UseCase
}

// Пн-Сб 09:00-18:00, интервал 30, обед 12:00-13:00, услуга 60 минут, лимит 4 в месяц
func newFixture() *fixture {
	f := &fixture{
		appointments: &mockAppointmentRepo{},
		configs: &mockConfigRepo{schedules: map[int64]*domain.CompanySchedule{
			companyID: {
				Config: &domain.ScheduleConfiguration{
					CompanyID: companyID,
					WorkingDays: []time.Weekday{
						time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday,
					},
					OpeningTime:             "09:00",
					ClosingTime:             "18:00",
					SlotIntervalMinutes:     30,
					LunchEnabled:            true,
					LunchStart:              "12:00",
					LunchEnd:                "13:00",
					MonthlyAppointmentLimit: 4,
					Timezone:                "UTC",
				},
			},
		}},
		clients:   newMockClients(),
		tx:        &mockTxManager{},
		cache:     &mockCache{},
		publisher: &mockPublisher{},
		metrics:   newMockMetrics(),
	}
	services := &mockServiceRepo{services: map[int64]*domain.Service{
		serviceID: {ID: serviceID, CompanyID: companyID, Name: "Corte", DurationMinutes: 60, Active: true},
	}}
	policy := retry.Policy{MaxAttempts: 3, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}

	f.uc = NewUseCase(
		f.appointments, f.configs, services, f.clients, &mockQuota{repo: f.appointments},
		f.tx, f.cache, f.publisher, f.metrics, policy, fixedTime{now: now}, mockLogger{},
	)
	return f
}

func request(start string) *Request {
	return &Request{
		CompanyID: companyID,
		ServiceID: serviceID,
		Client:    domain.ClientContact{Name: "Maria", Phone: "+55 (11) 98765-4321"},
		Date:      tuesday,
		StartTime: types.TimeString(start),
	}
}

func TestExecute_Success(t *testing.T) {
	f := newFixture()
	req := request("10:00")
	req.Notes = ptr.Ptr("primeira vez")

	resp, err := f.uc.Execute(context.Background(), req)

	require.NoError(t, err)
	assert.NotZero(t, resp.ID)
	assert.Equal(t, "confirmed", resp.Status)
	assert.Equal(t, 60, resp.DurationMinutes)
	assert.Equal(t, types.TimeString("11:00"), resp.EndTime)
	assert.Equal(t, "Corte", resp.ServiceName)
	assert.Equal(t, "Maria", resp.ClientName)
	assert.Equal(t, "primeira vez", *resp.Notes)

	assert.Equal(t, []string{"2025-03-04"}, f.cache.invalidated)
	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, resp.ID, f.publisher.events[0].AppointmentID)
	assert.Equal(t, "10:00", f.publisher.events[0].StartTime)
	assert.Equal(t, 1, f.metrics.created)
	assert.Empty(t, f.metrics.rejected)
}

func TestExecute_CallerCancelDuringWriteDoesNotAbortBooking(t *testing.T) {
	f := newFixture()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.tx.onBegin = cancel

	resp, err := f.uc.Execute(ctx, request("10:00"))

	require.NoError(t, err)
	assert.Error(t, ctx.Err())
	require.Len(t, f.appointments.all(), 1)
	assert.Equal(t, resp.ID, f.appointments.all()[0].ID)
	assert.Equal(t, []string{"2025-03-04"}, f.cache.invalidated)
	require.Len(t, f.publisher.events, 1)
	assert.NoError(t, f.publisher.ctxErr)
}

func TestExecute_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(f *fixture, req *Request)
		wantErr  error
		wantKind domain.ErrorKind
	}{
		{
			name:     "closed weekday",
			mutate:   func(_ *fixture, req *Request) { req.Date = sunday },
			wantErr:  ErrCompanyClosed,
			wantKind: domain.KindClosedDay,
		},
		{
			name:     "time off the slot grid",
			mutate:   func(_ *fixture, req *Request) { req.StartTime = "10:15" },
			wantErr:  ErrInvalidTimeSlot,
			wantKind: domain.KindValidation,
		},
		{
			name:     "start inside lunch",
			mutate:   func(_ *fixture, req *Request) { req.StartTime = "12:30" },
			wantErr:  ErrInvalidTimeSlot,
			wantKind: domain.KindValidation,
		},
		{
			name:     "service runs past closing",
			mutate:   func(_ *fixture, req *Request) { req.StartTime = "17:30" },
			wantErr:  ErrInvalidTimeSlot,
			wantKind: domain.KindValidation,
		},
		{
			name:     "malformed time",
			mutate:   func(_ *fixture, req *Request) { req.StartTime = "25:00" },
			wantKind: domain.KindValidation,
		},
		{
			name:     "date in the past",
			mutate:   func(_ *fixture, req *Request) { req.Date = tuesday.AddDate(0, 0, -7) },
			wantKind: domain.KindValidation,
		},
		{
			name:     "missing name",
			mutate:   func(_ *fixture, req *Request) { req.Client.Name = " " },
			wantKind: domain.KindValidation,
		},
		{
			name:     "no schedule configuration",
			mutate:   func(_ *fixture, req *Request) { req.CompanyID = 2 },
			wantErr:  ErrConfigNotFound,
			wantKind: domain.KindConfiguration,
		},
		{
			name:     "unknown service",
			mutate:   func(_ *fixture, req *Request) { req.ServiceID = 404 },
			wantErr:  ErrServiceNotFound,
			wantKind: domain.KindNotFound,
		},
		{
			name: "overlapping appointment",
			mutate: func(f *fixture, req *Request) {
				f.appointments.seed(&domain.Appointment{
					CompanyID: companyID, ClientID: 99, Date: tuesday,
					StartTime: "09:30", DurationMinutes: 60, Status: domain.StatusConfirmed,
				})
			},
			wantErr:  ErrSlotNotAvailable,
			wantKind: domain.KindSlotTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			req := request("10:00")
			tt.mutate(f, req)

			_, err := f.uc.Execute(context.Background(), req)

			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Equal(t, tt.wantKind, domain.KindOf(err))
			assert.Equal(t, 1, f.metrics.rejected[string(tt.wantKind)])
			assert.Zero(t, f.metrics.created)
			assert.Empty(t, f.cache.invalidated)
			assert.Empty(t, f.publisher.events)
		})
	}
}

func TestExecute_CancelledAppointmentFreesSlot(t *testing.T) {
	f := newFixture()
	f.appointments.seed(&domain.Appointment{
		CompanyID: companyID, ClientID: 99, Date: tuesday,
		StartTime: "10:00", DurationMinutes: 60, Status: domain.StatusCancelled,
	})

	_, err := f.uc.Execute(context.Background(), request("10:00"))

	require.NoError(t, err)
}

func TestExecute_StorageConstraintIsSlotTaken(t *testing.T) {
	f := newFixture()
	f.appointments.seed(&domain.Appointment{
		CompanyID: companyID, ClientID: 99, Date: tuesday,
		StartTime: "10:30", DurationMinutes: 60, Status: domain.StatusConfirmed,
	})
	// Чтение не видит конфликтующую запись, срабатывает только ограничение
	f.appointments.staleReads = true

	_, err := f.uc.Execute(context.Background(), request("10:00"))

	assert.ErrorIs(t, err, domain.ErrSlotTaken)
	assert.Equal(t, 1, f.tx.calls, "slot taken is not retried")
	assert.Len(t, f.appointments.all(), 1)
}

func TestExecute_ConcurrentSameSlot(t *testing.T) {
	tests := []struct {
		name   string
		starts [2]string
	}{
		{name: "identical start", starts: [2]string{"10:00", "10:00"}},
		{name: "overlapping starts", starts: [2]string{"10:00", "10:30"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()

			errs := make([]error, 2)
			var wg sync.WaitGroup
			for i := 0; i < 2; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					req := request(tt.starts[i])
					req.Client.Phone = fmt.Sprintf("1198765432%d", i)
					_, errs[i] = f.uc.Execute(context.Background(), req)
				}(i)
			}
			wg.Wait()

			succeeded, taken := 0, 0
			for _, err := range errs {
				switch {
				case err == nil:
					succeeded++
				case errors.Is(err, domain.ErrSlotTaken):
					taken++
				default:
					t.Fatalf("unexpected error: %v", err)
				}
			}

			assert.Equal(t, 1, succeeded)
			assert.Equal(t, 1, taken)
			assert.Len(t, f.appointments.all(), 1)
		})
	}
}

func TestExecute_NoOverlapAfterManyBookings(t *testing.T) {
	f := newFixture()
	f.configs.schedules[companyID].Config.MonthlyAppointmentLimit = 0

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			minute := 9*60 + (i%16)*30
			req := request(types.MustFromMinutes(minute).String())
			req.Client.Phone = fmt.Sprintf("119876543%02d", i)
			_, _ = f.uc.Execute(context.Background(), req)
		}(i)
	}
	wg.Wait()

	all := f.appointments.all()
	require.NotEmpty(t, all)
	for i := 0; i < len(all); i++ {
		for j := i + 1; j < len(all); j++ {
			a, b := all[i], all[j]
			overlap := a.StartMinute() < b.EndMinute() && a.EndMinute() > b.StartMinute()
			assert.False(t, overlap, "%s and %s overlap", a.StartTime, b.StartTime)
		}
	}
}

func TestExecute_QuotaExceeded(t *testing.T) {
	f := newFixture()
	f.configs.schedules[companyID].Config.MonthlyAppointmentLimit = 2

	_, err := f.uc.Execute(context.Background(), request("09:00"))
	require.NoError(t, err)
	_, err = f.uc.Execute(context.Background(), request("10:00"))
	require.NoError(t, err)

	_, err = f.uc.Execute(context.Background(), request("14:00"))

	var qe *domain.QuotaExceededError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, 2, qe.Current)
	assert.Equal(t, 2, qe.Limit)
	assert.Equal(t, domain.KindQuotaExceeded, domain.KindOf(err))
	assert.Len(t, f.appointments.all(), 2)
	assert.Equal(t, 1, f.metrics.rejected["quota_exceeded"])
}

func TestExecute_QuotaEnforcedInsideTransaction(t *testing.T) {
	f := newFixture()
	f.configs.schedules[companyID].Config.MonthlyAppointmentLimit = 1

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, start := range []string{"09:00", "15:00"} {
		wg.Add(1)
		go func(i int, start string) {
			defer wg.Done()
			_, errs[i] = f.uc.Execute(context.Background(), request(start))
		}(i, start)
	}
	wg.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, domain.ErrQuotaExceeded)
			failed++
		}
	}
	assert.Equal(t, 1, failed)
	assert.Len(t, f.appointments.all(), 1)
}

func TestExecute_RetriesTransientFailures(t *testing.T) {
	f := newFixture()
	f.tx.failures = []error{
		fmt.Errorf("commit: %w", &pq.Error{Code: "40001"}),
		fmt.Errorf("commit: %w", &pq.Error{Code: "40P01"}),
	}

	resp, err := f.uc.Execute(context.Background(), request("10:00"))

	require.NoError(t, err)
	assert.NotZero(t, resp.ID)
	assert.Equal(t, 3, f.tx.calls)
	assert.Equal(t, 2, f.metrics.retries)
	assert.Len(t, f.appointments.all(), 1)
}

func TestExecute_TransientFailuresExhausted(t *testing.T) {
	f := newFixture()
	for i := 0; i < 3; i++ {
		f.tx.failures = append(f.tx.failures, &pq.Error{Code: "08006"})
	}

	_, err := f.uc.Execute(context.Background(), request("10:00"))

	assert.ErrorIs(t, err, domain.ErrTransientStore)
	assert.Equal(t, domain.KindTransientStore, domain.KindOf(err))
	assert.Equal(t, 3, f.tx.calls)
	assert.Empty(t, f.appointments.all())
	assert.Empty(t, f.cache.invalidated)
	assert.Equal(t, 1, f.metrics.rejected["transient_store"])
}

func TestExecute_NonTransientFailureIsNotRetried(t *testing.T) {
	f := newFixture()
	f.tx.failures = []error{errors.New("relation \"appointments\" does not exist")}

	_, err := f.uc.Execute(context.Background(), request("10:00"))

	assert.ErrorIs(t, err, ErrInternal)
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
	assert.Equal(t, 1, f.tx.calls)
}

func TestExecute_SamePhoneConcurrentBookingsShareClient(t *testing.T) {
	f := newFixture()
	f.configs.schedules[companyID].Config.MonthlyAppointmentLimit = 0

	starts := []string{"09:00", "10:00", "11:00", "13:00", "14:00", "15:00", "16:00", "17:00"}
	phones := []string{"+55 11 98765-4321", "(11) 98765-4321", "11987654321", "5511987654321"}

	var wg sync.WaitGroup
	errs := make([]error, len(starts))
	for i, start := range starts {
		wg.Add(1)
		go func(i int, start string) {
			defer wg.Done()
			req := request(start)
			req.Client = domain.ClientContact{Name: fmt.Sprintf("Cliente %d", i), Phone: phones[i%len(phones)]}
			_, errs[i] = f.uc.Execute(context.Background(), req)
		}(i, start)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	assert.Equal(t, 1, f.clients.count())
	all := f.appointments.all()
	require.Len(t, all, len(starts))
	for _, a := range all {
		assert.Equal(t, all[0].ClientID, a.ClientID)
	}
}

func TestExecute_PublishFailureDoesNotFailBooking(t *testing.T) {
	f := newFixture()
	f.publisher.err = errors.New("nats: no servers available")

	resp, err := f.uc.Execute(context.Background(), request("10:00"))

	require.NoError(t, err)
	assert.NotZero(t, resp.ID)
	assert.Len(t, f.cache.invalidated, 1)
}
