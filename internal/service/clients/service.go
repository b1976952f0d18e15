package clients

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	clientRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/client"
	"github.com/m04kA/SMC-SchedulingService/pkg/dberrors"
	"github.com/m04kA/SMC-SchedulingService/pkg/phone"
	"github.com/m04kA/SMC-SchedulingService/pkg/retry"
)

const opUpsert = "client_upsert"

// Service определяет клиента компании по телефону и чинит дубликаты
type Service struct {
	clientRepo      ClientRepository
	appointmentRepo AppointmentRepository
	txManager       TransactionManager
	metrics         Metrics
	countryCode     string
	retryPolicy     retry.Policy
	logger          Logger
}

// NewService создает новый экземпляр сервиса клиентов
func NewService(
	clientRepo ClientRepository,
	appointmentRepo AppointmentRepository,
	txManager TransactionManager,
	metrics Metrics,
	countryCode string,
	retryPolicy retry.Policy,
	logger Logger,
) *Service {
	return &Service{
		clientRepo:      clientRepo,
		appointmentRepo: appointmentRepo,
		txManager:       txManager,
		metrics:         metrics,
		countryCode:     countryCode,
		retryPolicy:     retryPolicy,
		logger:          logger,
	}
}

// Normalize возвращает ключ клиента или ValidationError по полю phone
func (s *Service) Normalize(raw string) (string, error) {
	normalized := phone.Normalize(raw, s.countryCode)
	if err := phone.Validate(normalized); err != nil {
		return "", domain.NewValidationError("phone", err.Error())
	}
	return normalized, nil
}

// Lookup находит клиента без создания новой строки.
// Старые записи без нормализованного телефона получают его при чтении,
// а несколько строк на один номер запускают Consolidate.
func (s *Service) Lookup(ctx context.Context, companyID int64, rawPhone string) (*domain.Client, error) {
	normalized, err := s.Normalize(rawPhone)
	if err != nil {
		return nil, err
	}

	// 1. Поиск по нормализованному телефону
	found, err := s.clientRepo.FindByNormalizedPhone(ctx, companyID, normalized)
	if err != nil && !errors.Is(err, clientRepo.ErrClientNotFound) {
		s.logger.Error("Lookup: failed to find client company=%d phone=%s: %v", companyID, normalized, err)
		return nil, storeError("Lookup", err)
	}

	// 2. Поиск старых записей по сырому телефону
	legacy, err := s.clientRepo.FindLegacyByPhones(ctx, companyID, phone.Variants(rawPhone, s.countryCode))
	if err != nil {
		s.logger.Error("Lookup: failed to find legacy clients company=%d phone=%s: %v", companyID, normalized, err)
		return nil, storeError("Lookup", err)
	}

	switch {
	case found == nil && len(legacy) == 0:
		return nil, ErrClientNotFound

	case found != nil && len(legacy) == 0:
		return found, nil

	case found == nil && len(legacy) == 1:
		// 3. Единственная старая запись: проставляем нормализованный телефон
		c := legacy[0]
		if err := s.clientRepo.SetNormalizedPhone(ctx, c.ID, normalized); err != nil {
			if errors.Is(err, clientRepo.ErrPhoneTaken) {
				// Параллельный запрос успел создать строку с этим номером
				return s.Consolidate(ctx, companyID, rawPhone)
			}
			// Без нормализованного телефона upsert создал бы дубликат рядом со старой строкой
			s.logger.Error("Lookup: failed to backfill phone for client id=%d: %v", c.ID, err)
			return nil, storeError("Lookup", err)
		}
		c.NormalizedPhone = &normalized
		s.logger.Info("Lookup: backfilled normalized phone for client id=%d", c.ID)
		return c, nil
	}

	// 4. Больше одной строки на номер
	s.logger.Warn("Lookup: duplicate clients detected company=%d phone=%s, consolidating", companyID, normalized)
	kept, err := s.Consolidate(ctx, companyID, rawPhone)
	if err != nil {
		// Чтение не должно падать из-за неудачного ремонта
		s.logger.Error("Lookup: consolidation failed company=%d phone=%s: %v", companyID, normalized, err)
		if found != nil {
			return found, nil
		}
		return pickKept(legacy), nil
	}

	return kept, nil
}

// Resolve возвращает клиента для записи, создавая или обновляя его одним upsert.
// Результат всегда сохранен в БД; ошибка возможна только при недоступном хранилище
// или некорректных контактных данных.
func (s *Service) Resolve(ctx context.Context, companyID int64, contact domain.ClientContact) (*domain.Client, error) {
	s.logger.Info("Resolve: resolving client company=%d", companyID)

	// 1. Валидация контактов
	normalized, err := s.Normalize(contact.Phone)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(contact.Name)
	if name == "" {
		return nil, domain.NewValidationError("name", "is required")
	}
	if len(name) > domain.MaxClientNameLength {
		return nil, domain.NewValidationError("name", fmt.Sprintf("must be at most %d characters", domain.MaxClientNameLength))
	}

	// 2. Подтягиваем старые записи, чтобы upsert не создал рядом с ними дубликат
	if _, err := s.Lookup(ctx, companyID, contact.Phone); err != nil && !errors.Is(err, ErrClientNotFound) {
		s.logger.Error("Resolve: lookup before upsert failed company=%d: %v", companyID, err)
		return nil, err
	}

	// 3. Upsert по (company_id, normalized_phone) с повтором на временных ошибках
	var saved *domain.Client
	err = retry.Do(ctx, s.retryPolicy, dberrors.IsTransient,
		func(err error, next time.Duration) {
			s.metrics.IncWriteRetry(opUpsert)
			s.logger.Warn("Resolve: transient error on upsert, retry in %s: %v", next, err)
		},
		func() error {
			c, err := s.clientRepo.Upsert(ctx, &domain.Client{
				CompanyID:       companyID,
				Name:            name,
				Phone:           strings.TrimSpace(contact.Phone),
				NormalizedPhone: &normalized,
				Email:           contact.Email,
			})
			if err != nil {
				return err
			}
			saved = c
			return nil
		})
	if err != nil {
		s.logger.Error("Resolve: failed to upsert client company=%d phone=%s: %v", companyID, normalized, err)
		return nil, storeError("Resolve", err)
	}

	s.logger.Info("Resolve: client id=%d resolved for company=%d", saved.ID, companyID)
	return saved, nil
}

// Consolidate сливает все строки клиента с этим номером в одну в отдельной транзакции.
// Остается самая новая строка, записи остальных переносятся на нее, остальные удаляются.
func (s *Service) Consolidate(ctx context.Context, companyID int64, rawPhone string) (*domain.Client, error) {
	normalized, err := s.Normalize(rawPhone)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Consolidate: company=%d phone=%s", companyID, normalized)

	var (
		kept   *domain.Client
		merged int
	)

	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		// 1. Собираем все строки этого номера
		candidates := make([]*domain.Client, 0)

		found, err := s.clientRepo.FindByNormalizedPhone(ctx, companyID, normalized)
		if err != nil && !errors.Is(err, clientRepo.ErrClientNotFound) {
			return err
		}
		if found != nil {
			candidates = append(candidates, found)
		}

		legacy, err := s.clientRepo.ListLegacy(ctx, companyID)
		if err != nil {
			return err
		}
		for _, c := range legacy {
			if phone.Normalize(c.Phone, s.countryCode) == normalized {
				candidates = append(candidates, c)
			}
		}

		if len(candidates) == 0 {
			return ErrClientNotFound
		}

		// 2. Оставляем самую новую строку
		kept = pickKept(candidates)
		others := make([]int64, 0, len(candidates)-1)
		for _, c := range candidates {
			if c.ID != kept.ID {
				others = append(others, c.ID)
			}
		}

		// 3. Переносим записи и удаляем дубликаты до простановки номера,
		// иначе уникальный ключ (company_id, normalized_phone) не даст его записать
		if _, err := s.appointmentRepo.ReassignClient(ctx, others, kept.ID); err != nil {
			return err
		}
		deleted, err := s.clientRepo.DeleteByIDs(ctx, others)
		if err != nil {
			return err
		}
		merged = int(deleted)

		// 4. Проставляем нормализованный телефон оставшейся строке
		if kept.NormalizedPhone == nil {
			if err := s.clientRepo.SetNormalizedPhone(ctx, kept.ID, normalized); err != nil {
				return err
			}
			kept.NormalizedPhone = &normalized
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, ErrClientNotFound) {
			return nil, err
		}
		s.logger.Error("Consolidate: failed company=%d phone=%s: %v", companyID, normalized, err)
		return nil, storeError("Consolidate", err)
	}

	if merged > 0 {
		s.metrics.AddClientsConsolidated(merged)
		s.logger.Warn("Consolidate: merged %d duplicate clients into id=%d company=%d", merged, kept.ID, companyID)
	}

	return kept, nil
}

// pickKept самая новая строка; при равном времени создания побеждает больший ID
func pickKept(candidates []*domain.Client) *domain.Client {
	sorted := make([]*domain.Client, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		}
		return sorted[i].ID > sorted[j].ID
	})
	return sorted[0]
}

func storeError(op string, err error) error {
	if dberrors.IsTransient(err) {
		return fmt.Errorf("%w: %s - %v", domain.ErrTransientStore, op, err)
	}
	return fmt.Errorf("%w: %s - %v", ErrInternal, op, err)
}
