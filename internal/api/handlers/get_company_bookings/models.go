package get_company_bookings

import (
	"net/url"
	"strconv"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/service/bookings/models"
)

// ToServiceRequest формирует запрос к сервису из query параметров.
// date задает один день и исключает from/to.
func ToServiceRequest(companyID int64, query url.Values) (*models.GetCompanyBookingsRequest, error) {
	req := &models.GetCompanyBookingsRequest{
		CompanyID:       companyID,
		IncludeInactive: false, // По умолчанию только активные
	}

	if dateStr := query.Get("date"); dateStr != "" {
		if query.Get("from") != "" || query.Get("to") != "" {
			return nil, domain.NewValidationError("date", "cannot be combined with from/to")
		}
		date, err := parseDate("date", dateStr)
		if err != nil {
			return nil, err
		}
		req.StartDate = &date
		req.EndDate = &date
	}

	if fromStr := query.Get("from"); fromStr != "" {
		from, err := parseDate("from", fromStr)
		if err != nil {
			return nil, err
		}
		req.StartDate = &from
	}

	if toStr := query.Get("to"); toStr != "" {
		to, err := parseDate("to", toStr)
		if err != nil {
			return nil, err
		}
		req.EndDate = &to
	}

	if status := query.Get("status"); status != "" {
		req.Status = &status
	}

	if includeInactiveStr := query.Get("includeInactive"); includeInactiveStr != "" {
		includeInactive, err := strconv.ParseBool(includeInactiveStr)
		if err != nil {
			return nil, domain.NewValidationError("includeInactive", "expected true or false")
		}
		req.IncludeInactive = includeInactive
	}

	return req, nil
}

func parseDate(field, raw string) (time.Time, error) {
	d, err := time.Parse(domain.DateFormat, raw)
	if err != nil {
		return time.Time{}, domain.NewValidationError(field, "expected YYYY-MM-DD")
	}
	return d, nil
}
