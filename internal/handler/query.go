package handler

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/uep-attendance-analytics/internal/dto"
	"github.com/noah-isme/uep-attendance-analytics/internal/middleware"
	"github.com/noah-isme/uep-attendance-analytics/internal/models"
	appErrors "github.com/noah-isme/uep-attendance-analytics/pkg/errors"
)

type criteriaQuery struct {
	Faculties []string `validate:"dive,max=120"`
	Types     []string `validate:"dive,oneof=talk workshop seminar"`
	DateFrom  string   `validate:"omitempty,datetime=2006-01-02"`
	DateTo    string   `validate:"omitempty,datetime=2006-01-02"`
}

// parseCriteria reads faculty, type, date_from and date_to. An absent
// faculty or type parameter leaves the selection nil (all observed values);
// a present but empty one selects nothing.
func parseCriteria(c *gin.Context, validate *validator.Validate) (models.FilterCriteria, error) {
	if validate == nil {
		validate = validator.New()
	}
	var q criteriaQuery
	if values, ok := c.GetQueryArray("faculty"); ok {
		q.Faculties = splitValues(values)
	}
	if values, ok := c.GetQueryArray("type"); ok {
		q.Types = splitValues(values)
	}
	q.DateFrom = strings.TrimSpace(c.Query("date_from"))
	q.DateTo = strings.TrimSpace(c.Query("date_to"))

	if err := validate.Struct(q); err != nil {
		return models.FilterCriteria{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid analytics filter")
	}

	criteria := models.FilterCriteria{Faculties: q.Faculties}
	if q.Types != nil {
		criteria.Types = make([]models.EventType, 0, len(q.Types))
		for _, t := range q.Types {
			criteria.Types = append(criteria.Types, models.EventType(t))
		}
	}
	if q.DateFrom != "" {
		criteria.DateFrom, _ = time.Parse(dto.DateLayout, q.DateFrom)
	}
	if q.DateTo != "" {
		criteria.DateTo, _ = time.Parse(dto.DateLayout, q.DateTo)
	}
	return criteria, nil
}

// splitValues flattens repeated and comma separated values, dropping blanks.
// The result is never nil.
func splitValues(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func newMeta(c *gin.Context) map[string]interface{} {
	return middleware.ResponseMeta(c)
}
