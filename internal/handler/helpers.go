package handler

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/Orbeng/engser/internal/apierror"
	"github.com/Orbeng/engser/internal/dto"
	"github.com/Orbeng/engser/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	msgInvalidPayload = "Dados inválidos"
	msgInvalidID      = "ID inválido"
	msgInternal       = "Erro interno do servidor"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// gt=0 and required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	// Report JSON names ("unitValue") instead of Go field names.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes a 400 response if binding or validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.NewValidation(msgInvalidPayload, []apierror.FieldError{
			{Field: "body", Message: "JSON inválido ou com tipos incorretos"},
		}))
		return false
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, apierror.New(msgInvalidPayload))
			return false
		}
		fields := make([]apierror.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, apierror.FieldError{Field: fieldPath(fe.Namespace()), Message: tagMessage(fe)})
		}
		c.JSON(http.StatusBadRequest, apierror.NewValidation(msgInvalidPayload, fields))
		return false
	}
	return true
}

// fieldPath drops the root struct name: "CreateQuoteRequest.items[0].unitValue"
// becomes "items[0].unitValue".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Campo obrigatório"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Deve ter pelo menos %s caracteres", fe.Param())
		}
		return fmt.Sprintf("Deve ser no mínimo %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Deve ter no máximo %s caracteres", fe.Param())
		}
		return fmt.Sprintf("Deve ser no máximo %s", fe.Param())
	case "gt":
		return fmt.Sprintf("Deve ser maior que %s", fe.Param())
	case "email":
		return "E-mail inválido"
	case "uuid":
		return "Identificador inválido"
	case "oneof":
		return "Valor deve ser um de: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "gtefield":
		return "Deve ser igual ou posterior à data de emissão"
	default:
		return "Valor inválido"
	}
}

// respondError maps a service error to its HTTP status and envelope.
// Messages of transient errors are replaced by a generic one.
func respondError(c *gin.Context, err error) {
	var se *service.Error
	if !errors.As(err, &se) {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("unclassified handler error")
		c.JSON(http.StatusInternalServerError, apierror.New(msgInternal))
		return
	}

	switch se.Kind {
	case service.KindValidation:
		fields := make([]apierror.FieldError, len(se.Fields))
		for i, f := range se.Fields {
			fields[i] = apierror.FieldError{Field: f.Field, Message: f.Message}
		}
		c.JSON(http.StatusBadRequest, apierror.NewValidation(se.Message, fields))
	case service.KindNotFound:
		c.JSON(http.StatusNotFound, apierror.New(se.Message))
	case service.KindConflict:
		c.JSON(http.StatusBadRequest, apierror.New(se.Message))
	case service.KindDuplicate:
		c.JSON(http.StatusConflict, apierror.New(se.Message))
	case service.KindUnauthorized:
		c.JSON(http.StatusUnauthorized, apierror.New(se.Message))
	default:
		c.JSON(http.StatusInternalServerError, apierror.New(msgInternal))
	}
}

// parseID reads the :id path parameter. Writes 400 and returns false when it
// is not a UUID.
func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(msgInvalidID))
		return uuid.Nil, false
	}
	return id, true
}

// parseListFilter reads page, pageSize, search and status. Missing or
// invalid numbers fall back to the defaults; pageSize is capped.
func parseListFilter(c *gin.Context) dto.ListFilter {
	f := dto.ListFilter{
		Page:     positiveQuery(c, "page", dto.DefaultPage),
		PageSize: positiveQuery(c, "pageSize", dto.DefaultPageSize),
		Search:   strings.TrimSpace(c.Query("search")),
		Status:   strings.TrimSpace(c.Query("status")),
	}
	if f.PageSize > dto.MaxPageSize {
		f.PageSize = dto.MaxPageSize
	}
	return f
}

func positiveQuery(c *gin.Context, key string, def int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n < 1 {
		return def
	}
	return n
}
