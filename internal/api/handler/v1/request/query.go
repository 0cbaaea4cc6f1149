package request

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation"
)

var (
	errNotPositiveInt = errors.New("must be a positive integer")
	errNotBool        = errors.New("must be true or false")
)

// Query reads typed query parameters and collects per-parameter errors.
type Query struct {
	ctx  *gin.Context
	errs validation.Errors
}

func NewQuery(ctx *gin.Context) *Query {
	return &Query{
		ctx:  ctx,
		errs: validation.Errors{},
	}
}

// Page defaults to 1 when the parameter is absent.
func (q *Query) Page() int {
	raw, ok := q.ctx.GetQuery("page")
	if !ok || raw == "" {
		return 1
	}

	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		q.errs["page"] = errNotPositiveInt
		return 0
	}

	return page
}

func (q *Query) String(key string) string {
	return q.ctx.Query(key)
}

func (q *Query) Bool(key string) *bool {
	raw, ok := q.ctx.GetQuery(key)
	if !ok || raw == "" {
		return nil
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		q.errs[key] = errNotBool
		return nil
	}

	return &v
}

func (q *Query) Uint(key string) *uint {
	raw, ok := q.ctx.GetQuery(key)
	if !ok || raw == "" {
		return nil
	}

	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || v == 0 {
		q.errs[key] = errNotPositiveInt
		return nil
	}

	id := uint(v)
	return &id
}

func (q *Query) Int(key string) *int {
	raw, ok := q.ctx.GetQuery(key)
	if !ok || raw == "" {
		return nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		q.errs[key] = errNotPositiveInt
		return nil
	}

	return &v
}

func (q *Query) Err() error {
	return q.errs.Filter()
}
