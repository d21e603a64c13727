package query

import (
	"fmt"
	"strconv"

	"github.com/nao1215/filequery/domain/model"
)

// nullBucket is the bucket fragment of values that are not dates or are Null
const nullBucket = "NULL"

// applyDateFunction extracts a calendar component. YEAR, MONTH and DAY yield
// numbers, DATE yields an ISO-8601 date string. Values that do not parse as a
// date yield Null.
func applyDateFunction(fn model.DateFunction, v model.Value) model.Value {
	d, ok := v.Date()
	if !ok {
		return model.Null()
	}
	switch fn {
	case model.DateFuncYear:
		return model.Number(float64(d.Year()))
	case model.DateFuncMonth:
		return model.Number(float64(d.Month()))
	case model.DateFuncDay:
		return model.Number(float64(d.Day()))
	case model.DateFuncDate:
		return model.String(d.Format("2006-01-02"))
	default:
		return v
	}
}

// bucket returns the group key fragment of a value under a GROUP BY function.
// A plain date-typed value buckets by year and month.
func bucket(fn model.DateFunction, v model.Value) string {
	if fn == model.DateFuncNone {
		switch v.Kind() {
		case model.KindNull:
			return nullBucket
		case model.KindDate:
			d, _ := v.Date()
			return d.Format("2006-01")
		default:
			return v.String()
		}
	}

	d, ok := v.Date()
	if !ok {
		return nullBucket
	}
	switch fn {
	case model.DateFuncYear:
		return fmt.Sprintf("%04d", d.Year())
	case model.DateFuncMonth:
		return fmt.Sprintf("%02d", int(d.Month()))
	case model.DateFuncDay:
		return fmt.Sprintf("%02d", d.Day())
	default:
		return d.Format("2006-01-02")
	}
}

// bucketValue converts a bucket fragment into the typed group field value
func bucketValue(fn model.DateFunction, fragment string, first model.Value) model.Value {
	if fragment == nullBucket && (fn != model.DateFuncNone || first.IsNull()) {
		return model.Null()
	}
	switch fn {
	case model.DateFuncYear, model.DateFuncMonth, model.DateFuncDay:
		n, err := strconv.Atoi(fragment)
		if err != nil {
			return model.Null()
		}
		return model.Number(float64(n))
	case model.DateFuncDate:
		return model.String(fragment)
	}
	if first.Kind() == model.KindDate {
		return model.String(fragment)
	}
	return first
}
