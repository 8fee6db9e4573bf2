package service

import (
	"errors"
	"math"
	"net/http"

	"github.com/nurpe/drillfleet/internal/api"
)

// notFound turns an API 404 into ErrNotFound.
func notFound(err error) error {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	return err
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
