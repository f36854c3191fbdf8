package chi

import (
	"fmt"
	"net/http"

	"github.com/oapi-codegen/runtime"

	"github.com/kailas-cloud/facilitydex/internal/domain"
	"github.com/kailas-cloud/facilitydex/internal/domain/search/request"
)

type queryParam struct {
	name string
	dest any
}

// bindQuery binds optional form-style query parameters into pointer destinations.
func bindQuery(r *http.Request, params ...queryParam) error {
	values := r.URL.Query()
	for _, p := range params {
		if err := runtime.BindQueryParameter("form", true, false, p.name, values, p.dest); err != nil {
			return fmt.Errorf("%w: invalid format for parameter %s", domain.ErrInvalidRequest, p.name)
		}
	}
	return nil
}

// searchParams reads q, s, t, l, o, lat, lng, sort, from and size.
// An absent or zero size falls back to defaultSize.
func searchParams(r *http.Request, defaultSize int) (request.Params, error) {
	var (
		q, sort    *string
		s, t, l, o *int
		lat, lng   *float64
		from, size *int
	)
	err := bindQuery(r,
		queryParam{"q", &q},
		queryParam{"s", &s},
		queryParam{"t", &t},
		queryParam{"l", &l},
		queryParam{"o", &o},
		queryParam{"lat", &lat},
		queryParam{"lng", &lng},
		queryParam{"sort", &sort},
		queryParam{"from", &from},
		queryParam{"size", &size},
	)
	if err != nil {
		return request.Params{}, err
	}

	p := request.Params{
		Query:        deref(q),
		Category:     deref(s),
		FacilityType: deref(t),
		Location:     deref(l),
		Ownership:    deref(o),
		Lat:          lat,
		Lng:          lng,
		Sort:         deref(sort),
		From:         deref(from),
		Size:         defaultSize,
	}
	if size != nil && *size != 0 {
		p.Size = *size
	}
	return p, nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
