package validators

import (
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/trackwise-backend/pkg/errors"
	"github.com/angelmondragon/trackwise-backend/pkg/pagination"
)

// ParsePage reads page and limit leniently: anything unparsable falls back to
// zero and is normalized by the service.
func ParsePage(r *http.Request) pagination.Params {
	q := r.URL.Query()
	page, _ := strconv.Atoi(strings.TrimSpace(q.Get("page")))
	limit, _ := strconv.Atoi(strings.TrimSpace(q.Get("limit")))
	return pagination.Params{Page: page, Limit: limit}
}

// ParsePathID reads a positive integer path id.
func ParsePathID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "ID inválido")
	}
	return id, nil
}
