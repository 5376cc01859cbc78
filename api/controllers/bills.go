package controllers

import (
	"context"
	"net/http"

	"github.com/LeDucTai-11/MyStore-BE/api/responses"
	"github.com/LeDucTai-11/MyStore-BE/api/validators"
	"github.com/LeDucTai-11/MyStore-BE/internal/billing"
	"github.com/LeDucTai-11/MyStore-BE/pkg/db/models"
	pkgerrors "github.com/LeDucTai-11/MyStore-BE/pkg/errors"
	"github.com/LeDucTai-11/MyStore-BE/pkg/logger"
	"github.com/LeDucTai-11/MyStore-BE/pkg/pagination"
)

type BillLister interface {
	List(ctx context.Context, params billing.ListParams) (*pagination.PageResult[models.Bill], error)
}

// BillList returns issued bills, optionally narrowed with ?createdBy=<staff id>.
func BillList(svc BillLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}

		page, err := validators.ParsePage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		createdBy, err := validators.ParseQueryUUID(r, "createdBy")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), billing.ListParams{CreatedBy: createdBy, Page: page})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
