package controllers

import (
	"net/http"

	"github.com/willowmarket/willow-backend/api/responses"
	"github.com/willowmarket/willow-backend/api/validators"
	"github.com/willowmarket/willow-backend/internal/reports"
	pkgerrors "github.com/willowmarket/willow-backend/pkg/errors"
	"github.com/willowmarket/willow-backend/pkg/logger"
)

// AdminSettlementReport returns aggregate settlement totals scoped by the
// optional seller and released-at window.
func AdminSettlementReport(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reports service unavailable"))
			return
		}

		filters := reports.ReportFilters{}

		sellerID, err := validators.ParseQueryUUID(r, "seller_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters.SellerID = sellerID

		dateFrom, err := validators.ParseQueryTime(r, "date_from")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters.DateFrom = dateFrom

		dateTo, err := validators.ParseQueryTime(r, "date_to")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters.DateTo = dateTo

		report, err := svc.SettlementReport(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}
