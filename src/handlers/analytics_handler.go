package handlers

import (
	"net/http"

	"girlmath-server/src/ledger"
	"girlmath-server/src/models"

	"github.com/shopspring/decimal"
)

type analyticsView struct {
	Analytics *models.Analytics
	// MaxDaily is the largest single-day figure, used to scale the bars.
	MaxDaily decimal.Decimal
}

func Analytics(svc *ledger.Service, p *Pages) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := svc.Analytics(r.Context(), identity(r).UserID)
		if err != nil {
			p.fail(w, r, err, "/")
			return
		}

		view := analyticsView{Analytics: a, MaxDaily: decimal.Zero}
		for _, d := range a.Daily {
			view.MaxDaily = decimal.Max(view.MaxDaily, d.Spent, d.Received)
		}
		p.render(w, r, "analytics.html", "Analytics", view)
	}
}
