package handlers

import (
	"errors"
	"net/http"

	"girlmath-server/src/ledger"
	"girlmath-server/src/models"
	"girlmath-server/src/util"
)

// Index shows the balance and the transaction list.
func Index(svc *ledger.Service, sessions *util.Sessions, p *Pages) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := svc.Summary(r.Context(), identity(r).UserID)
		if errors.Is(err, models.ErrNotFound) {
			// The account behind a still valid session is gone.
			sessions.Clear(w)
			p.redirect(w, r, "/login", util.FlashInfo, "Please log in to access this page.")
			return
		}
		if err != nil {
			p.fail(w, r, err, "/")
			return
		}
		p.render(w, r, "index.html", "Overview", summary)
	}
}

func SetBalance(svc *ledger.Service, p *Pages) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := svc.SetBalance(r.Context(), identity(r).UserID, r.PostFormValue("balance"))
		if err != nil {
			p.fail(w, r, err, "/")
			return
		}
		p.redirect(w, r, "/", util.FlashSuccess, "Balance set to "+util.FormatMoney(user.Balance))
	}
}

func AddTransaction(svc *ledger.Service, p *Pages) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, _, err := svc.AddTransaction(r.Context(), identity(r).UserID,
			r.PostFormValue("description"), r.PostFormValue("amount"))
		if err != nil {
			p.fail(w, r, err, "/")
			return
		}
		p.redirect(w, r, "/", util.FlashSuccess, "Transaction added and balance updated!")
	}
}

func DeleteTransaction(svc *ledger.Service, p *Pages) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		txnID, err := idParam(r, "id")
		if err != nil {
			p.NotFound(w, r)
			return
		}
		if _, _, err := svc.DeleteTransaction(r.Context(), identity(r).UserID, txnID); err != nil {
			p.fail(w, r, err, "/")
			return
		}
		p.redirect(w, r, "/", util.FlashSuccess, "Transaction deleted and balance restored.")
	}
}
